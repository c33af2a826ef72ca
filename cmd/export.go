package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	exFlags         dataFlags
	exChart         chartFlags
	exOutput        string
	exCollaborators []string
	exComments      []string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a JSON report with data, chart selection, insights and notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args[0], &exFlags)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := exChart.apply(cmd, s); err != nil {
			return err
		}
		for _, email := range exCollaborators {
			if err := s.Board().AddCollaborator(email); err != nil {
				return err
			}
		}
		for _, text := range exComments {
			if _, err := s.Board().AddComment(text); err != nil {
				return err
			}
		}
		path, err := s.Export(exOutput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported report to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addDataFlags(exportCmd, &exFlags)
	addChartFlags(exportCmd, &exChart)
	exportCmd.Flags().StringVarP(&exOutput, "output", "o", "", "report path (default from config, data_report.json)")
	exportCmd.Flags().StringArrayVar(&exCollaborators, "collaborator", nil, "collaborator email to record (repeatable)")
	exportCmd.Flags().StringArrayVar(&exComments, "comment", nil, "comment to record (repeatable)")
}
