package cmd

import (
	"path/filepath"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	insFlags  dataFlags
	insColumn string
	insFormat string
	insOutput string
)

var insightsCmd = &cobra.Command{
	Use:     "insights <file>",
	Aliases: []string{"analyze"},
	Short:   "Summarize every column with statistics, insights and recommendations",
	Long: `Classifies each column as numeric or categorical and reports descriptive
statistics with rule-based insights. Insights always cover all rows;
filters only affect charts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(insFormat, "markdown", "text", "json"); err != nil {
			return err
		}
		s, err := openSession(cmd.Context(), args[0], &insFlags)
		if err != nil {
			return err
		}
		defer s.Close()
		reports, err := s.Insights()
		if err != nil {
			return err
		}
		if insColumn != "" {
			i, err := s.ResolveColumn(insColumn)
			if err != nil {
				return err
			}
			reports = reports[i : i+1]
		}
		switch insFormat {
		case "json":
			return emitJSON(cmd, insOutput, reports, "insights")
		case "text":
			return emit(cmd, insOutput, analysis.InsightText(reports), "insights")
		default:
			ds, _ := s.Snapshot()
			md := analysis.InsightsMarkdown(filepath.Base(args[0]), ds.Len(), reports)
			return emit(cmd, insOutput, md, "insights")
		}
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	addDataFlags(insightsCmd, &insFlags)
	insightsCmd.Flags().StringVarP(&insColumn, "column", "c", "", "only report this column")
	insightsCmd.Flags().StringVar(&insFormat, "format", "markdown", "output format: markdown|text|json")
	insightsCmd.Flags().StringVarP(&insOutput, "output", "o", "", "optional path to write the output")
}
