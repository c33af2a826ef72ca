package cmd

import (
	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	fcFlags   dataFlags
	fcColumn  string
	fcHorizon int
	fcFormat  string
	fcOutput  string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <file>",
	Short: "Fit a linear trend to a numeric column and project it forward",
	Long: `Fits an ordinary least squares line to the column values against their row
positions and projects the next --horizon periods. R-squared is reported as
a percentage, or N/A for a constant series.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(fcFormat, "markdown", "json"); err != nil {
			return err
		}
		s, err := openSession(cmd.Context(), args[0], &fcFlags)
		if err != nil {
			return err
		}
		defer s.Close()
		name, res, err := s.Forecast(fcColumn, fcHorizon)
		if err != nil {
			return err
		}
		if fcFormat == "json" {
			return emitJSON(cmd, fcOutput, map[string]any{"column": name, "forecast": res}, "forecast")
		}
		return emit(cmd, fcOutput, analysis.ForecastMarkdown(name, res), "forecast")
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	addDataFlags(forecastCmd, &fcFlags)
	forecastCmd.Flags().StringVarP(&fcColumn, "column", "c", "", "numeric column name or zero-based index")
	forecastCmd.Flags().IntVar(&fcHorizon, "horizon", 0, "number of periods to project (default from config, 5)")
	forecastCmd.Flags().StringVar(&fcFormat, "format", "markdown", "output format: markdown|json")
	forecastCmd.Flags().StringVarP(&fcOutput, "output", "o", "", "optional path to write the output")
	_ = forecastCmd.MarkFlagRequired("column")
}
