package cmd

import (
	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	hmFlags  dataFlags
	hmX      string
	hmY      string
	hmFormat string
	hmOutput string
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <file>",
	Short: "Bin two numeric columns into a 10x10 occurrence grid",
	Long: `Counts joint occurrences of two numeric columns over all rows using ten
equal-width bins per axis. Without --y the first other numeric column is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(hmFormat, "text", "markdown", "json"); err != nil {
			return err
		}
		s, err := openSession(cmd.Context(), args[0], &hmFlags)
		if err != nil {
			return err
		}
		defer s.Close()
		x := hmX
		if x == "" {
			ds, _ := s.Snapshot()
			if nc := ds.NumericColumns(); len(nc) > 0 {
				x = ds.Headers[nc[0]]
			} else {
				return analysis.ErrHeatmapUnavailable
			}
		}
		spec, grid, err := s.Heatmap(x, hmY)
		if err != nil {
			return err
		}
		switch hmFormat {
		case "json":
			return emitJSON(cmd, hmOutput, spec, "heatmap spec")
		case "markdown":
			return emit(cmd, hmOutput, analysis.HeatmapMarkdown(grid), "heatmap")
		default:
			return emit(cmd, hmOutput, spec.Text(), "heatmap")
		}
	},
}

func init() {
	rootCmd.AddCommand(heatmapCmd)
	addDataFlags(heatmapCmd, &hmFlags)
	heatmapCmd.Flags().StringVarP(&hmX, "x", "x", "", "x axis column (default: first numeric column)")
	heatmapCmd.Flags().StringVarP(&hmY, "y", "y", "", "y axis column (default: first other numeric column)")
	heatmapCmd.Flags().StringVar(&hmFormat, "format", "text", "output format: text|markdown|json")
	heatmapCmd.Flags().StringVarP(&hmOutput, "output", "o", "", "optional path to write the output")
}
