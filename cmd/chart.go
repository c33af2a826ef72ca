package cmd

import (
	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/chart"
	"github.com/KaramelBytes/tabula-cli/internal/session"
	"github.com/spf13/cobra"
)

// chartFlags override the configured chart settings for one invocation.
type chartFlags struct {
	column         string
	chartType      string
	agg            string
	title          string
	legendPosition string
	colorScheme    string
	noLegend       bool
	noGrid         bool
	beginAtZero    bool
}

func addChartFlags(c *cobra.Command, f *chartFlags) {
	c.Flags().StringVarP(&f.column, "column", "c", "", "column name or zero-based index")
	c.Flags().StringVarP(&f.chartType, "type", "t", "", "chart type: bar|line|scatter|pie|heatmap (default from config)")
	c.Flags().StringVarP(&f.agg, "agg", "a", "", "numeric aggregation: sum|average|count|raw (default from config)")
	c.Flags().StringVar(&f.title, "title", "", "chart title (default '<column> - <kind>')")
	c.Flags().StringVar(&f.legendPosition, "legend-position", "", "legend position: top|bottom|left|right")
	c.Flags().StringVar(&f.colorScheme, "color-scheme", "", "color scheme: default|pastel|dark|monochrome")
	c.Flags().BoolVar(&f.noLegend, "no-legend", false, "hide the legend")
	c.Flags().BoolVar(&f.noGrid, "no-grid", false, "hide grid lines")
	c.Flags().BoolVar(&f.beginAtZero, "begin-at-zero", true, "start the value axis at zero")
}

// apply pushes the flags into the session. Only flags the user set override.
func (f *chartFlags) apply(c *cobra.Command, s *session.Session) error {
	if f.chartType != "" {
		t, err := chart.ParseType(f.chartType)
		if err != nil {
			return err
		}
		s.SetChartType(t)
	}
	if f.agg != "" {
		m, err := analysis.ParseMode(f.agg)
		if err != nil {
			return err
		}
		s.SetMode(m)
	}
	o := s.Settings().Chart
	o.Title = f.title
	if f.legendPosition != "" {
		o.LegendPosition = f.legendPosition
	}
	if f.colorScheme != "" {
		o.ColorScheme = f.colorScheme
	}
	if c.Flags().Changed("no-legend") {
		o.ShowLegend = !f.noLegend
	}
	if c.Flags().Changed("no-grid") {
		o.ShowGrid = !f.noGrid
	}
	if c.Flags().Changed("begin-at-zero") {
		o.BeginAtZero = f.beginAtZero
	}
	if err := s.SetChartOptions(o); err != nil {
		return err
	}
	if f.column != "" {
		return s.SelectColumn(f.column)
	}
	return nil
}

var (
	chFlags  dataFlags
	chChart  chartFlags
	chFormat string
	chOutput string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Aggregate a column of the filtered rows into a chart spec",
	Long: `Builds the chart description for one column over the rows that pass every
--filter. Categorical columns and pie charts show value counts; numeric
columns follow --agg. Output is a terminal rendering or the JSON spec.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(chFormat, "text", "json"); err != nil {
			return err
		}
		s, err := openSession(cmd.Context(), args[0], &chFlags)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := chChart.apply(cmd, s); err != nil {
			return err
		}
		spec, err := s.Chart("")
		if err != nil {
			return err
		}
		if chFormat == "json" {
			return emitJSON(cmd, chOutput, spec, "chart spec")
		}
		return emit(cmd, chOutput, spec.Text(), "chart")
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	addDataFlags(chartCmd, &chFlags)
	addChartFlags(chartCmd, &chChart)
	chartCmd.Flags().StringVar(&chFormat, "format", "text", "output format: text|json")
	chartCmd.Flags().StringVarP(&chOutput, "output", "o", "", "optional path to write the output")
}
