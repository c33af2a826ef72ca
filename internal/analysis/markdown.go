package analysis

import (
	"fmt"
	"strings"
)

// InsightsMarkdown renders the per-column cards.
func InsightsMarkdown(name string, rows int, reports []InsightReport) string {
	var b strings.Builder
	b.WriteString("[DATASET INSIGHTS]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(reports)))
	for _, r := range reports {
		b.WriteString("\n")
		b.WriteString(r.Markdown())
	}
	return b.String()
}

// Markdown renders a single card: the headline statistics, then the lines.
func (r InsightReport) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("## %s (%s)\n", safeName(r.Header), r.Kind))
	switch {
	case r.Numeric != nil:
		st := r.Numeric
		b.WriteString(fmt.Sprintf("- Average: %s\n", FormatFloat(st.Mean, 2)))
		b.WriteString(fmt.Sprintf("- Range: %s - %s\n", FormatFloat(st.Min, 2), FormatFloat(st.Max, 2)))
		b.WriteString(fmt.Sprintf("- Standard Deviation: %s\n", FormatFloat(st.StdDev, 2)))
	case r.Categorical != nil:
		st := r.Categorical
		b.WriteString(fmt.Sprintf("- Total Unique Values: %d\n", st.Unique))
		if st.Unique > 0 {
			b.WriteString(fmt.Sprintf("- Most Common: %s (%d times)\n", safeVal(st.MostCommon.Value), st.MostCommon.Count))
		}
	}
	for _, line := range r.Lines() {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// InsightText joins every card's lines as plain text, one card per paragraph.
func InsightText(reports []InsightReport) string {
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, r.Header+"\n"+strings.Join(r.Lines(), "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// ForecastMarkdown renders the fit summary and the projection table.
func ForecastMarkdown(column string, r ForecastResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[FORECAST] %s\n", safeName(column)))
	if !r.Sufficient() {
		b.WriteString("Insufficient data: at least two points are needed for a trend line.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Trend: %s\n", r.Direction()))
	b.WriteString(fmt.Sprintf("Slope: %s, Intercept: %s\n", FormatFloat(r.Slope, 4), FormatFloat(r.Intercept, 4)))
	if r.RSquaredApplicable() {
		b.WriteString(fmt.Sprintf("R-squared: %s%%\n", FormatFloat(r.RSquared*100, 2)))
	} else {
		b.WriteString("R-squared: N/A (constant series)\n")
	}
	if len(r.Projections) == 0 {
		return b.String()
	}
	b.WriteString("\n| Period | Predicted Value |\n| --- | --- |\n")
	for _, p := range r.Projections {
		b.WriteString(fmt.Sprintf("| %d | %s |\n", p.Period, FormatFloat(p.Value, 2)))
	}
	return b.String()
}

// HeatmapMarkdown renders the occurrence grid with y bins as rows.
func HeatmapMarkdown(g *HeatGrid) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[HEATMAP] %s vs %s\n\n", safeName(g.XColumn), safeName(g.YColumn)))
	b.WriteString("| " + safeName(g.YColumn) + " \\ " + safeName(g.XColumn))
	for _, l := range g.XLabels() {
		b.WriteString(" | " + l)
	}
	b.WriteString(" |\n|---")
	for range g.XLabels() {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for i, l := range g.YLabels() {
		b.WriteString("| " + l)
		for _, c := range g.Counts[i] {
			b.WriteString(fmt.Sprintf(" | %d", c))
		}
		b.WriteString(" |\n")
	}
	b.WriteString(fmt.Sprintf("\nMax cell count: %d, total: %d\n", g.Max, g.Total()))
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
