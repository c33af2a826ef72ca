package chart

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

func strs(ss ...string) []dataset.Value {
	out := make([]dataset.Value, len(ss))
	for i, s := range ss {
		out[i] = dataset.Str(s)
	}
	return out
}

func TestBuildNumericSum(t *testing.T) {
	spec, err := Build("Sales", strs("1", "2", "3"), Bar, analysis.Sum, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Sales - Sum", spec.Title)
	assert.Equal(t, []string{"Total"}, spec.Labels)
	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{6}, spec.Series[0].Data)
	assert.Equal(t, "Sales", spec.Series[0].Label)
	assert.Equal(t, []string{"rgba(75, 192, 192, 0.6)"}, spec.Series[0].BackgroundColor)
	assert.True(t, spec.Legend.Display)
	assert.Equal(t, "top", spec.Legend.Position)
}

func TestBuildCategoricalCounts(t *testing.T) {
	opt := DefaultOptions()
	opt.ColorScheme = "pastel"
	spec, err := Build("Region", strs("N", "S", "N"), Line, analysis.Sum, opt)
	require.NoError(t, err)
	assert.Equal(t, "Region - Count", spec.Title)
	assert.Equal(t, []string{"N", "S"}, spec.Labels)
	assert.Equal(t, []float64{2, 1}, spec.Series[0].Data)
	assert.Equal(t, "Count of Region", spec.Series[0].Label)
	assert.Equal(t, "rgba(255, 182, 193, 0.6)", spec.Series[0].BorderColor)
}

func TestBuildPieUsesFrequencies(t *testing.T) {
	spec, err := Build("n", strs("1", "1", "2"), Pie, analysis.Sum, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "n - Distribution", spec.Title)
	assert.Equal(t, []string{"1", "2"}, spec.Labels)
	assert.Equal(t, []float64{2, 1}, spec.Series[0].Data)
	assert.Equal(t, []string{"#FF6384", "#36A2EB"}, spec.Series[0].BackgroundColor)
}

func TestBuildCustomTitleAndHeatmapRejected(t *testing.T) {
	opt := DefaultOptions()
	opt.Title = "  Quarterly  "
	spec, err := Build("x", strs("1"), Scatter, analysis.Raw, opt)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly", spec.Title)

	_, err = Build("x", strs("1"), Heatmap, analysis.Raw, opt)
	assert.ErrorIs(t, err, ErrHeatmapType)
}

func TestTitle(t *testing.T) {
	cases := []struct {
		t       Type
		numeric bool
		mode    analysis.Mode
		want    string
	}{
		{Pie, true, analysis.Sum, "Distribution"},
		{Heatmap, false, analysis.Sum, "Heatmap"},
		{Bar, false, analysis.Average, "Count"},
		{Bar, true, analysis.Sum, "Sum"},
		{Line, true, analysis.Average, "Average"},
		{Line, true, analysis.Count, "Count"},
		{Scatter, true, analysis.Raw, "Values"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Title(c.t, c.numeric, c.mode), "%s/%v/%s", c.t, c.numeric, c.mode)
	}
}

func TestColorsCycle(t *testing.T) {
	c := Colors(12)
	assert.Len(t, c, 12)
	assert.Equal(t, "#FF6384", c[0])
	assert.Equal(t, "#FF9F40", c[5])
	assert.Equal(t, "#FF6384", c[6])
	assert.Equal(t, c[0], c[10])
	assert.Equal(t, Scheme("default"), Scheme("neon"))
	assert.Equal(t, "rgba(128, 128, 128, 0.6)", Scheme("Monochrome")[0])
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	opt := DefaultOptions()
	opt.LegendPosition = "middle"
	assert.Error(t, opt.Validate())
	opt = DefaultOptions()
	opt.ColorScheme = "neon"
	assert.Error(t, opt.Validate())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType(" PIE ")
	require.NoError(t, err)
	assert.Equal(t, Pie, typ)
	typ, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, Bar, typ)
	_, err = ParseType("radar")
	assert.Error(t, err)
}

func TestBuildHeatmap(t *testing.T) {
	g, err := analysis.Heatmap([]float64{0, 10, 10}, []float64{0, 5, 5})
	require.NoError(t, err)
	g.XColumn, g.YColumn = "a", "b"
	spec := BuildHeatmap(g, DefaultOptions())
	assert.Equal(t, "a - Heatmap", spec.Title)
	assert.False(t, spec.Legend.Display)
	require.NotNil(t, spec.Heatmap)
	assert.Len(t, spec.Heatmap.Cells, analysis.HeatmapBins*analysis.HeatmapBins)
	assert.Equal(t, 2, spec.Heatmap.Max)
	assert.Equal(t, "0.0-1.0", spec.Heatmap.XLabels[0])

	var top Cell
	for _, c := range spec.Heatmap.Cells {
		if c.Count == 2 {
			top = c
		}
	}
	assert.Equal(t, 9, top.X)
	assert.Equal(t, 9, top.Y)
	assert.Equal(t, "rgba(52, 152, 219, 1)", top.Color)
	assert.Equal(t, "rgba(52, 152, 219, 0.5)", spec.Heatmap.Cells[0].Color)
}

func TestSpecJSONEncodesNaNAsNull(t *testing.T) {
	spec, err := Build("v", nil, Bar, analysis.Average, DefaultOptions())
	require.NoError(t, err)
	require.True(t, math.IsNaN(spec.Series[0].Data[0]))
	b, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"data":[null]`)
	assert.Contains(t, string(b), `"datasets":[`)
}

func TestText(t *testing.T) {
	spec, err := Build("Region", strs("N", "S", "N"), Bar, analysis.Sum, DefaultOptions())
	require.NoError(t, err)
	out := spec.Text()
	assert.True(t, strings.HasPrefix(out, "[BAR] Region - Count\n"))
	assert.Contains(t, out, "N │"+strings.Repeat("█", barWidth)+" 2.00")
	assert.Contains(t, out, "S │"+strings.Repeat("█", barWidth/2)+" 1.00")

	g, err := analysis.Heatmap([]float64{0, 1}, []float64{0, 1})
	require.NoError(t, err)
	assert.Contains(t, BuildHeatmap(g, DefaultOptions()).Text(), "max cell: 1")
}
