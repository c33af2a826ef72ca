package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/chart"
	"github.com/KaramelBytes/tabula-cli/internal/config"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
	"github.com/KaramelBytes/tabula-cli/internal/logging"
	"github.com/KaramelBytes/tabula-cli/internal/sample"
)

func newSession(t *testing.T, mod func(*Options)) *Session {
	t.Helper()
	opt := DefaultOptions()
	opt.Logger = logging.Discard()
	if mod != nil {
		mod(&opt)
	}
	s := New(opt)
	t.Cleanup(s.Close)
	return s
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const salesCSV = "region,units,price\nNorth,10,2.5\nSouth,20,3\nNorth,30,4\nEast,40,x\n"

func TestEmptySessionErrors(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Chart("units")
	assert.ErrorIs(t, err, ErrNoData)
	_, err = s.Insights()
	assert.ErrorIs(t, err, ErrNoData)
	_, _, err = s.Forecast("units", 0)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = s.Export(filepath.Join(t.TempDir(), "r.json"))
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, s.AddFilter(analysis.Filter{Column: 0, Kind: analysis.Equals, Value: "x"}), ErrNoData)
	assert.False(t, s.RemoveFilter(0))
}

func TestLoadAndResolveColumns(t *testing.T) {
	s := newSession(t, nil)
	ds, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, "sales.csv", s.Source())

	i, err := s.ResolveColumn("units")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	i, err = s.ResolveColumn("2")
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	i, err = s.ResolveColumn("REGION")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = s.ResolveColumn("7")
	assert.ErrorIs(t, err, ErrColumnRange)
	_, err = s.ResolveColumn("missing")
	assert.ErrorIs(t, err, ErrNoColumn)

	_, err = s.Chart("")
	assert.ErrorIs(t, err, ErrNoColumn)
}

func TestLoadRejectsBadFileWithoutStateChange(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	v := s.Version()

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a":1}`), 0o644))
	_, err = s.Load(context.Background(), bad)
	assert.ErrorIs(t, err, dataset.ErrInvalidFormat)
	assert.Equal(t, v, s.Version())
	assert.Equal(t, "sales.csv", s.Source())
}

func TestFiltersDriveChartButNotInsights(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	require.NoError(t, s.SelectColumn("units"))

	spec, err := s.Chart("")
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, spec.Series[0].Data)

	require.NoError(t, s.AddFilter(analysis.Filter{Column: 0, Kind: analysis.Equals, Value: "North"}))
	spec, err = s.Chart("")
	require.NoError(t, err)
	assert.Equal(t, []float64{40}, spec.Series[0].Data)
	assert.Equal(t, []string{"region: equals North"}, s.FilterDescriptions())

	// Replacing the filter on the same column.
	require.NoError(t, s.AddFilter(analysis.Filter{Column: 0, Kind: analysis.Contains, Value: "TH"}))
	assert.Len(t, s.Filters(), 1)
	spec, err = s.Chart("")
	require.NoError(t, err)
	assert.Equal(t, []float64{60}, spec.Series[0].Data)

	reports, err := s.Insights()
	require.NoError(t, err)
	require.NotNil(t, reports[1].Numeric)
	assert.Equal(t, 4, reports[1].Numeric.Count)

	assert.True(t, s.RemoveFilter(0))
	assert.False(t, s.RemoveFilter(0))
	ds, err := s.Snapshot()
	require.NoError(t, err)
	assert.Len(t, ds.Active, 4)
}

func TestAddFilterValidation(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	v := s.Version()

	assert.ErrorIs(t, s.AddFilter(analysis.Filter{Column: 9, Kind: analysis.Equals, Value: "x"}), ErrColumnRange)
	assert.Error(t, s.AddFilter(analysis.Filter{Column: 0, Kind: analysis.Equals}))
	assert.Equal(t, v, s.Version())
	assert.Empty(t, s.Filters())
}

func TestImportResetsFiltersAndSelection(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	require.NoError(t, s.SelectColumn("units"))
	require.NoError(t, s.AddFilter(analysis.Filter{Column: 1, Kind: analysis.GreaterThan, Value: "15"}))

	require.NoError(t, s.LoadSample(context.Background(), sample.Options{Rows: 6, Seed: 1}))
	assert.Empty(t, s.Filters())
	assert.Equal(t, -1, s.Settings().Column)
	assert.Equal(t, "sample", s.Source())
}

func TestChartTypesAndHeatmap(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)

	s.SetChartType(chart.Pie)
	spec, err := s.Chart("region")
	require.NoError(t, err)
	assert.Equal(t, "region - Distribution", spec.Title)
	assert.Equal(t, []string{"North", "South", "East"}, spec.Labels)

	// price holds "x", so units is the only numeric column.
	s.SetChartType(chart.Heatmap)
	_, err = s.Chart("units")
	assert.ErrorIs(t, err, analysis.ErrHeatmapUnavailable)
	_, _, err = s.Heatmap("units", "")
	assert.ErrorIs(t, err, analysis.ErrHeatmapUnavailable)

	require.NoError(t, s.LoadSample(context.Background(), sample.Options{Rows: 40, Seed: 9}))
	spec, g, err := s.Heatmap("value", "")
	require.NoError(t, err)
	assert.Equal(t, "metric", g.YColumn)
	assert.Equal(t, 40, g.Total())
	assert.Equal(t, chart.Heatmap, spec.Type)
}

func TestSetChartOptionsValidates(t *testing.T) {
	s := newSession(t, nil)
	o := chart.DefaultOptions()
	o.LegendPosition = "center"
	assert.Error(t, s.SetChartOptions(o))
	o.LegendPosition = "bottom"
	require.NoError(t, s.SetChartOptions(o))
	assert.Equal(t, "bottom", s.Settings().Chart.LegendPosition)
}

func TestForecast(t *testing.T) {
	s := newSession(t, func(o *Options) { o.Settings.ForecastHorizon = 3 })
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)

	name, r, err := s.Forecast("units", 0)
	require.NoError(t, err)
	assert.Equal(t, "units", name)
	require.Len(t, r.Projections, 3)
	assert.Equal(t, 5, r.Projections[0].Period)
	assert.InDelta(t, 50, r.Projections[0].Value, 1e-9)

	_, _, err = s.Forecast("region", 0)
	assert.ErrorIs(t, err, analysis.ErrNotNumeric)
	_, _, err = s.Forecast("", 0)
	assert.ErrorIs(t, err, ErrNoColumn)
}

func TestExport(t *testing.T) {
	s := newSession(t, func(o *Options) { o.Author = "Ana" })
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	require.NoError(t, s.SelectColumn("units"))
	require.NoError(t, s.AddFilter(analysis.Filter{Column: 1, Kind: analysis.Between, Value: "10, 20"}))
	require.NoError(t, s.Board().AddCollaborator("a@b.c"))
	_, err = s.Board().AddComment("check east")
	require.NoError(t, err)

	path, err := s.Export(filepath.Join(t.TempDir(), "report.json"))
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, map[string]any{"type": "bar", "column": "units", "aggregation": "sum"}, doc["chart"])
	assert.Equal(t, []any{"units: between 10, 20"}, doc["filters"])
	assert.Equal(t, []any{"a@b.c"}, doc["collaborators"])
	data := doc["data"].(map[string]any)
	assert.Len(t, data["filteredRows"], 2)
	assert.Len(t, data["rows"], 4)
}

func TestRefreshDetectsChanges(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	require.NoError(t, s.SelectColumn("region"))

	r, err := s.Refresh()
	require.NoError(t, err)
	assert.True(t, r.Changed)
	require.NotNil(t, r.Chart)
	assert.Len(t, r.Insights, 3)

	r, err = s.Refresh()
	require.NoError(t, err)
	assert.False(t, r.Changed)

	require.NoError(t, s.AddFilter(analysis.Filter{Column: 0, Kind: analysis.Equals, Value: "East"}))
	r, err = s.Refresh()
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, []string{"East"}, r.Chart.Labels)
}

func TestRefreshDetectsSwappedFilterOfEqualSize(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	require.NoError(t, s.SelectColumn("units"))

	require.NoError(t, s.AddFilter(analysis.Filter{Column: 0, Kind: analysis.Equals, Value: "South"}))
	_, err = s.Refresh()
	require.NoError(t, err)

	require.NoError(t, s.AddFilter(analysis.Filter{Column: 0, Kind: analysis.Equals, Value: "East"}))
	r, err := s.Refresh()
	require.NoError(t, err)
	assert.True(t, r.Changed)

	r, err = s.Refresh()
	require.NoError(t, err)
	assert.False(t, r.Changed)
}

func TestRefreshDetectsSettingsChanges(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	require.NoError(t, s.SelectColumn("units"))
	_, err = s.Refresh()
	require.NoError(t, err)

	s.SetMode(analysis.Average)
	r, err := s.Refresh()
	require.NoError(t, err)
	assert.True(t, r.Changed)

	s.SetChartType(chart.Pie)
	r, err = s.Refresh()
	require.NoError(t, err)
	assert.True(t, r.Changed)
	require.NotNil(t, r.Chart)
	assert.Equal(t, chart.Pie, r.Chart.Type)

	require.NoError(t, s.SelectColumn("region"))
	r, err = s.Refresh()
	require.NoError(t, err)
	assert.True(t, r.Changed)
}

func TestAutoSyncStartsOnImport(t *testing.T) {
	var ticks atomic.Int64
	s := newSession(t, func(o *Options) {
		o.AutoSync = true
		o.SyncInterval = 5 * time.Millisecond
		o.OnRefresh = func(Refresh) { ticks.Add(1) }
	})
	assert.False(t, s.Syncing())
	_, err := s.Load(context.Background(), writeCSV(t, salesCSV))
	require.NoError(t, err)
	assert.True(t, s.Syncing())
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)

	s.StopSync()
	assert.False(t, s.Syncing())
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := config.Load("")
	require.NoError(t, err)
	c.ChartType = "line"
	c.Aggregation = "average"
	c.Delimiter = `\t`
	c.SyncIntervalSec = 2
	c.Author = "Ana"

	opt, err := OptionsFromConfig(c)
	require.NoError(t, err)
	assert.Equal(t, chart.Line, opt.Settings.ChartType)
	assert.Equal(t, analysis.Average, opt.Settings.Mode)
	assert.Equal(t, '\t', opt.Parser.Delimiter)
	assert.Equal(t, 2*time.Second, opt.SyncInterval)
	assert.Equal(t, "Ana", opt.Author)
	assert.Equal(t, -1, opt.Settings.Column)

	c.Delimiter = ";;"
	_, err = OptionsFromConfig(c)
	assert.Error(t, err)
}
