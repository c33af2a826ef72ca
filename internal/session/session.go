package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/chart"
	"github.com/KaramelBytes/tabula-cli/internal/collab"
	"github.com/KaramelBytes/tabula-cli/internal/config"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
	"github.com/KaramelBytes/tabula-cli/internal/parser"
	"github.com/KaramelBytes/tabula-cli/internal/refresh"
)

var (
	ErrNoData      = errors.New("no data loaded")
	ErrNoColumn    = errors.New("please select a data column")
	ErrColumnRange = errors.New("column out of range")
)

// Settings is the chart selection.
type Settings struct {
	ChartType       chart.Type
	Column          int // -1 when no column is selected
	Mode            analysis.Mode
	Chart           chart.Options
	ForecastHorizon int
	ExportPath      string
}

// Refresh is what a sync tick recomputed.
type Refresh struct {
	Version     uint64
	Fingerprint uint64
	Changed     bool
	Chart       *chart.Spec
	Insights    []analysis.InsightReport
}

// Options configure a Session.
type Options struct {
	Settings     Settings
	Author       string
	SyncInterval time.Duration
	Parser       parser.Options
	// AutoSync starts the refresh ticker whenever data is imported.
	AutoSync bool
	// OnRefresh receives the result of every sync tick.
	OnRefresh func(Refresh)
	Logger    *slog.Logger
}

// DefaultOptions match the config defaults.
func DefaultOptions() Options {
	return Options{
		Settings: Settings{
			ChartType:       chart.Bar,
			Column:          -1,
			Mode:            analysis.Sum,
			Chart:           chart.DefaultOptions(),
			ForecastHorizon: analysis.DefaultHorizon,
		},
		Author:       collab.DefaultAuthor,
		SyncInterval: refresh.DefaultInterval,
		Parser:       parser.DefaultOptions(),
	}
}

// OptionsFromConfig maps the user config onto session options.
func OptionsFromConfig(c *config.Global) (Options, error) {
	opt := DefaultOptions()
	t, err := chart.ParseType(c.ChartType)
	if err != nil {
		return opt, err
	}
	m, err := analysis.ParseMode(c.Aggregation)
	if err != nil {
		return opt, err
	}
	opt.Settings.ChartType = t
	opt.Settings.Mode = m
	opt.Settings.Chart = chart.Options{
		ShowLegend:     c.ShowLegend,
		LegendPosition: c.LegendPosition,
		ShowGrid:       c.ShowGrid,
		BeginAtZero:    c.BeginAtZero,
		ColorScheme:    c.ColorScheme,
	}
	if c.ForecastHorizon > 0 {
		opt.Settings.ForecastHorizon = c.ForecastHorizon
	}
	opt.Settings.ExportPath = c.ExportPath
	opt.Author = c.Author
	if c.SyncIntervalSec > 0 {
		opt.SyncInterval = time.Duration(c.SyncIntervalSec) * time.Second
	}
	opt.Parser.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.Parser.SheetIndex = c.SheetIndex
	}
	if c.Delimiter != "" {
		d, err := ParseDelimiter(c.Delimiter)
		if err != nil {
			return opt, err
		}
		opt.Parser.Delimiter = d
	}
	return opt, nil
}

// ParseDelimiter accepts a single character or the escapes `\t` and "tab".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

// Session is one exploration: the loaded dataset, its filters, the chart
// selection and the collaboration board. All methods are safe for
// concurrent use.
type Session struct {
	store *dataset.Store
	board *collab.Board
	log   *slog.Logger

	mu       sync.Mutex
	filters  analysis.FilterSet
	settings Settings
	source   string

	parserOpt parser.Options
	autoSync  bool
	onRefresh func(Refresh)
	ticker    *refresh.Ticker
	lastPrint uint64
	lastSeen  Settings
}

// New returns an empty session.
func New(opt Options) *Session {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	if opt.Settings.ForecastHorizon <= 0 {
		opt.Settings.ForecastHorizon = analysis.DefaultHorizon
	}
	s := &Session{
		store:     dataset.NewStore(),
		board:     collab.NewBoard(opt.Author),
		log:       log.With("component", "session"),
		filters:   analysis.FilterSet{},
		settings:  opt.Settings,
		parserOpt: opt.Parser,
		autoSync:  opt.AutoSync,
		onRefresh: opt.OnRefresh,
	}
	s.ticker = refresh.New(opt.SyncInterval, s.tick, log)
	return s
}

// Load parses a file with the configured importer options and imports it.
func (s *Session) Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	ds, err := parser.ParseFile(path, s.parserOpt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	s.Import(ctx, filepath.Base(path), ds)
	return ds, nil
}

// Import installs a dataset, clearing filters and the column selection
// since both refer to the previous headers. With AutoSync the refresh
// ticker is (re)started.
func (s *Session) Import(ctx context.Context, name string, ds *dataset.Dataset) {
	s.mu.Lock()
	s.filters = analysis.FilterSet{}
	s.settings.Column = -1
	s.source = name
	s.store.Replace(ds)
	s.mu.Unlock()
	s.log.Info("dataset imported", "source", name, "rows", ds.Len(), "columns", ds.Width())
	if s.autoSync {
		s.StartSync(ctx)
	}
}

// Source names the loaded dataset.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Snapshot returns the current dataset or ErrNoData.
func (s *Session) Snapshot() (*dataset.Dataset, error) {
	ds, ok := s.store.Snapshot()
	if !ok {
		return nil, ErrNoData
	}
	return ds, nil
}

// Version counts dataset installs and filter recomputations.
func (s *Session) Version() uint64 { return s.store.Version() }

// Board is the collaboration board.
func (s *Session) Board() *collab.Board { return s.board }

// ResolveColumn maps a column reference to an index. An exact header match
// wins, then a zero-based index, then a case-insensitive header match.
func (s *Session) ResolveColumn(ref string) (int, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return -1, err
	}
	return resolve(ds, ref)
}

func resolve(ds *dataset.Dataset, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, ErrNoColumn
	}
	if i := ds.ColumnIndex(ref); i >= 0 {
		return i, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 || n >= ds.Width() {
			return -1, fmt.Errorf("%w: %d (have %d columns)", ErrColumnRange, n, ds.Width())
		}
		return n, nil
	}
	for i, h := range ds.Headers {
		if strings.EqualFold(h, ref) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: unknown column %q", ErrNoColumn, ref)
}

// SelectColumn sets the chart column.
func (s *Session) SelectColumn(ref string) error {
	i, err := s.ResolveColumn(ref)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.settings.Column = i
	s.mu.Unlock()
	return nil
}

// Settings returns a copy of the chart selection.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetChartType changes the chart type.
func (s *Session) SetChartType(t chart.Type) {
	s.mu.Lock()
	s.settings.ChartType = t
	s.mu.Unlock()
}

// SetMode changes the numeric aggregation.
func (s *Session) SetMode(m analysis.Mode) {
	s.mu.Lock()
	s.settings.Mode = m
	s.mu.Unlock()
}

// SetChartOptions replaces the display options after validating them.
func (s *Session) SetChartOptions(o chart.Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.settings.Chart = o
	s.mu.Unlock()
	return nil
}

// AddFilter validates f, replaces any filter on the same column and
// recomputes the active rows from all rows.
func (s *Session) AddFilter(f analysis.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.store.Snapshot()
	if !ok {
		return ErrNoData
	}
	if f.Column >= ds.Width() {
		return fmt.Errorf("%w: %d (have %d columns)", ErrColumnRange, f.Column, ds.Width())
	}
	s.filters.Set(f)
	s.recompute()
	s.log.Debug("filter applied", "filter", f.Describe(ds.Headers))
	return nil
}

// RemoveFilter drops the filter on a column and reports whether one existed.
func (s *Session) RemoveFilter(col int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filters.Remove(col) {
		return false
	}
	s.recompute()
	return true
}

// ClearFilters removes every filter.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = analysis.FilterSet{}
	s.recompute()
}

// Filters returns the active filters ordered by column.
func (s *Session) Filters() []analysis.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Sorted()
}

// recompute must be called with s.mu held.
func (s *Session) recompute() {
	set := make(analysis.FilterSet, len(s.filters))
	for k, v := range s.filters {
		set[k] = v
	}
	s.store.Recompute(func(rows [][]dataset.Value) [][]dataset.Value {
		return analysis.ApplyFilters(rows, set)
	})
}

// FilterDescriptions renders the active filters with column names.
func (s *Session) FilterDescriptions() []string {
	ds, ok := s.store.Snapshot()
	if !ok {
		return nil
	}
	fs := s.Filters()
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Describe(ds.Headers)
	}
	return out
}

// Chart builds the chart for ref (or the selected column when ref is empty)
// over the active rows. Heatmaps are built over all rows with ref as the x
// axis.
func (s *Session) Chart(ref string) (*chart.Spec, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	st := s.Settings()
	return buildChart(ds, st, ref)
}

func buildChart(ds *dataset.Dataset, st Settings, ref string) (*chart.Spec, error) {
	col := st.Column
	if ref != "" {
		i, err := resolve(ds, ref)
		if err != nil {
			return nil, err
		}
		col = i
	}
	if col < 0 {
		return nil, ErrNoColumn
	}
	if col >= ds.Width() {
		return nil, fmt.Errorf("%w: %d", ErrColumnRange, col)
	}
	if st.ChartType == chart.Heatmap {
		g, err := analysis.DatasetHeatmap(ds, col, -1)
		if err != nil {
			return nil, err
		}
		return chart.BuildHeatmap(g, st.Chart), nil
	}
	return chart.Build(ds.Headers[col], ds.ActiveColumn(col), st.ChartType, st.Mode, st.Chart)
}

// Heatmap bins two numeric columns over all rows. An empty y picks the
// first other numeric column.
func (s *Session) Heatmap(x, y string) (*chart.Spec, *analysis.HeatGrid, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	xi, err := resolve(ds, x)
	if err != nil {
		return nil, nil, err
	}
	yi := -1
	if strings.TrimSpace(y) != "" {
		if yi, err = resolve(ds, y); err != nil {
			return nil, nil, err
		}
	}
	g, err := analysis.DatasetHeatmap(ds, xi, yi)
	if err != nil {
		return nil, nil, err
	}
	return chart.BuildHeatmap(g, s.Settings().Chart), g, nil
}

// Insights analyzes every column of the unfiltered rows.
func (s *Session) Insights() ([]analysis.InsightReport, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return analysis.Analyze(ds), nil
}

// Forecast fits a trend to a numeric column of the unfiltered rows. ref
// empty means the selected column; horizon <= 0 means the configured one.
func (s *Session) Forecast(ref string, horizon int) (string, analysis.ForecastResult, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return "", analysis.ForecastResult{}, err
	}
	st := s.Settings()
	col := st.Column
	if ref != "" {
		if col, err = resolve(ds, ref); err != nil {
			return "", analysis.ForecastResult{}, err
		}
	}
	if col < 0 {
		return "", analysis.ForecastResult{}, ErrNoColumn
	}
	if horizon <= 0 {
		horizon = st.ForecastHorizon
	}
	r, err := analysis.ForecastColumn(ds, col, horizon)
	if err != nil {
		return "", analysis.ForecastResult{}, err
	}
	return ds.Headers[col], r, nil
}

// StartSync starts (or restarts) the refresh ticker.
func (s *Session) StartSync(ctx context.Context) { s.ticker.Start(ctx) }

// StopSync stops the refresh ticker.
func (s *Session) StopSync() { s.ticker.Stop() }

// Syncing reports whether the refresh ticker is running.
func (s *Session) Syncing() bool { return s.ticker.Running() }

// SyncInterval is the refresh period.
func (s *Session) SyncInterval() time.Duration { return s.ticker.Interval() }

// Close stops background work.
func (s *Session) Close() { s.ticker.Stop() }

// Refresh recomputes the chart for the selected column and the insights
// from the current snapshot. Changed reports whether the dataset, its
// active view or the chart settings differ from the previous refresh.
func (s *Session) Refresh() (Refresh, error) { return s.refresh(context.Background()) }

// refresh stops early with ctx's error when the ticker is cancelled mid-pass;
// the change key is then left untouched.
func (s *Session) refresh(ctx context.Context) (Refresh, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return Refresh{}, err
	}
	st := s.Settings()
	insights, err := analysis.AnalyzeContext(ctx, ds)
	if err != nil {
		return Refresh{}, err
	}
	r := Refresh{
		Version:     s.store.Version(),
		Fingerprint: dataset.Fingerprint(ds),
		Insights:    insights,
	}
	if st.Column >= 0 {
		spec, err := buildChart(ds, st, "")
		if err != nil {
			s.log.Debug("refresh chart skipped", "error", err)
		}
		r.Chart = spec
	}
	s.mu.Lock()
	r.Changed = r.Fingerprint != s.lastPrint || st != s.lastSeen
	s.lastPrint = r.Fingerprint
	s.lastSeen = st
	s.mu.Unlock()
	return r, nil
}

func (s *Session) tick(ctx context.Context) {
	r, err := s.refresh(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Debug("refresh tick skipped", "error", err)
		}
		return
	}
	s.log.Debug("refresh tick", "version", r.Version, "fingerprint", r.Fingerprint, "changed", r.Changed)
	if s.onRefresh != nil {
		s.onRefresh(r)
	}
}
