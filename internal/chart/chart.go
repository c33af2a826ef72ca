package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// Type is the renderer chart type.
type Type string

const (
	Bar     Type = "bar"
	Line    Type = "line"
	Scatter Type = "scatter"
	Pie     Type = "pie"
	Heatmap Type = "heatmap"
)

// ErrHeatmapType is returned by Build for heatmaps, which come from BuildHeatmap.
var ErrHeatmapType = errors.New("heatmap charts are built from an occurrence grid")

// ParseType validates a chart type name.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case Bar, Line, Scatter, Pie, Heatmap:
		return t, nil
	case "":
		return Bar, nil
	default:
		return "", fmt.Errorf("unsupported chart type: %s (use bar|line|scatter|pie|heatmap)", s)
	}
}

// Options are the display settings carried into every spec.
type Options struct {
	Title          string `json:"title,omitempty"`
	ShowLegend     bool   `json:"showLegend"`
	LegendPosition string `json:"legendPosition" validate:"omitempty,oneof=top bottom left right"`
	ShowGrid       bool   `json:"showGrid"`
	BeginAtZero    bool   `json:"beginAtZero"`
	ColorScheme    string `json:"colorScheme" validate:"omitempty,oneof=default pastel dark monochrome"`
}

// DefaultOptions mirrors the renderer defaults.
func DefaultOptions() Options {
	return Options{ShowLegend: true, LegendPosition: "top", ShowGrid: true, BeginAtZero: true, ColorScheme: "default"}
}

var validate = validator.New()

// Validate checks legend position and color scheme names.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid chart options: %w", err)
	}
	return nil
}

// Legend controls legend placement.
type Legend struct {
	Display  bool   `json:"display"`
	Position string `json:"position"`
}

// Series is one dataset of a chart.
type Series struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor,omitempty"`
}

func (s Series) MarshalJSON() ([]byte, error) {
	type alias Series
	return json.Marshal(struct {
		alias
		Data []analysis.JSONFloat `json:"data"`
	}{alias(s), analysis.JSONFloats(s.Data)})
}

// Cell is one heatmap grid cell with its precomputed fill color.
type Cell struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Count int    `json:"v"`
	Color string `json:"color"`
}

// HeatmapData carries axis labels and cells of a heatmap spec.
type HeatmapData struct {
	XColumn string   `json:"xColumn"`
	YColumn string   `json:"yColumn"`
	XLabels []string `json:"xLabels"`
	YLabels []string `json:"yLabels"`
	Cells   []Cell   `json:"cells"`
	Max     int      `json:"max"`
}

// Spec is a declarative chart description. It holds no callbacks.
type Spec struct {
	Type        Type         `json:"type"`
	Title       string       `json:"title"`
	Column      string       `json:"column"`
	Labels      []string     `json:"labels"`
	Series      []Series     `json:"datasets"`
	Legend      Legend       `json:"legend"`
	Grid        bool         `json:"grid"`
	BeginAtZero bool         `json:"beginAtZero"`
	Heatmap     *HeatmapData `json:"heatmap,omitempty"`
}

// Build aggregates one column and describes it as a chart. Pie charts always
// use frequency counts; other types follow the column kind and mode.
func Build(column string, values []dataset.Value, t Type, mode analysis.Mode, opt Options) (*Spec, error) {
	if t == Heatmap {
		return nil, ErrHeatmapType
	}
	kind := dataset.Classify(values)
	spec := newSpec(t, column, opt)
	spec.Title = title(opt, column, Title(t, kind == dataset.Numeric, mode))

	if t == Pie {
		agg := analysis.FrequencyAggregation(analysis.Frequencies(values))
		spec.Labels = agg.Labels
		spec.Series = []Series{{Data: agg.Values, BackgroundColor: Colors(len(agg.Values))}}
		return spec, nil
	}

	agg := analysis.Aggregate(values, kind, mode)
	label := column
	if kind == dataset.Categorical {
		label = "Count of " + column
	}
	spec.Labels = agg.Labels
	spec.Series = []Series{{Label: label, Data: agg.Values}}
	applyScheme(spec.Series, Scheme(opt.ColorScheme))
	return spec, nil
}

// BuildHeatmap describes an occurrence grid. Cell opacity is the cell's
// intensity relative to the busiest cell.
func BuildHeatmap(g *analysis.HeatGrid, opt Options) *Spec {
	spec := newSpec(Heatmap, g.XColumn, opt)
	spec.Title = title(opt, g.XColumn, Title(Heatmap, true, ""))
	spec.Legend.Display = false
	yl := g.YLabels()
	spec.Labels = yl
	hd := &HeatmapData{
		XColumn: g.XColumn,
		YColumn: g.YColumn,
		XLabels: g.XLabels(),
		YLabels: yl,
		Max:     g.Max,
	}
	for y, row := range g.Counts {
		for x, c := range row {
			hd.Cells = append(hd.Cells, Cell{X: x, Y: y, Count: c, Color: cellColor(g.Intensity(y, x))})
		}
	}
	spec.Heatmap = hd
	return spec
}

// Title is the default title suffix for a chart type and aggregation.
func Title(t Type, numeric bool, mode analysis.Mode) string {
	switch {
	case t == Pie:
		return "Distribution"
	case t == Heatmap:
		return "Heatmap"
	case !numeric:
		return "Count"
	}
	switch mode {
	case analysis.Sum:
		return "Sum"
	case analysis.Average:
		return "Average"
	case analysis.Count:
		return "Count"
	default:
		return "Values"
	}
}

func newSpec(t Type, column string, opt Options) *Spec {
	pos := opt.LegendPosition
	if pos == "" {
		pos = "top"
	}
	return &Spec{
		Type:        t,
		Column:      column,
		Legend:      Legend{Display: opt.ShowLegend, Position: pos},
		Grid:        opt.ShowGrid,
		BeginAtZero: opt.BeginAtZero,
	}
}

func title(opt Options, column, suffix string) string {
	if t := strings.TrimSpace(opt.Title); t != "" {
		return t
	}
	return column + " - " + suffix
}

func cellColor(intensity float64) string {
	return "rgba(52, 152, 219, " + strconv.FormatFloat(intensity, 'f', -1, 64) + ")"
}
