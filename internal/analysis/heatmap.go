package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// HeatmapBins is the number of equal-width bins per axis.
const HeatmapBins = 10

var (
	// ErrHeatmapUnavailable is returned when fewer than two numeric columns exist.
	ErrHeatmapUnavailable = errors.New("need at least two numeric columns for heatmap")
	// ErrNotNumeric is returned when an operation needs a numeric column.
	ErrNotNumeric = errors.New("column is not numeric")
)

// HeatGrid is a joint occurrence grid. Counts is indexed [yBin][xBin].
type HeatGrid struct {
	XColumn string    `json:"xColumn"`
	YColumn string    `json:"yColumn"`
	XEdges  []float64 `json:"xEdges"`
	YEdges  []float64 `json:"yEdges"`
	Counts  [][]int   `json:"counts"`
	Max     int       `json:"max"`
}

// Bins returns n+1 equal-width edges spanning [min, max]. The last edge is
// exactly max so the maximum always lands in the final bin.
func Bins(values []float64, n int) []float64 {
	edges := make([]float64, n+1)
	if len(values) == 0 || n <= 0 {
		return edges
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	step := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + step*float64(i)
	}
	edges[n] = hi
	return edges
}

// FindBin returns i such that edges[i] <= v < edges[i+1], the last bin for
// the upper boundary, or -1 when v is outside the edges.
func FindBin(v float64, edges []float64) int {
	last := len(edges) - 1
	if last < 1 {
		return -1
	}
	if v == edges[last] {
		return last - 1
	}
	for i := 0; i < last; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	return -1
}

// Heatmap bins two equally long numeric series into a HeatmapBins×HeatmapBins grid.
func Heatmap(xs, ys []float64) (*HeatGrid, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("heatmap: series length mismatch (%d vs %d)", len(xs), len(ys))
	}
	g := &HeatGrid{
		XEdges: Bins(xs, HeatmapBins),
		YEdges: Bins(ys, HeatmapBins),
		Counts: make([][]int, HeatmapBins),
	}
	for i := range g.Counts {
		g.Counts[i] = make([]int, HeatmapBins)
	}
	for i := range xs {
		xb := FindBin(xs[i], g.XEdges)
		yb := FindBin(ys[i], g.YEdges)
		if xb < 0 || yb < 0 {
			continue
		}
		g.Counts[yb][xb]++
		if g.Counts[yb][xb] > g.Max {
			g.Max = g.Counts[yb][xb]
		}
	}
	return g, nil
}

// Total is the sum of all cells.
func (g *HeatGrid) Total() int {
	var n int
	for _, row := range g.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Intensity is count/max for a cell, 0 for an empty grid.
func (g *HeatGrid) Intensity(yBin, xBin int) float64 {
	if g.Max == 0 {
		return 0
	}
	return float64(g.Counts[yBin][xBin]) / float64(g.Max)
}

// XLabels renders bin ranges as "lo-hi" with one decimal.
func (g *HeatGrid) XLabels() []string { return edgeLabels(g.XEdges) }

// YLabels renders bin ranges as "lo-hi" with one decimal.
func (g *HeatGrid) YLabels() []string { return edgeLabels(g.YEdges) }

func edgeLabels(edges []float64) []string {
	if len(edges) < 2 {
		return nil
	}
	out := make([]string, len(edges)-1)
	for i := range out {
		out[i] = fmt.Sprintf("%.1f-%.1f", edges[i], edges[i+1])
	}
	return out
}

// HeatmapColumns resolves the axis pair over the unfiltered rows. x must be
// numeric; y < 0 picks the first other numeric column.
func HeatmapColumns(ds *dataset.Dataset, x, y int) (int, int, error) {
	numeric := ds.NumericColumns()
	if len(numeric) < 2 {
		return 0, 0, ErrHeatmapUnavailable
	}
	if !contains(numeric, x) {
		return 0, 0, fmt.Errorf("heatmap x axis %q: %w", header(ds, x), ErrNotNumeric)
	}
	if y >= 0 {
		if y == x {
			return 0, 0, fmt.Errorf("heatmap axes must differ (both %q)", header(ds, x))
		}
		if !contains(numeric, y) {
			return 0, 0, fmt.Errorf("heatmap y axis %q: %w", header(ds, y), ErrNotNumeric)
		}
		return x, y, nil
	}
	for _, idx := range numeric {
		if idx != x {
			return x, idx, nil
		}
	}
	return 0, 0, ErrHeatmapUnavailable
}

// DatasetHeatmap bins columns x and y of all rows.
func DatasetHeatmap(ds *dataset.Dataset, x, y int) (*HeatGrid, error) {
	x, y, err := HeatmapColumns(ds, x, y)
	if err != nil {
		return nil, err
	}
	xs, _ := ds.Floats(x)
	ys, _ := ds.Floats(y)
	g, err := Heatmap(xs, ys)
	if err != nil {
		return nil, err
	}
	g.XColumn = ds.Headers[x]
	g.YColumn = ds.Headers[y]
	return g, nil
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func header(ds *dataset.Dataset, i int) string {
	if i >= 0 && i < len(ds.Headers) {
		return ds.Headers[i]
	}
	return fmt.Sprintf("#%d", i)
}
