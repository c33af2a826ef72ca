package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// Mode selects how a numeric column is reduced for charting.
type Mode string

const (
	Sum     Mode = "sum"
	Average Mode = "average"
	Count   Mode = "count"
	Raw     Mode = "raw"
)

// ParseMode accepts the mode names plus a few aliases ("avg", "mean", "none").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum", "total":
		return Sum, nil
	case "average", "avg", "mean":
		return Average, nil
	case "count":
		return Count, nil
	case "raw", "none", "", "values":
		return Raw, nil
	default:
		return "", fmt.Errorf("unsupported aggregation: %s (use sum|average|count|raw)", s)
	}
}

// Aggregation is a chart-agnostic series.
type Aggregation struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// CategoryCount is one entry of a frequency table.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Frequencies counts values by their string form, keeping first-seen order.
func Frequencies(values []dataset.Value) []CategoryCount {
	idx := make(map[string]int)
	var out []CategoryCount
	for _, v := range values {
		key := v.String()
		if i, ok := idx[key]; ok {
			out[i].Count++
			continue
		}
		idx[key] = len(out)
		out = append(out, CategoryCount{Value: key, Count: 1})
	}
	return out
}

// FrequencyAggregation turns a frequency table into a series.
func FrequencyAggregation(counts []CategoryCount) Aggregation {
	agg := Aggregation{Labels: make([]string, len(counts)), Values: make([]float64, len(counts))}
	for i, c := range counts {
		agg.Labels[i] = c.Value
		agg.Values[i] = float64(c.Count)
	}
	return agg
}

// Aggregate reduces a column to a chart-ready series. Categorical columns
// always produce value counts; numeric columns follow mode. An empty column
// yields degenerate numbers (Average is NaN) rather than an error.
func Aggregate(values []dataset.Value, kind dataset.Kind, mode Mode) Aggregation {
	if kind != dataset.Numeric {
		return FrequencyAggregation(Frequencies(values))
	}
	nums, _ := dataset.Floats(values)
	switch mode {
	case Sum:
		return Aggregation{Labels: []string{"Total"}, Values: []float64{sum(nums)}}
	case Average:
		return Aggregation{Labels: []string{"Average"}, Values: []float64{mean(nums)}}
	case Count:
		return Aggregation{Labels: []string{"Count"}, Values: []float64{float64(len(nums))}}
	default:
		labels := make([]string, len(values))
		for i, v := range values {
			labels[i] = v.String()
		}
		return Aggregation{Labels: labels, Values: nums}
	}
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return sum(xs) / float64(len(xs))
}
