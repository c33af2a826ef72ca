package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// NumericStats summarizes a numeric column. Trend is last minus first.
type NumericStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
	Trend  float64 `json:"trend"`
}

// CategoricalStats summarizes a categorical column.
type CategoricalStats struct {
	Total      int             `json:"total"`
	Unique     int             `json:"unique"`
	MostCommon CategoryCount   `json:"mostCommon"`
	Counts     []CategoryCount `json:"counts"`
}

// Share is the most common value's fraction of all values, in percent.
func (c CategoricalStats) Share() float64 {
	if c.Total == 0 {
		return math.NaN()
	}
	return float64(c.MostCommon.Count) / float64(c.Total) * 100
}

// ComputeNumeric returns NaN fields for an empty series.
func ComputeNumeric(xs []float64) NumericStats {
	st := NumericStats{Count: len(xs), Mean: math.NaN(), Min: math.NaN(), Max: math.NaN(), StdDev: math.NaN(), Trend: math.NaN()}
	if len(xs) == 0 {
		return st
	}
	st.Min, st.Max = math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		st.Min = math.Min(st.Min, x)
		st.Max = math.Max(st.Max, x)
	}
	st.Mean = mean(xs)
	st.StdDev = StdDev(xs)
	st.Trend = xs[len(xs)-1] - xs[0]
	return st
}

// StdDev is the population standard deviation (divides by N).
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// ComputeCategorical counts values; ties for most common go to the value
// seen first.
func ComputeCategorical(values []dataset.Value) CategoricalStats {
	counts := Frequencies(values)
	st := CategoricalStats{Total: len(values), Unique: len(counts), Counts: counts}
	if len(counts) == 0 {
		return st
	}
	ranked := make([]CategoryCount, len(counts))
	copy(ranked, counts)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	st.MostCommon = ranked[0]
	return st
}
