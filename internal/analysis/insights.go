package analysis

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// Thresholds used by the insight rules. Comparisons are strict.
const (
	HighAverage         = 80.0
	LowAverage          = 20.0
	HighVariabilityFrac = 0.5
	LowVariabilityFrac  = 0.1
	LimitedVariety      = 5
	HighVariety         = 20
	ConcentrationPct    = 50.0
)

const (
	msgIncreasing      = "Increasing trend detected - Consider monitoring for potential growth opportunities"
	msgDecreasing      = "Decreasing trend detected - May need attention to prevent further decline"
	msgStable          = "Stable trend observed - Indicates consistent performance"
	msgHighAverage     = "High average value - Consider optimization opportunities"
	msgLowAverage      = "Low average value - Potential for improvement"
	msgHighVariability = "High variability detected - May need to investigate causes of fluctuation"
	msgLowVariability  = "Low variability - Indicates stable and predictable patterns"
	msgLimitedVariety  = "Limited variety in values - Consider expanding options"
	msgHighVariety     = "High variety in values - May need categorization"

	recGrowthControls  = "Consider implementing growth controls"
	recImprovement     = "Develop improvement strategies"
	recVariability     = "Investigate factors causing high variability"
	recDiversify       = "Consider diversifying options"
	recCategorize      = "Implement categorization for better organization"
	recConcentration   = "Investigate reasons for high concentration"
	recommendationsTag = "Recommendations:"
)

// InsightReport is the per-column card.
type InsightReport struct {
	Header          string            `json:"header"`
	Kind            string            `json:"kind"`
	Numeric         *NumericStats     `json:"numeric,omitempty"`
	Categorical     *CategoricalStats `json:"categorical,omitempty"`
	Insights        []string          `json:"insights"`
	Recommendations []string          `json:"recommendations"`
}

// Lines flattens the card into display lines: observations first, then the
// recommendations under a heading.
func (r InsightReport) Lines() []string {
	lines := append([]string(nil), r.Insights...)
	if len(r.Recommendations) > 0 {
		lines = append(lines, recommendationsTag)
		for _, rec := range r.Recommendations {
			lines = append(lines, "- "+rec)
		}
	}
	return lines
}

// Analyze builds one report per header over the unfiltered rows, so the
// insights do not follow the active filter. The result keeps header order.
func Analyze(ds *dataset.Dataset) []InsightReport {
	// A background context is never cancelled, so no error can surface.
	out, _ := AnalyzeContext(context.Background(), ds)
	return out
}

// AnalyzeContext is Analyze with columns analyzed concurrently. It returns
// ctx's error if ctx is done before every column has been analyzed.
func AnalyzeContext(ctx context.Context, ds *dataset.Dataset) ([]InsightReport, error) {
	if ds == nil {
		return nil, ctx.Err()
	}
	out := make([]InsightReport, len(ds.Headers))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, h := range ds.Headers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = AnalyzeColumn(h, ds.Column(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzeColumn classifies values and applies the matching rule set.
func AnalyzeColumn(header string, values []dataset.Value) InsightReport {
	kind := dataset.Classify(values)
	rep := InsightReport{Header: header, Kind: kind.String()}
	if kind == dataset.Numeric {
		xs, _ := dataset.Floats(values)
		st := ComputeNumeric(xs)
		rep.Numeric = &st
		rep.Insights, rep.Recommendations = numericInsights(st)
		return rep
	}
	st := ComputeCategorical(values)
	rep.Categorical = &st
	rep.Insights, rep.Recommendations = categoricalInsights(st)
	return rep
}

// numericInsights applies every rule independently. NaN statistics match no rule.
func numericInsights(st NumericStats) (insights, recs []string) {
	switch {
	case st.Trend > 0:
		insights = append(insights, msgIncreasing)
	case st.Trend < 0:
		insights = append(insights, msgDecreasing)
	case st.Trend == 0:
		insights = append(insights, msgStable)
	}

	if st.Mean > HighAverage {
		insights = append(insights, msgHighAverage)
	} else if st.Mean < LowAverage {
		insights = append(insights, msgLowAverage)
	}

	highVar := st.StdDev > st.Mean*HighVariabilityFrac
	if highVar {
		insights = append(insights, msgHighVariability)
	} else if st.StdDev < st.Mean*LowVariabilityFrac {
		insights = append(insights, msgLowVariability)
	}

	if st.Trend > 0 && st.Mean > HighAverage {
		recs = append(recs, recGrowthControls)
	} else if st.Trend < 0 && st.Mean < LowAverage {
		recs = append(recs, recImprovement)
	}
	if highVar {
		recs = append(recs, recVariability)
	}
	return insights, recs
}

func categoricalInsights(st CategoricalStats) (insights, recs []string) {
	if st.Unique < LimitedVariety {
		insights = append(insights, msgLimitedVariety)
		recs = append(recs, recDiversify)
	} else if st.Unique > HighVariety {
		insights = append(insights, msgHighVariety)
		recs = append(recs, recCategorize)
	}
	if pct := st.Share(); pct > ConcentrationPct {
		insights = append(insights, fmt.Sprintf("High concentration on \"%s\" (%.1f%%)", st.MostCommon.Value, pct))
		recs = append(recs, recConcentration)
	}
	return insights, recs
}
