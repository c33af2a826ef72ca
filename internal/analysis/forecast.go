package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// DefaultHorizon is the number of projected periods when none is given.
const DefaultHorizon = 5

// Projection is one forecast point. Period is 1-based.
type Projection struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// ForecastResult is an ordinary-least-squares fit of value = Slope*index + Intercept.
type ForecastResult struct {
	Slope       float64      `json:"slope"`
	Intercept   float64      `json:"intercept"`
	RSquared    float64      `json:"rSquared"`
	Projections []Projection `json:"projections"`
}

// Sufficient is false when the fit was singular (fewer than two points).
func (r ForecastResult) Sufficient() bool {
	return !math.IsNaN(r.Slope) && !math.IsNaN(r.Intercept)
}

// RSquaredApplicable is false for a constant series.
func (r ForecastResult) RSquaredApplicable() bool { return !math.IsNaN(r.RSquared) }

// Direction describes the slope sign.
func (r ForecastResult) Direction() string {
	switch {
	case !r.Sufficient():
		return "N/A"
	case r.Slope > 0:
		return "Increasing"
	case r.Slope < 0:
		return "Decreasing"
	default:
		return "Flat"
	}
}

// Forecast fits the series against zero-based indices and projects horizon
// points past the end. No seasonality, intervals or outlier handling.
func Forecast(series []float64, horizon int) ForecastResult {
	if horizon < 0 {
		horizon = 0
	}
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	res := ForecastResult{Slope: math.NaN(), Intercept: math.NaN(), RSquared: math.NaN()}
	if denom := n*sumXX - sumX*sumX; denom != 0 {
		res.Slope = (n*sumXY - sumX*sumY) / denom
		res.Intercept = (sumY - res.Slope*sumX) / n
		res.RSquared = rSquared(series, res.Slope, res.Intercept)
	}
	res.Projections = make([]Projection, horizon)
	for k := 0; k < horizon; k++ {
		i := len(series) + k
		res.Projections[k] = Projection{Period: i + 1, Value: res.Slope*float64(i) + res.Intercept}
	}
	return res
}

// rSquared is regressionSS/totalSS, NaN when the series is constant.
func rSquared(ys []float64, slope, intercept float64) float64 {
	m := mean(ys)
	var totalSS, regSS float64
	for i, y := range ys {
		d := y - m
		totalSS += d * d
		p := slope*float64(i) + intercept - m
		regSS += p * p
	}
	if totalSS == 0 {
		return math.NaN()
	}
	return regSS / totalSS
}

// ForecastColumn forecasts column col of the unfiltered rows.
func ForecastColumn(ds *dataset.Dataset, col, horizon int) (ForecastResult, error) {
	values := ds.Column(col)
	if dataset.Classify(values) != dataset.Numeric {
		return ForecastResult{}, fmt.Errorf("forecast %q: %w", header(ds, col), ErrNotNumeric)
	}
	xs, _ := dataset.Floats(values)
	return Forecast(xs, horizon), nil
}
