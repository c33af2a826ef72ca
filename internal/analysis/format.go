package analysis

import (
	"encoding/json"
	"math"
	"strconv"
)

// FormatFloat renders f with prec decimals, or "N/A" for NaN and infinities.
func FormatFloat(f float64, prec int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// JSONFloat encodes NaN and infinities as null; encoding/json rejects them.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func JSONFloats(xs []float64) []JSONFloat {
	out := make([]JSONFloat, len(xs))
	for i, x := range xs {
		out[i] = JSONFloat(x)
	}
	return out
}

func (a Aggregation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Labels []string    `json:"labels"`
		Values []JSONFloat `json:"values"`
	}{a.Labels, JSONFloats(a.Values)})
}

func (s NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count  int       `json:"count"`
		Mean   JSONFloat `json:"mean"`
		Min    JSONFloat `json:"min"`
		Max    JSONFloat `json:"max"`
		StdDev JSONFloat `json:"stdDev"`
		Trend  JSONFloat `json:"trend"`
	}{s.Count, JSONFloat(s.Mean), JSONFloat(s.Min), JSONFloat(s.Max), JSONFloat(s.StdDev), JSONFloat(s.Trend)})
}

func (p Projection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Period int       `json:"period"`
		Value  JSONFloat `json:"value"`
	}{p.Period, JSONFloat(p.Value)})
}

func (r ForecastResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Slope       JSONFloat    `json:"slope"`
		Intercept   JSONFloat    `json:"intercept"`
		RSquared    JSONFloat    `json:"rSquared"`
		Sufficient  bool         `json:"sufficient"`
		Projections []Projection `json:"projections"`
	}{JSONFloat(r.Slope), JSONFloat(r.Intercept), JSONFloat(r.RSquared), r.Sufficient(), r.Projections})
}
