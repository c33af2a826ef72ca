package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

func strs(ss ...string) []dataset.Value {
	out := make([]dataset.Value, len(ss))
	for i, s := range ss {
		out[i] = dataset.Str(s)
	}
	return out
}

func TestAggregateNumericModes(t *testing.T) {
	vals := strs("1", "2", "3", "4")
	cases := []struct {
		mode  Mode
		label string
		want  float64
	}{
		{Sum, "Total", 10},
		{Average, "Average", 2.5},
		{Count, "Count", 4},
	}
	for _, c := range cases {
		t.Run(string(c.mode), func(t *testing.T) {
			agg := Aggregate(vals, dataset.Numeric, c.mode)
			assert.Equal(t, []string{c.label}, agg.Labels)
			assert.Equal(t, []float64{c.want}, agg.Values)
		})
	}
}

func TestAggregateRawPassThrough(t *testing.T) {
	agg := Aggregate(strs("3", "1.5", " 2 "), dataset.Numeric, Raw)
	assert.Equal(t, []string{"3", "1.5", " 2 "}, agg.Labels)
	assert.Equal(t, []float64{3, 1.5, 2}, agg.Values)
}

func TestAggregateCategoricalKeepsFirstSeenOrder(t *testing.T) {
	agg := Aggregate(strs("b", "a", "b", "c", "a", "b"), dataset.Categorical, Sum)
	assert.Equal(t, []string{"b", "a", "c"}, agg.Labels)
	assert.Equal(t, []float64{3, 2, 1}, agg.Values)
}

func TestAggregateEmptyAverageIsNaN(t *testing.T) {
	agg := Aggregate(nil, dataset.Numeric, Average)
	require.Len(t, agg.Values, 1)
	assert.True(t, math.IsNaN(agg.Values[0]))

	b, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["Average"],"values":[null]}`, string(b))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("AVG")
	require.NoError(t, err)
	assert.Equal(t, Average, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Raw, m)
	_, err = ParseMode("median")
	assert.Error(t, err)
}

func TestFrequenciesStringifiesValues(t *testing.T) {
	got := Frequencies([]dataset.Value{dataset.Num(1), dataset.Str("1"), dataset.Null()})
	assert.Equal(t, []CategoryCount{{Value: "1", Count: 2}, {Value: "null", Count: 1}}, got)
}
