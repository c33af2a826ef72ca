package analysis

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

func TestStdDevIsPopulation(t *testing.T) {
	st := ComputeNumeric([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, st.Mean)
	assert.Equal(t, 2.0, st.StdDev)
	assert.Equal(t, 2.0, st.Min)
	assert.Equal(t, 9.0, st.Max)
	assert.Equal(t, 7.0, st.Trend)
}

func TestComputeNumericEmpty(t *testing.T) {
	st := ComputeNumeric(nil)
	assert.True(t, math.IsNaN(st.Mean))
	assert.True(t, math.IsNaN(st.Trend))
	ins, recs := numericInsights(st)
	assert.Empty(t, ins)
	assert.Empty(t, recs)
}

func TestNumericInsightRules(t *testing.T) {
	cases := []struct {
		name     string
		st       NumericStats
		insights []string
		recs     []string
	}{
		{
			name:     "rising high average",
			st:       NumericStats{Mean: 90, StdDev: 5, Trend: 3},
			insights: []string{msgIncreasing, msgHighAverage, msgLowVariability},
			recs:     []string{recGrowthControls},
		},
		{
			name:     "falling low average volatile",
			st:       NumericStats{Mean: 10, StdDev: 6, Trend: -1},
			insights: []string{msgDecreasing, msgLowAverage, msgHighVariability},
			recs:     []string{recImprovement, recVariability},
		},
		{
			name:     "flat middle",
			st:       NumericStats{Mean: 50, StdDev: 10, Trend: 0},
			insights: []string{msgStable},
		},
		{
			name:     "mean exactly 80 is not high",
			st:       NumericStats{Mean: 80, StdDev: 10, Trend: 0},
			insights: []string{msgStable},
		},
		{
			name:     "mean just above 80 is high",
			st:       NumericStats{Mean: 80.0001, StdDev: 10, Trend: 0},
			insights: []string{msgStable, msgHighAverage},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ins, recs := numericInsights(c.st)
			assert.Equal(t, c.insights, ins)
			assert.Equal(t, c.recs, recs)
		})
	}
}

func TestMostCommonTieBreak(t *testing.T) {
	st := ComputeCategorical(strs("x", "y", "y", "x", "z"))
	assert.Equal(t, CategoryCount{Value: "x", Count: 2}, st.MostCommon)
	assert.Equal(t, 3, st.Unique)
	assert.Equal(t, 5, st.Total)
}

func TestCategoricalInsightRules(t *testing.T) {
	t.Run("limited variety with concentration", func(t *testing.T) {
		rep := AnalyzeColumn("region", strs("a", "a", "a", "b"))
		assert.Equal(t, "categorical", rep.Kind)
		assert.Equal(t, []string{msgLimitedVariety, `High concentration on "a" (75.0%)`}, rep.Insights)
		assert.Equal(t, []string{recDiversify, recConcentration}, rep.Recommendations)
	})
	t.Run("exactly half is not concentrated", func(t *testing.T) {
		rep := AnalyzeColumn("region", strs("a", "a", "b", "c"))
		assert.Equal(t, []string{msgLimitedVariety}, rep.Insights)
	})
	t.Run("high variety", func(t *testing.T) {
		vals := make([]dataset.Value, 0, 25)
		for i := 0; i < 25; i++ {
			vals = append(vals, dataset.Str("v"+strconv.Itoa(i)))
		}
		rep := AnalyzeColumn("id", vals)
		assert.Equal(t, []string{msgHighVariety}, rep.Insights)
		assert.Equal(t, []string{recCategorize}, rep.Recommendations)
	})
	t.Run("middle variety is silent", func(t *testing.T) {
		rep := AnalyzeColumn("grade", strs("a", "b", "c", "d", "e", "f"))
		assert.Empty(t, rep.Insights)
		assert.Empty(t, rep.Lines())
	})
}

func TestAnalyzeIgnoresActiveFilter(t *testing.T) {
	ds := dataset.New([]string{"score", "label"}, [][]dataset.Value{
		strs("10", "a"),
		strs("90", "b"),
	})
	filtered := ds.WithActive(ds.Rows[:1])
	reps := Analyze(filtered)
	require.Len(t, reps, 2)
	require.NotNil(t, reps[0].Numeric)
	assert.Equal(t, 50.0, reps[0].Numeric.Mean)
	require.NotNil(t, reps[1].Categorical)
	assert.Equal(t, 2, reps[1].Categorical.Unique)
}

func TestAnalyzeKeepsHeaderOrder(t *testing.T) {
	const width = 40
	headers := make([]string, width)
	row := make([]dataset.Value, width)
	for i := range headers {
		headers[i] = "c" + strconv.Itoa(i)
		if i%2 == 0 {
			row[i] = dataset.Num(float64(i))
		} else {
			row[i] = dataset.Str("x")
		}
	}
	reps := Analyze(dataset.New(headers, [][]dataset.Value{row}))
	require.Len(t, reps, width)
	for i, r := range reps {
		assert.Equal(t, headers[i], r.Header)
		assert.Equal(t, i%2 == 0, r.Numeric != nil, r.Header)
	}
}

func TestAnalyzeContextCancelled(t *testing.T) {
	ds := dataset.New([]string{"a", "b"}, [][]dataset.Value{{dataset.Num(1), dataset.Str("x")}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reps, err := AnalyzeContext(ctx, ds)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, reps)

	reps, err = AnalyzeContext(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, reps, 2)
	assert.Equal(t, "b", reps[1].Header)
}

func TestInsightLinesAndMarkdown(t *testing.T) {
	rep := AnalyzeColumn("sales", strs("100", "120", "95", "130"))
	lines := rep.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, msgIncreasing, lines[0])
	assert.Contains(t, lines, "Recommendations:")
	assert.Contains(t, lines, "- "+recGrowthControls)

	md := InsightsMarkdown("sales.csv", 4, []InsightReport{rep})
	assert.Contains(t, md, "[DATASET INSIGHTS]")
	assert.Contains(t, md, "## sales (numeric)")
	assert.Contains(t, md, "- Average: 111.25")
	assert.Contains(t, md, "- Range: 95.00 - 130.00")

	txt := InsightText([]InsightReport{rep})
	assert.Contains(t, txt, "sales\n"+msgIncreasing)
}
