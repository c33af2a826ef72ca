package sample

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
	"github.com/KaramelBytes/tabula-cli/internal/parser"
)

func TestGenerateShape(t *testing.T) {
	rows := Generate(Options{Seed: 7})
	require.Len(t, rows, DefaultRows)
	assert.Equal(t, "2024-01-01", rows[0].Date)
	assert.Equal(t, "2024-04-09", rows[99].Date)
	assert.Equal(t, "A", rows[33].Category)
	assert.Equal(t, "B", rows[34].Category)
	assert.Equal(t, "B", rows[67].Category)
	assert.Equal(t, "C", rows[68].Category)
	assert.Equal(t, "C", rows[99].Category)

	for i, r := range rows {
		v, err := strconv.ParseFloat(r.Value, 64)
		require.NoError(t, err)
		expected := float64(i)*0.5 + 10*math.Sin(float64(i)*math.Pi/6)
		assert.InDelta(t, expected, v, 2.5+0.005, "row %d", i)
	}
}

func TestGenerateSeeded(t *testing.T) {
	a := Generate(Options{Rows: 10, Seed: 42})
	b := Generate(Options{Rows: 10, Seed: 42})
	c := Generate(Options{Rows: 10, Seed: 43})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "C", a[9].Category)
}

func TestDatasetIsNumericWhereExpected(t *testing.T) {
	ds, err := Dataset(Options{Rows: 12, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, Headers, ds.Headers)
	assert.Equal(t, []int{1, 3}, ds.NumericColumns())
}

func TestWriteFormatsParseBack(t *testing.T) {
	rows := Generate(Options{Rows: 5, Seed: 3})
	for _, name := range []string{"s.csv", "s.json", "s.xlsx", "s.parquet"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, name, rows))
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

			ds, err := parser.ParseFile(path, parser.DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, Headers, ds.Headers)
			require.Equal(t, 5, ds.Len())
			want, err := strconv.ParseFloat(rows[4].Value, 64)
			require.NoError(t, err)
			got, ok := ds.Rows[4][1].Float()
			require.True(t, ok)
			assert.Equal(t, want, got)
			assert.Equal(t, dataset.Str(rows[4].Category), ds.Rows[4][2])
			assert.Equal(t, dataset.Numeric, dataset.Classify(ds.Column(3)))
		})
	}

	assert.Error(t, Write(&bytes.Buffer{}, "s.txt", rows))
}
