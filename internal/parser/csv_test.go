package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
	"github.com/KaramelBytes/tabula-cli/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseFileCSV(t *testing.T) {
	p := writeFile(t, "hop_harvest.csv", "date,plot,alpha_acids,moisture\n"+
		"2024-08-10,A1,12.5,74\n"+
		"2024-08-12,A1,11.8\n"+
		"2024-08-15,B3,10.2,68\n")
	ds, err := parser.ParseFile(p, parser.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "plot", "alpha_acids", "moisture"}, ds.Headers)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, dataset.Str("A1"), ds.Rows[0][1])
	assert.True(t, ds.Rows[1][3].IsNull(), "short rows are padded with null")
	assert.Equal(t, dataset.Numeric, dataset.Classify(ds.Column(2)))
	assert.Equal(t, dataset.Categorical, dataset.Classify(ds.Column(3)))
}

func TestParseCSVSniffsDelimiter(t *testing.T) {
	p := writeFile(t, "semi.csv", "\ufeffGroup;Score;\nA;10,5;x\nB;9,5;y\n")
	ds, err := parser.ParseFile(p, parser.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Group", "Score", "Column_3"}, ds.Headers)
	assert.Equal(t, dataset.Str("10,5"), ds.Rows[0][1])

	p = writeFile(t, "tabs.tsv", "a\tb\n1\t2\n")
	ds, err = parser.ParseFile(p, parser.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Headers)
}

func TestParseCSVExplicitDelimiterAndMaxRows(t *testing.T) {
	p := writeFile(t, "pipe.csv", "a|b\n1|2\n3|4\n5|6\n")
	opt := parser.DefaultOptions()
	opt.Delimiter = '|'
	opt.MaxRows = 2
	ds, err := parser.ParseFile(p, opt)
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 2)
}

func TestParseCSVRejectsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"empty.csv":  "",
		"header.csv": "a,b\n",
	} {
		_, err := parser.ParseFile(writeFile(t, name, content), parser.DefaultOptions())
		assert.ErrorIs(t, err, dataset.ErrInvalidFormat, name)
	}
}
