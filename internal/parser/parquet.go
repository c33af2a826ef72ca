package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

type parquetParser struct{}

func (parquetParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".parquet")
}

// Parse reads every row group. Leaf columns become headers, nested paths
// joined with dots; numeric physical types load as numbers.
func (parquetParser) Parse(r io.Reader, opt Options) (*dataset.Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	f, err := parquet.OpenFile(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: open parquet: %v", dataset.ErrInvalidFormat, err)
	}
	paths := f.Schema().Columns()
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: parquet file has no columns", dataset.ErrInvalidFormat)
	}
	headers := make([]string, len(paths))
	for i, p := range paths {
		headers[i] = strings.Join(p, ".")
	}

	var rows [][]dataset.Value
	buf := make([]parquet.Row, 128)
	full := func() bool { return opt.MaxRows > 0 && len(rows) >= opt.MaxRows }
	for _, rg := range f.RowGroups() {
		if full() {
			break
		}
		rr := rg.Rows()
		for !full() {
			n, err := rr.ReadRows(buf)
			for _, pr := range buf[:n] {
				if full() {
					break
				}
				rows = append(rows, parquetRow(pr, len(headers)))
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rr.Close()
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
		}
		_ = rr.Close()
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: parquet file has no rows", dataset.ErrInvalidFormat)
	}
	return dataset.New(cleanHeaders(headers), rows), nil
}

// parquetRow places each value by its leaf column index. For repeated
// columns the first value wins.
func parquetRow(pr parquet.Row, width int) []dataset.Value {
	row := make([]dataset.Value, width)
	seen := make([]bool, width)
	for _, v := range pr {
		c := v.Column()
		if c < 0 || c >= width || seen[c] {
			continue
		}
		seen[c] = true
		row[c] = parquetValue(v)
	}
	return row
}

func parquetValue(v parquet.Value) dataset.Value {
	if v.IsNull() {
		return dataset.Null()
	}
	switch v.Kind() {
	case parquet.Int32:
		return dataset.Num(float64(v.Int32()))
	case parquet.Int64:
		return dataset.Num(float64(v.Int64()))
	case parquet.Float:
		return dataset.Num(float64(v.Float()))
	case parquet.Double:
		return dataset.Num(v.Double())
	case parquet.Boolean:
		return dataset.Str(fmt.Sprint(v.Boolean()))
	case parquet.ByteArray, parquet.FixedLenByteArray:
		// Copy: the reader reuses its page buffers.
		return dataset.Str(string(v.ByteArray()))
	default:
		return dataset.Str(v.String())
	}
}
