package dataset

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is returned when an import payload is not a non-empty
// sequence of records.
var ErrInvalidFormat = errors.New("invalid data format")

// Dataset is the canonical table. Rows always have len(Headers) cells.
// Active is the filtered view and defaults to Rows.
type Dataset struct {
	Headers []string  `json:"headers"`
	Rows    [][]Value `json:"rows"`
	Active  [][]Value `json:"filteredRows"`
}

// New builds a dataset, padding short rows with nulls and dropping extra cells.
func New(headers []string, rows [][]Value) *Dataset {
	width := len(headers)
	norm := make([][]Value, len(rows))
	for i, r := range rows {
		if len(r) == width {
			norm[i] = r
			continue
		}
		row := make([]Value, width)
		copy(row, r)
		norm[i] = row
	}
	hs := make([]string, width)
	copy(hs, headers)
	return &Dataset{Headers: hs, Rows: norm, Active: norm}
}

// Field is a single key/value pair of a record, in source order.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered mapping from column name to raw value.
type Record []Field

// Get returns the value stored under key. A repeated key keeps its last value.
func (r Record) Get(key string) (Value, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Key == key {
			return r[i].Value, true
		}
	}
	return Null(), false
}

// FromRecords normalizes importer output: headers are the keys of the first
// record in encounter order, each row holds that record's values in header order.
func FromRecords(recs []Record) (*Dataset, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInvalidFormat)
	}
	seen := make(map[string]struct{}, len(recs[0]))
	var headers []string
	for _, f := range recs[0] {
		if _, ok := seen[f.Key]; ok {
			continue
		}
		seen[f.Key] = struct{}{}
		headers = append(headers, f.Key)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: first record has no fields", ErrInvalidFormat)
	}
	rows := make([][]Value, len(recs))
	for i, rec := range recs {
		row := make([]Value, len(headers))
		for j, h := range headers {
			row[j], _ = rec.Get(h)
		}
		rows[i] = row
	}
	return New(headers, rows), nil
}

// Width is the number of columns.
func (d *Dataset) Width() int { return len(d.Headers) }

// Len is the number of unfiltered rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// ColumnIndex finds a header by exact name, -1 if absent.
func (d *Dataset) ColumnIndex(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns column i over all rows.
func (d *Dataset) Column(i int) []Value { return column(d.Rows, i) }

// ActiveColumn returns column i over the filtered rows.
func (d *Dataset) ActiveColumn(i int) []Value { return column(d.Active, i) }

// Floats coerces column i of all rows; ok is false when any cell fails.
func (d *Dataset) Floats(i int) ([]float64, bool) {
	return Floats(d.Column(i))
}

// NumericColumns lists the indexes of columns classified Numeric over all rows.
func (d *Dataset) NumericColumns() []int {
	var out []int
	for i := range d.Headers {
		if Classify(d.Column(i)) == Numeric {
			out = append(out, i)
		}
	}
	return out
}

// WithActive returns a copy of d sharing Headers and Rows but with a new
// active view. The receiver is left untouched.
func (d *Dataset) WithActive(active [][]Value) *Dataset {
	return &Dataset{Headers: d.Headers, Rows: d.Rows, Active: active}
}

func column(rows [][]Value, i int) []Value {
	out := make([]Value, len(rows))
	for r, row := range rows {
		if i >= 0 && i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}
