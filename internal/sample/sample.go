package sample

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// DefaultRows is the size of the generated table when unset.
const DefaultRows = 100

// Headers are the generated columns, in order.
var Headers = []string{"date", "value", "category", "metric"}

var categories = []string{"A", "B", "C"}

// Options control generation. Seed 0 draws a random seed.
type Options struct {
	Rows  int
	Seed  uint64
	Start time.Time
}

// Row is one generated record. Numbers are pre-formatted to two decimals.
type Row struct {
	Date     string `json:"date"`
	Value    string `json:"value"`
	Category string `json:"category"`
	Metric   string `json:"metric"`
}

func (r Row) strings() []string { return []string{r.Date, r.Value, r.Category, r.Metric} }

// Generate returns daily rows following a linear trend (0.5 per day), a
// 12-period sine seasonality of amplitude 10 and uniform noise in [-2.5, 2.5).
// Categories split the rows into three consecutive blocks.
func Generate(opt Options) []Row {
	n := opt.Rows
	if n <= 0 {
		n = DefaultRows
	}
	start := opt.Start
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	seed := opt.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	block := (n + len(categories) - 1) / len(categories)

	rows := make([]Row, n)
	for i := range rows {
		trend := float64(i) * 0.5
		seasonal := 10 * math.Sin(float64(i)*math.Pi/6)
		noise := rng.Float64()*5 - 2.5
		value := trend + seasonal + noise
		rows[i] = Row{
			Date:     start.AddDate(0, 0, i).Format(time.DateOnly),
			Value:    strconv.FormatFloat(value, 'f', 2, 64),
			Category: categories[i/block],
			Metric:   strconv.FormatFloat(value*1.5+rng.Float64()*10, 'f', 2, 64),
		}
	}
	return rows
}

// Dataset generates rows and loads them as string cells.
func Dataset(opt Options) (*dataset.Dataset, error) {
	rows := Generate(opt)
	recs := make([]dataset.Record, len(rows))
	for i, r := range rows {
		vals := r.strings()
		rec := make(dataset.Record, len(Headers))
		for j, h := range Headers {
			rec[j] = dataset.Field{Key: h, Value: dataset.Str(vals[j])}
		}
		recs[i] = rec
	}
	return dataset.FromRecords(recs)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.strings()); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented array of records.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteXLSX writes rows to a single "Data" sheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Data"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := r.strings()
		line := make([]any, len(vals))
		for j, v := range vals {
			line[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type parquetRecord struct {
	Date     string  `parquet:"date"`
	Value    float64 `parquet:"value"`
	Category string  `parquet:"category"`
	Metric   float64 `parquet:"metric"`
}

// WriteParquet writes rows with typed columns: value and metric as doubles.
func WriteParquet(w io.Writer, rows []Row) error {
	recs := make([]parquetRecord, len(rows))
	for i, r := range rows {
		value, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			return fmt.Errorf("row %d value: %w", i+1, err)
		}
		metric, err := strconv.ParseFloat(r.Metric, 64)
		if err != nil {
			return fmt.Errorf("row %d metric: %w", i+1, err)
		}
		recs[i] = parquetRecord{Date: r.Date, Value: value, Category: r.Category, Metric: metric}
	}
	pw := parquet.NewGenericWriter[parquetRecord](w)
	if _, err := pw.Write(recs); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// Write picks the encoder from the file extension (.csv, .json, .xlsx, .parquet).
func Write(w io.Writer, filename string, rows []Row) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", "":
		return WriteCSV(w, rows)
	case ".json":
		return WriteJSON(w, rows)
	case ".xlsx":
		return WriteXLSX(w, rows)
	case ".parquet":
		return WriteParquet(w, rows)
	default:
		return fmt.Errorf("unsupported sample format: %s (use .csv, .json, .xlsx or .parquet)", filepath.Ext(filename))
	}
}
