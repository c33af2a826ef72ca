package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// Options controls how tabular files are read.
type Options struct {
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t' from the header line.
	Delimiter rune
	// SheetName selects an XLSX sheet; when empty SheetIndex is used.
	SheetName string
	// SheetIndex is 1-based (Sheet1 == 1).
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// DefaultOptions returns the options used when no overrides are given.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Parser turns a file of one format into a dataset.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader, opt Options) (*dataset.Dataset, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported data format")

// For returns the parser registered for filename.
func For(filename string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

// ParseFile selects a parser by filename and loads the dataset.
func ParseFile(path string, opt Options) (*dataset.Dataset, error) {
	p, err := For(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	ds, err := p.Parse(f, opt)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
	Register(yamlParser{})
	Register(parquetParser{})
}

func limitRows[T any](rows []T, max int) []T {
	if max > 0 && len(rows) > max {
		return rows[:max]
	}
	return rows
}
