package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/session"
	"github.com/spf13/cobra"
)

// dataFlags are the import and filter flags shared by data commands.
type dataFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
	maxRows    int
	filters    []string
}

func addDataFlags(c *cobra.Command, f *dataFlags) {
	c.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	c.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	c.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	c.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum data rows to load (0 = unlimited)")
	c.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "filter as column:type:value, e.g. 'price:between:10,20' (repeatable)")
}

// sessionOptions maps the loaded config (or defaults) onto session options.
func sessionOptions() (session.Options, error) {
	opt := session.DefaultOptions()
	if cfg != nil {
		o, err := session.OptionsFromConfig(cfg)
		if err != nil {
			return opt, err
		}
		opt = o
	}
	opt.Logger = slog.Default()
	return opt, nil
}

// apply copies the import flags onto opt.
func (f *dataFlags) apply(opt *session.Options) error {
	if f.delimiter != "" {
		d, err := session.ParseDelimiter(f.delimiter)
		if err != nil {
			return err
		}
		opt.Parser.Delimiter = d
	}
	if f.sheetName != "" {
		opt.Parser.SheetName = f.sheetName
	}
	if f.sheetIndex > 0 {
		opt.Parser.SheetIndex = f.sheetIndex
	}
	if f.maxRows > 0 {
		opt.Parser.MaxRows = f.maxRows
	}
	return nil
}

// addFilters parses and applies every --filter spec.
func (f *dataFlags) addFilters(s *session.Session) error {
	for _, spec := range f.filters {
		flt, err := parseFilter(s, spec)
		if err != nil {
			return err
		}
		if err := s.AddFilter(flt); err != nil {
			return err
		}
	}
	return nil
}

// openSession loads path and applies the filter flags.
func openSession(ctx context.Context, path string, f *dataFlags) (*session.Session, error) {
	opt, err := sessionOptions()
	if err != nil {
		return nil, err
	}
	if err := f.apply(&opt); err != nil {
		return nil, err
	}
	s := session.New(opt)
	if _, err := s.Load(ctx, path); err != nil {
		s.Close()
		return nil, err
	}
	if err := f.addFilters(s); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// parseFilter reads "column:type:value". The value may itself contain colons.
func parseFilter(s *session.Session, spec string) (analysis.Filter, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return analysis.Filter{}, fmt.Errorf("invalid filter %q (use column:type:value)", spec)
	}
	return buildFilter(s, parts[0], parts[1], parts[2])
}

// buildFilter resolves the column reference and keeps value verbatim.
func buildFilter(s *session.Session, colRef, kindName, value string) (analysis.Filter, error) {
	col, err := s.ResolveColumn(colRef)
	if err != nil {
		return analysis.Filter{}, err
	}
	kind := analysis.ParseFilterKind(kindName)
	switch kind {
	case analysis.Equals, analysis.Contains, analysis.GreaterThan, analysis.LessThan, analysis.Between:
	default:
		warnf("unknown filter type %q keeps every row", kindName)
	}
	return analysis.Filter{Column: col, Kind: kind, Value: value}, nil
}
