package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

// FilterKind names a predicate. Unknown kinds are kept and match every row.
type FilterKind string

const (
	Equals      FilterKind = "equals"
	Contains    FilterKind = "contains"
	GreaterThan FilterKind = "greaterThan"
	LessThan    FilterKind = "lessThan"
	Between     FilterKind = "between"
)

// ParseFilterKind maps user input to a kind. Unrecognized names are returned
// verbatim so they behave as identity filters.
func ParseFilterKind(s string) FilterKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equals", "eq", "=", "==":
		return Equals
	case "contains", "like", "~":
		return Contains
	case "greaterthan", "gt", ">":
		return GreaterThan
	case "lessthan", "lt", "<":
		return LessThan
	case "between", "range":
		return Between
	default:
		return FilterKind(strings.TrimSpace(s))
	}
}

// Filter is a single per-column predicate.
type Filter struct {
	Column int        `json:"columnIndex" validate:"gte=0"`
	Kind   FilterKind `json:"type" validate:"required"`
	Value  string     `json:"value" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every field is filled in.
func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	return nil
}

// Match evaluates the predicate against one row.
func (f Filter) Match(row []dataset.Value) bool {
	if f.Column < 0 || f.Column >= len(row) {
		return false
	}
	v := row[f.Column]
	switch f.Kind {
	case Equals:
		s, ok := v.Text()
		return ok && s == f.Value
	case Contains:
		return strings.Contains(strings.ToLower(v.String()), strings.ToLower(f.Value))
	case GreaterThan:
		x, _ := v.Float()
		bound, _ := dataset.ParseFloat(f.Value)
		return x > bound
	case LessThan:
		x, _ := v.Float()
		bound, _ := dataset.ParseFloat(f.Value)
		return x < bound
	case Between:
		lo, hi := betweenBounds(f.Value)
		x, _ := v.Float()
		return x >= lo && x <= hi
	default:
		return true
	}
}

// betweenBounds parses "min,max"; a missing or bad bound is NaN, which
// makes every comparison false.
func betweenBounds(s string) (float64, float64) {
	parts := strings.Split(s, ",")
	lo, hi := math.NaN(), math.NaN()
	if len(parts) > 0 {
		lo, _ = dataset.ParseFloat(parts[0])
	}
	if len(parts) > 1 {
		hi, _ = dataset.ParseFloat(parts[1])
	}
	return lo, hi
}

// Describe renders the filter for listings, e.g. `score: greaterThan 10`.
func (f Filter) Describe(headers []string) string {
	name := fmt.Sprintf("#%d", f.Column)
	if f.Column >= 0 && f.Column < len(headers) {
		name = headers[f.Column]
	}
	return fmt.Sprintf("%s: %s %s", name, f.Kind, f.Value)
}

// FilterSet holds at most one filter per column.
type FilterSet map[int]Filter

// Set adds f, replacing any filter already on the same column.
func (s FilterSet) Set(f Filter) { s[f.Column] = f }

// Remove deletes the filter on col and reports whether one existed.
func (s FilterSet) Remove(col int) bool {
	if _, ok := s[col]; !ok {
		return false
	}
	delete(s, col)
	return true
}

// Sorted lists filters by column index.
func (s FilterSet) Sorted() []Filter {
	out := make([]Filter, 0, len(s))
	for _, f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// ApplyFilters returns the rows that satisfy every filter. It always starts
// from rows, so applying the same set again yields the same result.
func ApplyFilters(rows [][]dataset.Value, set FilterSet) [][]dataset.Value {
	filters := set.Sorted()
	out := make([][]dataset.Value, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, f := range filters {
			if !f.Match(row) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}
