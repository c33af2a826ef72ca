package dataset

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ValueKind tells which variant a raw cell holds.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueString
	ValueNumber
)

// Value is an unparsed cell as delivered by an importer: string, number, or null.
type Value struct {
	kind ValueKind
	s    string
	f    float64
}

// Str wraps a string cell.
func Str(s string) Value { return Value{kind: ValueString, s: s} }

// Num wraps a numeric cell.
func Num(f float64) Value { return Value{kind: ValueNumber, f: f} }

// Null is the missing cell.
func Null() Value { return Value{} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == ValueNull }

// Text returns the raw string and true only for string cells.
func (v Value) Text() (string, bool) {
	if v.kind != ValueString {
		return "", false
	}
	return v.s, true
}

// String renders the cell the way a dynamic language would stringify it:
// null becomes "null", numbers use the shortest round-trip form.
func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.s
	case ValueNumber:
		return formatNumber(v.f)
	default:
		return "null"
	}
}

// Float coerces the cell to a float64 using the strict rule of ParseFloat.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case ValueNumber:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return math.NaN(), false
		}
		return v.f, true
	case ValueString:
		return ParseFloat(v.s)
	default:
		return math.NaN(), false
	}
}

// MarshalJSON keeps the original variant so exported reports round-trip.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.s)
	case ValueNumber:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.f)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON scalar. Booleans and nested values are kept
// as their JSON text.
func (v *Value) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch {
	case trimmed == "null":
		*v = Null()
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Str(s)
	default:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			*v = Num(f)
			return nil
		}
		*v = Str(trimmed)
	}
	return nil
}

var floatPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseFloat is the single coercion rule used across the analysis pipeline.
// The input is trimmed and must be an optionally signed decimal with an
// optional exponent; anything else ("", "42px", "NaN", "Inf", "1e999") is rejected.
func ParseFloat(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if !floatPattern.MatchString(raw) {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN(), false
	}
	return f, true
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
