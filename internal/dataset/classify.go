package dataset

import "math"

// Kind is the inferred type of a column.
type Kind int

const (
	Categorical Kind = iota
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Classify reports Numeric iff every value coerces to a float. A single
// empty, null or non-numeric cell makes the column Categorical.
func Classify(values []Value) Kind {
	for _, v := range values {
		if _, ok := v.Float(); !ok {
			return Categorical
		}
	}
	return Numeric
}

// Floats coerces every value; failed cells become NaN and ok turns false.
func Floats(values []Value) ([]float64, bool) {
	out := make([]float64, len(values))
	ok := true
	for i, v := range values {
		f, good := v.Float()
		if !good {
			f = math.NaN()
			ok = false
		}
		out[i] = f
	}
	return out, ok
}
