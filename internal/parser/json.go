package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// Parse expects a JSON array of objects. Keys are read with the token
// stream so the first object's key order becomes the header order.
func (jsonParser) Parse(r io.Reader, opt Options) (*dataset.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrInvalidFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of records", dataset.ErrInvalidFormat)
	}
	var recs []dataset.Record
	for dec.More() {
		rec, err := readObject(dec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(recs)+1, err)
		}
		if opt.MaxRows <= 0 || len(recs) < opt.MaxRows {
			recs = append(recs, rec)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrInvalidFormat, err)
	}
	return dataset.FromRecords(recs)
}

func readObject(dec *json.Decoder) (dataset.Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrInvalidFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected an object", dataset.ErrInvalidFormat)
	}
	var rec dataset.Record
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrInvalidFormat, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key is not a string", dataset.ErrInvalidFormat)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", dataset.ErrInvalidFormat, key, err)
		}
		v, err := jsonValue(raw)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		rec = append(rec, dataset.Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrInvalidFormat, err)
	}
	return rec, nil
}

// jsonValue maps strings, numbers and null directly. Booleans and nested
// values keep their compact JSON text as a string cell.
func jsonValue(raw json.RawMessage) (dataset.Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return dataset.Null(), errors.New("empty value")
	}
	switch trimmed[0] {
	case 'n':
		return dataset.Null(), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return dataset.Null(), err
		}
		return dataset.Str(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return dataset.Null(), err
		}
		return dataset.Str(buf.String()), nil
	case 't', 'f':
		return dataset.Str(string(trimmed)), nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return dataset.Null(), err
		}
		f, err := n.Float64()
		if err != nil {
			return dataset.Null(), err
		}
		return dataset.Num(f), nil
	}
}
