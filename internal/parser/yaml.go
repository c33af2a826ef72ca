package parser

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula-cli/internal/dataset"
)

type yamlParser struct{}

func (yamlParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Parse expects a sequence of mappings. yaml.Node keeps mapping key order.
func (yamlParser) Parse(r io.Reader, opt Options) (*dataset.Dataset, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty yaml", dataset.ErrInvalidFormat)
		}
		return nil, fmt.Errorf("%w: %v", dataset.ErrInvalidFormat, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: expected a sequence of records", dataset.ErrInvalidFormat)
	}
	items := limitRows(root.Content, opt.MaxRows)
	recs := make([]dataset.Record, 0, len(items))
	for i, item := range items {
		item = resolveAlias(item)
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: record %d is not a mapping", dataset.ErrInvalidFormat, i+1)
		}
		rec := make(dataset.Record, 0, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			v, err := yamlValue(resolveAlias(item.Content[j+1]))
			if err != nil {
				return nil, fmt.Errorf("record %d key %q: %w", i+1, item.Content[j].Value, err)
			}
			rec = append(rec, dataset.Field{Key: item.Content[j].Value, Value: v})
		}
		recs = append(recs, rec)
	}
	return dataset.FromRecords(recs)
}

func yamlValue(n *yaml.Node) (dataset.Value, error) {
	if n.Kind != yaml.ScalarNode {
		b, err := yaml.Marshal(n)
		if err != nil {
			return dataset.Null(), err
		}
		return dataset.Str(strings.TrimSpace(string(b))), nil
	}
	switch n.ShortTag() {
	case "!!null":
		return dataset.Null(), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return dataset.Str(n.Value), nil
		}
		return dataset.Num(f), nil
	default:
		return dataset.Str(n.Value), nil
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
