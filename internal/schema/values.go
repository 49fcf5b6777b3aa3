package schema

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/oy3o/serial/coding"
)

// Formats lists the textual formats records can be read from and rendered to.
var Formats = []string{"yaml", "json", "cbor"}

// ParseValues reads records written in format. The document holds either
// one record (a mapping) or a sequence of them.
func (s *Schema) ParseValues(format string, data []byte) ([]*Record, error) {
	if format == "yaml" {
		return s.parseYAML(data)
	}
	f, err := coding.ByName(format)
	if err != nil {
		return nil, err
	}
	docs, err := f.SplitArray(data)
	if err != nil {
		// Not a sequence: a single record.
		docs = [][]byte{data}
	}
	records := make([]*Record, 0, len(docs))
	for i, doc := range docs {
		rec := s.NewRecord()
		if err := coding.Unmarshal(f, doc, rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Schema) parseYAML(data []byte) ([]*Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	nodes := []*yaml.Node{root}
	if root.Kind == yaml.SequenceNode {
		nodes = root.Content
	}
	records := make([]*Record, 0, len(nodes))
	for i, n := range nodes {
		rec, err := s.recordFromNode(n)
		if err != nil {
			return nil, fmt.Errorf("record %d (line %d): %w", i, n.Line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Schema) recordFromNode(n *yaml.Node) (*Record, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping", coding.ErrNotObject)
	}
	rec := s.NewRecord()
	seen := make(map[string]bool, len(s.Fields))
	for j := 0; j+1 < len(n.Content); j += 2 {
		key, val := n.Content[j].Value, n.Content[j+1]
		i, ok := s.index[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, key)
		}
		seen[key] = true
		if err := val.Decode(rec.v.Field(i).Addr().Interface()); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
	}
	for _, f := range s.Fields {
		if !seen[f.Name] {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, f.Name)
		}
	}
	return rec, nil
}

// Render writes records in format: a single record as one object, several
// as a sequence, so ParseValues reads the output back.
func Render(w io.Writer, format string, records []*Record) error {
	if format == "yaml" {
		return renderYAML(w, records)
	}
	f, err := coding.ByName(format)
	if err != nil {
		return err
	}
	docs := make([][]byte, len(records))
	for i, rec := range records {
		if docs[i], err = coding.Marshal(f, rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	var doc []byte
	if len(docs) == 1 {
		doc = docs[0]
	} else if doc, err = f.Array(docs); err != nil {
		return err
	}
	if f.Name() == "json" {
		doc = append(doc, '\n')
	}
	_, err = w.Write(doc)
	return err
}

func renderYAML(w io.Writer, records []*Record) error {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for i, rec := range records {
		node, err := rec.yamlNode()
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		root.Content = append(root.Content, node)
	}
	if len(root.Content) == 1 {
		root = root.Content[0]
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// yamlNode builds a mapping that keeps the schema's field order.
func (r *Record) yamlNode() (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for i, f := range r.schema.Fields {
		var val yaml.Node
		if err := val.Encode(r.v.Field(i).Interface()); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&val)
	}
	return m, nil
}
