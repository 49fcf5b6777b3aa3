// Package schema describes record layouts in YAML so payloads written by the
// serial engine can be inspected and produced without Go types for them.
package schema

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oy3o/serial"
)

var (
	ErrSyntax         = errors.New("schema: syntax error")
	ErrUnknownType    = errors.New("schema: unknown type")
	ErrInvalidKey     = errors.New("schema: map key must be a scalar or string")
	ErrNoFields       = errors.New("schema: no fields")
	ErrDuplicateField = errors.New("schema: duplicate field")
	ErrMissingField   = errors.New("schema: missing field")
	ErrUnknownField   = errors.New("schema: unknown field")
	ErrInvalidOrder   = errors.New("schema: byte order must be big or little")
	ErrInvalidName    = errors.New(`schema: field name must be non-empty, not "-" and without commas`)
)

// Field is one member of a record.
type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Schema is a record layout: its fields are encoded one after the other.
//
//	name: reading
//	order: big
//	fields:
//	  - {name: id, type: int32}
//	  - {name: tags, type: "seq<string>"}
type Schema struct {
	Name      string  `yaml:"name"`
	Order     string  `yaml:"order"`      // "big" (default) or "little"
	MaxLength int     `yaml:"max_length"` // cap on decoded length prefixes, 0 for none
	Fields    []Field `yaml:"fields"`

	typ   reflect.Type
	index map[string]int
}

// Load reads and compiles a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and compiles a schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Compile checks the layout and builds the record type.
func (s *Schema) Compile() error {
	if len(s.Fields) == 0 {
		return ErrNoFields
	}
	if _, err := s.byteOrder(); err != nil {
		return err
	}
	names := make([]string, len(s.Fields))
	types := make([]reflect.Type, len(s.Fields))
	index := make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		// Names become json and yaml struct tags.
		if f.Name == "" || f.Name == "-" || strings.Contains(f.Name, ",") {
			return fmt.Errorf("%w: %q", ErrInvalidName, f.Name)
		}
		if _, dup := index[f.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		t, err := ParseType(f.Type)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		f.Type = normalize(f.Type)
		index[f.Name] = i
		names[i] = f.Name
		types[i] = t
	}
	s.typ = recordOf(names, types)
	s.index = index
	return nil
}

// Type returns the compiled record type.
func (s *Schema) Type() reflect.Type { return s.typ }

// ByteOrder returns the order of normalized integers and length prefixes.
func (s *Schema) ByteOrder() binary.ByteOrder {
	order, _ := s.byteOrder()
	return order
}

func (s *Schema) byteOrder() (binary.ByteOrder, error) {
	switch s.Order {
	case "", "big":
		return serial.BE, nil
	case "little":
		return serial.LE, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, s.Order)
}

// Decode reads every record in payload.
func (s *Schema) Decode(payload []byte) ([]*Record, error) {
	c := serial.NewReadCursor(payload, serial.Borrow)
	r := serial.NewCursorReader(c).WithByteOrder(s.ByteOrder()).WithMaxLength(s.MaxLength)

	var records []*Record
	for c.Remaining() > 0 {
		rec := s.NewRecord()
		start := c.Offset()
		r.Decode(rec.v.Addr().Interface())
		if err := r.Err(); err != nil {
			return records, fmt.Errorf("record %d at offset %d: %w", len(records), start, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Encode writes the records back to back.
func (s *Schema) Encode(records []*Record) ([]byte, error) {
	buf := serial.NewWriteBuffer()
	w := serial.NewBufferWriter(buf).WithByteOrder(s.ByteOrder())
	for i, rec := range records {
		if rec.schema != s {
			return nil, fmt.Errorf("record %d: belongs to schema %q", i, rec.schema.Name)
		}
		w.Encode(rec.v.Interface())
		if err := w.Err(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
