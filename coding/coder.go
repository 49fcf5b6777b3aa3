package coding

import (
	"fmt"
	"reflect"
	"slices"
)

// Coder collects keyed members for one object. Members keep the order in
// which they were encoded. The first error is latched and later calls are
// no-ops.
type Coder struct {
	format Format
	keys   []string
	vals   [][]byte
	seen   map[string]struct{}
	doc    []byte // built by Bytes, dropped by the next Encode
	err    error
}

// NewCoder creates an empty Coder writing format f.
func NewCoder(f Format) *Coder {
	return &Coder{format: f, seen: make(map[string]struct{})}
}

// NewJSONCoder creates an empty Coder writing JSON.
func NewJSONCoder() *Coder { return NewCoder(JSON) }

// Format returns the format the Coder writes.
func (c *Coder) Format() Format { return c.format }

// Encode adds v under key.
func (c *Coder) Encode(key string, v any) {
	if c.err != nil {
		return
	}
	if _, dup := c.seen[key]; dup {
		c.err = fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		return
	}
	raw, err := c.value(reflect.ValueOf(v))
	if err != nil {
		c.err = fmt.Errorf("coding: key %q: %w", key, err)
		return
	}
	c.seen[key] = struct{}{}
	c.keys = append(c.keys, key)
	c.vals = append(c.vals, raw)
	c.doc = nil
}

// Fail records err unless an error was already recorded.
func (c *Coder) Fail(err error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

func (c *Coder) Err() error { return c.err }

// Len returns the number of members encoded so far.
func (c *Coder) Len() int { return len(c.keys) }

// Bytes returns the document. It is built once and reused until the next Encode.
func (c *Coder) Bytes() ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.doc == nil {
		doc, err := c.format.Object(c.keys, c.vals)
		if err != nil {
			c.err = err
			return nil, err
		}
		c.doc = doc
	}
	return c.doc, nil
}

// String returns the document as a string, or "" after an error.
func (c *Coder) String() string {
	b, err := c.Bytes()
	if err != nil {
		return ""
	}
	return string(b)
}

// value encodes one member value. Values that hold no Codable and no
// scalar-keyed map go to the format library whole. The rest are walked so
// nested Codables become nested objects and map keys become member names.
func (c *Coder) value(v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return c.format.Marshal(nil)
	}
	if cd, ok := asCodable(v); ok {
		sub := NewCoder(c.format)
		cd.EncodeWith(sub)
		return sub.Bytes()
	}
	if !needsWalk(v.Type()) {
		return c.format.Marshal(v.Interface())
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return c.format.Marshal(nil)
		}
		return c.value(v.Elem())

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return c.format.Marshal(nil)
		}
		vals := make([][]byte, v.Len())
		for i := range vals {
			raw, err := c.value(v.Index(i))
			if err != nil {
				return nil, err
			}
			vals[i] = raw
		}
		return c.format.Array(vals)

	case reflect.Map:
		if v.IsNil() {
			return c.format.Marshal(nil)
		}
		names := make([]string, 0, v.Len())
		byName := make(map[string][]byte, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			name, err := keyString(iter.Key())
			if err != nil {
				return nil, err
			}
			raw, err := c.value(iter.Value())
			if err != nil {
				return nil, err
			}
			names = append(names, name)
			byName[name] = raw
		}
		slices.Sort(names)
		vals := make([][]byte, len(names))
		for i, name := range names {
			vals[i] = byName[name]
		}
		return c.format.Object(names, vals)
	}
	return c.format.Marshal(v.Interface())
}
