package coding

import (
	"fmt"
	"reflect"
	"slices"
)

// Decoder reads keyed members out of one object. The first error is latched
// and later calls are no-ops.
type Decoder struct {
	format  Format
	members map[string][]byte
	err     error
}

// NewDecoder splits data, an object in format f, into its members.
func NewDecoder(f Format, data []byte) *Decoder {
	d := &Decoder{format: f}
	d.members, d.err = f.SplitObject(data)
	return d
}

// NewJSONDecoder splits a JSON object into its members.
func NewJSONDecoder(data []byte) *Decoder { return NewDecoder(JSON, data) }

// Format returns the format the Decoder reads.
func (d *Decoder) Format() Format { return d.format }

// Has reports whether the object holds key.
func (d *Decoder) Has(key string) bool {
	_, ok := d.members[key]
	return ok
}

// Keys returns the member names in ascending order.
func (d *Decoder) Keys() []string {
	keys := make([]string, 0, len(d.members))
	for k := range d.members {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Fail records err unless an error was already recorded.
// Codables use it to reject content they consider invalid.
func (d *Decoder) Fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *Decoder) Err() error { return d.err }

// Decode reads the member key into the variable ptr points to. The variable
// is only assigned if decoding succeeds.
func (d *Decoder) Decode(key string, ptr any) {
	if d.err != nil {
		return
	}
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		d.err = fmt.Errorf("%w: got %T", ErrInvalidTarget, ptr)
		return
	}
	raw, ok := d.members[key]
	if !ok {
		d.err = fmt.Errorf("%w: %q", ErrMissingKey, key)
		return
	}
	tmp := reflect.New(rv.Type().Elem()).Elem()
	if err := d.value(raw, tmp); err != nil {
		d.err = fmt.Errorf("coding: key %q: %w", key, err)
		return
	}
	rv.Elem().Set(tmp)
}

// value decodes raw into v, which must be settable.
func (d *Decoder) value(raw []byte, v reflect.Value) error {
	t := v.Type()
	if reflect.PointerTo(t).Implements(codableType) && t.Kind() != reflect.Pointer {
		sub := NewDecoder(d.format, raw)
		if sub.err != nil {
			return sub.err
		}
		p := reflect.New(t)
		p.Interface().(Codable).DecodeWith(sub)
		if sub.err != nil {
			return sub.err
		}
		v.Set(p.Elem())
		return nil
	}
	if !needsWalk(t) {
		return d.format.Unmarshal(raw, v.Addr().Interface())
	}

	switch t.Kind() {
	case reflect.Pointer:
		if d.format.IsNull(raw) {
			v.SetZero()
			return nil
		}
		e := reflect.New(t.Elem())
		if err := d.value(raw, e.Elem()); err != nil {
			return err
		}
		v.Set(e)
		return nil

	case reflect.Slice, reflect.Array:
		if d.format.IsNull(raw) {
			v.SetZero()
			return nil
		}
		parts, err := d.format.SplitArray(raw)
		if err != nil {
			return err
		}
		seq := v
		if t.Kind() == reflect.Slice {
			seq = reflect.MakeSlice(t, len(parts), len(parts))
		} else if len(parts) != v.Len() {
			return fmt.Errorf("%w: got %d, want %d for %s", ErrLengthMismatch, len(parts), v.Len(), t)
		}
		for i, part := range parts {
			if err := d.value(part, seq.Index(i)); err != nil {
				return err
			}
		}
		v.Set(seq)
		return nil

	case reflect.Map:
		if d.format.IsNull(raw) {
			v.SetZero()
			return nil
		}
		members, err := d.format.SplitObject(raw)
		if err != nil {
			return err
		}
		m := reflect.MakeMapWithSize(t, len(members))
		for name, part := range members {
			k, err := parseKey(name, t.Key())
			if err != nil {
				return err
			}
			e := reflect.New(t.Elem()).Elem()
			if err := d.value(part, e); err != nil {
				return err
			}
			m.SetMapIndex(k, e)
		}
		v.Set(m)
		return nil
	}
	return fmt.Errorf("coding: cannot decode into %s", t)
}
