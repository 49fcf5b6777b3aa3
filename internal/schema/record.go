package schema

import (
	"fmt"
	"reflect"

	"github.com/oy3o/serial/coding"
)

// Record holds the values of one record in field order.
type Record struct {
	schema *Schema
	v      reflect.Value // addressable struct of schema.typ
}

// NewRecord returns a record with every field at its zero value.
func (s *Schema) NewRecord() *Record {
	return &Record{schema: s, v: reflect.New(s.typ).Elem()}
}

// Get returns the value of field name.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.schema.index[name]
	if !ok {
		return nil, false
	}
	return r.v.Field(i).Interface(), true
}

// Set assigns v to field name. v must be assignable or convertible to the
// field type.
func (r *Record) Set(name string, v any) error {
	i, ok := r.schema.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f := r.v.Field(i)
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		f.SetZero()
	case rv.Type().AssignableTo(f.Type()):
		f.Set(rv)
	case rv.Type().ConvertibleTo(f.Type()) && (rv.Kind() == reflect.String) == (f.Kind() == reflect.String):
		f.Set(rv.Convert(f.Type()))
	default:
		return fmt.Errorf("field %q: cannot use %T as %s", name, v, r.schema.Fields[i].Type)
	}
	return nil
}

// Value returns the record as its compiled struct.
func (r *Record) Value() any { return r.v.Interface() }

// EncodeWith writes the fields in schema order.
func (r *Record) EncodeWith(c *coding.Coder) {
	for i, f := range r.schema.Fields {
		c.Encode(f.Name, r.v.Field(i).Interface())
	}
}

// DecodeWith reads every field. Members the schema does not name are rejected.
func (r *Record) DecodeWith(d *coding.Decoder) {
	for _, k := range d.Keys() {
		if _, ok := r.schema.index[k]; !ok {
			d.Fail(fmt.Errorf("%w: %q", ErrUnknownField, k))
			return
		}
	}
	for i, f := range r.schema.Fields {
		if !d.Has(f.Name) {
			d.Fail(fmt.Errorf("%w: %q", ErrMissingField, f.Name))
			return
		}
		d.Decode(f.Name, r.v.Field(i).Addr().Interface())
	}
}
