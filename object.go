package serial

import (
	"fmt"
	"reflect"
)

// Fields is handed to Fielder.Fields. It encodes or decodes the listed
// fields depending on the direction of the surrounding call.
type Fields struct {
	w *Writer
	r *Reader
}

// Add encodes or decodes each field in order. Every argument must be a
// non-nil pointer to the field.
func (f *Fields) Add(ptrs ...any) *Fields {
	for _, ptr := range ptrs {
		rv := reflect.ValueOf(ptr)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			f.fail(fmt.Errorf("%w: field %T", ErrNilTarget, ptr))
			return f
		}
		if f.w != nil {
			if f.w.err != nil {
				return f
			}
			f.w.encodeValue(rv.Elem())
		} else {
			if f.r.err != nil {
				return f
			}
			f.r.decodeValue(rv.Elem())
		}
	}
	return f
}

// Encoding reports whether the fields are being written.
func (f *Fields) Encoding() bool { return f.w != nil }

// Err returns the first error of the surrounding encode or decode.
func (f *Fields) Err() error {
	if f.w != nil {
		return f.w.err
	}
	return f.r.err
}

func (f *Fields) fail(err error) {
	if f.w != nil {
		f.w.setError(err)
	} else {
		f.r.setError(err)
	}
}

// encodeObject writes v through its Serializable or Fielder implementation.
func (w *Writer) encodeObject(p *plan, v reflect.Value) {
	if p.ptrRecv && !v.CanAddr() {
		tmp := reflect.New(v.Type()).Elem()
		tmp.Set(v)
		v = tmp
	}
	target := v
	if p.ptrRecv {
		target = v.Addr()
	}
	if p.fielder {
		target.Interface().(Fielder).Fields(&Fields{w: w})
		return
	}
	target.Interface().(Encoder).Encode(w)
}

// decodeObject reads into v, which must be addressable.
func (r *Reader) decodeObject(p *plan, v reflect.Value) {
	if p.fielder {
		v.Addr().Interface().(Fielder).Fields(&Fields{r: r})
		return
	}
	v.Addr().Interface().(Decoder).Decode(r)
}
