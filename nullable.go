package serial

import "reflect"

// encodeNullable writes the presence byte and, for a non-nil pointer, the referent.
func (w *Writer) encodeNullable(v reflect.Value) {
	if v.IsNil() {
		w.writePresence(false)
		return
	}
	w.writePresence(true)
	w.encodeValue(v.Elem())
}

// decodeNullable allocates a new referent only when the presence byte is set.
func (r *Reader) decodeNullable(v reflect.Value) {
	present := r.readPresence()
	if r.err != nil {
		return
	}
	if !present {
		v.SetZero()
		return
	}
	elem := reflect.New(v.Type().Elem())
	r.decodeValue(elem.Elem())
	if r.err == nil {
		v.Set(elem)
	}
}
