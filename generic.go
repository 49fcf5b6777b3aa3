package serial

import (
	"fmt"
	"reflect"
)

// Marshal encodes v and returns a new byte slice holding the payload.
func Marshal(v any) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := MarshalTo(buf, v); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// MarshalTo appends the encoding of v to buf. On error buf may hold a partial payload.
func MarshalTo(buf *WriteBuffer, v any) error {
	if s, ok := v.(Sizer); ok {
		buf.Grow(s.Size())
	}
	w := NewBufferWriter(buf)
	w.Encode(v)
	return w.Err()
}

// Unmarshal decodes data into the variable ptr points to.
// The whole of data must be consumed: leftover bytes are reported as
// ErrTrailingData. On any error the variable is left untouched.
func Unmarshal(data []byte, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: got %T", ErrNilTarget, ptr)
	}

	c := NewReadCursor(data, Borrow)
	r := NewCursorReader(c)
	tmp := reflect.New(rv.Type().Elem())
	r.Decode(tmp.Interface())
	if r.err != nil {
		return r.err
	}
	if c.Remaining() > 0 {
		return fmt.Errorf("%w: %d bytes after offset %d", ErrTrailingData, c.Remaining(), c.Offset())
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// Write encodes v as a T and returns the writer's error state. Unlike
// Writer.Encode, a pointer T is written as a nullable value.
func Write[T any](w *Writer, v T) error {
	if w.err != nil {
		return w.err
	}
	w.encodeValue(reflect.ValueOf(&v).Elem())
	return w.err
}

// Read decodes a value of type T from r.
func Read[T any](r *Reader) (T, error) {
	var v T
	r.Decode(&v)
	return v, r.Err()
}
