package serial

import (
	"encoding/binary"
	"reflect"
)

// isNative reports whether t is a scalar written as raw host-order bytes:
// floats, complex numbers, bools and single-byte integers. Types with their
// own object contract never are.
func isNative(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
	default:
		return false
	}
	pt := reflect.PointerTo(t)
	return !pt.Implements(serializableType) && !pt.Implements(fielderType)
}

// rawSize returns the encoded size of a native scalar type.
func rawSize(t reflect.Type) int {
	return binary.Size(reflect.Zero(t).Interface())
}

func (w *Writer) encodeNative(v reflect.Value) {
	switch v.Kind() {
	case reflect.Bool:
		w.WriteBool(v.Bool())
	case reflect.Int8:
		w.writeNative(uint64(uint8(v.Int())), 1)
	case reflect.Uint8:
		w.writeNative(v.Uint(), 1)
	case reflect.Float32:
		w.WriteFloat32(float32(v.Float()))
	case reflect.Float64:
		w.WriteFloat64(v.Float())
	case reflect.Complex64:
		w.WriteComplex64(complex64(v.Complex()))
	case reflect.Complex128:
		w.WriteComplex128(v.Complex())
	}
}

func (r *Reader) decodeNative(v reflect.Value) {
	switch v.Kind() {
	case reflect.Bool:
		var b bool
		r.ReadBool(&b)
		if r.err == nil {
			v.SetBool(b)
		}
	case reflect.Int8:
		var i int8
		r.ReadInt8(&i)
		if r.err == nil {
			v.SetInt(int64(i))
		}
	case reflect.Uint8:
		var u uint8
		r.ReadUint8(&u)
		if r.err == nil {
			v.SetUint(uint64(u))
		}
	case reflect.Float32:
		var f float32
		r.ReadFloat32(&f)
		if r.err == nil {
			v.SetFloat(float64(f))
		}
	case reflect.Float64:
		var f float64
		r.ReadFloat64(&f)
		if r.err == nil {
			v.SetFloat(f)
		}
	case reflect.Complex64:
		var c complex64
		r.ReadComplex64(&c)
		if r.err == nil {
			v.SetComplex(complex128(c))
		}
	case reflect.Complex128:
		var c complex128
		r.ReadComplex128(&c)
		if r.err == nil {
			v.SetComplex(c)
		}
	}
}

// writeRawBlock writes a slice or array of native scalars as one contiguous
// host-order block.
func (w *Writer) writeRawBlock(v reflect.Value) {
	if w.err != nil || v.Len() == 0 {
		return
	}
	err := binary.Write(w, NativeOrder, v.Interface())
	w.setError(err)
}

// readRawBlock fills dst, a slice or a pointer to an array of native scalars,
// from one contiguous block of size bytes.
func (r *Reader) readRawBlock(dst any, size int) {
	if size == 0 {
		return
	}
	buf := r.take(size)
	if r.err != nil {
		return
	}
	_, err := binary.Decode(buf, NativeOrder, dst)
	r.setError(err)
}
