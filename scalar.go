package serial

import (
	"fmt"
	"io"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// intWidth returns the encoded width of an integer kind, 0 for other kinds.
// int, uint and uintptr always take 8 bytes.
func intWidth(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32:
		return 4
	case reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint, reflect.Uintptr:
		return 8
	}
	return 0
}

// signExtend widens the low width bytes of u as a two's complement value.
func signExtend(u uint64, width int) int64 {
	shift := 64 - 8*width
	return int64(u<<shift) >> shift
}

// writeUint writes the low width bytes of u in the writer's byte order.
func (w *Writer) writeUint(u uint64, width int) {
	if w.err != nil {
		return
	}
	b := w.scratch[:width]
	switch width {
	case 1:
		b[0] = byte(u)
	case 2:
		w.order.PutUint16(b, uint16(u))
	case 4:
		w.order.PutUint32(b, uint32(u))
	case 8:
		w.order.PutUint64(b, u)
	default:
		w.setError(fmt.Errorf("%w: integer width %d", ErrUnsupportedType, width))
		return
	}
	_, _ = w.Write(b)
}

// readUint reads width bytes in the reader's byte order.
func (r *Reader) readUint(width int) uint64 {
	if r.err != nil {
		return 0
	}
	b := r.scratch[:width]
	if !r.readFull(b) {
		return 0
	}
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(r.order.Uint16(b))
	case 4:
		return uint64(r.order.Uint32(b))
	case 8:
		return r.order.Uint64(b)
	}
	r.setError(fmt.Errorf("%w: integer width %d", ErrUnsupportedType, width))
	return 0
}

// WriteInteger writes any integer type at its encoded width.
func WriteInteger[T constraints.Integer](w *Writer, v T) {
	w.writeUint(uint64(v), intWidth(reflect.TypeFor[T]().Kind()))
}

// ReadInteger reads any integer type written by WriteInteger.
func ReadInteger[T constraints.Integer](r *Reader) (T, error) {
	k := reflect.TypeFor[T]().Kind()
	width := intWidth(k)
	u := r.readUint(width)
	if r.err != nil {
		return 0, r.err
	}
	switch k {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return T(signExtend(u, width)), nil
	}
	return T(u), nil
}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		w.writeNative(1, 1)
	} else {
		w.writeNative(0, 1)
	}
}

func (w *Writer) WriteByte(v byte) error {
	w.writeNative(uint64(v), 1)
	return w.err
}

func (w *Writer) WriteUint8(v uint8)   { w.writeNative(uint64(v), 1) }
func (w *Writer) WriteInt8(v int8)     { w.writeNative(uint64(uint8(v)), 1) }
func (w *Writer) WriteUint16(v uint16) { w.writeUint(uint64(v), 2) }
func (w *Writer) WriteUint32(v uint32) { w.writeUint(uint64(v), 4) }
func (w *Writer) WriteUint64(v uint64) { w.writeUint(v, 8) }
func (w *Writer) WriteInt16(v int16)   { w.writeUint(uint64(v), 2) }
func (w *Writer) WriteInt32(v int32)   { w.writeUint(uint64(v), 4) }
func (w *Writer) WriteInt64(v int64)   { w.writeUint(uint64(v), 8) }
func (w *Writer) WriteInt(v int)       { w.writeUint(uint64(v), 8) }
func (w *Writer) WriteUint(v uint)     { w.writeUint(uint64(v), 8) }

func (w *Writer) WriteFloat32(v float32) { w.writeNative(uint64(math.Float32bits(v)), 4) }
func (w *Writer) WriteFloat64(v float64) { w.writeNative(math.Float64bits(v), 8) }

func (w *Writer) WriteComplex64(v complex64) {
	w.WriteFloat32(real(v))
	w.WriteFloat32(imag(v))
}

func (w *Writer) WriteComplex128(v complex128) {
	w.WriteFloat64(real(v))
	w.WriteFloat64(imag(v))
}

// writeNative writes the low width bytes of u in host byte order.
func (w *Writer) writeNative(u uint64, width int) {
	if w.err != nil {
		return
	}
	if width == 1 {
		err := w.w.WriteByte(byte(u))
		if err == nil {
			w.count++
		} else {
			w.err = err
		}
		return
	}
	b := w.scratch[:width]
	switch width {
	case 4:
		NativeOrder.PutUint32(b, uint32(u))
	case 8:
		NativeOrder.PutUint64(b, u)
	}
	_, _ = w.Write(b)
}

// --- Primitive Read Operations ---

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err == nil {
		r.count++
		return b, nil
	}
	if err == io.EOF {
		err = fmt.Errorf("%w: need 1 byte", ErrTruncatedInput)
	}
	r.err = err
	return 0, err
}

func (r *Reader) ReadBool(dest *bool) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b != 0
	}
}

func (r *Reader) ReadUint8(dest *uint8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = int8(b)
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	v := r.readUint(2)
	if r.err == nil {
		*dest = uint16(v)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	v := r.readUint(4)
	if r.err == nil {
		*dest = uint32(v)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	v := r.readUint(8)
	if r.err == nil {
		*dest = v
	}
}

func (r *Reader) ReadUint(dest *uint) {
	v := r.readUint(8)
	if r.err == nil {
		*dest = uint(v)
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	v := r.readUint(2)
	if r.err == nil {
		*dest = int16(v)
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	v := r.readUint(4)
	if r.err == nil {
		*dest = int32(v)
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	v := r.readUint(8)
	if r.err == nil {
		*dest = int64(v)
	}
}

func (r *Reader) ReadInt(dest *int) {
	v := r.readUint(8)
	if r.err == nil {
		*dest = int(int64(v))
	}
}

func (r *Reader) ReadFloat32(dest *float32) {
	v := r.readNative(4)
	if r.err == nil {
		*dest = math.Float32frombits(uint32(v))
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	v := r.readNative(8)
	if r.err == nil {
		*dest = math.Float64frombits(v)
	}
}

func (r *Reader) ReadComplex64(dest *complex64) {
	var re, im float32
	r.ReadFloat32(&re)
	r.ReadFloat32(&im)
	if r.err == nil {
		*dest = complex(re, im)
	}
}

func (r *Reader) ReadComplex128(dest *complex128) {
	var re, im float64
	r.ReadFloat64(&re)
	r.ReadFloat64(&im)
	if r.err == nil {
		*dest = complex(re, im)
	}
}

// readNative reads width bytes in host byte order.
func (r *Reader) readNative(width int) uint64 {
	b := r.scratch[:width]
	if !r.readFull(b) {
		return 0
	}
	switch width {
	case 1:
		return uint64(b[0])
	case 4:
		return uint64(NativeOrder.Uint32(b))
	case 8:
		return NativeOrder.Uint64(b)
	}
	return 0
}
