package serial

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"
)

// sink is what a Writer needs from its destination.
type sink interface {
	io.Writer
	io.ByteWriter
	Flush() error
}

type bytesBufferWriterAdapter struct{ *bytes.Buffer }

func (w *bytesBufferWriterAdapter) Flush() error { return nil }

// Writer encodes values into a sink. It tracks the first error that occurs.
// After an error, all subsequent write operations become no-ops.
type Writer struct {
	w       sink
	count   int64 // total bytes written
	err     error // first error encountered. Subsequent writes become no-ops.
	depth   int
	order   binary.ByteOrder
	scratch [16]byte
}

// NewWriterSize creates a new Writer with a specified buffer size.
// Destinations that already buffer (WriteBuffer, bytes.Buffer, bufio.Writer, Writer)
// are written to directly.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	// Share the underlying sink. Only the outermost writer flushes.
	case *Writer:
		return &Writer{w: bw.w, depth: bw.depth + 1, order: bw.order}, nil

	// The caller owns the bufio.Writer and its flushing.
	case *bufio.Writer:
		return &Writer{w: bw, depth: 1, order: Order}, nil

	// underlying is a buf so we don't need buffering
	case *WriteBuffer:
		return &Writer{w: bw, order: Order}, nil
	case *bytes.Buffer:
		return &Writer{w: &bytesBufferWriterAdapter{bw}, order: Order}, nil
	}

	// default use bufio
	return &Writer{w: bufio.NewWriterSize(w, size), order: Order}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// NewBufferWriter creates a Writer appending to buf.
func NewBufferWriter(buf *WriteBuffer) *Writer {
	return &Writer{w: buf, order: Order}
}

// WithByteOrder allows setting a custom byte order for normalized integers
// and returns the configured for chaining.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

// Close closes the underlying writer if it implements io.Closer.
func (w *Writer) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Write implements the io.Writer interface. It appends raw bytes.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	if n < 0 {
		n, err = 0, ErrInvalidWrite
	}
	w.count += int64(n)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	w.setError(err)
	return n, w.err
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// Fail records err unless an error was already recorded.
// Encoders use it to abort the surrounding encode.
func (w *Writer) Fail(err error) { w.setError(err) }

// setError records the first non-nil error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	// To prevent nested writers from flushing the buffer prematurely.
	// Only the outermost writer should be responsible for the final flush.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}

// Encode writes v using the encoding selected for its type. A pointer is
// followed once, so Encode(&x) and Reader.Decode(&x) mirror each other; to
// write a nullable pointer p itself, pass &p.
func (w *Writer) Encode(v any) {
	if w.err != nil {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			w.setError(fmt.Errorf("%w: got nil %T", ErrNilTarget, v))
			return
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		w.setError(fmt.Errorf("%w: untyped nil", ErrUnsupportedType))
		return
	}
	w.encodeValue(rv)
}

// WriteBytes appends raw bytes without a length prefix.
func (w *Writer) WriteBytes(buf []byte) {
	_, _ = w.Write(buf)
}

// WriteByteString writes a length-prefixed byte string.
func (w *Writer) WriteByteString(buf []byte) {
	w.writeLength(len(buf))
	_, _ = w.Write(buf)
}

// WriteString writes a length-prefixed string.
func (w *Writer) WriteString(s string) {
	w.writeLength(len(s))
	if w.err != nil || s == "" {
		return
	}
	n, err := io.WriteString(w.w, s)
	w.count += int64(n)
	w.setError(err)
}

// writeLength writes a length or element count as a normalized int32.
func (w *Writer) writeLength(n int) {
	if w.err != nil {
		return
	}
	if n < 0 || n > math.MaxInt32 {
		w.setError(fmt.Errorf("%w: length %d does not fit the int32 prefix", ErrSizeOverflow, n))
		return
	}
	w.WriteInt32(int32(n))
}

// writePresence writes the nullable mark.
func (w *Writer) writePresence(present bool) {
	w.WriteBool(present)
}
