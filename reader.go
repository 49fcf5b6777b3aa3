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

// DefaultBufferSize is the bufio size used by NewReader for unbuffered sources.
const DefaultBufferSize = 4096

// source is what a Reader needs from its input.
type source interface {
	io.Reader
	io.ByteReader
}

// Reader decodes values from a source and tracks the first error.
// Subsequent reads become no-ops.
type Reader struct {
	r       source
	count   int64 // total bytes read
	err     error // first error encountered.
	order   binary.ByteOrder
	maxLen  int
	limit   *LimitedReader // set when r buffers a LimitedReader
	scratch [16]byte
}

// NewReaderSize creates a new Reader with a specified buffer size.
// Sources that can be read byte by byte cheaply (ReadCursor, bytes.Reader,
// bytes.Buffer, bufio.Reader, Reader) are read directly.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch src := r.(type) {
	// Share the underlying source and its settings.
	case *Reader:
		return &Reader{r: src.r, order: src.order, maxLen: src.maxLen, limit: src.limit}, nil

	// underlying is a buf so we don't need buffering
	case *ReadCursor:
		return &Reader{r: src, order: Order}, nil
	case *bytes.Reader:
		return &Reader{r: src, order: Order}, nil
	case *bytes.Buffer:
		return &Reader{r: src, order: Order}, nil
	case *bufio.Reader:
		return &Reader{r: src, order: Order}, nil
	}

	if size < 16 {
		return nil, ErrSizeTooSmall
	}

	if lr, ok := r.(*LimitedReader); ok {
		return &Reader{r: bufio.NewReaderSize(lr, size), order: Order, limit: lr}, nil
	}

	// default use bufio
	return &Reader{r: bufio.NewReaderSize(r, size), order: Order}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, DefaultBufferSize)
}

// NewCursorReader creates a Reader consuming c.
func NewCursorReader(c *ReadCursor) *Reader {
	return &Reader{r: c, order: Order}
}

// WithByteOrder allows setting a custom byte order for normalized integers
// and returns the configured for chaining.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

// WithMaxLength caps every decoded length prefix. Zero disables the cap.
// Streams whose remaining size is unknown rely on it to bound allocations.
func (r *Reader) WithMaxLength(n int) *Reader {
	r.maxLen = n
	return r
}

// Close closes the underlying reader if it implements io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Read implements the io.Reader interface. It consumes raw bytes.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

// Fail records err unless an error was already recorded.
// Decoders use it to reject content they consider invalid.
func (r *Reader) Fail(err error) { r.setError(err) }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// remaining reports how many bytes the source still holds, or -1 if unknown.
func (r *Reader) remaining() int {
	if r.limit != nil {
		n, buffered := r.limit.Len(), r.r.(*bufio.Reader).Buffered()
		if n > math.MaxInt-buffered {
			return math.MaxInt
		}
		return n + buffered
	}
	switch src := r.r.(type) {
	case *ReadCursor:
		return src.Remaining()
	case interface{ Len() int }:
		return src.Len()
	}
	return -1
}

// Decode reads a value into the variable ptr points to, using the encoding
// selected for its type. The variable is only assigned if decoding succeeds.
func (r *Reader) Decode(ptr any) {
	if r.err != nil {
		return
	}
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		r.setError(fmt.Errorf("%w: got %T", ErrNilTarget, ptr))
		return
	}
	tmp := reflect.New(rv.Type().Elem()).Elem()
	r.decodeValue(tmp)
	if r.err == nil {
		rv.Elem().Set(tmp)
	}
}

// readFull is an internal helper to fill p completely.
func (r *Reader) readFull(p []byte) bool {
	if r.err != nil {
		return false
	}
	if c, ok := r.r.(*ReadCursor); ok {
		if err := c.ReadExact(p); err != nil {
			r.err = err
			return false
		}
		r.count += int64(len(p))
		return true
	}
	n, err := io.ReadFull(r.r, p)
	r.count += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// A short source is a truncated payload, whatever the stream calls it.
			err = fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedInput, len(p), n)
		}
		r.err = err
		return false
	}
	return true
}

// take returns the next n bytes. For a cursor it is a view of the region,
// otherwise a fresh slice.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if c, ok := r.r.(*ReadCursor); ok {
		p, err := c.Next(n)
		if err != nil {
			r.err = err
			return nil
		}
		r.count += int64(n)
		return p
	}
	p := make([]byte, n)
	if !r.readFull(p) {
		return nil
	}
	return p
}

// ReadBytes reads n raw bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	if !r.readFull(buf) {
		return nil
	}
	return buf
}

// ReadBytesTo fills dest with raw bytes.
func (r *Reader) ReadBytesTo(dest []byte) {
	r.readFull(dest)
}

// ReadByteString reads a length-prefixed byte string.
func (r *Reader) ReadByteString(dest *[]byte) {
	n := r.readLength(1)
	if r.err != nil {
		return
	}
	buf := make([]byte, n)
	if r.readFull(buf) {
		*dest = buf
	}
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString(dest *string) {
	n := r.readLength(1)
	if r.err != nil {
		return
	}
	buf := r.take(n)
	if r.err == nil {
		*dest = string(buf)
	}
}

// readLength reads a length or element count and checks it against the
// configured cap and, when known, the bytes left given unit bytes per element.
func (r *Reader) readLength(unit int) int {
	var n int32
	r.ReadInt32(&n)
	if r.err != nil {
		return 0
	}
	if n < 0 {
		r.setError(fmt.Errorf("%w: negative length %d", ErrSizeOverflow, n))
		return 0
	}
	if r.maxLen > 0 && int(n) > r.maxLen {
		r.setError(fmt.Errorf("%w: length %d exceeds limit %d", ErrSizeOverflow, n, r.maxLen))
		return 0
	}
	if unit > 0 {
		if rem := r.remaining(); rem >= 0 && int64(n)*int64(unit) > int64(rem) {
			r.setError(fmt.Errorf("%w: length %d needs %d bytes, %d remain", ErrSizeOverflow, n, int64(n)*int64(unit), rem))
			return 0
		}
	}
	return int(n)
}

// readPresence reads the nullable mark.
func (r *Reader) readPresence() bool {
	b, err := r.ReadByte()
	if err != nil {
		return false
	}
	switch b {
	case 0:
		return false
	case 1:
		return true
	}
	r.setError(fmt.Errorf("%w: 0x%02x", ErrInvalidPresence, b))
	return false
}
