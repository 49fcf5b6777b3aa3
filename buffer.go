package serial

import (
	"io"
	"math"
	"strconv"
)

// growSlack is the extra room reserved on every reallocation, two machine words.
const growSlack = 2 * strconv.IntSize / 8

// WriteBuffer is a growable, exclusively owned byte accumulator.
// The zero value is an empty buffer ready to use.
//
// On overflow the backing array is replaced by one of capacity used+size+growSlack
// and the used bytes are copied over.
type WriteBuffer struct {
	buf []byte
}

// NewWriteBuffer creates an empty WriteBuffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{}
}

// Grow guarantees room for another n bytes without reallocation.
// It panics with ErrAllocationFailure if the resulting size overflows an int.
func (b *WriteBuffer) Grow(n int) {
	if n < 0 || len(b.buf) > math.MaxInt-growSlack-n {
		panic(ErrAllocationFailure)
	}
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	grown := make([]byte, len(b.buf), need+growSlack)
	copy(grown, b.buf)
	b.buf = grown
}

// Write appends p to the buffer. It never fails.
func (b *WriteBuffer) Write(p []byte) (int, error) {
	b.Grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteString implements the io.StringWriter interface for efficiency.
func (b *WriteBuffer) WriteString(s string) (int, error) {
	b.Grow(len(s))
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// WriteByte implements the io.ByteWriter interface for efficiency.
func (b *WriteBuffer) WriteByte(c byte) error {
	b.Grow(1)
	b.buf = append(b.buf, c)
	return nil
}

// ReadFrom implements the io.ReaderFrom interface and reads data from r until EOF or an error occurs.
func (b *WriteBuffer) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	for {
		b.Grow(512)
		m, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
		if m < 0 {
			return n, ErrInvalidWrite
		}
		b.buf = b.buf[:len(b.buf)+m]
		n += int64(m)
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}

// WriteTo writes the buffered bytes to w. The buffer is left untouched.
func (b *WriteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf)
	if err == nil && n < len(b.buf) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// Flush do nothing
func (b *WriteBuffer) Flush() error { return nil }

// Close do nothing
func (b *WriteBuffer) Close() error { return nil }

// Clear releases the backing memory. The buffer stays usable.
func (b *WriteBuffer) Clear() { b.buf = nil }

// Reset empties the buffer but keeps its capacity for reuse.
func (b *WriteBuffer) Reset() { b.buf = b.buf[:0] }

// Len returns the number of bytes written.
func (b *WriteBuffer) Len() int { return len(b.buf) }

// Cap returns the capacity of the backing array.
func (b *WriteBuffer) Cap() int { return cap(b.buf) }

// Available returns the number of bytes that can be written without growing.
func (b *WriteBuffer) Available() int { return cap(b.buf) - len(b.buf) }

// Bytes returns a view of the written data. The view must not be modified and
// is only valid until the next write that grows the buffer.
func (b *WriteBuffer) Bytes() []byte { return b.buf }
