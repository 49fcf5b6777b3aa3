package serial

import (
	"fmt"
	"io"
)

// Ownership selects how a ReadCursor binds to its source.
type Ownership uint8

const (
	// Borrow reads the caller's slice in place. The caller must keep it
	// unmodified for as long as the cursor is used.
	Borrow Ownership = iota
	// Copy takes a private copy of the source.
	Copy
)

// ReadCursor consumes a byte region sequentially. Every read is bounds checked.
type ReadCursor struct {
	b     []byte
	n     int // current read position
	owned bool
}

// NewReadCursor creates a cursor over src.
func NewReadCursor(src []byte, mode Ownership) *ReadCursor {
	c := &ReadCursor{}
	c.Reset(src, mode)
	return c
}

// Reset rebinds the cursor to src and rewinds it.
func (c *ReadCursor) Reset(src []byte, mode Ownership) {
	if mode == Copy {
		c.b = append([]byte(nil), src...)
	} else {
		c.b = src
	}
	c.owned = mode == Copy
	c.n = 0
}

// Close drops the region. Further reads report io.EOF.
func (c *ReadCursor) Close() error {
	c.b = nil
	c.n = 0
	return nil
}

// Read implements the [io.Reader] interface.
func (c *ReadCursor) Read(p []byte) (int, error) {
	if c.n >= len(c.b) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, c.b[c.n:])
	c.n += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (c *ReadCursor) ReadByte() (byte, error) {
	if c.n >= len(c.b) {
		return 0, io.EOF
	}
	b := c.b[c.n]
	c.n++
	return b, nil
}

// ReadExact fills dst from the current offset. If fewer than len(dst) bytes
// remain it fails with ErrTruncatedInput and the offset does not move.
func (c *ReadCursor) ReadExact(dst []byte) error {
	if len(dst) > c.Remaining() {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, len(dst), c.n, c.Remaining())
	}
	c.n += copy(dst, c.b[c.n:])
	return nil
}

// Next returns a view of the next n bytes and advances past them.
// The view aliases the cursor's region.
func (c *ReadCursor) Next(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, c.n, c.Remaining())
	}
	p := c.b[c.n : c.n+n : c.n+n]
	c.n += n
	return p, nil
}

// Skip advances the offset by n bytes.
func (c *ReadCursor) Skip(n int) error {
	_, err := c.Next(n)
	return err
}

// WriteTo implements the [io.WriterTo] interface for efficiency.
func (c *ReadCursor) WriteTo(w io.Writer) (int64, error) {
	if c.n >= len(c.b) {
		return 0, nil
	}
	n, err := w.Write(c.b[c.n:])
	if n < 0 || n > c.Remaining() {
		return 0, ErrInvalidWrite
	}
	c.n += n
	return int64(n), err
}

// Seek implements the [io.Seeker] interface. The offset is kept within [0, Size()].
func (c *ReadCursor) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(c.n) + offset
	case io.SeekEnd:
		abs = int64(len(c.b)) + offset
	default:
		return int64(c.n), ErrInvalidWhence
	}

	if abs < 0 || abs > int64(len(c.b)) {
		return int64(c.n), ErrInvalidSeek
	}

	c.n = int(abs)
	return abs, nil
}

// Offset returns the number of bytes consumed.
func (c *ReadCursor) Offset() int { return c.n }

// Size returns the total length of the region.
func (c *ReadCursor) Size() int { return len(c.b) }

// Remaining returns the number of bytes left to read.
func (c *ReadCursor) Remaining() int { return len(c.b) - c.n }

// Owned reports whether the cursor reads from a private copy.
func (c *ReadCursor) Owned() bool { return c.owned }
