package serial

import (
	"io"
	"math"
)

// LimitedReader reads at most N more bytes from R. A Reader over a
// LimitedReader knows how much input is left, so length prefixes are checked
// against it as they are for in-memory sources.
type LimitedReader struct {
	*io.LimitedReader
}

// LimitReader returns a LimitedReader that stops after n bytes.
func LimitReader(r io.Reader, n int64) *LimitedReader {
	return &LimitedReader{&io.LimitedReader{R: r, N: n}}
}

// Len returns the number of bytes left before the limit.
func (r *LimitedReader) Len() int {
	switch {
	case r.N <= 0:
		return 0
	case r.N > math.MaxInt:
		return math.MaxInt
	}
	return int(r.N)
}

// Close closes the underlying reader if it implements io.Closer.
func (r *LimitedReader) Close() error {
	if c, ok := r.R.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
