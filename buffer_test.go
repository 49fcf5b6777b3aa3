package serial

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBuffer(t *testing.T) {
	t.Run("ZeroValueIsUsable", func(t *testing.T) {
		var b WriteBuffer
		n, err := b.Write([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []byte("abc"), b.Bytes())
	})

	t.Run("GrowthPolicy", func(t *testing.T) {
		b := NewWriteBuffer()
		b.Write([]byte{1, 2, 3})
		assert.Equal(t, 3+growSlack, b.Cap())

		// Fits in the slack: no reallocation.
		b.Write(make([]byte, growSlack))
		assert.Equal(t, 3+growSlack, b.Cap())
		assert.Zero(t, b.Available())

		b.Write([]byte{4, 5})
		assert.Equal(t, 3+growSlack+2+growSlack, b.Cap())
		assert.Equal(t, 3+growSlack+2, b.Len())
	})

	t.Run("GrowReservesRoom", func(t *testing.T) {
		b := NewWriteBuffer()
		b.Grow(100)
		assert.GreaterOrEqual(t, b.Available(), 100)
		c := b.Cap()
		b.Write(make([]byte, 100))
		assert.Equal(t, c, b.Cap())
	})

	t.Run("GrowOverflowPanics", func(t *testing.T) {
		b := NewWriteBuffer()
		b.WriteByte(1)
		assert.PanicsWithValue(t, ErrAllocationFailure, func() { b.Grow(-1) })
		assert.PanicsWithValue(t, ErrAllocationFailure, func() { b.Grow(int(^uint(0) >> 1)) })
	})

	t.Run("ClearAndReset", func(t *testing.T) {
		b := NewWriteBuffer()
		b.WriteString("hello")
		c := b.Cap()

		b.Reset()
		assert.Zero(t, b.Len())
		assert.Equal(t, c, b.Cap(), "Reset keeps the capacity")

		b.WriteString("x")
		b.Clear()
		assert.Zero(t, b.Len())
		assert.Zero(t, b.Cap(), "Clear releases the memory")

		b.WriteString("again")
		assert.Equal(t, "again", string(b.Bytes()))
	})

	t.Run("MatchesReference", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		var ref bytes.Buffer
		b := NewWriteBuffer()
		for range 200 {
			chunk := make([]byte, rng.IntN(64))
			for i := range chunk {
				chunk[i] = byte(rng.Uint32())
			}
			switch rng.IntN(3) {
			case 0:
				b.Write(chunk)
				ref.Write(chunk)
			case 1:
				b.WriteString(string(chunk))
				ref.WriteString(string(chunk))
			default:
				for _, c := range chunk {
					b.WriteByte(c)
					ref.WriteByte(c)
				}
			}
		}
		assert.Equal(t, ref.Bytes(), b.Bytes())
	})

	t.Run("ReadFromAndWriteTo", func(t *testing.T) {
		src := strings.Repeat("0123456789", 200)
		b := NewWriteBuffer()
		n, err := b.ReadFrom(strings.NewReader(src))
		require.NoError(t, err)
		assert.EqualValues(t, len(src), n)

		var out bytes.Buffer
		m, err := b.WriteTo(&out)
		require.NoError(t, err)
		assert.EqualValues(t, len(src), m)
		assert.Equal(t, src, out.String())
		assert.Equal(t, len(src), b.Len(), "WriteTo leaves the buffer untouched")
	})
}

func TestReadCursor(t *testing.T) {
	t.Run("CopyIsIndependent", func(t *testing.T) {
		src := []byte{0, 0, 0, 9}
		c := NewReadCursor(src, Copy)
		src[3] = 1
		assert.True(t, c.Owned())

		r := NewCursorReader(c)
		var v int32
		r.ReadInt32(&v)
		require.NoError(t, r.Err())
		assert.Equal(t, int32(9), v)
	})

	t.Run("BorrowAliasesSource", func(t *testing.T) {
		src := []byte{1, 2, 3}
		c := NewReadCursor(src, Borrow)
		assert.False(t, c.Owned())
		view, err := c.Next(2)
		require.NoError(t, err)
		assert.Equal(t, &src[0], &view[0])
	})

	t.Run("ReadExactTruncated", func(t *testing.T) {
		c := NewReadCursor([]byte{1, 2, 3}, Borrow)
		dst := make([]byte, 2)
		require.NoError(t, c.ReadExact(dst))
		assert.Equal(t, []byte{1, 2}, dst)

		err := c.ReadExact(dst)
		assert.ErrorIs(t, err, ErrTruncatedInput)
		assert.Equal(t, 2, c.Offset())
		assert.Equal(t, 1, c.Remaining())
	})

	t.Run("ReadAndReadByte", func(t *testing.T) {
		c := NewReadCursor([]byte{7, 8}, Borrow)
		b, err := c.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte(7), b)

		p := make([]byte, 4)
		n, err := c.Read(p)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = c.ReadByte()
		assert.ErrorIs(t, err, io.EOF)
		_, err = c.Read(p)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("Seek", func(t *testing.T) {
		c := NewReadCursor([]byte{1, 2, 3, 4}, Borrow)
		pos, err := c.Seek(-1, io.SeekEnd)
		require.NoError(t, err)
		assert.EqualValues(t, 3, pos)

		pos, err = c.Seek(-2, io.SeekCurrent)
		require.NoError(t, err)
		assert.EqualValues(t, 1, pos)

		_, err = c.Seek(5, io.SeekStart)
		assert.ErrorIs(t, err, ErrInvalidSeek)
		_, err = c.Seek(0, 42)
		assert.ErrorIs(t, err, ErrInvalidWhence)
		assert.Equal(t, 1, c.Offset(), "a failed seek leaves the offset alone")
	})

	t.Run("SkipAndWriteTo", func(t *testing.T) {
		c := NewReadCursor([]byte("headerbody"), Borrow)
		require.NoError(t, c.Skip(6))
		assert.ErrorIs(t, c.Skip(10), ErrTruncatedInput)

		var out bytes.Buffer
		n, err := c.WriteTo(&out)
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)
		assert.Equal(t, "body", out.String())
		assert.Zero(t, c.Remaining())
	})

	t.Run("ResetAndClose", func(t *testing.T) {
		c := NewReadCursor([]byte{1}, Borrow)
		c.ReadByte()
		c.Reset([]byte{5, 6}, Copy)
		assert.Equal(t, 0, c.Offset())
		assert.Equal(t, 2, c.Size())
		assert.True(t, c.Owned())

		require.NoError(t, c.Close())
		_, err := c.ReadByte()
		assert.ErrorIs(t, err, io.EOF)
	})
}
