package serial

import (
	"fmt"
	"reflect"
)

// rawChunk bounds how many scalars are decoded per block when the source
// size is unknown, so a forged count cannot force one huge allocation.
const rawChunk = 4096

// capHint bounds the initial capacity of a decoded container of n elements.
func (r *Reader) capHint(n int) int {
	if rem := r.remaining(); rem >= 0 {
		return min(n, rem)
	}
	return min(n, rawChunk)
}

// encodeSequence writes a slice or array: the element count, then either one
// raw block of native scalars or each element in turn.
func (w *Writer) encodeSequence(p *plan, v reflect.Value) {
	n := v.Len()
	w.writeLength(n)
	if p.raw {
		w.writeRawBlock(v)
		return
	}
	for i := range n {
		if w.err != nil {
			return
		}
		w.encodeValue(v.Index(i))
	}
}

// decodeSequence reads a slice or array written by encodeSequence.
func (r *Reader) decodeSequence(p *plan, v reflect.Value) {
	unit := 0
	if p.raw {
		unit = p.elemSize
	}
	n := r.readLength(unit)
	if r.err != nil {
		return
	}

	if v.Kind() == reflect.Array {
		if n != v.Len() {
			r.setError(fmt.Errorf("%w: got %d, want %d for %s", ErrLengthMismatch, n, v.Len(), v.Type()))
			return
		}
		if p.raw {
			r.readRawBlock(v.Addr().Interface(), n*p.elemSize)
			return
		}
		for i := range n {
			r.decodeValue(v.Index(i))
		}
		return
	}

	t := v.Type()
	if p.raw {
		if r.remaining() >= 0 {
			// The length check already proved the block is there.
			s := reflect.MakeSlice(t, n, n)
			r.readRawBlock(s.Interface(), n*p.elemSize)
			if r.err == nil {
				v.Set(s)
			}
			return
		}
		s := reflect.MakeSlice(t, 0, r.capHint(n))
		for done := 0; done < n; {
			k := min(n-done, rawChunk)
			chunk := reflect.MakeSlice(t, k, k)
			r.readRawBlock(chunk.Interface(), k*p.elemSize)
			if r.err != nil {
				return
			}
			s = reflect.AppendSlice(s, chunk)
			done += k
		}
		v.Set(s)
		return
	}

	s := reflect.MakeSlice(t, 0, r.capHint(n))
	zero := reflect.Zero(t.Elem())
	zeroSize := t.Elem().Size() == 0
	for i := 0; i < n; i++ {
		before := r.count
		s = reflect.Append(s, zero)
		r.decodeValue(s.Index(i))
		if r.err != nil {
			return
		}
		if i == 0 && zeroSize && r.count == before {
			// Zero-size elements that consume no input are all alike and
			// take no memory.
			s = reflect.MakeSlice(t, n, n)
			break
		}
	}
	v.Set(s)
}
