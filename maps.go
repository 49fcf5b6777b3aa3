package serial

import (
	"cmp"
	"reflect"
	"slices"
	"strings"
)

// encodeMap writes the entry count, then each entry as a (key, value) pair.
// Keys of ordered kinds are written in ascending order so equal maps always
// produce equal bytes.
func (w *Writer) encodeMap(v reflect.Value) {
	w.writeLength(v.Len())
	entries := make([]mapEntry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		entries = append(entries, mapEntry{iter.Key(), iter.Value()})
	}
	sortEntries(entries)
	for _, e := range entries {
		if w.err != nil {
			return
		}
		w.encodeValue(e.key)
		w.encodeValue(e.val)
	}
}

// mapEntry is a pair taken from the map iterator. MapIndex cannot find NaN keys.
type mapEntry struct {
	key, val reflect.Value
}

// decodeMap reads a map written by encodeMap. A key repeated on the wire
// keeps its last value.
func (r *Reader) decodeMap(v reflect.Value) {
	n := r.readLength(0)
	if r.err != nil {
		return
	}
	t := v.Type()
	m := reflect.MakeMapWithSize(t, r.capHint(n))
	zeroSize := t.Key().Size() == 0 && t.Elem().Size() == 0
	for i := range n {
		before := r.count
		k := reflect.New(t.Key()).Elem()
		r.decodeValue(k)
		e := reflect.New(t.Elem()).Elem()
		r.decodeValue(e)
		if r.err != nil {
			return
		}
		m.SetMapIndex(k, e)
		if i == 0 && zeroSize && r.count == before {
			// Every further entry is the same empty pair.
			break
		}
	}
	v.Set(m)
}

func sortEntries(entries []mapEntry) {
	if len(entries) < 2 {
		return
	}
	var compare func(a, b reflect.Value) int
	switch entries[0].key.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		compare = func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		compare = func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) }
	case reflect.Float32, reflect.Float64:
		// cmp.Compare puts NaN first.
		compare = func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) }
	case reflect.String:
		compare = func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) }
	case reflect.Bool:
		compare = func(a, b reflect.Value) int {
			switch {
			case a.Bool() == b.Bool():
				return 0
			case b.Bool():
				return -1
			}
			return 1
		}
	default:
		return
	}
	slices.SortFunc(entries, func(a, b mapEntry) int { return compare(a.key, b.key) })
}
