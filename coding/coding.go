// Package coding provides keyed, self-describing documents for types that
// name their members explicitly. A Codable writes itself into a Coder one
// key at a time and reads itself back from a Decoder; the document format
// (JSON or CBOR) is chosen by the caller.
package coding

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/puzpuzpuz/xsync/v4"
)

var (
	// ErrDuplicateKey indicates a key encoded twice into the same Coder.
	ErrDuplicateKey = errors.New("coding: duplicate key")

	// ErrMissingKey indicates a Decode for a key the document does not hold.
	ErrMissingKey = errors.New("coding: missing key")

	// ErrUnsupportedKey indicates a map key kind that cannot be written as a member name.
	ErrUnsupportedKey = errors.New("coding: unsupported map key")

	// ErrNotObject indicates a document or member that should be an object but is not.
	ErrNotObject = errors.New("coding: not an object")

	// ErrLengthMismatch indicates an array member whose length does not match a fixed-size array.
	ErrLengthMismatch = errors.New("coding: array length mismatch")

	// ErrInvalidTarget indicates Decode was called with something other than a non-nil pointer.
	ErrInvalidTarget = errors.New("coding: decode target must be a non-nil pointer")
)

// Codable is implemented by types that encode themselves as a keyed object.
// DecodeWith needs a pointer receiver to fill the value in.
type Codable interface {
	EncodeWith(c *Coder)
	DecodeWith(d *Decoder)
}

// Marshal encodes v as a complete document in format f.
func Marshal(f Format, v Codable) ([]byte, error) {
	c := NewCoder(f)
	v.EncodeWith(c)
	return c.Bytes()
}

// Unmarshal decodes a document in format f into v.
func Unmarshal(f Format, data []byte, v Codable) error {
	d := NewDecoder(f, data)
	if d.err != nil {
		return d.err
	}
	v.DecodeWith(d)
	return d.err
}

var codableType = reflect.TypeFor[Codable]()

// walks caches whether values of a type must be walked instead of handed to
// the format library whole: they contain a Codable, or a map whose keys are
// written as member names by keyString.
var walks = xsync.NewMap[reflect.Type, bool]()

func needsWalk(t reflect.Type) bool {
	if w, ok := walks.Load(t); ok {
		return w
	}
	w := walkable(t, map[reflect.Type]bool{})
	walks.Store(t, w)
	return w
}

func walkable(t reflect.Type, seen map[reflect.Type]bool) bool {
	if t.Implements(codableType) || reflect.PointerTo(t).Implements(codableType) {
		return true
	}
	if seen[t] {
		return false
	}
	seen[t] = true
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return walkable(t.Elem(), seen)
	case reflect.Map:
		return scalarKey(t.Key()) || walkable(t.Elem(), seen)
	}
	return false
}

// scalarKey reports whether keys of type t are stringified by keyString.
// String keys need no conversion.
func scalarKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Bool:
		return true
	}
	return false
}

// asCodable returns v as a Codable, copying addressable-only implementations
// to a fresh pointer.
func asCodable(v reflect.Value) (Codable, bool) {
	if !v.IsValid() {
		return nil, false
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		c, ok := v.Interface().(Codable)
		return c, ok
	}
	if !reflect.PointerTo(v.Type()).Implements(codableType) {
		return nil, false
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p.Interface().(Codable), true
}

// keyString renders a map key as a member name.
func keyString(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(k.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedKey, k.Type())
}

// parseKey is the inverse of keyString for a key of type t.
func parseKey(s string, t reflect.Type) (reflect.Value, error) {
	k := reflect.New(t).Elem()
	var err error
	switch t.Kind() {
	case reflect.String:
		k.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, err = strconv.ParseInt(s, 10, t.Bits()); err == nil {
			k.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var n uint64
		if n, err = strconv.ParseUint(s, 10, t.Bits()); err == nil {
			k.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, err = strconv.ParseFloat(s, t.Bits()); err == nil {
			k.SetFloat(f)
		}
	case reflect.Bool:
		var b bool
		if b, err = strconv.ParseBool(s); err == nil {
			k.SetBool(b)
		}
	default:
		return k, fmt.Errorf("%w: %s", ErrUnsupportedKey, t)
	}
	if err != nil {
		return k, fmt.Errorf("%w: %q as %s: %w", ErrUnsupportedKey, s, t, err)
	}
	return k, nil
}
