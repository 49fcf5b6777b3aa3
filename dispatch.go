package serial

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// category is the encoding strategy chosen for a type.
// The constants are listed in resolution order: the first match wins.
type category uint8

const (
	catUnsupported category = iota
	catObject
	catNullable
	catBytes
	catPair
	catMap
	catSequence
	catNormalized
	catNative
	catStruct
)

func (c category) String() string {
	switch c {
	case catObject:
		return "object"
	case catNullable:
		return "nullable"
	case catBytes:
		return "bytes"
	case catPair:
		return "pair"
	case catMap:
		return "map"
	case catSequence:
		return "sequence"
	case catNormalized:
		return "normalized"
	case catNative:
		return "native"
	case catStruct:
		return "struct"
	}
	return "unsupported"
}

// plan is the resolved encoding of one type. Element plans are looked up
// when needed rather than embedded, so recursive types resolve fine.
type plan struct {
	cat      category
	width    int   // normalized and native scalars
	raw      bool  // sequence of native scalars written as one block
	elemSize int   // raw sequences
	ptrRecv  bool  // object methods need an addressable value
	fielder  bool  // object lists its fields instead of implementing Serializable
	fields   []int // struct fallback: exported fields in declaration order
}

var (
	serializableType = reflect.TypeFor[Serializable]()
	encoderType      = reflect.TypeFor[Encoder]()
	fielderType      = reflect.TypeFor[Fielder]()
	pairType         = reflect.TypeFor[pairer]()
)

// plans caches the resolution per type for every Writer and Reader.
var plans = xsync.NewMap[reflect.Type, *plan]()

func planFor(t reflect.Type) *plan {
	if p, ok := plans.Load(t); ok {
		return p
	}
	p := resolve(t)
	plans.Store(t, p)
	return p
}

// resolve classifies t.
func resolve(t reflect.Type) *plan {
	k := t.Kind()
	switch {
	case k != reflect.Pointer && k != reflect.Interface && reflect.PointerTo(t).Implements(serializableType):
		return &plan{cat: catObject, ptrRecv: !t.Implements(encoderType)}
	case k != reflect.Pointer && k != reflect.Interface && reflect.PointerTo(t).Implements(fielderType):
		return &plan{cat: catObject, fielder: true, ptrRecv: !t.Implements(fielderType)}
	case k == reflect.Pointer:
		return &plan{cat: catNullable}
	case k == reflect.String, k == reflect.Slice && t.Elem().Kind() == reflect.Uint8 && isNative(t.Elem()):
		return &plan{cat: catBytes}
	case k == reflect.Struct && isPair(t):
		return &plan{cat: catPair}
	case k == reflect.Map:
		return &plan{cat: catMap}
	case k == reflect.Slice, k == reflect.Array:
		p := &plan{cat: catSequence}
		if isNative(t.Elem()) {
			p.raw = true
			p.elemSize = rawSize(t.Elem())
		}
		return p
	}
	if w := intWidth(k); w > 1 {
		return &plan{cat: catNormalized, width: w}
	}
	if isNative(t) {
		return &plan{cat: catNative, width: rawSize(t)}
	}
	if k == reflect.Struct {
		p := &plan{cat: catStruct}
		for i := range t.NumField() {
			if t.Field(i).IsExported() {
				p.fields = append(p.fields, i)
			}
		}
		return p
	}
	return &plan{cat: catUnsupported}
}

// isPair matches Pair instantiations but not structs that merely embed one.
func isPair(t reflect.Type) bool {
	return t.Implements(pairType) && t.NumField() == 2 &&
		t.Field(0).Name == "First" && !t.Field(0).Anonymous && t.Field(1).Name == "Second"
}

func (w *Writer) encodeValue(v reflect.Value) {
	if w.err != nil {
		return
	}
	p := planFor(v.Type())
	switch p.cat {
	case catObject:
		w.encodeObject(p, v)
	case catNullable:
		w.encodeNullable(v)
	case catBytes:
		if v.Kind() == reflect.String {
			w.WriteString(v.String())
		} else {
			w.WriteByteString(v.Bytes())
		}
	case catPair:
		w.encodeValue(v.Field(0))
		w.encodeValue(v.Field(1))
	case catMap:
		w.encodeMap(v)
	case catSequence:
		w.encodeSequence(p, v)
	case catNormalized:
		if v.CanInt() {
			w.writeUint(uint64(v.Int()), p.width)
		} else {
			w.writeUint(v.Uint(), p.width)
		}
	case catNative:
		w.encodeNative(v)
	case catStruct:
		for _, i := range p.fields {
			w.encodeValue(v.Field(i))
		}
	default:
		w.setError(fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type()))
	}
}

// decodeValue reads into v, which must be settable.
func (r *Reader) decodeValue(v reflect.Value) {
	if r.err != nil {
		return
	}
	p := planFor(v.Type())
	switch p.cat {
	case catObject:
		r.decodeObject(p, v)
	case catNullable:
		r.decodeNullable(v)
	case catBytes:
		if v.Kind() == reflect.String {
			var s string
			r.ReadString(&s)
			if r.err == nil {
				v.SetString(s)
			}
		} else {
			var b []byte
			r.ReadByteString(&b)
			if r.err == nil {
				v.SetBytes(b)
			}
		}
	case catPair:
		r.decodeValue(v.Field(0))
		r.decodeValue(v.Field(1))
	case catMap:
		r.decodeMap(v)
	case catSequence:
		r.decodeSequence(p, v)
	case catNormalized:
		u := r.readUint(p.width)
		if r.err != nil {
			return
		}
		if v.CanInt() {
			v.SetInt(signExtend(u, p.width))
		} else {
			v.SetUint(u)
		}
	case catNative:
		r.decodeNative(v)
	case catStruct:
		for _, i := range p.fields {
			r.decodeValue(v.Field(i))
		}
	default:
		r.setError(fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type()))
	}
}
