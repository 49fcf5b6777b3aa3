package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

var scalars = map[string]reflect.Type{
	"bool":    reflect.TypeFor[bool](),
	"char":    reflect.TypeFor[uint8](),
	"int8":    reflect.TypeFor[int8](),
	"uint8":   reflect.TypeFor[uint8](),
	"int16":   reflect.TypeFor[int16](),
	"uint16":  reflect.TypeFor[uint16](),
	"int32":   reflect.TypeFor[int32](),
	"uint32":  reflect.TypeFor[uint32](),
	"int64":   reflect.TypeFor[int64](),
	"uint64":  reflect.TypeFor[uint64](),
	"int":     reflect.TypeFor[int](),
	"uint":    reflect.TypeFor[uint](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"string":  reflect.TypeFor[string](),
	"bytes":   reflect.TypeFor[[]byte](),
}

// ParseType compiles a type expression such as "map<string, seq<opt<int32>>>"
// into the Go type the engine encodes with the matching layout.
//
//	seq<T>     count-prefixed sequence
//	map<K,V>   count-prefixed entries, K a scalar or string
//	pair<A,B>  A then B
//	opt<T>     presence byte then T
func ParseType(expr string) (reflect.Type, error) {
	p := &typeParser{src: expr}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrSyntax, fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// accept consumes c if it is next.
func (p *typeParser) accept(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) parse() (reflect.Type, error) {
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a type name")
	}
	if t, ok := scalars[name]; ok {
		return t, nil
	}

	var arity int
	switch name {
	case "seq", "opt":
		arity = 1
	case "map", "pair":
		arity = 2
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}

	if !p.accept('<') {
		return nil, p.errorf("%s needs %d type arguments", name, arity)
	}
	args := make([]reflect.Type, 0, arity)
	for {
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if p.accept('>') {
			break
		}
		if !p.accept(',') {
			return nil, p.errorf("expected ',' or '>'")
		}
	}
	if len(args) != arity {
		return nil, p.errorf("%s takes %d type arguments, got %d", name, arity, len(args))
	}

	switch name {
	case "seq":
		return reflect.SliceOf(args[0]), nil
	case "opt":
		return reflect.PointerTo(args[0]), nil
	case "map":
		if !isKey(args[0]) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKey, args[0])
		}
		return reflect.MapOf(args[0], args[1]), nil
	}
	return pairOf(args[0], args[1]), nil
}

func isKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// pairOf builds a two-field struct. The engine writes its fields in order,
// which is the pair layout.
func pairOf(a, b reflect.Type) reflect.Type {
	return reflect.StructOf([]reflect.StructField{
		{Name: "First", Type: a, Tag: `json:"first" yaml:"first"`},
		{Name: "Second", Type: b, Tag: `json:"second" yaml:"second"`},
	})
}

// recordOf builds the struct for a record layout. Fields are named by
// position since schema names need not be Go identifiers.
func recordOf(names []string, types []reflect.Type) reflect.Type {
	fields := make([]reflect.StructField, len(names))
	for i := range names {
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: types[i],
			Tag:  reflect.StructTag(fmt.Sprintf(`json:%q yaml:%q`, names[i], names[i])),
		}
	}
	return reflect.StructOf(fields)
}

// normalize drops spaces so equivalent expressions compare equal.
func normalize(expr string) string {
	return strings.ReplaceAll(expr, " ", "")
}
