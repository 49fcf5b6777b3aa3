package coding

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
)

// Format is a document encoding. Object and Array assemble already encoded
// members; SplitObject and SplitArray take a document apart one level deep.
type Format interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Object(keys []string, vals [][]byte) ([]byte, error)
	Array(vals [][]byte) ([]byte, error)
	SplitObject(data []byte) (map[string][]byte, error)
	SplitArray(data []byte) ([][]byte, error)
	IsNull(data []byte) bool
}

var (
	// JSON keeps members in the order they were encoded.
	JSON Format = jsonFormat{}

	// CBOR writes Core Deterministic Encoding (RFC 8949 §4.2): sorted map
	// keys and smallest integer and float forms.
	CBOR Format = newCBORFormat()
)

// ByName returns the format called name.
func ByName(name string) (Format, error) {
	switch name {
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	}
	return nil, fmt.Errorf("coding: unknown format %q", name)
}

// --- JSON ---

type jsonFormat struct{}

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonFormat) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonFormat) Object(keys []string, vals [][]byte) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(name)
		b.WriteByte(':')
		b.Write(vals[i])
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (jsonFormat) Array(vals [][]byte) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(v)
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (jsonFormat) SplitObject(data []byte) (map[string][]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotObject, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: null", ErrNotObject)
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (jsonFormat) SplitArray(data []byte) ([][]byte, error) {
	var a []json.RawMessage
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	out := make([][]byte, len(a))
	for i, v := range a {
		out[i] = v
	}
	return out, nil
}

func (jsonFormat) IsNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// --- CBOR ---

type cborFormat struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORFormat() cborFormat {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("coding: CBOR encoder initialization failed: " + err.Error())
	}
	// any-typed targets get string-keyed maps, matching JSON.
	dec, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
	if err != nil {
		panic("coding: CBOR decoder initialization failed: " + err.Error())
	}
	return cborFormat{enc: enc, dec: dec}
}

func (cborFormat) Name() string { return "cbor" }

func (f cborFormat) Marshal(v any) ([]byte, error) { return f.enc.Marshal(v) }

func (f cborFormat) Unmarshal(data []byte, v any) error { return f.dec.Unmarshal(data, v) }

func (f cborFormat) Object(keys []string, vals [][]byte) ([]byte, error) {
	m := make(map[string]cbor.RawMessage, len(keys))
	for i, k := range keys {
		m[k] = vals[i]
	}
	return f.enc.Marshal(m)
}

func (f cborFormat) Array(vals [][]byte) ([]byte, error) {
	a := make([]cbor.RawMessage, len(vals))
	for i, v := range vals {
		a[i] = v
	}
	return f.enc.Marshal(a)
}

func (f cborFormat) SplitObject(data []byte) (map[string][]byte, error) {
	var m map[string]cbor.RawMessage
	if err := f.dec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotObject, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: null", ErrNotObject)
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (f cborFormat) SplitArray(data []byte) ([][]byte, error) {
	var a []cbor.RawMessage
	if err := f.dec.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	out := make([][]byte, len(a))
	for i, v := range a {
		out[i] = v
	}
	return out, nil
}

// IsNull matches both CBOR null (0xf6) and undefined (0xf7).
func (cborFormat) IsNull(data []byte) bool {
	return len(data) == 1 && (data[0] == 0xf6 || data[0] == 0xf7)
}
