package schema

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/serial"
)

const readingSchema = `
name: reading
fields:
  - {name: id, type: int32}
  - {name: name, type: string}
  - {name: tags, type: "seq<string>"}
  - {name: parent, type: "opt<int64>"}
`

const richSchema = `
name: rich
order: little
max_length: 64
fields:
  - {name: flags, type: "map<uint16, bool>"}
  - {name: span, type: "pair<int8, float64>"}
  - {name: grid, type: "seq< seq<opt<char>> >"}
  - {name: counts, type: "map<string, uint64>"}
`

func mustParse(t *testing.T, doc string) *Schema {
	t.Helper()
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestParseType(t *testing.T) {
	cases := []struct {
		expr string
		want reflect.Type
	}{
		{"int32", reflect.TypeFor[int32]()},
		{"char", reflect.TypeFor[uint8]()},
		{"bytes", reflect.TypeFor[[]byte]()},
		{"seq<float32>", reflect.TypeFor[[]float32]()},
		{"opt<string>", reflect.TypeFor[*string]()},
		{"map<int64,seq<bool>>", reflect.TypeFor[map[int64][]bool]()},
		{" seq < opt < uint > > ", reflect.TypeFor[[]*uint]()},
	}
	for _, tc := range cases {
		got, err := ParseType(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, got, tc.expr)
	}

	pair, err := ParseType("pair<int16, string>")
	require.NoError(t, err)
	assert.Equal(t, reflect.Struct, pair.Kind())
	assert.Equal(t, "First", pair.Field(0).Name)
	assert.Equal(t, reflect.TypeFor[string](), pair.Field(1).Type)

	errs := []struct {
		expr string
		want error
	}{
		{"", ErrSyntax},
		{"seq", ErrSyntax},
		{"seq<int32", ErrSyntax},
		{"seq<int32,int32>", ErrSyntax},
		{"map<int32>", ErrSyntax},
		{"int32 int32", ErrSyntax},
		{"list<int32>", ErrUnknownType},
		{"map<seq<int8>,int8>", ErrInvalidKey},
		{"map<opt<int8>,int8>", ErrInvalidKey},
	}
	for _, tc := range errs {
		_, err := ParseType(tc.expr)
		assert.ErrorIs(t, err, tc.want, tc.expr)
	}
}

func TestCompile(t *testing.T) {
	_, err := Parse([]byte(`name: empty`))
	assert.ErrorIs(t, err, ErrNoFields)

	_, err = Parse([]byte("fields: [{name: a, type: int8}, {name: a, type: int8}]"))
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = Parse([]byte("order: middle\nfields: [{name: a, type: int8}]"))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = Parse([]byte("fields: [{name: a, type: vec<int8>}]"))
	assert.ErrorIs(t, err, ErrUnknownType)

	for _, name := range []string{`""`, `"-"`, `"a,omitempty"`, `","`} {
		_, err = Parse([]byte("fields: [{name: " + name + ", type: int8}]"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	quoted := mustParse(t, `fields: [{name: "say \"hi\"", type: int8}]`)
	assert.Equal(t, `say "hi"`, quoted.Fields[0].Name)

	s := mustParse(t, richSchema)
	assert.Equal(t, "seq<seq<opt<char>>>", s.Fields[2].Type)
	assert.Equal(t, serial.LE, s.ByteOrder())
	assert.Equal(t, 4, s.Type().NumField())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reading.yaml")
	require.NoError(t, os.WriteFile(path, []byte(readingSchema), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "reading", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEncodeLayout(t *testing.T) {
	s := mustParse(t, readingSchema)
	records, err := s.ParseValues("yaml", []byte("id: 1\nname: ab\ntags: [x]\nparent: null\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	payload, err := s.Encode(records)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 1,
		0, 0, 0, 2, 'a', 'b',
		0, 0, 0, 1, 0, 0, 0, 1, 'x',
		0,
	}, payload)

	decoded, err := s.Decode(payload)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	id, _ := decoded[0].Get("id")
	assert.Equal(t, int32(1), id)
	parent, _ := decoded[0].Get("parent")
	assert.Nil(t, parent)
}

func TestMatchesGoTypes(t *testing.T) {
	// A Go struct with the same field types encodes identically.
	type reading struct {
		ID     int32
		Name   string
		Tags   []string
		Parent *int64
	}
	want, err := serial.Marshal(reading{ID: 9, Name: "n", Tags: []string{}, Parent: serial.Ptr(int64(-1))})
	require.NoError(t, err)

	s := mustParse(t, readingSchema)
	rec := s.NewRecord()
	require.NoError(t, rec.Set("id", 9))
	require.NoError(t, rec.Set("name", "n"))
	require.NoError(t, rec.Set("tags", []string{}))
	require.NoError(t, rec.Set("parent", serial.Ptr(int64(-1))))
	got, err := s.Encode([]*Record{rec})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.ErrorIs(t, rec.Set("nope", 1), ErrUnknownField)
	assert.Error(t, rec.Set("id", "nine"))
	assert.Error(t, rec.Set("name", 5))
}

func TestRenderRoundTrip(t *testing.T) {
	s := mustParse(t, richSchema)
	input := `
- flags: {1: true, 2: false}
  span: {first: -3, second: 2.5}
  grid: [[1, null], []]
  counts: {a: 1}
- flags: {}
  span: {first: 0, second: 0}
  grid: []
  counts: {}
`
	records, err := s.ParseValues("yaml", []byte(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	payload, err := s.Encode(records)
	require.NoError(t, err)
	decoded, err := s.Decode(payload)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	for i := range records {
		assert.Equal(t, records[i].Value(), decoded[i].Value())
	}

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Render(&out, format, decoded))

			back, err := s.ParseValues(format, out.Bytes())
			require.NoError(t, err)
			require.Len(t, back, 2)
			again, err := s.Encode(back)
			require.NoError(t, err)
			assert.Equal(t, payload, again)
		})
	}
}

func TestRenderScalarKeys(t *testing.T) {
	s := mustParse(t, `
name: keyed
fields:
  - {name: ratios, type: "map<float64, string>"}
  - {name: switches, type: "map<bool, int8>"}
`)
	records, err := s.ParseValues("yaml", []byte("ratios: {2: two, 0.5: half}\nswitches: {true: 1, false: 0}\n"))
	require.NoError(t, err)
	payload, err := s.Encode(records)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Render(&out, "json", records))
	assert.Equal(t, `{"ratios":{"0.5":"half","2":"two"},"switches":{"false":0,"true":1}}`+"\n", out.String())

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			var doc bytes.Buffer
			require.NoError(t, Render(&doc, format, records))
			back, err := s.ParseValues(format, doc.Bytes())
			require.NoError(t, err)
			again, err := s.Encode(back)
			require.NoError(t, err)
			assert.Equal(t, payload, again)
		})
	}
}

func TestRenderKeepsFieldOrder(t *testing.T) {
	s := mustParse(t, readingSchema)
	records, err := s.ParseValues("json", []byte(`{"parent":5,"tags":[],"name":"z","id":2}`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Render(&out, "json", records))
	assert.Equal(t, `{"id":2,"name":"z","tags":[],"parent":5}`+"\n", out.String())

	out.Reset()
	require.NoError(t, Render(&out, "yaml", records))
	assert.Equal(t, "id: 2\nname: z\ntags: []\nparent: 5\n", out.String())
}

func TestValueErrors(t *testing.T) {
	s := mustParse(t, readingSchema)

	_, err := s.ParseValues("yaml", []byte("id: 1\nname: a\ntags: []\n"))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = s.ParseValues("yaml", []byte("id: 1\nname: a\ntags: []\nparent: 1\nextra: 0\n"))
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = s.ParseValues("json", []byte(`{"id":1,"name":"a","tags":[]}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = s.ParseValues("json", []byte(`{"id":1,"name":"a","tags":[],"parent":null,"x":1}`))
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = s.ParseValues("xml", nil)
	assert.Error(t, err)

	_, err = s.Decode([]byte{0, 0, 0, 1, 0, 0, 0, 9, 'a'})
	assert.ErrorIs(t, err, serial.ErrSizeOverflow)

	other := mustParse(t, readingSchema)
	_, err = s.Encode([]*Record{other.NewRecord()})
	assert.Error(t, err)
}

func TestMaxLength(t *testing.T) {
	s := mustParse(t, richSchema)
	rec := s.NewRecord()
	big := make(map[string]uint64, 65)
	for i := range 65 {
		big[string(rune('A'+i))] = uint64(i)
	}
	require.NoError(t, rec.Set("counts", big))
	payload, err := s.Encode([]*Record{rec})
	require.NoError(t, err)

	_, err = s.Decode(payload)
	assert.ErrorIs(t, err, serial.ErrSizeOverflow)
}
