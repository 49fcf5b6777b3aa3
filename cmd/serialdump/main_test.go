package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layout = `
name: reading
fields:
  - {name: id, type: int32}
  - {name: name, type: string}
  - {name: tags, type: "seq<string>"}
  - {name: parent, type: "opt<int64>"}
`

func writeLayout(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reading.yaml")
	require.NoError(t, os.WriteFile(path, []byte(layout), 0o644))
	return path
}

func TestEncodeDecode(t *testing.T) {
	path := writeLayout(t)

	var hexOut bytes.Buffer
	err := run([]string{"encode", "--schema", path, "--hex"},
		strings.NewReader("id: 1\nname: ab\ntags: [x]\nparent: null\n"), &hexOut)
	require.NoError(t, err)
	assert.Equal(t, "00000001000000026162000000010000000178"+"00\n", hexOut.String())

	var jsonOut bytes.Buffer
	err = run([]string{"decode", "-s", path, "-x", "-f", "json"}, &hexOut, &jsonOut)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"ab","tags":["x"],"parent":null}`+"\n", jsonOut.String())
}

func TestLittleEndianOverride(t *testing.T) {
	path := writeLayout(t)
	var out bytes.Buffer
	err := run([]string{"encode", "-s", path, "--order", "little", "-f", "json"},
		strings.NewReader(`{"id":1,"name":"","tags":[],"parent":2}`), &out)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		1, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		1, 2, 0, 0, 0, 0, 0, 0, 0,
	}, out.Bytes())
}

func TestOutputFile(t *testing.T) {
	path := writeLayout(t)
	target := filepath.Join(t.TempDir(), "out.bin")
	err := run([]string{"encode", "-s", path, "-o", target},
		strings.NewReader("id: 7\nname: n\ntags: []\nparent: 1\n"), &bytes.Buffer{})
	require.NoError(t, err)

	payload, err := os.ReadFile(target)
	require.NoError(t, err)

	var out bytes.Buffer
	err = run([]string{"decode", "-s", path, target}, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "id: 7\nname: n\ntags: []\nparent: 1\n", out.String())
	assert.Len(t, payload, 4+5+4+9)
}

func TestOutputFileOnlyOnSuccess(t *testing.T) {
	path := writeLayout(t)
	target := filepath.Join(t.TempDir(), "out.bin")

	err := run([]string{"convert", "-s", path, "-o", target}, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown command")
	assert.NoFileExists(t, target)

	err = run([]string{"encode", "-s", path, "-o", target}, strings.NewReader("id: 1\n"), &bytes.Buffer{})
	assert.Error(t, err)
	assert.NoFileExists(t, target)

	err = run([]string{"encode", "-s", path, "-o", filepath.Join(target, "nested")},
		strings.NewReader("id: 7\nname: n\ntags: []\nparent: 1\n"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to write output file")
}

func TestFloatKeysAsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields: [{name: ratios, type: \"map<float64, string>\"}]\n"), 0o644))

	var payload bytes.Buffer
	err := run([]string{"encode", "-s", path}, strings.NewReader("ratios: {1.5: x}\n"), &payload)
	require.NoError(t, err)

	var out bytes.Buffer
	err = run([]string{"decode", "-s", path, "-f", "json"}, &payload, &out)
	require.NoError(t, err)
	assert.Equal(t, `{"ratios":{"1.5":"x"}}`+"\n", out.String())
}

func TestUsageErrors(t *testing.T) {
	path := writeLayout(t)

	err := run([]string{"--schema", path}, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "missing command")

	err = run([]string{"decode"}, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "--schema is required")

	err = run([]string{"convert", "-s", path}, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown command")

	err = run([]string{"decode", "-s", path, "-x"}, strings.NewReader("zz"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "decode hex")

	err = run([]string{"--help"}, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
