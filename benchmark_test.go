package serial

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type BenchmarkPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64
	Val3    uint64
	IsAlive bool
	Samples []float64
	Labels  map[string]int32
}

func newBenchmarkPayload() BenchmarkPayload {
	return BenchmarkPayload{
		ID:      1,
		Val1:    100,
		Samples: make([]float64, 256),
		Labels:  map[string]int32{"a": 1, "b": 2, "c": 3},
	}
}

func BenchmarkMarshal(b *testing.B) {
	p := newBenchmarkPayload()
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Marshal(p)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	data, _ := Marshal(newBenchmarkPayload())
	var out BenchmarkPayload
	b.ReportAllocs()
	for b.Loop() {
		_ = Unmarshal(data, &out)
	}
}

func BenchmarkMarshalTo(b *testing.B) {
	p := newBenchmarkPayload()
	buf := NewWriteBuffer()
	b.ReportAllocs()
	for b.Loop() {
		buf.Reset()
		_ = MarshalTo(buf, p)
	}
}

func BenchmarkRawBlock(b *testing.B) {
	samples := make([]float64, 4096)
	buf := NewWriteBuffer()
	w := NewBufferWriter(buf)
	b.SetBytes(int64(len(samples) * 8))
	for b.Loop() {
		buf.Reset()
		w.Encode(samples)
	}
}

// Baseline comparison using only binary.Write directly, to see overhead of the wrapper
func BenchmarkStandardBinaryWrite(b *testing.B) {
	samples := make([]float64, 4096)
	var buf bytes.Buffer
	b.SetBytes(int64(len(samples) * 8))
	for b.Loop() {
		buf.Reset()
		_ = binary.Write(&buf, NativeOrder, samples)
	}
}
