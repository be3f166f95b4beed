package tagwire

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v3"
)

type benchStruct struct {
	Val      []string
	Mod      []int8
	Integers []int16
	Float3   []float32
	Float6   []float64
	Ready    bool
}

func benchValue() benchStruct {
	return benchStruct{Val: []string{"azerty", "hello", "world", "random"},
		Mod: []int8{12, 10, 13, 1}, Integers: []int16{100, 250, 300},
		Float3: []float32{12.13, 16.23, 75.1}, Float6: []float64{100.5, 165.63, 153.5},
		Ready: true}
}

func BenchmarkTagwireEncoding(b *testing.B) {
	f, _ := New().Register(benchStruct{}).Build()
	z := benchValue()
	var buf bytes.Buffer
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = f.Write(z, &buf)
	}
}

func BenchmarkTagwireDecoding(b *testing.B) {
	f, _ := New().Register(benchStruct{}).Build()
	res, _ := f.Marshal(benchValue())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = f.Unmarshal(res)
	}
}

func BenchmarkTagwireBasic(b *testing.B) {
	type NewStructint struct {
		Int1 uint8
		Int2 int8
		Int3 uint16
		Int4 int16
		Int5 uint32
		Int6 int32
		Int7 uint64
		Int9 int64
	}
	z := NewStructint{Int1: 1, Int2: 2, Int3: 16, Int4: 18, Int5: 1586, Int6: 15262, Int7: 1547544565, Int9: 15484565656}
	f, _ := New().Register(z).Build()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		res, _ := f.Marshal(z)
		_, _ = f.Unmarshal(res)
	}
}

func BenchmarkTagwirePojo(b *testing.B) {
	f := pojoFormat(b)
	p := newPojo()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		res, _ := f.Marshal(p)
		_, _ = f.Unmarshal(res)
	}
}

func BenchmarkYAMLEncoding(b *testing.B) {
	z := benchValue()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = yaml.Marshal(z)
	}
}
