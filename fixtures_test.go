package tagwire

import (
	"fmt"
	"reflect"
)

type primitive struct {
	Bool bool
	B    int8
	C    uint16
	S    int16
	I    int32
	L    int64
	F    float32
	D    float64
	U    uint
	Name string
}

type wrapper struct {
	Bool *bool
	B    *int8
	C    *uint16
	S    *int16
	I    *int32
	L    *int64
	F    *float32
	D    *float64
}

type primitiveArray struct {
	Bool []bool
	B    []byte
	C    []uint16
	S    []int16
	I    []int32
	L    []int64
	F    []float32
	D    []float64
}

type color uint8

const (
	red color = iota
	green
	blue
)

func (color) EnumValues() []any { return []any{red, green, blue} }

// byteList is a Collection of nullable bytes.
type byteList struct {
	items []*int8
}

func (l *byteList) Len() int { return len(l.items) }

func (l *byteList) Range(fn func(any) bool) {
	for _, x := range l.items {
		var v any
		if x != nil {
			v = x
		}
		if !fn(v) {
			return
		}
	}
}

func (l *byteList) Add(v any) error {
	if v == nil {
		l.items = append(l.items, nil)
		return nil
	}
	p, ok := v.(*int8)
	if !ok {
		return fmt.Errorf("byteList: unexpected %T", v)
	}
	l.items = append(l.items, p)
	return nil
}

type intBag struct {
	vals []int64
}

func (b *intBag) Len() int { return len(b.vals) }

func (b *intBag) RangeInts(fn func(int64) bool) {
	for _, v := range b.vals {
		if !fn(v) {
			return
		}
	}
}

func (b *intBag) AddInt(v int64) { b.vals = append(b.vals, v) }

type inner struct {
	Value  int32
	Parent *pojo `tagwire:"-"`
	Next   *inner
}

type pojo struct {
	value      int32
	inner      []*inner
	active     bool
	List       *byteList
	Bag        *intBag
	MultiArray [][]int32
	Tags       map[string]*int32
	Color      color
	Maybe      *bool
	Any        any
}

func (p *pojo) Value() int32 { return p.value }
func (p *pojo) SetValue(v int32) { p.value = v }
func (p *pojo) GetInner() []*inner { return p.inner }
func (p *pojo) SetInner(v []*inner) { p.inner = v }
func (p *pojo) IsActive() bool { return p.active }
func (p *pojo) SetActive(v bool) { p.active = v }

func (p *pojo) addInner(in *inner) {
	in.Parent = p
	p.inner = append(p.inner, in)
}

func (p *pojo) innerValues() []int32 {
	out := make([]int32, 0, len(p.inner))
	for _, in := range p.inner {
		out = append(out, in.Value)
	}
	return out
}

type base struct {
	ID     int64
	Name   string
	Shadow int32
}

type derived struct {
	base
	Shadow string
	Extra  bool
}

type nineFlags struct {
	A, B, C, D, E, F, G, H, I bool
}

type fiveMaybes struct {
	A, B, C, D, E *bool
}

type mixedFlags struct {
	Flag  bool
	Maybe *bool
}

type noSetter struct {
	hidden int32
}

func (n *noSetter) Hidden() int32 { return n.hidden }

// keyHolder is a comparable struct whose field may still hold an
// unhashable value.
type keyHolder struct {
	A any
}

type withChan struct {
	C chan int
}

func ptr[T any](v T) *T { return &v }

// Same-named local types let the digest tests change a definition without
// changing its qualified name.
func recordV1() reflect.Type {
	type record struct {
		A int32
		B string
	}
	return reflect.TypeOf(record{})
}

func recordSwapped() reflect.Type {
	type record struct {
		B string
		A int32
	}
	return reflect.TypeOf(record{})
}

func recordExtended() reflect.Type {
	type record struct {
		A int32
		B string
		C bool
	}
	return reflect.TypeOf(record{})
}

func recordRenamed() reflect.Type {
	type entry struct {
		A int32
		B string
	}
	return reflect.TypeOf(entry{})
}
