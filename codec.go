package tagwire

import (
	"fmt"
	"reflect"

	"github.com/rawbytedev/tagwire/internal/common"
	"github.com/rawbytedev/tagwire/pkg/wire"
)

// Codec is a hand-written encoding for one registered type. Encode receives
// values of exactly that type and Decode must return one. The type id has
// already been written or consumed when either method runs; nested values
// may be delegated back to f.Write and f.Read.
type Codec interface {
	Encode(f *Format, v any, w wire.Writer) error
	Decode(f *Format, r wire.Reader) (any, error)
}

// Enum is implemented by named types with a closed set of values. The
// values are taken from the zero value once at build time and a value is
// written as its position in that list.
type Enum interface {
	EnumValues() []any
}

// Collection is implemented by pointer types holding an ordered bag of
// arbitrary values. Decoding allocates a zero value and calls Add for each
// element in the order Range produced them.
type Collection interface {
	Len() int
	Range(fn func(v any) bool)
	Add(v any) error
}

// IntCollection is a Collection specialised to integers. Elements are
// written as bare varlongs without per-element type ids.
type IntCollection interface {
	Len() int
	RangeInts(fn func(v int64) bool)
	AddInt(v int64)
}

var (
	enumType          = reflect.TypeOf((*Enum)(nil)).Elem()
	collectionType    = reflect.TypeOf((*Collection)(nil)).Elem()
	intCollectionType = reflect.TypeOf((*IntCollection)(nil)).Elem()
)

// codec is the per-type payload writer/reader. v always has the registered
// type exactly and is never nil.
type codec interface {
	write(v reflect.Value, w wire.Writer) error
	read(r wire.Reader) (reflect.Value, error)
}

type customCodec struct {
	f *Format
	t reflect.Type
	c Codec
}

func (c *customCodec) write(v reflect.Value, w wire.Writer) error {
	return c.c.Encode(c.f, v.Interface(), w)
}

func (c *customCodec) read(r wire.Reader) (reflect.Value, error) {
	x, err := c.c.Decode(c.f, r)
	if err != nil {
		return reflect.Value{}, err
	}
	if x == nil {
		return reflect.Value{}, nil
	}
	v := reflect.ValueOf(x)
	if v.Type() != c.t {
		return reflect.Value{}, fmt.Errorf("tagwire: codec %T decoded %s, want %s",
			c.c, common.TypeName(v.Type()), common.TypeName(c.t))
	}
	return v, nil
}
