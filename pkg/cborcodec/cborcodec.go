// Package cborcodec provides a tagwire.Codec that stores a value as a
// deterministic CBOR document. It suits types whose fields the structural
// codec cannot reach, such as types with only unexported state and text
// marshalers.
package cborcodec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/rawbytedev/tagwire"
	"github.com/rawbytedev/tagwire/pkg/wire"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("cborcodec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("cborcodec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Codec encodes values of T as a varint length followed by CBOR bytes.
type Codec[T any] struct{}

// New returns a Codec for T, to be passed to Builder.RegisterCodec with a
// sample of the same type.
func New[T any]() *Codec[T] {
	return &Codec[T]{}
}

func (c *Codec[T]) Encode(_ *tagwire.Format, v any, w wire.Writer) error {
	x, ok := v.(T)
	if !ok {
		return fmt.Errorf("cborcodec: got %T", v)
	}
	data, err := encMode.Marshal(x)
	if err != nil {
		return fmt.Errorf("cborcodec: encoding %T: %w", v, err)
	}
	return wire.WriteBytes(w, data)
}

func (c *Codec[T]) Decode(f *tagwire.Format, r wire.Reader) (any, error) {
	data, err := wire.ReadBytes(r, f.MaxElements())
	if errors.Is(err, wire.ErrOverflow) {
		return nil, fmt.Errorf("%w: cbor document exceeds %d bytes", tagwire.ErrCorruptStream, f.MaxElements())
	}
	if err != nil {
		return nil, err
	}
	var out T
	if err := decMode.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", tagwire.ErrCorruptStream, err)
	}
	return out, nil
}
