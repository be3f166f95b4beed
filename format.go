package tagwire

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/rawbytedev/tagwire/internal/common"
	"github.com/rawbytedev/tagwire/pkg/wire"
)

// Format is a built, immutable set of codecs. It is safe for concurrent use
// as long as each call drives its own stream.
//
// Every value is written as a varint type id followed by the codec payload.
// Id 0 stands for nil and carries no payload.
type Format struct {
	opts    Options
	ids     map[reflect.Type]uint32
	entries []*entry
	codecs  []codec
	digest  []byte
}

// Hash returns the schema digest. Two formats can exchange streams only
// when their digests are equal.
func (f *Format) Hash() []byte {
	return bytes.Clone(f.digest)
}

// MaxElements is the largest count or byte length accepted on read.
func (f *Format) MaxElements() int {
	return f.opts.MaxElements
}

// Write encodes v, which must be nil or of a registered type.
func (f *Format) Write(v any, w io.Writer) error {
	return f.writeValue(reflect.ValueOf(v), wire.NewWriter(w))
}

// Read decodes one value. A nil value on the wire returns (nil, nil).
func (f *Format) Read(r io.Reader) (any, error) {
	v, err := f.readValue(wire.NewReader(r))
	if err != nil || !v.IsValid() {
		return nil, err
	}
	return v.Interface(), nil
}

// Marshal returns the encoding of v.
func (f *Format) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes exactly one value from data. Bytes left over after the
// value are reported as corruption.
func (f *Format) Unmarshal(data []byte) (any, error) {
	r := bytes.NewReader(data)
	v, err := f.Read(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, corrupt("%d trailing bytes", r.Len())
	}
	return v, nil
}

// ReadAs reads one value and asserts it to T. A nil value yields the zero T.
func ReadAs[T any](f *Format, r io.Reader) (T, error) {
	var zero T
	v, err := f.Read(r)
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, corrupt("decoded %T, want %s", v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return out, nil
}

func (f *Format) writeValue(v reflect.Value, w wire.Writer) error {
	for v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || (common.IsNilable(v.Kind()) && v.IsNil()) {
		return w.WriteByte(0)
	}
	id, ok := f.ids[v.Type()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregisteredType, common.TypeName(v.Type()))
	}
	if err := wire.WriteVarInt(w, id); err != nil {
		return err
	}
	return f.codecs[id-1].write(v, w)
}

// readValue returns the invalid Value for nil.
func (f *Format) readValue(r wire.Reader) (reflect.Value, error) {
	id, err := wire.ReadVarInt(r)
	if err != nil {
		return reflect.Value{}, err
	}
	if id == 0 {
		return reflect.Value{}, nil
	}
	if uint64(id) > uint64(len(f.codecs)) {
		return reflect.Value{}, corrupt("invalid object id %d", id)
	}
	return f.codecs[id-1].read(r)
}

// readInto reads a value destined for a slot of type t. Nil becomes the
// zero value of t.
func (f *Format) readInto(r wire.Reader, t reflect.Type) (reflect.Value, error) {
	v, err := f.readValue(r)
	if err != nil {
		return reflect.Value{}, err
	}
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, corrupt("%s does not fit %s", common.TypeName(v.Type()), common.TypeName(t))
	}
	return v, nil
}

func (f *Format) readCount(r wire.Reader) (int, error) {
	n, err := wire.ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(f.opts.MaxElements) {
		return 0, corrupt("count %d exceeds %d", n, f.opts.MaxElements)
	}
	return int(n), nil
}
