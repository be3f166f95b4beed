package tagwire

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rawbytedev/tagwire/pkg/wire"
)

// writeScalar writes v by kind: one byte for bool and 8-bit integers,
// varint for 16/32-bit, varlong for 64-bit and platform ints, big-endian
// IEEE for floats and a length-prefixed run for strings.
func writeScalar(v reflect.Value, w wire.Writer) error {
	switch v.Kind() {
	case reflect.Bool:
		return wire.WriteBool(w, v.Bool())
	case reflect.Int8:
		return w.WriteByte(byte(v.Int()))
	case reflect.Uint8:
		return w.WriteByte(byte(v.Uint()))
	case reflect.Int16, reflect.Int32:
		return wire.WriteVarInt(w, uint32(int32(v.Int())))
	case reflect.Uint16, reflect.Uint32:
		return wire.WriteVarInt(w, uint32(v.Uint()))
	case reflect.Int, reflect.Int64:
		return wire.WriteVarLong(w, uint64(v.Int()))
	case reflect.Uint, reflect.Uint64:
		return wire.WriteVarLong(w, v.Uint())
	case reflect.Float32:
		return wire.WriteFloat32(w, float32(v.Float()))
	case reflect.Float64:
		return wire.WriteFloat64(w, v.Float())
	case reflect.String:
		return wire.WriteString(w, v.String())
	}
	return fmt.Errorf("tagwire: no scalar encoding for %s", v.Type())
}

// readScalar decodes into dst, which must be settable.
func (f *Format) readScalar(r wire.Reader, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Bool:
		b, err := wire.ReadBool(r)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Int8:
		c, err := wire.ReadByte(r)
		if err != nil {
			return err
		}
		dst.SetInt(int64(int8(c)))
	case reflect.Uint8:
		c, err := wire.ReadByte(r)
		if err != nil {
			return err
		}
		dst.SetUint(uint64(c))
	case reflect.Int16, reflect.Int32:
		u, err := wire.ReadVarInt(r)
		if err != nil {
			return err
		}
		dst.SetInt(int64(int32(u)))
	case reflect.Uint16, reflect.Uint32:
		u, err := wire.ReadVarInt(r)
		if err != nil {
			return err
		}
		dst.SetUint(uint64(u))
	case reflect.Int, reflect.Int64:
		u, err := wire.ReadVarLong(r)
		if err != nil {
			return err
		}
		dst.SetInt(int64(u))
	case reflect.Uint, reflect.Uint64:
		u, err := wire.ReadVarLong(r)
		if err != nil {
			return err
		}
		dst.SetUint(u)
	case reflect.Float32:
		x, err := wire.ReadFloat32(r)
		if err != nil {
			return err
		}
		dst.SetFloat(float64(x))
	case reflect.Float64:
		x, err := wire.ReadFloat64(r)
		if err != nil {
			return err
		}
		dst.SetFloat(x)
	case reflect.String:
		s, err := wire.ReadString(r, f.opts.MaxElements)
		if errors.Is(err, wire.ErrOverflow) {
			return corrupt("string length exceeds %d", f.opts.MaxElements)
		}
		if err != nil {
			return err
		}
		dst.SetString(s)
	default:
		return fmt.Errorf("tagwire: no scalar encoding for %s", dst.Type())
	}
	return nil
}

// scalarCodec serves predeclared and named scalar types.
type scalarCodec struct {
	f *Format
	t reflect.Type
}

func (c *scalarCodec) write(v reflect.Value, w wire.Writer) error {
	return writeScalar(v, w)
}

func (c *scalarCodec) read(r wire.Reader) (reflect.Value, error) {
	v := reflect.New(c.t).Elem()
	if err := c.f.readScalar(r, v); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

// boxedCodec serves pointers to scalar types. A nil pointer never reaches
// it; the dispatcher writes those as the null id.
type boxedCodec struct {
	f *Format
	t reflect.Type
}

func (c *boxedCodec) write(v reflect.Value, w wire.Writer) error {
	return writeScalar(v.Elem(), w)
}

func (c *boxedCodec) read(r wire.Reader) (reflect.Value, error) {
	p := reflect.New(c.t.Elem())
	if err := c.f.readScalar(r, p.Elem()); err != nil {
		return reflect.Value{}, err
	}
	return p, nil
}

// enumCodec writes the value's ordinal in the EnumValues list.
type enumCodec struct {
	t        reflect.Type
	values   []reflect.Value
	ordinals map[any]uint32
}

func newEnumCodec(t reflect.Type, values []any) (*enumCodec, error) {
	if len(values) == 0 {
		return nil, &ConstructionError{Type: t, Reason: "EnumValues is empty"}
	}
	c := &enumCodec{t: t, ordinals: make(map[any]uint32, len(values))}
	for i, x := range values {
		if reflect.TypeOf(x) != t {
			return nil, &ConstructionError{Type: t, Reason: fmt.Sprintf("EnumValues[%d] has type %T", i, x)}
		}
		if _, dup := c.ordinals[x]; dup {
			return nil, &ConstructionError{Type: t, Reason: fmt.Sprintf("EnumValues[%d] repeats %v", i, x)}
		}
		c.ordinals[x] = uint32(i)
		c.values = append(c.values, reflect.ValueOf(x))
	}
	return c, nil
}

func (c *enumCodec) write(v reflect.Value, w wire.Writer) error {
	ord, ok := c.ordinals[v.Interface()]
	if !ok {
		return fmt.Errorf("tagwire: %v is not a declared value of %s", v.Interface(), c.t)
	}
	return wire.WriteVarInt(w, ord)
}

func (c *enumCodec) read(r wire.Reader) (reflect.Value, error) {
	ord, err := wire.ReadVarInt(r)
	if err != nil {
		return reflect.Value{}, err
	}
	if ord >= uint32(len(c.values)) {
		return reflect.Value{}, corrupt("ordinal %d out of range for %s", ord, c.t)
	}
	return c.values[ord], nil
}
