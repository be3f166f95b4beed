package tagwire

import (
	"reflect"

	"github.com/rawbytedev/tagwire/pkg/wire"
)

// Tri-state codes for nullable booleans. 00 is never written.
const (
	triNil   = 0b01
	triFalse = 0b10
	triTrue  = 0b11
)

// bitWriter packs groups of 1 or 2 bits least significant bit first and
// emits a byte each time 8 bits are filled.
type bitWriter struct {
	w   wire.Writer
	cur byte
	n   uint
}

func (b *bitWriter) put(bits byte, width uint) error {
	b.cur |= bits << b.n
	b.n += width
	if b.n < 8 {
		return nil
	}
	return b.flush()
}

func (b *bitWriter) putTri(v reflect.Value) error {
	switch {
	case v.IsNil():
		return b.put(triNil, 2)
	case v.Elem().Bool():
		return b.put(triTrue, 2)
	default:
		return b.put(triFalse, 2)
	}
}

// flush writes the partially filled byte, if any.
func (b *bitWriter) flush() error {
	if b.n == 0 {
		return nil
	}
	err := b.w.WriteByte(b.cur)
	b.cur, b.n = 0, 0
	return err
}

type bitReader struct {
	r   wire.Reader
	cur byte
	n   uint
}

func newBitReader(r wire.Reader) *bitReader {
	return &bitReader{r: r, n: 8}
}

func (b *bitReader) get(width uint) (byte, error) {
	if b.n >= 8 {
		c, err := wire.ReadByte(b.r)
		if err != nil {
			return 0, err
		}
		b.cur, b.n = c, 0
	}
	x := (b.cur >> b.n) & (1<<width - 1)
	b.n += width
	return x, nil
}

// getTri returns a new *bool of type t, or its nil value.
func (b *bitReader) getTri(t reflect.Type) (reflect.Value, error) {
	code, err := b.get(2)
	if err != nil {
		return reflect.Value{}, err
	}
	switch code {
	case triNil:
		return reflect.Zero(t), nil
	case triFalse, triTrue:
		p := reflect.New(t.Elem())
		p.Elem().SetBool(code == triTrue)
		return p, nil
	}
	return reflect.Value{}, corrupt("invalid tri-state boolean %02b", code)
}

// makeSequence allocates a slice of n elements, or checks n against the
// length of an array type.
func makeSequence(t reflect.Type, n int) (reflect.Value, error) {
	if t.Kind() == reflect.Array {
		if n != t.Len() {
			return reflect.Value{}, corrupt("%d elements for %s", n, t)
		}
		return reflect.New(t).Elem(), nil
	}
	return reflect.MakeSlice(t, n, n), nil
}

// primitiveArrayCodec serves slices and arrays of scalar non-string kinds.
// Bools are bit packed and bytes are copied as one run; everything else is
// written element by element with the scalar encoding.
type primitiveArrayCodec struct {
	f    *Format
	t    reflect.Type
	kind reflect.Kind
}

func (c *primitiveArrayCodec) write(v reflect.Value, w wire.Writer) error {
	n := v.Len()
	if err := wire.WriteVarInt(w, uint32(n)); err != nil {
		return err
	}
	switch c.kind {
	case reflect.Bool:
		bw := bitWriter{w: w}
		for i := 0; i < n; i++ {
			var bit byte
			if v.Index(i).Bool() {
				bit = 1
			}
			if err := bw.put(bit, 1); err != nil {
				return err
			}
		}
		return bw.flush()
	case reflect.Uint8, reflect.Int8:
		if n == 0 {
			return nil
		}
		var buf []byte
		if c.kind == reflect.Uint8 && v.Kind() == reflect.Slice {
			buf = v.Bytes()
		} else {
			buf = make([]byte, n)
			for i := range buf {
				e := v.Index(i)
				if c.kind == reflect.Int8 {
					buf[i] = byte(e.Int())
				} else {
					buf[i] = byte(e.Uint())
				}
			}
		}
		_, err := w.Write(buf)
		return err
	}
	for i := 0; i < n; i++ {
		if err := writeScalar(v.Index(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (c *primitiveArrayCodec) read(r wire.Reader) (reflect.Value, error) {
	n, err := c.f.readCount(r)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := makeSequence(c.t, n)
	if err != nil {
		return reflect.Value{}, err
	}
	switch c.kind {
	case reflect.Bool:
		br := newBitReader(r)
		for i := 0; i < n; i++ {
			bit, err := br.get(1)
			if err != nil {
				return reflect.Value{}, err
			}
			v.Index(i).SetBool(bit == 1)
		}
		return v, nil
	case reflect.Uint8, reflect.Int8:
		buf := make([]byte, n)
		if err := wire.Fill(r, buf); err != nil {
			return reflect.Value{}, err
		}
		for i, b := range buf {
			if c.kind == reflect.Int8 {
				v.Index(i).SetInt(int64(int8(b)))
			} else {
				v.Index(i).SetUint(uint64(b))
			}
		}
		return v, nil
	}
	for i := 0; i < n; i++ {
		if err := c.f.readScalar(r, v.Index(i)); err != nil {
			return reflect.Value{}, err
		}
	}
	return v, nil
}

// triStateArrayCodec serves slices and arrays of *bool, four elements per
// byte.
type triStateArrayCodec struct {
	f *Format
	t reflect.Type
}

func (c *triStateArrayCodec) write(v reflect.Value, w wire.Writer) error {
	n := v.Len()
	if err := wire.WriteVarInt(w, uint32(n)); err != nil {
		return err
	}
	bw := bitWriter{w: w}
	for i := 0; i < n; i++ {
		if err := bw.putTri(v.Index(i)); err != nil {
			return err
		}
	}
	return bw.flush()
}

func (c *triStateArrayCodec) read(r wire.Reader) (reflect.Value, error) {
	n, err := c.f.readCount(r)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := makeSequence(c.t, n)
	if err != nil {
		return reflect.Value{}, err
	}
	br := newBitReader(r)
	elem := c.t.Elem()
	for i := 0; i < n; i++ {
		x, err := br.getTri(elem)
		if err != nil {
			return reflect.Value{}, err
		}
		v.Index(i).Set(x)
	}
	return v, nil
}

// refArrayCodec serves every other slice and array type. Each element is
// written through the dispatcher with its own type id.
type refArrayCodec struct {
	f *Format
	t reflect.Type
}

func (c *refArrayCodec) write(v reflect.Value, w wire.Writer) error {
	n := v.Len()
	if err := wire.WriteVarInt(w, uint32(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := c.f.writeValue(v.Index(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (c *refArrayCodec) read(r wire.Reader) (reflect.Value, error) {
	n, err := c.f.readCount(r)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := makeSequence(c.t, n)
	if err != nil {
		return reflect.Value{}, err
	}
	elem := c.t.Elem()
	for i := 0; i < n; i++ {
		x, err := c.f.readInto(r, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		v.Index(i).Set(x)
	}
	return v, nil
}
