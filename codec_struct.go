package tagwire

import (
	"reflect"

	"github.com/rawbytedev/tagwire/pkg/wire"
)

// structCodec serves struct types and pointers to them. The payload is the
// flag block (nullable bools, then bools) followed by the remaining fields
// in layout order.
type structCodec struct {
	f   *Format
	ptr bool
	l   *layout
}

func (c *structCodec) write(v reflect.Value, w wire.Writer) error {
	if c.ptr {
		v = v.Elem()
	} else if c.l.needsAddr && !v.CanAddr() {
		tmp := reflect.New(c.l.typ).Elem()
		tmp.Set(v)
		v = tmp
	}
	if len(c.l.nullable)+len(c.l.flags) > 0 {
		bw := bitWriter{w: w}
		for _, fl := range c.l.nullable {
			if err := bw.putTri(fl.load(v)); err != nil {
				return err
			}
		}
		for _, fl := range c.l.flags {
			var bit byte
			if fl.load(v).Bool() {
				bit = 1
			}
			if err := bw.put(bit, 1); err != nil {
				return err
			}
		}
		if err := bw.flush(); err != nil {
			return err
		}
	}
	for _, fl := range c.l.fields {
		x := fl.load(v)
		var err error
		if fl.class == classInline {
			err = writeScalar(x, w)
		} else {
			err = c.f.writeValue(x, w)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *structCodec) read(r wire.Reader) (reflect.Value, error) {
	p := reflect.New(c.l.typ)
	sv := p.Elem()
	if len(c.l.nullable)+len(c.l.flags) > 0 {
		br := newBitReader(r)
		for _, fl := range c.l.nullable {
			x, err := br.getTri(fl.typ)
			if err != nil {
				return reflect.Value{}, err
			}
			fl.store(sv, x)
		}
		for _, fl := range c.l.flags {
			bit, err := br.get(1)
			if err != nil {
				return reflect.Value{}, err
			}
			x := reflect.New(fl.typ).Elem()
			x.SetBool(bit == 1)
			fl.store(sv, x)
		}
	}
	for _, fl := range c.l.fields {
		if fl.class == classInline {
			dst, ok := fl.direct(sv)
			if !ok {
				dst = reflect.New(fl.typ).Elem()
			}
			if err := c.f.readScalar(r, dst); err != nil {
				return reflect.Value{}, err
			}
			if !ok {
				fl.store(sv, dst)
			}
			continue
		}
		x, err := c.f.readInto(r, fl.typ)
		if err != nil {
			return reflect.Value{}, err
		}
		fl.store(sv, x)
	}
	if c.ptr {
		return p, nil
	}
	return sv, nil
}
