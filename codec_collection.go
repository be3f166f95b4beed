package tagwire

import (
	"fmt"
	"reflect"

	"github.com/rawbytedev/tagwire/internal/common"
	"github.com/rawbytedev/tagwire/pkg/wire"
)

// collectionCodec serves pointer types implementing Collection.
type collectionCodec struct {
	f *Format
	t reflect.Type
}

func (c *collectionCodec) write(v reflect.Value, w wire.Writer) error {
	coll := v.Interface().(Collection)
	items := make([]any, 0, coll.Len())
	coll.Range(func(x any) bool {
		items = append(items, x)
		return true
	})
	if err := wire.WriteVarInt(w, uint32(len(items))); err != nil {
		return err
	}
	for _, x := range items {
		if err := c.f.writeValue(reflect.ValueOf(x), w); err != nil {
			return err
		}
	}
	return nil
}

func (c *collectionCodec) read(r wire.Reader) (reflect.Value, error) {
	n, err := c.f.readCount(r)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(c.t.Elem())
	coll := p.Interface().(Collection)
	for i := 0; i < n; i++ {
		x, err := c.f.readValue(r)
		if err != nil {
			return reflect.Value{}, err
		}
		var item any
		if x.IsValid() {
			item = x.Interface()
		}
		if err := coll.Add(item); err != nil {
			return reflect.Value{}, fmt.Errorf("tagwire: %s element %d: %w", c.t, i, err)
		}
	}
	return p, nil
}

// intCollectionCodec serves pointer types implementing IntCollection.
type intCollectionCodec struct {
	f *Format
	t reflect.Type
}

func (c *intCollectionCodec) write(v reflect.Value, w wire.Writer) error {
	coll := v.Interface().(IntCollection)
	items := make([]int64, 0, coll.Len())
	coll.RangeInts(func(x int64) bool {
		items = append(items, x)
		return true
	})
	if err := wire.WriteVarInt(w, uint32(len(items))); err != nil {
		return err
	}
	for _, x := range items {
		if err := wire.WriteVarLong(w, uint64(x)); err != nil {
			return err
		}
	}
	return nil
}

func (c *intCollectionCodec) read(r wire.Reader) (reflect.Value, error) {
	n, err := c.f.readCount(r)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(c.t.Elem())
	coll := p.Interface().(IntCollection)
	for i := 0; i < n; i++ {
		x, err := wire.ReadVarLong(r)
		if err != nil {
			return reflect.Value{}, err
		}
		coll.AddInt(int64(x))
	}
	return p, nil
}

// mapCodec writes the entry count, then each key and value through the
// dispatcher. Entry order follows map iteration and is not stable.
type mapCodec struct {
	f *Format
	t reflect.Type
}

func (c *mapCodec) write(v reflect.Value, w wire.Writer) error {
	if err := wire.WriteVarInt(w, uint32(v.Len())); err != nil {
		return err
	}
	it := v.MapRange()
	for it.Next() {
		if err := c.f.writeValue(it.Key(), w); err != nil {
			return err
		}
		if err := c.f.writeValue(it.Value(), w); err != nil {
			return err
		}
	}
	return nil
}

func (c *mapCodec) read(r wire.Reader) (reflect.Value, error) {
	n, err := c.f.readCount(r)
	if err != nil {
		return reflect.Value{}, err
	}
	m := reflect.MakeMapWithSize(c.t, n)
	kt, vt := c.t.Key(), c.t.Elem()
	for i := 0; i < n; i++ {
		k, err := c.f.readInto(r, kt)
		if err != nil {
			return reflect.Value{}, err
		}
		if !hashable(k) {
			return reflect.Value{}, corrupt("unhashable map key %s", common.TypeName(k.Type()))
		}
		x, err := c.f.readInto(r, vt)
		if err != nil {
			return reflect.Value{}, err
		}
		m.SetMapIndex(k, x)
	}
	return m, nil
}

// hashable reports whether v can be used as a map key. A comparable static
// type may still hold a slice or map behind an interface field.
func hashable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface:
		return v.IsNil() || hashable(v.Elem())
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !hashable(v.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !hashable(v.Field(i)) {
				return false
			}
		}
		return true
	default:
		return v.Type().Comparable()
	}
}
