package tagwire

import (
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/rawbytedev/tagwire/internal/common"
)

// TagName is the struct tag consulted by the layout walker. A value of "-"
// keeps the field off the wire.
const TagName = "tagwire"

type fieldClass uint8

const (
	classFlag     fieldClass = iota // bool, one bit in the flag block
	classNullable                   // *bool, two bits in the flag block
	classInline                     // scalar kinds written without a type id
	classRef                        // anything else, written through the dispatcher
)

type field struct {
	name   string
	index  []int
	typ    reflect.Type
	class  fieldClass
	getter *reflect.Method
	setter *reflect.Method
}

// load returns the field value of sv. sv must be addressable when the
// field is reached through accessors.
func (fl *field) load(sv reflect.Value) reflect.Value {
	if fl.getter == nil {
		return sv.FieldByIndex(fl.index)
	}
	return fl.getter.Func.Call([]reflect.Value{sv.Addr()})[0]
}

func (fl *field) store(sv, x reflect.Value) {
	if fl.setter == nil {
		sv.FieldByIndex(fl.index).Set(x)
		return
	}
	fl.setter.Func.Call([]reflect.Value{sv.Addr(), x})
}

// direct returns the settable field itself, or false when accessors are used.
func (fl *field) direct(sv reflect.Value) (reflect.Value, bool) {
	if fl.setter != nil {
		return reflect.Value{}, false
	}
	return sv.FieldByIndex(fl.index), true
}

// layout is the resolved field plan of one struct type.
type layout struct {
	typ       reflect.Type
	names     []string // every field, traversal order
	nullable  []*field
	flags     []*field
	fields    []*field
	needsAddr bool
	required  []reflect.Type
}

// extractLayout walks st's own fields in declaration order, then the fields
// of each embedded struct value, depth first. A name seen earlier hides any
// later field with the same name.
func extractLayout(st reflect.Type) (*layout, error) {
	l := &layout{typ: st}
	seen := make(map[string]bool)
	probe := reflect.New(st).Elem()
	if err := l.walk(st, nil, seen, probe); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *layout) walk(t reflect.Type, prefix []int, seen map[string]bool, probe reflect.Value) error {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			embedded = append(embedded, sf)
			continue
		}
		if sf.Name == "_" || sf.Tag.Get(TagName) == "-" || seen[sf.Name] {
			continue
		}
		seen[sf.Name] = true
		index := append(append([]int(nil), prefix...), i)
		fl, err := l.resolve(sf, index, probe)
		if err != nil {
			return err
		}
		l.names = append(l.names, fl.name)
		switch fl.class {
		case classFlag:
			l.flags = append(l.flags, fl)
		case classNullable:
			l.nullable = append(l.nullable, fl)
		default:
			l.fields = append(l.fields, fl)
		}
	}
	for _, sf := range embedded {
		if sf.Tag.Get(TagName) == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), sf.Index...)
		if err := l.walk(sf.Type, index, seen, probe); err != nil {
			return err
		}
	}
	return nil
}

func (l *layout) resolve(sf reflect.StructField, index []int, probe reflect.Value) (*field, error) {
	fl := &field{name: sf.Name, index: index, typ: sf.Type}
	k := sf.Type.Kind()
	switch {
	case k != reflect.Pointer && k != reflect.Interface && sf.Type.Implements(enumType):
		fl.class = classRef
		l.required = append(l.required, sf.Type)
	case k == reflect.Bool:
		fl.class = classFlag
	case k == reflect.Pointer && sf.Type.Elem().Kind() == reflect.Bool:
		fl.class = classNullable
	case common.IsScalarKind(k):
		fl.class = classInline
	case common.IsUnsupportedKind(k):
		return nil, &ConstructionError{Type: l.typ, Field: sf.Name, Reason: "unsupported field kind " + k.String()}
	default:
		fl.class = classRef
		if k != reflect.Interface {
			l.required = append(l.required, sf.Type)
		}
	}
	if probe.FieldByIndex(index).CanSet() {
		return fl, nil
	}
	if err := l.accessors(fl); err != nil {
		return nil, err
	}
	return fl, nil
}

// accessors binds Name/GetName/IsName and SetName on the pointer type.
func (l *layout) accessors(fl *field) error {
	pt := reflect.PointerTo(l.typ)
	exported := upperFirst(fl.name)
	getters := []string{exported, "Get" + exported}
	if fl.class == classFlag || fl.class == classNullable {
		getters = append(getters, "Is"+exported)
	}
	for _, name := range getters {
		m, ok := pt.MethodByName(name)
		if ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0) == fl.typ {
			fl.getter = &m
			break
		}
	}
	if fl.getter == nil {
		return &ConstructionError{Type: l.typ, Field: fl.name, Reason: "unexported field has no getter"}
	}
	m, ok := pt.MethodByName("Set" + exported)
	if !ok || m.Type.NumIn() != 2 || m.Type.In(1) != fl.typ || m.Type.NumOut() != 0 {
		return &ConstructionError{Type: l.typ, Field: fl.name, Reason: "unexported field has no setter"}
	}
	fl.setter = &m
	l.needsAddr = true
	return nil
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// fieldTags lists "name type" pairs in wire order for schema listings.
func (l *layout) fieldTags() []string {
	out := make([]string, 0, len(l.names))
	for _, group := range [][]*field{l.nullable, l.flags, l.fields} {
		for _, fl := range group {
			out = append(out, fl.name+" "+common.TypeName(fl.typ))
		}
	}
	return out
}
