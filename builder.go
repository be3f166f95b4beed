package tagwire

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/rawbytedev/tagwire/internal/common"
)

// FormatVersion is the first byte fed to every schema digest.
const FormatVersion = 1

type strategy uint8

const (
	strategyCustom strategy = iota
	strategyScalar
	strategyBoxed
	strategyTriStateArray
	strategyPrimitiveArray
	strategyEnum
	strategyIntCollection
	strategyArray
	strategyCollection
	strategyMap
	strategyStruct
)

var strategyNames = [...]string{
	strategyCustom:         "custom",
	strategyScalar:         "scalar",
	strategyBoxed:          "boxed",
	strategyTriStateArray:  "tristate-array",
	strategyPrimitiveArray: "primitive-array",
	strategyEnum:           "enum",
	strategyIntCollection:  "int-collection",
	strategyArray:          "array",
	strategyCollection:     "collection",
	strategyMap:            "map",
	strategyStruct:         "struct",
}

func (s strategy) String() string { return strategyNames[s] }

// entry is one registered type, in id order.
type entry struct {
	id       uint32
	typ      reflect.Type
	strategy strategy
	custom   Codec
	layout   *layout
	enum     *enumCodec
}

// Builder collects types and produces a Format. It is not safe for
// concurrent use and Build may be called once.
type Builder struct {
	opts    Options
	log     *zap.Logger
	entries []*entry
	ids     map[reflect.Type]uint32
	skipped map[reflect.Type]struct{}
	digest  hash.Hash
	errs    []error
	built   bool
}

// New returns a Builder with default Options.
func New() *Builder {
	return NewBuilder(Options{})
}

func NewBuilder(opts Options) *Builder {
	opts = opts.withDefaults()
	b := &Builder{
		opts:    opts,
		log:     opts.Logger,
		ids:     make(map[reflect.Type]uint32),
		skipped: make(map[reflect.Type]struct{}),
	}
	h, err := opts.newHash()
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	h.Write([]byte{FormatVersion})
	b.digest = h
	return b
}

// Register registers the dynamic type of sample and every type reachable
// from its fields. Registering a type twice is a no-op.
func (b *Builder) Register(sample any) *Builder {
	if sample == nil {
		b.errs = append(b.errs, fmt.Errorf("tagwire: cannot register untyped nil"))
		return b
	}
	return b.RegisterType(reflect.TypeOf(sample))
}

// RegisterType is Register for a reflect.Type.
func (b *Builder) RegisterType(t reflect.Type) *Builder {
	if b.built {
		b.errs = append(b.errs, ErrAlreadyBuilt)
		return b
	}
	pending := []reflect.Type{t}
	for len(pending) > 0 {
		var next []reflect.Type
		for _, t := range pending {
			required, err := b.add(t)
			if err != nil {
				b.errs = append(b.errs, err)
				continue
			}
			next = append(next, required...)
		}
		pending = b.fresh(next)
	}
	return b
}

// RegisterCodec binds c to the dynamic type of sample instead of a
// generated codec.
func (b *Builder) RegisterCodec(sample any, c Codec) *Builder {
	if b.built {
		b.errs = append(b.errs, ErrAlreadyBuilt)
		return b
	}
	if sample == nil || c == nil {
		b.errs = append(b.errs, fmt.Errorf("tagwire: RegisterCodec needs a typed sample and a codec"))
		return b
	}
	t := reflect.TypeOf(sample)
	if _, ok := b.ids[t]; ok {
		b.errs = append(b.errs, &ConstructionError{Type: t, Reason: "already registered"})
		return b
	}
	b.assign(&entry{typ: t, strategy: strategyCustom, custom: c})
	b.sum(common.TypeName(reflect.TypeOf(c)))
	return b
}

// fresh dedupes the next closure round, drops known types and sorts the
// rest by name. Distinct types sharing a name keep their discovery order.
func (b *Builder) fresh(types []reflect.Type) []reflect.Type {
	seen := make(map[reflect.Type]bool, len(types))
	out := types[:0]
	for _, t := range types {
		if seen[t] || b.known(t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return common.TypeName(out[i]) < common.TypeName(out[j])
	})
	return out
}

func (b *Builder) known(t reflect.Type) bool {
	if _, ok := b.ids[t]; ok {
		return true
	}
	_, ok := b.skipped[t]
	return ok
}

// add classifies t, assigns its id and returns the types its codec refers
// to.
func (b *Builder) add(t reflect.Type) ([]reflect.Type, error) {
	if t == nil || b.known(t) {
		return nil, nil
	}
	if t.Kind() == reflect.Interface {
		b.skipped[t] = struct{}{}
		b.log.Info("skipping interface type", zap.String("type", common.TypeName(t)))
		return nil, nil
	}
	e := &entry{typ: t}
	required, err := classify(e)
	if err != nil {
		return nil, err
	}
	b.assign(e)
	if e.layout != nil {
		for _, name := range e.layout.names {
			b.sum(name)
		}
	}
	return required, nil
}

func (b *Builder) assign(e *entry) {
	e.id = uint32(len(b.entries) + 1)
	b.entries = append(b.entries, e)
	b.ids[e.typ] = e.id
	b.sum(common.TypeName(e.typ))
	b.log.Debug("registered type",
		zap.Uint32("id", e.id),
		zap.String("type", common.TypeName(e.typ)),
		zap.Stringer("strategy", e.strategy))
}

func (b *Builder) sum(s string) {
	if b.digest != nil {
		b.digest.Write([]byte(s))
	}
}

// classify picks the strategy for e.typ. Order matters: a type matching
// several rules takes the first.
func classify(e *entry) ([]reflect.Type, error) {
	t := e.typ
	k := t.Kind()
	switch {
	case common.IsUnsupportedKind(k):
		return nil, &ConstructionError{Type: t, Reason: "unsupported kind " + k.String()}
	case common.IsPredeclared(t):
		e.strategy = strategyScalar
		return nil, nil
	case k == reflect.Pointer && common.IsPredeclared(t.Elem()):
		e.strategy = strategyBoxed
		return nil, nil
	case isSequence(k) && t.Elem().Kind() == reflect.Pointer && t.Elem().Elem().Kind() == reflect.Bool:
		e.strategy = strategyTriStateArray
		return nil, nil
	case isSequence(k) && isPrimitiveElem(t.Elem()):
		e.strategy = strategyPrimitiveArray
		return nil, nil
	case k != reflect.Pointer && t.Name() != "" && t.Implements(enumType):
		if !t.Comparable() {
			return nil, &ConstructionError{Type: t, Reason: "enum type is not comparable"}
		}
		values := reflect.Zero(t).Interface().(Enum).EnumValues()
		c, err := newEnumCodec(t, values)
		if err != nil {
			return nil, err
		}
		e.strategy, e.enum = strategyEnum, c
		return nil, nil
	case k == reflect.Pointer && t.Implements(intCollectionType):
		e.strategy = strategyIntCollection
		return nil, nil
	case isSequence(k):
		e.strategy = strategyArray
		return requiredOf(t.Elem()), nil
	case k == reflect.Pointer && t.Implements(collectionType):
		e.strategy = strategyCollection
		return nil, nil
	case k == reflect.Map:
		e.strategy = strategyMap
		return append(requiredOf(t.Key()), requiredOf(t.Elem())...), nil
	case common.IsScalarKind(k):
		e.strategy = strategyScalar
		return nil, nil
	case k == reflect.Pointer && common.IsScalarKind(t.Elem().Kind()):
		e.strategy = strategyBoxed
		return nil, nil
	case k == reflect.Struct, k == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		st := t
		if k == reflect.Pointer {
			st = t.Elem()
		}
		l, err := extractLayout(st)
		if err != nil {
			return nil, err
		}
		e.strategy, e.layout = strategyStruct, l
		return l.required, nil
	}
	return nil, &ConstructionError{Type: t, Reason: "no codec strategy for kind " + k.String()}
}

func isSequence(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}

func isPrimitiveElem(t reflect.Type) bool {
	k := t.Kind()
	return common.IsScalarKind(k) && k != reflect.String && !t.Implements(enumType)
}

// requiredOf returns t unless values of t carry their own type id.
func requiredOf(t reflect.Type) []reflect.Type {
	if t.Kind() == reflect.Interface {
		return nil
	}
	return []reflect.Type{t}
}

// Build finishes registration and returns the Format. Errors recorded by
// earlier Register calls are returned joined.
func (b *Builder) Build() (*Format, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	f := &Format{
		opts:    b.opts,
		ids:     b.ids,
		entries: b.entries,
		codecs:  make([]codec, len(b.entries)),
	}
	for i, e := range b.entries {
		f.codecs[i] = newCodec(f, e)
	}
	f.digest = b.digest.Sum(nil)
	b.log.Debug("built format",
		zap.Int("types", len(b.entries)),
		zap.String("digest", hex.EncodeToString(f.digest)))
	return f, nil
}

func newCodec(f *Format, e *entry) codec {
	switch e.strategy {
	case strategyCustom:
		return &customCodec{f: f, t: e.typ, c: e.custom}
	case strategyScalar:
		return &scalarCodec{f: f, t: e.typ}
	case strategyBoxed:
		return &boxedCodec{f: f, t: e.typ}
	case strategyTriStateArray:
		return &triStateArrayCodec{f: f, t: e.typ}
	case strategyPrimitiveArray:
		return &primitiveArrayCodec{f: f, t: e.typ, kind: e.typ.Elem().Kind()}
	case strategyEnum:
		return e.enum
	case strategyIntCollection:
		return &intCollectionCodec{f: f, t: e.typ}
	case strategyArray:
		return &refArrayCodec{f: f, t: e.typ}
	case strategyCollection:
		return &collectionCodec{f: f, t: e.typ}
	case strategyMap:
		return &mapCodec{f: f, t: e.typ}
	default:
		return &structCodec{f: f, ptr: e.typ.Kind() == reflect.Pointer, l: e.layout}
	}
}
