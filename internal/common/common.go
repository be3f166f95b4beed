package common

import (
	"reflect"
	"strconv"
)

// IsScalarKind reports whether k is written inline by the scalar codec.
func IsScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// IsUnsupportedKind reports kinds that can never be put on the wire.
func IsUnsupportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer,
		reflect.Complex64, reflect.Complex128, reflect.Uintptr, reflect.Invalid:
		return true
	default:
		return false
	}
}

// IsNilable reports whether IsNil may be called on values of kind k.
func IsNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface,
		reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// IsPredeclared reports whether t is one of the language's built-in scalar
// types rather than a named type declared in a package.
func IsPredeclared(t reflect.Type) bool {
	return t.PkgPath() == "" && t.Name() != "" && IsScalarKind(t.Kind())
}

// TypeName returns a name for t that is stable across builds and processes.
// Named types are qualified by their full import path, composite types are
// spelled out from their element names.
func TypeName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeName(t.Elem())
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	default:
		return t.String()
	}
}
