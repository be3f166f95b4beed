package tagwire

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rawbytedev/tagwire/internal/common"
	"github.com/rawbytedev/tagwire/pkg/wire"
)

var (
	ErrUnexpectedEOF    = wire.ErrUnexpectedEOF
	ErrUnregisteredType = errors.New("tagwire: unregistered type")
	ErrCorruptStream    = errors.New("tagwire: corrupt stream")
	ErrConstruction     = errors.New("tagwire: cannot construct codec")
	ErrAlreadyBuilt     = errors.New("tagwire: builder already built")
	ErrSchemaMismatch   = errors.New("tagwire: schema digest mismatch")
)

// ConstructionError describes a type the builder could not generate a codec
// for. It matches ErrConstruction under errors.Is.
type ConstructionError struct {
	Type   reflect.Type
	Field  string
	Reason string
}

func (e *ConstructionError) Error() string {
	name := "<nil>"
	if e.Type != nil {
		name = common.TypeName(e.Type)
	}
	if e.Field != "" {
		return fmt.Sprintf("tagwire: %s.%s: %s", name, e.Field, e.Reason)
	}
	return fmt.Sprintf("tagwire: %s: %s", name, e.Reason)
}

func (e *ConstructionError) Unwrap() error { return ErrConstruction }

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptStream, fmt.Sprintf(format, args...))
}
