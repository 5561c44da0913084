package projection

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates compilation failures.
type ErrorKind string

const (
	// KindContract marks invalid top-level arguments: an empty selection or a
	// type name that does not resolve to an object type.
	KindContract ErrorKind = "CONTRACT_VIOLATION"
	// KindSchemaMismatch marks a requested field with no metadata entry on
	// its owning type. These fail loudly: silently dropping the field would
	// produce an incomplete projection indistinguishable from a correct one.
	KindSchemaMismatch ErrorKind = "SCHEMA_MISMATCH"
	// KindFragmentNotFound marks a spread whose fragment has no definition.
	KindFragmentNotFound ErrorKind = "FRAGMENT_NOT_FOUND"
	// KindFragmentCycle marks a fragment that transitively spreads itself.
	KindFragmentCycle ErrorKind = "FRAGMENT_CYCLE"
)

// Error is a compilation failure with a discriminated kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// IsKind reports whether err is a compilation Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func errContract(format string, args ...any) *Error {
	return &Error{Kind: KindContract, Message: fmt.Sprintf(format, args...)}
}

func errSchemaMismatch(format string, args ...any) *Error {
	return &Error{Kind: KindSchemaMismatch, Message: fmt.Sprintf(format, args...)}
}

func errFragmentNotFound(name string) *Error {
	return &Error{Kind: KindFragmentNotFound, Message: fmt.Sprintf("no definition for fragment %q", name)}
}

func errFragmentCycle(name string) *Error {
	return &Error{Kind: KindFragmentCycle, Message: fmt.Sprintf("fragment %q transitively spreads itself", name)}
}
