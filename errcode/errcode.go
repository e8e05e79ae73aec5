// Package errcode holds the error vocabulary shared by every container in
// this module. A Code is a plain integer so it can cross the type-erased
// boundary of package abi unchanged, and it implements error so the typed
// stores can return it directly.
package errcode

import (
	"fmt"

	"github.com/pkg/errors"
)

type Code uint8

const (
	OK Code = iota
	NotSupported
	BadLogic
	BadAccess
	OutOfRange
	NotFound
	AlreadyPresent
	CapacityExhausted
	InvariantViolation
)

var (
	ErrNotSupported       error = NotSupported
	ErrBadAccess          error = BadAccess
	ErrKeyNotFound        error = NotFound
	ErrKeyAlreadyPresent  error = AlreadyPresent
	ErrCapacityExhausted  error = CapacityExhausted
	ErrInvariantViolation error = InvariantViolation
)

var names = [...]string{
	OK:                 "ok",
	NotSupported:       "operation not supported",
	BadLogic:           "bad logic",
	BadAccess:          "bad access",
	OutOfRange:         "out of range",
	NotFound:           "key not found",
	AlreadyPresent:     "key already present",
	CapacityExhausted:  "capacity exhausted",
	InvariantViolation: "invariant violation",
}

func (c Code) Error() string {
	if int(c) < len(names) {
		return names[c]
	}

	return fmt.Sprintf("errcode(%d)", uint8(c))
}

func (c Code) String() string {
	return c.Error()
}

// Err converts a code into an error, mapping OK to nil.
func (c Code) Err() error {
	if c == OK {
		return nil
	}

	return c
}

// Of recovers the code carried by err. A nil error is OK, an error that
// carries no code is reported as BadLogic.
func Of(err error) Code {
	if err == nil {
		return OK
	}

	var c Code
	if errors.As(err, &c) {
		return c
	}

	return BadLogic
}

// Violation builds an InvariantViolation error annotated with a message and
// the caller's stack.
func Violation(format string, args ...any) error {
	return errors.Wrapf(ErrInvariantViolation, format, args...)
}

// Abort panics with an InvariantViolation. It is reserved for states that
// correct code can never reach.
func Abort(format string, args ...any) {
	panic(Violation(format, args...))
}
