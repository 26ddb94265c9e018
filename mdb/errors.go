package mdb

import (
	"fmt"
	"strings"
)

// ErrorKind separates the three failure tiers of a binding call.
type ErrorKind string

const (
	KindUser   ErrorKind = "user"   // bad argument, unknown handle, too few arguments
	KindEngine ErrorKind = "engine" // the engine reported a failure
	KindFatal  ErrorKind = "fatal"  // handle table invariant broken
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUser   = &Error{Kind: KindUser}
	ErrEngine = &Error{Kind: KindEngine}
	ErrFatal  = &Error{Kind: KindFatal}
)

// Error is the structured error returned by Binding.Call.
type Error struct {
	Cause  error
	Kind   ErrorKind
	Op     string
	Detail string
	Code   int

	// keep tells Call to return the op's result instead of its empty value
	keep bool
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Detail != "" {
		b.WriteString(e.Detail)
	} else {
		b.WriteString(string(e.Kind))
		b.WriteString(" error")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. Targets carrying
// an Op only match errors raised by that operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

func userErrorf(op, format string, args ...any) *Error {
	return &Error{
		Kind:   KindUser,
		Op:     op,
		Code:   APIError,
		Detail: fmt.Sprintf(format, args...),
	}
}

func engineError(op string, code int, cause error) *Error {
	return &Error{
		Kind:   KindEngine,
		Op:     op,
		Code:   code,
		Detail: op + " failed",
		Cause:  cause,
	}
}

func fatalf(op, format string, args ...any) *Error {
	return &Error{
		Kind:   KindFatal,
		Op:     op,
		Code:   APIError,
		Detail: fmt.Sprintf(format, args...),
	}
}
