// Package errs defines the failure taxonomy shared by the locator, the process
// bridge and the host command surface. Every failure that reaches a caller is
// an *Error carrying one Kind, so callers can branch with errors.Is against the
// sentinels below without parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies where a round trip failed.
type Kind string

const (
	KindLocator       Kind = "locator"
	KindEncode        Kind = "encode"
	KindSpawn         Kind = "spawn"
	KindWrite         Kind = "write"
	KindEngine        Kind = "engine"
	KindDecode        Kind = "decode"
	KindIO            Kind = "io"
	KindUnimplemented Kind = "unimplemented"
)

// Error is a classified failure. Msg is the human-readable diagnostic and Err
// the underlying cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrLocator       = &Error{Kind: KindLocator}
	ErrEncode        = &Error{Kind: KindEncode}
	ErrSpawn         = &Error{Kind: KindSpawn}
	ErrWrite         = &Error{Kind: KindWrite}
	ErrEngine        = &Error{Kind: KindEngine}
	ErrDecode        = &Error{Kind: KindDecode}
	ErrIO            = &Error{Kind: KindIO}
	ErrUnimplemented = &Error{Kind: KindUnimplemented}
)

// New builds a classified error with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a classified error around cause.
func Wrap(kind Kind, op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
