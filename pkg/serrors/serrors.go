// Package serrors defines semantic error kinds shared by the lookups. Lookup
// failures are never fatal; the kind is rendered into the diagnostic note of
// the affected result instead (see Note).
package serrors

import (
	"context"
	"fmt"
	"net"

	"github.com/go-faster/errors"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind. It allows distinguishing semantic kinds from ordinary errors.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind (a sentinel) with the provided name.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrTransport indicates the remote host could not be reached or the connection broke.
	ErrTransport = NewKind("TRANSPORT")
	// ErrTimeout indicates the request did not complete within its deadline.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrParse indicates the response did not have the expected shape.
	ErrParse = NewKind("PARSE")
	// ErrBadInput indicates unreadable or invalid input supplied by the caller.
	ErrBadInput = NewKind("BAD_INPUT")
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = NewKind("INTERNAL")
)

// Error represents a semantic error carrying a kind (sentinel), an optional
// wrapped error and an optional message. errors.Is and errors.As match either
// the kind or the wrapped cause.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a new semantic error with the given kind and a message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a new semantic error with the given kind wrapping err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches against either the kind sentinel or the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As enables type assertions against either the kind sentinel or the wrapped error.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the semantic kind sentinel associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Classify wraps a failed network call into ErrTimeout or ErrTransport.
// Errors that already carry a Kind are returned unchanged.
func Classify(err error, msgFmt string, args ...any) error {
	if err == nil {
		return nil
	}
	var k Kind
	if errors.As(err, &k) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Wrap(ErrTimeout, err, msgFmt, args...)
	}

	return Wrap(ErrTransport, err, msgFmt, args...)
}

// KindName returns the name of the semantic kind carried by err. Errors
// without a kind report INTERNAL.
func KindName(err error) string {
	var k Kind
	if errors.As(err, &k) {
		return k.Error()
	}

	return ErrInternal.Error()
}

// Note renders err as a diagnostic note fragment such as "rdap_error=TIMEOUT".
func Note(source string, err error) string {
	return source + "_error=" + KindName(err)
}
