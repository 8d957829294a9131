// Package errors defines the failure kinds a request can end with.
//
// HTTP status codes are never errors here. A 404 or 503 is a successful
// exchange; callers inspect the response for that.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"syscall"
)

// Kind classifies a request failure.
type Kind int

const (
	// Unknown is the zero Kind and is never produced by this module.
	Unknown Kind = iota
	// InvalidURL means the target could not be resolved to an absolute URL.
	InvalidURL
	// InvalidArgument means the caller supplied a bad method, option or body.
	InvalidArgument
	// ConnectError means the socket (or proxy tunnel) could not be opened.
	ConnectError
	// WriteError means the request bytes could not be written in full.
	WriteError
	// ReadError means the connection failed while reading the response.
	ReadError
	// TimeoutError means the connect or read phase exceeded its deadline.
	TimeoutError
	// Canceled means the caller canceled the context.
	Canceled
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case InvalidURL:
		return "InvalidUrl"
	case InvalidArgument:
		return "InvalidArgument"
	case ConnectError:
		return "ConnectError"
	case WriteError:
		return "WriteError"
	case ReadError:
		return "ReadError"
	case TimeoutError:
		return "TimeoutError"
	case Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Retryable reports whether a request that failed with this kind may be
// attempted again.
func (k Kind) Retryable() bool {
	switch k {
	case ConnectError, WriteError, ReadError, TimeoutError:
		return true
	default:
		return false
	}
}

// Error is the concrete error type returned by the client and its drivers.
type Error struct {
	Kind Kind
	// Op names the phase that failed, e.g. "dial", "resolve", "write".
	Op string
	// Errno is the OS error number when one is known, otherwise 0.
	Errno int
	Err   error
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind and operation to an underlying error. The errno is
// taken from the wrapped chain when present.
func Wrap(kind Kind, op string, err error) *Error {
	e := &Error{Kind: kind, Op: op, Err: err}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		e.Errno = int(errno)
	}
	return e
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += " (" + e.Op + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind so callers can write
// errors.Is(err, &Error{Kind: TimeoutError}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// KindOf extracts the kind from err. Context errors that were not wrapped
// are mapped as well.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return TimeoutError
	}
	if stderrors.Is(err, context.Canceled) {
		return Canceled
	}
	return Unknown
}

// IsRetryable reports whether err is of a retryable kind.
func IsRetryable(err error) bool {
	return KindOf(err).Retryable()
}

// Errno returns the OS error number carried by err, or 0.
func Errno(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Errno
	}
	return 0
}

// FromContext converts a context error into the matching kind.
func FromContext(op string, err error) *Error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return Wrap(TimeoutError, op, err)
	}
	return Wrap(Canceled, op, err)
}
