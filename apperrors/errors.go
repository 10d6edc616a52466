// apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Error is the domain error returned by services and stores.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Message safe to show to the caller
	Metadata map[string]string // Extra context for logs
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface. The cause is included so logs keep
// it; use PublicMessage for client output.
func (e *Error) Error() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	default:
		return e.Message + ": " + e.Cause.Error()
	}
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithMetadata returns a copy of e carrying the given key/value pair.
func (e *Error) WithMetadata(key, value string) *Error {
	out := *e
	out.Metadata = make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[key] = value
	return &out
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrForbidden       = &Error{Code: CodeForbidden}
	ErrInvalidState    = &Error{Code: CodeInvalidState}
	ErrExpired         = &Error{Code: CodeExpired}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrOutOfRange      = &Error{Code: CodeOutOfRange}
	ErrInternal        = &Error{Code: CodeInternal}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
)

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// PublicMessage returns the message that may be sent to a client.
// Internal errors are reduced to a generic text.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Code == CodeInternal {
		return "internal error"
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}
