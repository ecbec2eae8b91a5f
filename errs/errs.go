// Package errs holds the sentinel error taxonomy shared by fastx's core
// packages, so callers can dispatch on error kind with errors.Is/errors.As
// instead of string matching.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code identifies an error's place in the taxonomy.
type Code int

const (
	CodeUnknown Code = iota
	CodeNotFound
	CodeIndexOutOfRange
	CodeFormatError
	CodeGzipError
	CodeIndexStale
	CodeCursorConflict
	CodeIoError
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "NotFound"
	case CodeIndexOutOfRange:
		return "IndexOutOfRange"
	case CodeFormatError:
		return "FormatError"
	case CodeGzipError:
		return "GzipError"
	case CodeIndexStale:
		return "IndexStale"
	case CodeCursorConflict:
		return "CursorConflict"
	case CodeIoError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried through the taxonomy. Wrap an
// underlying cause with one of the constructors below; match on kind with
// errors.Is against the sentinel values, or recover the Code via As.
type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Unwrap and Cause both delegate to the wrapped error, so the taxonomy
// plays along with both stdlib errors.Is/As and pkg/errors.Cause, matching
// how the rest of the codebase inspects errors.
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Cause() error  { return e.err }

// Code reports which taxonomy entry this error belongs to.
func (e *Error) Code() Code { return e.code }

// Is makes errors.Is(err, errs.NotFound) etc. work against the sentinels
// below: two *Error values are "the same" error for dispatch purposes when
// they share a Code, regardless of message or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// Sentinel values for errors.Is comparisons.
var (
	NotFound        = &Error{code: CodeNotFound, msg: "not found"}
	IndexOutOfRange = &Error{code: CodeIndexOutOfRange, msg: "index out of range"}
	FormatError     = &Error{code: CodeFormatError, msg: "format error"}
	GzipError       = &Error{code: CodeGzipError, msg: "gzip error"}
	IndexStale      = &Error{code: CodeIndexStale, msg: "index stale"}
	CursorConflict  = &Error{code: CodeCursorConflict, msg: "cursor conflict"}
	IoError         = &Error{code: CodeIoError, msg: "io error"}
)

func new_(code Code, format string, args []interface{}) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// wrap attaches err as the cause, via errors.Wrap so the pkg/errors stack
// trace is captured at the call boundary, same as the rest of the codebase.
func wrap(code Code, err error, format string, args []interface{}) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...), err: errors.Wrap(err, fmt.Sprintf(format, args...))}
}

func NewNotFound(format string, args ...interface{}) error {
	return new_(CodeNotFound, format, args)
}

func NewIndexOutOfRange(format string, args ...interface{}) error {
	return new_(CodeIndexOutOfRange, format, args)
}

func NewFormatError(format string, args ...interface{}) error {
	return new_(CodeFormatError, format, args)
}

func WrapFormatError(err error, format string, args ...interface{}) error {
	return wrap(CodeFormatError, err, format, args)
}

func NewGzipError(format string, args ...interface{}) error {
	return new_(CodeGzipError, format, args)
}

func WrapGzipError(err error, format string, args ...interface{}) error {
	return wrap(CodeGzipError, err, format, args)
}

func NewIndexStale(format string, args ...interface{}) error {
	return new_(CodeIndexStale, format, args)
}

func NewCursorConflict(format string, args ...interface{}) error {
	return new_(CodeCursorConflict, format, args)
}

func WrapIoError(err error, format string, args ...interface{}) error {
	return wrap(CodeIoError, err, format, args)
}
