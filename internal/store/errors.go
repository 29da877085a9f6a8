package store

import (
	"errors"
	"fmt"
)

// Code categorizes store failures.
type Code string

const (
	// CodeConnection indicates the database could not be opened or reached.
	CodeConnection Code = "CONNECTION"

	// CodeSchema indicates the tags/tag_assignments DDL failed.
	CodeSchema Code = "SCHEMA"

	// CodeStatement indicates a fixed query could not be prepared.
	CodeStatement Code = "STATEMENT"

	// CodeExecution indicates an operation failed at execution time.
	CodeExecution Code = "EXECUTION"

	// CodeRowConversion indicates the caller's Materializer failed on a row.
	CodeRowConversion Code = "ROW_CONVERSION"

	// CodeClosed indicates the store was used after Close.
	CodeClosed Code = "CLOSED"
)

// ErrClosed is wrapped by every error returned after Close.
var ErrClosed = errors.New("store is closed")

// Error is the error type returned by all store operations.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the failing operation (e.g. "create tag").
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func hasCode(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsConnectionError reports whether err is a CodeConnection error.
func IsConnectionError(err error) bool { return hasCode(err, CodeConnection) }

// IsSchemaError reports whether err is a CodeSchema error.
func IsSchemaError(err error) bool { return hasCode(err, CodeSchema) }

// IsStatementError reports whether err is a CodeStatement error.
func IsStatementError(err error) bool { return hasCode(err, CodeStatement) }

// IsExecutionError reports whether err is a CodeExecution error.
func IsExecutionError(err error) bool { return hasCode(err, CodeExecution) }

// IsRowConversionError reports whether err is a CodeRowConversion error.
func IsRowConversionError(err error) bool { return hasCode(err, CodeRowConversion) }
