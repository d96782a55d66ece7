// Package errors defines the coded errors shared by the layout engine, the
// CLI and the HTTP API.
//
// Every failure a caller may act on carries a [Code]. The CLI prints it in
// front of the message and the HTTP API returns it in the error body with
// the status from [HTTPStatus]:
//
//	err := errors.New(errors.ErrCodeMissingNode, "edge %d->%d: unknown node %d", from, to, id)
//	errors.Is(err, errors.ErrCodeMissingNode, errors.ErrCodeDuplicateNode) // true
//
// Codes group by prefix. INVALID_ codes reject input, MISSING_ and
// DUPLICATE_ codes reject graph data, INFEASIBLE_ and UNROUTABLE_ codes
// describe a single lane or edge that could not be laid out.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	ErrCodeMissingNode   Code = "MISSING_NODE"
	ErrCodeDuplicateNode Code = "DUPLICATE_NODE"

	ErrCodeInfeasibleLayers Code = "INFEASIBLE_LAYERS"
	ErrCodeUnroutableEdge   Code = "UNROUTABLE_EDGE"
	ErrCodeSolverFailure    Code = "SOLVER_FAILURE"

	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidConfig:    http.StatusBadRequest,
	ErrCodeInvalidFormat:    http.StatusBadRequest,
	ErrCodeMissingNode:      http.StatusBadRequest,
	ErrCodeDuplicateNode:    http.StatusBadRequest,
	ErrCodeInfeasibleLayers: http.StatusUnprocessableEntity,
	ErrCodeUnroutableEdge:   http.StatusUnprocessableEntity,
	ErrCodeFileNotFound:     http.StatusNotFound,
	ErrCodeTimeout:          http.StatusGatewayTimeout,
}

// Status returns the HTTP status for c, 500 for codes without a mapping.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and a message to cause. errors.Is and errors.As still
// see cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Is reports whether the outermost coded error in err's chain carries one
// of codes.
func Is(err error, codes ...Code) bool {
	c := GetCode(err)
	return c != "" && slices.Contains(codes, c)
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" if there is none.
func GetCode(err error) Code {
	if e := asError(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix and cause.
func UserMessage(err error) string {
	if e := asError(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// HTTPStatus returns the status the HTTP API answers err with.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}
