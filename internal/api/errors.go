// Package api implements the request-to-query translation and record
// projection engine of the Content API: it normalizes request parameters,
// dispatches queries against the content store, resolves the columns of a
// response view, and projects raw records into field-filtered output.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed domain error carried from the engine to the HTTP layer.
type Error struct {
	// Type is the error type name reported in the exception envelope.
	Type string

	// Message is the human-readable message.
	Message string

	// Code is the HTTP status code the error maps to.
	Code int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NotFound creates a 404 domain error.
func NotFound(format string, args ...any) *Error {
	return &Error{
		Type:    "NotFoundException",
		Message: fmt.Sprintf(format, args...),
		Code:    http.StatusNotFound,
	}
}

// Forbidden creates a 403 domain error.
func Forbidden(format string, args ...any) *Error {
	return &Error{
		Type:    "ForbiddenException",
		Message: fmt.Sprintf(format, args...),
		Code:    http.StatusForbidden,
	}
}

// AsError unwraps err into a typed domain error when it is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
