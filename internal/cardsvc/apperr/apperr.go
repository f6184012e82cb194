// Package apperr defines the error taxonomy shared by all card services.
// Services return these errors; the handler layer maps them to HTTP exactly
// once instead of picking status codes per route.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code    string // stable machine-readable code, e.g. "NOT_FOUND"
	Status  int    // HTTP status the boundary should answer with
	Message string // safe to show to clients
	Err     error  // wrapped cause, not exposed to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Invalid(msg string) *Error {
	return &Error{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: "AUTHENTICATION_ERROR", Status: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: "AUTHORIZATION_ERROR", Status: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: "CONFLICT", Status: http.StatusConflict, Message: msg}
}

// External marks failures of upstream providers (voice cloning API etc).
func External(msg string, err error) *Error {
	return &Error{Code: "EXTERNAL_SERVICE_ERROR", Status: http.StatusBadGateway, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// Wrap keeps an existing taxonomy error as is and wraps anything else as
// internal, so services can bubble store errors without double-mapping.
func Wrap(err error, msg string) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(msg, err)
}

// From converts any error to its taxonomy form, defaulting to internal.
func From(err error) *Error {
	return Wrap(err, "internal error")
}
