// Package apperrors classifies failures so the HTTP layer can pick a status
// code while keeping every message human-readable.
package apperrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "validation"
	CodeNotFound          Code = "not_found"
	CodeStore             Code = "store"
	CodeAlreadyRegistered Code = "already_registered"
	CodeInviteFailed      Code = "invite_failed"
	CodeUnauthorized      Code = "unauthorized"
	CodeConflict          Code = "conflict"
	CodeUpstream          Code = "upstream"
)

// HTTPStatus maps a code to the response status used by the API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeAlreadyRegistered:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	case CodeInviteFailed, CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Store wraps an underlying database failure.
func Store(message string, cause error) *Error {
	return Wrap(CodeStore, message, cause)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// CodeOf returns the code of the first *Error in the chain, or CodeStore for
// anything unclassified.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStore
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
