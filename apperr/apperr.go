// Package apperr defines the error taxonomy shared by the handlers and the
// response shape it is rendered into.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION_FAILED"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindUpstream     Kind = "UPSTREAM"
	KindInternal     Kind = "INTERNAL"
)

// FieldError is one entry of the `errors` array in a response body.
type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

type Error struct {
	Kind   Kind
	Status int
	Errors []FieldError
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if len(e.Errors) > 0 {
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Errors[0].Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Body is the JSON payload written for this error.
func (e *Error) Body() Body {
	return Body{Errors: e.Errors}
}

type Body struct {
	Errors []FieldError `json:"errors"`
}

func newError(kind Kind, status int, msg string) *Error {
	return &Error{Kind: kind, Status: status, Errors: []FieldError{{Msg: msg}}}
}

func ValidationFailed(errs []FieldError) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Errors: errs}
}

func Unauthorized(msg string) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *Error {
	return newError(KindForbidden, http.StatusForbidden, msg)
}

func NotFound(msg string) *Error {
	return newError(KindNotFound, http.StatusNotFound, msg)
}

// Conflict covers duplicate registrations and repeated likes; clients of
// this API expect a 400 for both.
func Conflict(msg string) *Error {
	return newError(KindConflict, http.StatusBadRequest, msg)
}

// Upstream reports a failed third-party call. notFound distinguishes "the
// upstream says the resource does not exist" from "the upstream is broken".
func Upstream(msg string, notFound bool, err error) *Error {
	status := http.StatusBadGateway
	if notFound {
		status = http.StatusNotFound
	}
	e := newError(KindUpstream, status, msg)
	e.Err = err
	return e
}

// Internal never exposes err to the client.
func Internal(err error) *Error {
	e := newError(KindInternal, http.StatusInternalServerError, "Server error")
	e.Err = err
	return e
}

// From returns err as an *Error, wrapping anything unknown as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
