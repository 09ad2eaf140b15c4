// Package apperr carries the error taxonomy shared by the service layer and
// the HTTP boundary. Services return kinded errors; handlers map the kind to
// a status code and pass the message through so clients can prompt correction.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindNotAuthorized
	KindConflict
	KindTimeExpired
	KindExternal
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func NotAuthorized(format string, args ...interface{}) *Error {
	return newf(KindNotAuthorized, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

func TimeExpired(format string, args ...interface{}) *Error {
	return newf(KindTimeExpired, format, args...)
}

// External wraps a dependency failure. Callers are expected to recover it
// into a soft local result before the operation boundary.
func External(err error, format string, args ...interface{}) *Error {
	e := newf(KindExternal, format, args...)
	e.Err = err
	return e
}

// KindOf extracts the kind from an error chain, KindUnknown if absent.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindTimeExpired:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAuthorized:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
