// Package httperr provides an error type that carries an HTTP status code and
// a message that's safe to show to users, separately from the error text
// that gets logged.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error with an associated HTTP status code.
type Error struct {
	code    int
	err     error
	userMsg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %v", e.code, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// WithMessage sets the message shown to users. Without one, users see the
// standard text for the status code.
func (e *Error) WithMessage(msg string) *Error {
	e.userMsg = msg
	return e
}

// newError returns an error with the given status code. Like fmt.Errorf, a %w
// verb wraps its argument.
func newError(code int, format string, args ...interface{}) *Error {
	return &Error{code: code, err: fmt.Errorf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *Error {
	return newError(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(http.StatusUnauthorized, format, args...)
}

func PaymentRequired(format string, args ...interface{}) *Error {
	return newError(http.StatusPaymentRequired, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(http.StatusConflict, format, args...)
}

// Extract returns the status code and user-facing message for err. Errors
// that aren't an *Error are treated as internal errors, and their text isn't
// shown to users.
func Extract(err error) (int, string) {
	var herr *Error
	if !errors.As(err, &herr) {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
	if herr.userMsg != "" {
		return herr.code, herr.userMsg
	}
	return herr.code, http.StatusText(herr.code)
}
