// Package apierror provides the error types shared by all services,
// carrying an error code, a user-facing message and an HTTP status.
package apierror

import (
	"fmt"
)

// Error is a single API error. RawError holds the underlying cause for
// server-side debugging and is never serialized into a response.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	RawError   error  `json:"-"`
}

// Body is the uniform error envelope written to clients.
// Message carries the underlying cause, if any.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.RawError != nil {
		str += fmt.Sprintf(" (RawError: %v)", e.RawError)
	}
	return str
}

// Is reports whether target is an *Error with the same Code,
// so predefined errors can be matched with errors.Is.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if e == nil || t == nil {
		return false
	}

	return e.Code == t.Code
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.RawError
}

var _ interface {
	Error() string
	Is(target error) bool
	Unwrap() error
} = (*Error)(nil)

// Body returns the response envelope for this error.
func (e *Error) Body() Body {
	body := Body{Error: e.Message}
	if e.RawError != nil {
		body.Message = e.RawError.Error()
	}
	return body
}

// NewError creates a new error with HTTP status 500.
func NewError(code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: 500,
	}
}

// NewErrorWithStatus creates a new error with an explicit HTTP status.
func NewErrorWithStatus(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WrapError wraps a predefined error with a custom message and the
// underlying cause, keeping the predefined Code and HTTPStatus.
func WrapError(baseErr *Error, message string, rawError error) *Error {
	return &Error{
		Code:       baseErr.Code,
		Message:    message,
		HTTPStatus: baseErr.HTTPStatus,
		RawError:   rawError,
	}
}
