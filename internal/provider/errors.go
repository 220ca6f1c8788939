package provider

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup by id yields no item
var ErrNotFound = errors.New("provider: not found")

// Code is the failure code a commerce backend attaches to an error
type Code string

const (
	CodeCors             Code = "Cors"
	CodeNotAuthenticated Code = "NotAuthenticated"
	CodeAuthError        Code = "AuthError"
	CodeAuthUnreachable  Code = "AuthUnreachable"
	CodeAPIError         Code = "ApiError"
	CodeAPIGraphQL       Code = "ApiGraphQL"
	CodeNotSupported     Code = "NotSupported"
)

// Error is a coded backend failure
type Error struct {
	Code    Code
	Message string
	Err     error
}

// NewError builds a coded error with a formatted message
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying error
func Wrap(code Code, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code == "" {
		return "provider: " + e.Message
	}
	return fmt.Sprintf("provider: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CodeOf extracts the backend code from err, if any
func CodeOf(err error) (Code, bool) {
	var pe *Error
	if errors.As(err, &pe) && pe.Code != "" {
		return pe.Code, true
	}
	return "", false
}

// IsNotSupported reports whether err says the backend lacks the capability
func IsNotSupported(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == CodeNotSupported
}
