// Package errors defines the coded errors returned by the engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies a class of engine failure.
type Code string

const (
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeUnknownBody   Code = "UNKNOWN_BODY"
	CodeUnknownSystem Code = "UNKNOWN_SYSTEM"
	CodeEphemeris     Code = "EPHEMERIS"
	CodeConfig        Code = "CONFIG"
	CodeInternal      Code = "INTERNAL"
)

// Error is a structured engine error with a code, message, details and an
// optional cause.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidInput reports an out-of-domain argument.
func NewInvalidInput(msg string, details map[string]any) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Message: msg,
		Details: details,
	}
}

// NewUnknownBody reports a body identifier outside the identity table.
func NewUnknownBody(id string) *Error {
	return &Error{
		Code:    CodeUnknownBody,
		Message: fmt.Sprintf("unknown body: %q", id),
		Details: map[string]any{"body": id},
	}
}

// NewUnknownSystem reports an ayanamsa system name that is not supported.
func NewUnknownSystem(name string) *Error {
	return &Error{
		Code:    CodeUnknownSystem,
		Message: fmt.Sprintf("unknown ayanamsa system: %q", name),
		Details: map[string]any{"system": name},
	}
}

// NewEphemeris wraps a failure raised by an ephemeris provider.
func NewEphemeris(provider string, err error) *Error {
	return &Error{
		Code:    CodeEphemeris,
		Message: fmt.Sprintf("ephemeris provider %s failed", provider),
		Details: map[string]any{"provider": provider},
		Err:     err,
	}
}

// NewConfig reports an invalid or unreadable configuration.
func NewConfig(msg string, err error) *Error {
	return &Error{
		Code:    CodeConfig,
		Message: msg,
		Err:     err,
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    CodeInternal,
		Message: msg,
		Err:     err,
	}
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
