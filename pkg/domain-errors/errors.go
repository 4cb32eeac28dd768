// Package domainerrors provides coded errors for the validation domain.
//
// Services return these so boundary layers can map failures onto a
// deterministic response without string matching. Infrastructure layers
// return sentinels from pkg/platform/sentinel instead; services translate
// them into coded errors at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for boundary-layer handling.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeQuotaExceeded      Code = "quota_exceeded"
	CodeUnprocessable      Code = "unprocessable"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error { return e.err }

// Code returns the classification of this error.
func (e *Error) Code() Code { return e.code }

// New creates a coded error with no underlying cause.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. Returns nil if err is nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, err: err}
}

// Coder lets typed domain errors carry a code without wrapping. Types that
// need their own fields (and exact Error() strings) implement this instead
// of embedding Error.
type Coder interface {
	Code() Code
}

// CodeOf returns the code of the outermost coded error in err's chain,
// or CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeInternal
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Code() == code
	}
	return false
}
