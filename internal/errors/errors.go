// Package errors defines dmontop's user-facing error type. Every setup
// failure carries a code that selects the process exit status, a one-line
// message, and a suggestion telling the user what to try next.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. Each maps to its own exit status so scripts can tell a bad
// config from a missing dcgmi.
const (
	ErrConfig   = "CONFIG"
	ErrSource   = "SOURCE"
	ErrTerminal = "TERMINAL"
	ErrLog      = "LOG"
)

var exitCodes = map[string]int{
	ErrConfig:   2,
	ErrTerminal: 3,
	ErrSource:   4,
	ErrLog:      5,
}

// Error is a setup failure worth showing to a person:
//
//	✗ <what failed>
//
//	  <cause>
//
//	  <what to do about it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New returns an error with no underlying cause.
func New(code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// Newf is New with a formatted message.
func Newf(code, suggestion, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), suggestion)
}

// Wrap attaches message to err under ErrSource, the most common failure
// once the config has been accepted.
func Wrap(err error, message string) *Error {
	return WrapWithCode(err, ErrSource, message, "")
}

// WrapWithCode attaches a code, message and suggestion to err.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %s\n", e.Message)
	if e.Cause != nil {
		// Multi-line causes (dcgmi stderr) stay indented under the message.
		cause := strings.TrimRight(e.Cause.Error(), "\n")
		fmt.Fprintf(&b, "\n  %s\n", strings.ReplaceAll(cause, "\n", "\n  "))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Suggestion)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code, so errors.Is(err, &Error{Code: ErrLog})
// works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) string {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ""
}

// IsCode reports whether err's outermost *Error has the given code.
func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// ExitCode maps err to a process exit status: 0 for nil, a per-code value
// for known codes and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if n, ok := exitCodes[CodeOf(err)]; ok {
		return n
	}
	return 1
}
