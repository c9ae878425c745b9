// Package domainerrors provides coded errors shared by services and the HTTP
// layer. Stores return sentinel errors; services translate them into these so
// handlers can map a code to a status without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers. Codes are stable API; messages are not.
type Code string

const (
	// CodeBadRequest marks malformed input (unparseable body, bad UUID).
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput marks a well-formed value that fails a domain rule.
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation marks a business-rule validation failure.
	CodeValidation Code = "validation_failed"
	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness or state conflict; re-fetch and retry.
	CodeConflict Code = "conflict"
	// CodeStale marks state that changed between preview and commit.
	CodeStale Code = "stale_state"
	// CodeInvalidState marks a protocol violation (e.g. committing a draft
	// that was never previewed). Client bug; fail loudly.
	CodeInvalidState Code = "invalid_state"
	// CodeUnavailable marks a retryable infrastructure failure.
	CodeUnavailable Code = "unavailable"
	// CodeTimeout marks a deadline exceeded talking to a backing store.
	CodeTimeout Code = "timeout"
	// CodeUnauthorized marks a missing or invalid credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks a valid credential without access.
	CodeForbidden Code = "forbidden"
	// CodeInternal marks everything else. Details are never sent to clients.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Construct via New or Wrap.
type Error struct {
	Code    Code
	Message string
	Err     error
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

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode at call sites that read like errors.Is.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Message extracts the client-safe message from err. Internal errors yield "".
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return ""
}

// Retryable reports whether the caller may safely re-issue the operation.
// Unavailable and timeout failures are retryable after the caller confirms the
// original attempt did not take effect.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeUnavailable, CodeTimeout:
		return true
	default:
		return false
	}
}

// ToHTTPStatus maps a coded error to an HTTP status. Unknown errors map to 500.
func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeStale:
		return http.StatusConflict
	case CodeInvalidState:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
