// Package apperrors provides the domain error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeDuplicateCredentials Code = "DUPLICATE_CREDENTIALS"
	CodeRegistrationFailed   Code = "REGISTRATION_FAILED"

	// Authentication errors
	CodeInvalidCredentials    Code = "INVALID_CREDENTIALS"
	CodeTokenExpired          Code = "TOKEN_EXPIRED"
	CodeTokenSignatureInvalid Code = "TOKEN_SIGNATURE_INVALID"
	CodeTokenMalformed        Code = "TOKEN_MALFORMED"

	// Lookup errors
	CodeUserNotFound     Code = "USER_NOT_FOUND"
	CodeReceiverNotFound Code = "RECEIVER_NOT_FOUND"
	CodeFriendNotFound   Code = "FRIEND_NOT_FOUND"
	CodeNoPendingRequest Code = "NO_PENDING_REQUEST"

	// State errors
	CodeAlreadyProcessed Code = "ALREADY_PROCESSED"

	// Storage errors
	CodeStoreFailure Code = "STORE_FAILURE"
)

// HTTPStatus maps a code to its status class.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation,
		CodeDuplicateCredentials,
		CodeRegistrationFailed,
		CodeAlreadyProcessed:
		return http.StatusBadRequest
	case CodeInvalidCredentials,
		CodeTokenExpired,
		CodeTokenSignatureInvalid,
		CodeTokenMalformed:
		return http.StatusUnauthorized
	case CodeUserNotFound,
		CodeReceiverNotFound,
		CodeFriendNotFound,
		CodeNoPendingRequest:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsToken reports whether the code belongs to the invalid-token family.
func (c Code) IsToken() bool {
	return c == CodeTokenExpired || c == CodeTokenSignatureInvalid || c == CodeTokenMalformed
}

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message, safe to show to callers
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code from err, or CodeUnknown when err is not a domain error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrValidation           = New(CodeValidation, "validation error")
	ErrDuplicateCredentials = New(CodeDuplicateCredentials, "duplicate credentials")
	ErrRegistrationFailed   = New(CodeRegistrationFailed, "registration failed")
	ErrInvalidCredentials   = New(CodeInvalidCredentials, "invalid credentials")
	ErrUserNotFound         = New(CodeUserNotFound, "user not found")
	ErrReceiverNotFound     = New(CodeReceiverNotFound, "receiver not found")
	ErrFriendNotFound       = New(CodeFriendNotFound, "friend not found")
	ErrNoPendingRequest     = New(CodeNoPendingRequest, "no pending request")
	ErrAlreadyProcessed     = New(CodeAlreadyProcessed, "already processed")
	ErrStoreFailure         = New(CodeStoreFailure, "store failure")
)
