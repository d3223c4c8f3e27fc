package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	// ErrInvalidRequest rejects invite mints that specify neither an email
	// nor the wildcard flag.
	ErrInvalidRequest = &AppError{
		Code:       "INVALID_REQUEST",
		Message:    "Either email or wildcard must be provided",
		StatusCode: http.StatusForbidden,
	}

	// ErrDuplicateUser signals that the email already holds a live invite.
	ErrDuplicateUser = &AppError{
		Code:       "USER_EXISTS",
		Message:    "User already exists in the beta",
		StatusCode: http.StatusForbidden,
	}

	// ErrUserNotFound signals that no live invite matches the email.
	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User does not have beta access",
		StatusCode: http.StatusForbidden,
	}

	// ErrInvalidCode rejects redemption with an absent, unknown or mismatched code.
	ErrInvalidCode = &AppError{
		Code:       "INVALID_CODE",
		Message:    "Invalid or expired beta code",
		StatusCode: http.StatusForbidden,
	}

	// ErrBetaAccessRequired is returned by the signup gate when the shared
	// secret header is missing or does not match.
	ErrBetaAccessRequired = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Beta access required",
		StatusCode: http.StatusForbidden,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}
