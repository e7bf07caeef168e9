package utils

import (
	"errors"
	"fmt"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Status  string `json:"status,omitempty"`
}

// ErrorKind classifies errors raised by the booking workflow.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindState         ErrorKind = "state"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
)

// AppError is a structured, caller-facing error. It never wraps storage errors.
type AppError struct {
	Kind    ErrorKind
	Field   string
	Message string
	// Status is the current booking status for KindState errors.
	Status string
}

func (e *AppError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Status != "":
		return fmt.Sprintf("%s: %s (status %s)", e.Kind, e.Message, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Response converts the error into the JSON body returned to clients.
func (e *AppError) Response() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Kind:    string(e.Kind),
		Field:   e.Field,
		Status:  e.Status,
	}
}

func NewValidationError(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Field: field, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NewStateError(current, message string) *AppError {
	return &AppError{Kind: KindState, Status: current, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// AsAppError unwraps err into an *AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}
