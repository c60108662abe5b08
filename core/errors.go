package core

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an account with the email already exists.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateUsername is returned when an account with the username already exists.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUnauthorized covers every way a protected request can fail to authenticate.
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError describes one failed rule on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failed rule of a request. It maps to HTTP 400.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}
