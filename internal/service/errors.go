package service

import (
	"errors"
	"fmt"
)

// Service sentinel errors. Callers check them with errors.Is; the API layer
// maps them to HTTP status codes.
var (
	// ErrNoteNotFound indicates the note does not exist or belongs to another
	// user. The two cases are deliberately indistinguishable.
	// API layer should map this to HTTP 404 Not Found.
	ErrNoteNotFound = errors.New("note not found")

	// ErrCategoryNotFound indicates the referenced category does not exist
	// for the caller.
	// API layer should map this to HTTP 404 Not Found.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrOwnerNotFound indicates the caller's user record does not exist,
	// for example when a token outlives its user.
	// API layer should map this to HTTP 404 Not Found.
	ErrOwnerNotFound = errors.New("owner not found")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("note service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("note service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
