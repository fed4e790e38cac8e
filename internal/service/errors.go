// Package service provides application-level services for managing tasks,
// jobs, and reports. Services own the business rules that sit above the
// stores and below the HTTP handlers; the API layer maps the sentinel
// errors defined here to HTTP status codes.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is().
var (
	// ErrTaskNotFound indicates that the requested task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskInProgress indicates an attempt to update or delete a task the
	// engine is currently working on. Only the job engine moves tasks in and
	// out of the in-progress status.
	// API layer should map this to HTTP 409 Conflict.
	ErrTaskInProgress = errors.New("task is being processed by a job")

	// ErrJobNotFound indicates that the requested job does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrJobNotFound = errors.New("job not found")

	// ErrUnknownJobType indicates an enqueue request for a job type with no
	// registered executor.
	// API layer should map this to HTTP 400 Bad Request.
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrReportNotFound indicates that the requested report does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrReportNotFound = errors.New("report not found")
)

// ServiceError wraps unexpected errors from a service with operation context.
// Expected conditions are returned as the sentinel errors above; everything
// else arrives wrapped in a ServiceError.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "enqueue_job")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError wrapping err.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
