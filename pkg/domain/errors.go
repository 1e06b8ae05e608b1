package domain

import "fmt"

// ErrorCode classifies domain errors for transport-level mapping.
type ErrorCode string

const (
	CodeValidation       ErrorCode = "validation"
	CodeNotFound         ErrorCode = "not_found"
	CodeConflict         ErrorCode = "conflict"
	CodeForbidden        ErrorCode = "forbidden"
	CodeInvalidState     ErrorCode = "invalid_state"
	CodeSubmissionFailed ErrorCode = "submission_failed"
)

// DomainError is the error type shared by all domain and application layers.
// Message is safe to surface to API clients.
type DomainError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates an error for invalid input data.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError creates an error for concurrent-modification conflicts.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// NewForbiddenError creates an error for access to a resource the caller does not own.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

// NewInvalidStateError creates an error for a disallowed state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("invalid state transition from %s to %s", from, to),
	}
}

// NewSubmissionError creates a retryable, user-displayable error for a rejected
// or failed outbound submission.
func NewSubmissionError(message string) *DomainError {
	return &DomainError{Code: CodeSubmissionFailed, Message: message}
}
