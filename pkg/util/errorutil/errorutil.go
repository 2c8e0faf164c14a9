package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by services and the HTTP layer.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeBadCredentials      = "BAD_CREDENTIALS"
	CodeDuplicateIdentifier = "DUPLICATE_IDENTIFIER"
	CodeDepartmentNotFound  = "DEPARTMENT_NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeDepartmentMismatch  = "DEPARTMENT_MISMATCH"
	CodeAlreadyAssigned     = "ALREADY_ASSIGNED"
	CodeAlreadyClosed       = "ALREADY_CLOSED"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Matching is by Code, so a DomainError built
// with a custom message or details still matches its sentinel.
var (
	ErrValidation          = NewDomainError(CodeValidationFailed, "validation failed", http.StatusBadRequest, nil)
	ErrBadCredentials      = NewDomainError(CodeBadCredentials, "incorrect username or password", http.StatusUnauthorized, nil)
	ErrDuplicateIdentifier = NewDomainError(CodeDuplicateIdentifier, "user already exists", http.StatusConflict, nil)
	ErrDepartmentNotFound  = NewDomainError(CodeDepartmentNotFound, "department not found", http.StatusNotFound, nil)
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "authentication required", http.StatusUnauthorized, nil)
	ErrForbidden           = NewDomainError(CodeForbidden, "access denied", http.StatusForbidden, nil)
	ErrNotFound            = NewDomainError(CodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrDepartmentMismatch  = NewDomainError(CodeDepartmentMismatch, "agent's department does not match the ticket's department", http.StatusConflict, nil)
	ErrAlreadyAssigned     = NewDomainError(CodeAlreadyAssigned, "ticket is already assigned to another agent", http.StatusConflict, nil)
	ErrAlreadyClosed       = NewDomainError(CodeAlreadyClosed, "ticket is already closed", http.StatusConflict, nil)
	ErrInvalidTransition   = NewDomainError(CodeInvalidTransition, "invalid status transition", http.StatusBadRequest, nil)
	ErrTokenExpired        = NewDomainError(CodeTokenExpired, "token expired", http.StatusUnauthorized, nil)
	ErrInvalidSignature    = NewDomainError(CodeInvalidSignature, "invalid token signature", http.StatusUnauthorized, nil)
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *DomainError) WithMessage(message string) *DomainError {
	clone := *e
	clone.Message = message
	return &clone
}

// WithDetails returns a copy of e carrying details.
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	clone := *e
	clone.Details = details
	return &clone
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return ErrUnauthorized.WithMessage(message)
}

func NewForbidden(message string) error {
	return ErrForbidden.WithMessage(message)
}

func NewInvalidTransition(from, to string) error {
	return ErrInvalidTransition.
		WithMessage(fmt.Sprintf("invalid status transition from %s to %s", from, to)).
		WithDetails(map[string]any{"from": from, "to": to})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
