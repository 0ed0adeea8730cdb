package service

import (
	"errors"
	"strings"
)

// Error kinds. Every error a service returns matches exactly one of these
// with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrExternalService = errors.New("external service error")
	ErrAuthentication  = errors.New("authentication failed")
	ErrConflict        = errors.New("conflict")
	ErrSuperseded      = errors.New("superseded by a newer request")
)

// ValidationError lists every rule an input broke
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, " ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// kindError is a user-facing message tagged with its error kind
type kindError struct {
	kind    error
	message string
	cause   error
}

func (e *kindError) Error() string {
	return e.message
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func (e *kindError) Unwrap() error {
	return e.cause
}

func newError(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

func wrapError(kind error, message string, cause error) error {
	return &kindError{kind: kind, message: message, cause: cause}
}
