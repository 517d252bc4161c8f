package service

import "fmt"

// Request-scoped error taxonomy. Handlers map these to 4xx responses;
// anything else is a 500.

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFound(message string) error {
	return &NotFoundError{Message: message}
}

func conflict(message string) error {
	return &ConflictError{Message: message}
}

func forbidden(message string) error {
	return &ForbiddenError{Message: message}
}
