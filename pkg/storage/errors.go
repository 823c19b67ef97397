package storage

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when an operation is attempted on a closed
// backend.
var ErrClosed = errors.New("storage backend is closed")

// NotFoundError indicates a requested resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource and ID.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// AlreadyExistsError indicates a create collided with an existing
// resource.
type AlreadyExistsError struct {
	Resource string
	ID       string
}

// NewAlreadyExistsError creates an AlreadyExistsError for the given
// resource and ID.
func NewAlreadyExistsError(resource, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Resource: resource, ID: id}
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.ID)
}

// InvalidInputError indicates the caller supplied an unusable value.
type InvalidInputError struct {
	Field  string
	Reason string
}

// NewInvalidInputError creates an InvalidInputError for the given field.
func NewInvalidInputError(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
