package apperror

import (
	"errors"
	"fmt"
)

// Common invoice pipeline errors
var (
	// ErrNotFound is returned when a customer, invoice, time entry or
	// notification does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedFormat is returned when an export format other than xlsx is requested.
	ErrUnsupportedFormat = errors.New("format is not supported")

	// ErrInvalidRange is returned when a time span ends before it starts.
	ErrInvalidRange = errors.New("invalid time range: end is before start")

	// ErrInvalidArgument is returned for malformed request values (negative tax
	// rate, unknown currency, unparsable dates).
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundError names the entity and key that could not be found.
type NotFoundError struct {
	Entity string
	Key    interface{}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

// Is makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound creates a NotFoundError.
func NewNotFound(entity string, key interface{}) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// UnsupportedFormatError carries the rejected export format.
type UnsupportedFormatError struct {
	Format string
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("format %s is not supported", e.Format)
}

// Is makes errors.Is(err, ErrUnsupportedFormat) match.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// NewUnsupportedFormat creates an UnsupportedFormatError.
func NewUnsupportedFormat(format string) *UnsupportedFormatError {
	return &UnsupportedFormatError{Format: format}
}

// Invalid wraps ErrInvalidArgument with a field-specific message.
func Invalid(field, message string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidArgument, field, message)
}
