// Package errs defines the error kinds shared by the adapters, the post
// service, and the HTTP layer. Adapters wrap their native failures into one
// of these kinds; the service and handlers branch on errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or empty required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a lookup for a post that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a relational store failure (connectivity, constraint).
	ErrStorage = errors.New("storage failure")
	// ErrIndex marks a search index failure.
	ErrIndex = errors.New("search index failure")
)

// Validation reports a missing or empty required field.
func Validation(field string) error {
	return fmt.Errorf("%w: field %q is required", ErrValidation, field)
}

// NotFound reports a missing entity by id.
func NotFound(entity string, id uint) error {
	return fmt.Errorf("%s %d %w", entity, id, ErrNotFound)
}

// Storage wraps a relational store failure.
func Storage(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, cause)
}

// Index wraps a search index failure.
func Index(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrIndex, op, cause)
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsStorage(err error) bool    { return errors.Is(err, ErrStorage) }
func IsIndex(err error) bool      { return errors.Is(err, ErrIndex) }
