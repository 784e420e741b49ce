// Package domain provides shared domain-level sentinel errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrValidation indicates malformed or missing required input.
var ErrValidation = errors.New("validation failed")

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthenticated indicates the request carried no usable credential.
var ErrUnauthenticated = errors.New("authentication required")

// ErrPermission indicates the caller is authenticated but lacks rights
// on the target space.
var ErrPermission = errors.New("permission denied")

// ErrConflict indicates a unique-constraint violation or a concurrent
// modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrUpstream indicates a failure from an external collaborator
// (LLM proxy, object storage, webhook).
var ErrUpstream = errors.New("upstream service failed")

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
