package connector

import (
	"errors"
	"fmt"

	"github.com/zero-day-ai/inventory/ooi"
)

var (
	// ErrNotFound indicates that the graph holds no object for a reference at
	// the requested valid time.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidArgument indicates a request that was rejected before being sent.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundError reports a missing object. It matches ErrNotFound.
type NotFoundError struct {
	Reference ooi.Reference
	Err       error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reference, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether err is a missing-object error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
