package session

import (
	"errors"
	"fmt"
)

// ErrEndpointUnreachable marks a sweep where every object failed with a
// connection error: the device, not any one object, is the problem.
var ErrEndpointUnreachable = errors.New("endpoint unreachable")

// ObjectNotFoundError reports a logical name with no registry entry.
type ObjectNotFoundError struct {
	// Name is the logical name that was looked up.
	Name string
}

// Error implements the error interface.
func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object %q not tracked", e.Name)
}

// ValidationError reports a write value that failed the object's kind
// check. Nothing went out on the wire.
type ValidationError struct {
	// Object is the logical name of the write target.
	Object string

	// Err is the kind table's complaint.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Object, e.Err)
}

// Unwrap returns the underlying validation failure.
func (e *ValidationError) Unwrap() error { return e.Err }
