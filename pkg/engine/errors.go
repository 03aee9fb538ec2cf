package engine

import (
	"errors"
	"fmt"

	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// ConnectionError reports an endpoint that never produced a usable
// response within the retry budget.
type ConnectionError struct {
	// Endpoint that was being addressed.
	Endpoint transport.Endpoint

	// Attempts is the total number of requests sent.
	Attempts int

	// Err is the failure from the final attempt.
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s unreachable after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

// Unwrap returns the final attempt's error.
func (e *ConnectionError) Unwrap() error { return e.Err }

// ObjectError reports a device that answered and refused: an Error,
// Reject or Abort PDU. The request reached the device, so it is never
// retried.
type ObjectError struct {
	// Object is the target object ("analog-input:3").
	Object string

	// Class and Code carry the Error PDU classification. Both are zero
	// for Reject and Abort PDUs.
	Class wire.ErrorClass
	Code  wire.ErrorCode

	// Err is the decoded PDU error.
	Err error
}

// Error implements the error interface.
func (e *ObjectError) Error() string {
	return fmt.Sprintf("%s: %v", e.Object, e.Err)
}

// Unwrap returns the decoded PDU error.
func (e *ObjectError) Unwrap() error { return e.Err }

// newObjectError wraps a device rejection, lifting the class and code
// out of Error PDUs.
func newObjectError(object string, err error) *ObjectError {
	oe := &ObjectError{Object: object, Err: err}
	var bacErr *wire.BACnetError
	if errors.As(err, &bacErr) {
		oe.Class = bacErr.Class
		oe.Code = bacErr.Code
	}
	return oe
}

// DecodeError reports a response that parsed on the wire but did not
// match the object's kind table. The device's answer would be the same
// on a retry.
type DecodeError struct {
	// Object is the target object ("analog-input:3").
	Object string

	// Err describes the mismatch.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Object, e.Err)
}

// Unwrap returns the underlying decode failure.
func (e *DecodeError) Unwrap() error { return e.Err }

// deviceRejected reports whether err is a definitive answer from the
// device. Timeouts, socket errors and malformed or mismatched replies
// are worth retrying; a decoded Error, Reject or Abort PDU is not.
func deviceRejected(err error) bool {
	var (
		bacErr *wire.BACnetError
		rejErr *wire.RejectError
		abErr  *wire.AbortError
	)
	switch {
	case errors.As(err, &bacErr), errors.As(err, &rejErr), errors.As(err, &abErr):
		return true
	}
	return false
}
