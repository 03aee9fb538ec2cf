package engine

import "time"

// Observer receives request outcomes from the engine. Attempt and
// Retry fire once per wire attempt; Success and Failure fire exactly
// once per operation, so an operation that recovers on a later attempt
// reports only Success. The health tracker implements it to turn
// request traffic into a device health state. Implementations must be
// safe for concurrent use.
type Observer interface {
	// Attempt is called before each request goes out on the wire.
	Attempt()

	// Success is called when the operation completes, with the
	// round-trip latency of the winning attempt.
	Success(latency time.Duration)

	// Failure is called when the operation fails for good, either on a
	// definitive device rejection or once the retry budget is spent.
	Failure(err error)

	// Retry is called when a failed attempt will be retried after delay.
	Retry(delay time.Duration)
}

// noopObserver is the default when no observer is configured.
type noopObserver struct{}

func (noopObserver) Attempt()              {}
func (noopObserver) Success(time.Duration) {}
func (noopObserver) Failure(error)         {}
func (noopObserver) Retry(time.Duration)   {}
