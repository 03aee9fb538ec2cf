// Package engine executes single logical operations against BACnet
// devices: it encodes one request, sends it through a transport adapter,
// parses the reply and classifies the outcome.
//
// The engine owns the retry policy. Timeouts, socket errors and
// malformed replies are retried with exponential backoff up to the
// configured budget; a device that answers with an Error, Reject or
// Abort PDU is never asked again, since the answer is definitive.
// Retries that recover are invisible to the caller: the result carries
// only the attempt count.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bacworks/bacworks-go/pkg/log"
	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// Engine defaults.
const (
	// DefaultRetryCount is the number of retries after the first attempt.
	DefaultRetryCount = 3

	// DefaultRetryDelay is the delay before the first retry.
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxDelay bounds backoff growth.
	DefaultMaxDelay = 30 * time.Second

	// backoffMultiplier doubles the delay on every retry.
	backoffMultiplier = 2.0
)

// Config holds the engine-wide request policy. Timeouts are not set
// here; each endpoint carries its own.
type Config struct {
	// RetryCount is the number of retries after the first attempt.
	// Zero means DefaultRetryCount; negative disables retries.
	RetryCount int

	// RetryDelay is the delay before the first retry. Subsequent delays
	// double, bounded by MaxDelay.
	RetryDelay time.Duration

	// MaxDelay bounds backoff growth.
	MaxDelay time.Duration

	// RetryJitter extends each delay by up to the given fraction at
	// random. Zero keeps the retry schedule deterministic.
	RetryJitter float64

	// Observer receives request outcomes. Nil disables reporting.
	Observer Observer

	// Logger receives request events. Nil disables logging.
	Logger log.Logger
}

// Engine executes reads and writes against endpoints, retrying
// transient failures. Safe for concurrent use.
type Engine struct {
	adapter  transport.Adapter
	config   Config
	observer Observer
	logger   log.Logger

	// invoke numbers confirmed requests. Only the low byte travels.
	invoke atomic.Uint32

	// Clock hooks, replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates an engine on top of an opened adapter.
func New(adapter transport.Adapter, config Config) *Engine {
	if config.RetryCount == 0 {
		config.RetryCount = DefaultRetryCount
	}
	if config.RetryCount < 0 {
		config.RetryCount = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultMaxDelay
	}

	e := &Engine{
		adapter:  adapter,
		config:   config,
		observer: config.Observer,
		logger:   config.Logger,
		sleep:    sleepContext,
		now:      time.Now,
	}
	if e.observer == nil {
		e.observer = noopObserver{}
	}
	if e.logger == nil {
		e.logger = &log.NoopLogger{}
	}
	return e
}

// Read fetches one property of one object, Present_Value when prop is
// zero. Transient failures are retried per the engine config; the reply
// is decoded through the object's kind table.
//
// Reads of Status_Flags return a wire.StatusFlags value and derive the
// reading's quality from it. Other non-present-value properties return
// the raw wire value.
func (e *Engine) Read(ctx context.Context, ep transport.Endpoint, obj object.Object, prop wire.PropertyID) (object.Reading, error) {
	if err := obj.Validate(); err != nil {
		return object.Reading{}, err
	}
	if prop == 0 {
		prop = wire.PropPresentValue
	}

	oid := obj.ID()
	var raw any
	ex := exchange{
		service: "read-property",
		object:  oid.String(),
		prop:    prop,
		value:   func() any { return raw },
		build: func(invokeID uint8) []byte {
			return wire.EncodeReadProperty(invokeID, oid, prop)
		},
		parse: func(reply []byte, invokeID uint8) error {
			v, err := wire.ParseReadPropertyACK(reply, invokeID)
			if err != nil {
				return err
			}
			raw = v
			return nil
		},
	}

	attempts, err := e.execute(ctx, ep, ex)
	if err != nil {
		return object.Reading{}, err
	}

	reading := object.Reading{
		Object:   obj,
		Quality:  object.QualityNormal,
		At:       e.now(),
		Attempts: attempts,
	}

	switch prop {
	case wire.PropPresentValue:
		value, err := obj.Kind.DecodeValue(raw)
		if err != nil {
			return object.Reading{}, &DecodeError{Object: oid.String(), Err: err}
		}
		reading.Value = value
	case wire.PropStatusFlags:
		bs, ok := raw.(wire.BitString)
		if !ok {
			return object.Reading{}, &DecodeError{
				Object: oid.String(),
				Err:    fmt.Errorf("%w: status-flags value %T", object.ErrValueDecode, raw),
			}
		}
		flags := wire.StatusFlagsFromBitString(bs)
		reading.Value = flags
		reading.Quality = object.QualityFromStatusFlags(flags)
	default:
		reading.Value = raw
	}

	return reading, nil
}

// Write sets an object's present value at the given priority, zero for
// none. The value must satisfy the kind's validation rules; validation
// happens before anything goes out on the wire.
func (e *Engine) Write(ctx context.Context, ep transport.Endpoint, obj object.Object, value any, priority uint8) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	if err := obj.Kind.Validate(value); err != nil {
		return err
	}

	oid := obj.ID()
	encoded := obj.Kind.EncodeValue(value)
	ex := exchange{
		service: "write-property",
		object:  oid.String(),
		prop:    wire.PropPresentValue,
		value:   func() any { return value },
		build: func(invokeID uint8) []byte {
			return wire.EncodeWriteProperty(invokeID, oid, wire.PropPresentValue, encoded, priority)
		},
		parse: wire.ParseWritePropertyACK,
	}

	_, err := e.execute(ctx, ep, ex)
	return err
}

// exchange describes one confirmed service transaction for the retry
// loop: how to build the request for a given invoke ID, how to parse
// the reply, and what to show for the value in the event log.
type exchange struct {
	service string
	object  string
	prop    wire.PropertyID
	build   func(invokeID uint8) []byte
	parse   func(reply []byte, invokeID uint8) error
	value   func() any
}

// execute runs the retry loop for one exchange and returns the number
// of attempts made. Each attempt uses a fresh invoke ID, so a late
// reply to an earlier attempt cannot satisfy a later one.
func (e *Engine) execute(ctx context.Context, ep transport.Endpoint, ex exchange) (int, error) {
	backoff := NewBackoffWithConfig(BackoffConfig{
		Initial: e.config.RetryDelay,
		Max:     e.config.MaxDelay,
		Jitter:  e.config.RetryJitter,
	})
	maxAttempts := e.config.RetryCount + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		e.observer.Attempt()

		invokeID := e.nextInvokeID()
		start := e.now()
		reply, err := e.adapter.Send(ctx, ep, ex.build(invokeID), 0)
		if err == nil {
			err = ex.parse(reply, invokeID)
		}
		latency := e.now().Sub(start)

		if err == nil {
			e.observer.Success(latency)
			e.logAttempt(ep, ex, invokeID, attempt, latency, nil)
			return attempt, nil
		}

		// Canceled calls don't count against the device.
		if ctx.Err() != nil {
			e.logAttempt(ep, ex, invokeID, attempt, latency, err)
			return attempt, ctx.Err()
		}

		e.logAttempt(ep, ex, invokeID, attempt, latency, err)

		if deviceRejected(err) {
			e.observer.Failure(err)
			return attempt, newObjectError(ex.object, err)
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		delay := backoff.Next()
		e.observer.Retry(delay)
		if err := e.sleep(ctx, delay); err != nil {
			return attempt, err
		}
	}

	e.observer.Failure(lastErr)
	return maxAttempts, &ConnectionError{Endpoint: ep, Attempts: maxAttempts, Err: lastErr}
}

// nextInvokeID hands out invoke IDs, wrapping at 256.
func (e *Engine) nextInvokeID() uint8 {
	return uint8(e.invoke.Add(1))
}

// logAttempt emits one request event for one attempt.
func (e *Engine) logAttempt(ep transport.Endpoint, ex exchange, invokeID uint8, attempt int, latency time.Duration, err error) {
	event := log.Event{
		Timestamp:  e.now(),
		Direction:  log.DirectionOut,
		Layer:      log.LayerEngine,
		Category:   log.CategoryRequest,
		RemoteAddr: ep.Addr(),
		DeviceID:   ep.DeviceID,
		Request: &log.RequestEvent{
			Service:  ex.service,
			InvokeID: invokeID,
			Object:   ex.object,
			Property: &ex.prop,
			Attempt:  attempt,
			Status:   requestStatus(err),
			Latency:  &latency,
		},
	}
	if ex.value != nil {
		event.Request.Value = ex.value()
	}
	e.logger.Log(event)
}

// requestStatus summarizes an attempt outcome for the event log.
func requestStatus(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		bacErr *wire.BACnetError
		rejErr *wire.RejectError
		abErr  *wire.AbortError
	)
	switch {
	case errors.Is(err, transport.ErrTimeout):
		return "timeout"
	case errors.As(err, &bacErr):
		return bacErr.Code.String()
	case errors.As(err, &rejErr):
		return "reject"
	case errors.As(err, &abErr):
		return "abort"
	case errors.Is(err, wire.ErrInvokeIDMismatch):
		return "invoke-mismatch"
	default:
		return "error"
	}
}

// sleepContext waits for d or for ctx, whichever ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
