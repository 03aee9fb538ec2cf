// Package health turns request outcomes into a device health state
// and running statistics.
//
// Tracker implements engine.Observer. The state machine is driven by
// the consecutive-failure counter: any success makes the device
// healthy, failures degrade it, and Threshold consecutive failures
// make it unhealthy. Exactly one transition is computed per completed
// operation.
package health

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bacworks/bacworks-go/pkg/engine"
	"github.com/bacworks/bacworks-go/pkg/log"
)

// DefaultThreshold is the consecutive-failure count at which a device
// is considered unhealthy.
const DefaultThreshold = 3

// Snapshot is an immutable view of the tracker's statistics.
type Snapshot struct {
	// Attempts counts requests sent, including retries.
	Attempts uint64

	// Successes counts operations that completed, even ones that
	// needed retries.
	Successes uint64

	// Failures counts operations that failed for good.
	Failures uint64

	// Retries counts retry waits entered.
	Retries uint64

	// ConsecutiveFailures drives the state machine. Reset on success.
	ConsecutiveFailures int

	// LastRead and LastWrite are the completion times of the most
	// recent successful operations.
	LastRead  time.Time
	LastWrite time.Time

	// AvgLatency is the cumulative moving average over successes.
	AvgLatency time.Duration

	// State is the current health classification.
	State State

	// LastError is the most recent failure, nil after a success.
	LastError error
}

// Config holds tracker settings.
type Config struct {
	// Threshold is the consecutive-failure count at which the device
	// becomes unhealthy. Zero means DefaultThreshold.
	Threshold int

	// DeviceID tags log lines and events.
	DeviceID uint32

	// Logger receives operational lines. Nil disables them.
	Logger *slog.Logger

	// EventLog receives health state-change events. Nil disables them.
	EventLog log.Logger
}

// Tracker accumulates request outcomes for one device. Writers mutate
// under a mutex and publish a fresh snapshot; readers load the snapshot
// without blocking writers.
type Tracker struct {
	mu      sync.Mutex
	config  Config
	current Snapshot

	snapshot atomic.Pointer[Snapshot]

	// Clock hook, replaced in tests.
	now func() time.Time
}

// Compile-time interface satisfaction check.
var _ engine.Observer = (*Tracker)(nil)

// NewTracker creates a tracker in the unknown state.
func NewTracker(config Config) *Tracker {
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.EventLog == nil {
		config.EventLog = &log.NoopLogger{}
	}

	t := &Tracker{
		config: config,
		now:    time.Now,
	}
	t.publishLocked()
	return t
}

// Snapshot returns the current statistics. Never blocks writers.
func (t *Tracker) Snapshot() Snapshot {
	return *t.snapshot.Load()
}

// State returns the current health classification.
func (t *Tracker) State() State {
	return t.snapshot.Load().State
}

// Attempt records a request going out on the wire.
func (t *Tracker) Attempt() {
	t.mu.Lock()
	t.current.Attempts++
	t.publishLocked()
	t.mu.Unlock()
}

// Success records a completed operation. The device becomes healthy
// from any state.
func (t *Tracker) Success(latency time.Duration) {
	t.mu.Lock()
	old := t.current.State
	t.current.Successes++
	t.current.ConsecutiveFailures = 0
	t.current.LastError = nil
	t.current.AvgLatency += (latency - t.current.AvgLatency) / time.Duration(t.current.Successes)
	t.current.State = StateHealthy
	t.publishLocked()
	t.mu.Unlock()

	t.transition(old, StateHealthy, "")
}

// Failure records a failed operation and advances the state machine.
func (t *Tracker) Failure(err error) {
	t.mu.Lock()
	old := t.current.State
	t.current.Failures++
	t.current.ConsecutiveFailures++
	t.current.LastError = err

	next := StateDegraded
	if t.current.ConsecutiveFailures >= t.config.Threshold {
		next = StateUnhealthy
	}
	t.current.State = next
	consecutive := t.current.ConsecutiveFailures
	t.publishLocked()
	t.mu.Unlock()

	if t.config.Logger != nil {
		t.config.Logger.Warn("request failed",
			"device_id", t.config.DeviceID,
			"error", err,
			"consecutive_failures", consecutive)
	}
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	t.transition(old, next, reason)
}

// Retry records a retry wait.
func (t *Tracker) Retry(delay time.Duration) {
	t.mu.Lock()
	t.current.Retries++
	t.publishLocked()
	t.mu.Unlock()
}

// MarkRead stamps the completion time of a successful read.
func (t *Tracker) MarkRead() {
	t.mu.Lock()
	t.current.LastRead = t.now()
	t.publishLocked()
	t.mu.Unlock()
}

// MarkWrite stamps the completion time of a successful write.
func (t *Tracker) MarkWrite() {
	t.mu.Lock()
	t.current.LastWrite = t.now()
	t.publishLocked()
	t.mu.Unlock()
}

// publishLocked stores a copy of the working snapshot for lock-free
// readers. Callers hold t.mu, except NewTracker before the tracker
// escapes.
func (t *Tracker) publishLocked() {
	snap := t.current
	t.snapshot.Store(&snap)
}

// transition logs and records a state change. No-op when the state did
// not move.
func (t *Tracker) transition(old, next State, reason string) {
	if old == next {
		return
	}

	if t.config.Logger != nil {
		args := []any{
			"device_id", t.config.DeviceID,
			"from", old.String(),
			"to", next.String(),
		}
		if reason != "" {
			args = append(args, "reason", reason)
		}
		if next == StateHealthy {
			t.config.Logger.Info("device health changed", args...)
		} else {
			t.config.Logger.Warn("device health changed", args...)
		}
	}

	t.config.EventLog.Log(log.Event{
		Timestamp: t.now(),
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		DeviceID:  t.config.DeviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityHealth,
			OldState: old.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
}
