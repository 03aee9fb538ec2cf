package engine

import (
	"math/rand"
	"sync"
	"time"
)

// Backoff calculates exponential retry delays with optional jitter.
// One Backoff covers one logical operation; a success resets it.
type Backoff struct {
	mu sync.Mutex

	// Current base delay (before jitter)
	current time.Duration

	// Configuration
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	// Attempt counter
	attempts int

	// Random source for jitter
	rng *rand.Rand
}

// BackoffConfig allows customizing backoff parameters.
type BackoffConfig struct {
	// Initial is the first retry delay.
	Initial time.Duration

	// Max bounds delay growth.
	Max time.Duration

	// Multiplier is the factor by which the delay grows on each retry.
	Multiplier float64

	// Jitter is the maximum random extension as a fraction of the base
	// delay. Zero keeps the schedule deterministic.
	Jitter float64
}

// NewBackoff creates a backoff calculator with the engine defaults.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{})
}

// NewBackoffWithConfig creates a backoff calculator with custom settings.
// Zero or out-of-range fields fall back to the engine defaults.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = DefaultRetryDelay
	}
	if cfg.Max <= 0 {
		cfg.Max = DefaultMaxDelay
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = backoffMultiplier
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		current:    cfg.Initial,
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next retry delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Reset returns the backoff to its initial delay.
// Call this after a successful exchange.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Current returns the next base delay (without jitter) without advancing.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// addJitter adds random jitter to a delay.
func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	jitterAmount := time.Duration(float64(d) * b.jitter * b.rng.Float64())
	return d + jitterAmount
}
