package testharness

import (
	"context"
	"sync"
	"time"

	"github.com/bacworks/bacworks-go/pkg/transport"
)

// Step is one scripted Send outcome.
type Step struct {
	// Reply is the canned response frame, returned when Err is nil.
	Reply []byte

	// Err is returned instead of a reply.
	Err error
}

// ScriptedAdapter plays Send responses from a fixed script. The last
// step repeats once the script runs out, so retry loops drain against
// a stable outcome. An empty script times out every Send.
type ScriptedAdapter struct {
	// BroadcastReplies and BroadcastErr script the Broadcast path.
	BroadcastReplies []transport.Reply
	BroadcastErr     error

	mu    sync.Mutex
	steps []Step
	sent  [][]byte

	opened bool
	closed bool
}

// NewScriptedAdapter creates an adapter playing the given steps.
func NewScriptedAdapter(steps ...Step) *ScriptedAdapter {
	return &ScriptedAdapter{steps: steps}
}

// Open implements transport.Adapter.
func (a *ScriptedAdapter) Open(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return transport.ErrClosed
	}
	a.opened = true
	return nil
}

// Close implements transport.Adapter.
func (a *ScriptedAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.opened = false
	a.closed = true
	return nil
}

// Send records the frame and plays the next step.
func (a *ScriptedAdapter) Send(ctx context.Context, _ transport.Endpoint, frame []byte, _ time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, transport.ErrClosed
	}
	if !a.opened {
		return nil, transport.ErrNotOpen
	}

	idx := len(a.sent)
	a.sent = append(a.sent, append([]byte(nil), frame...))

	if len(a.steps) == 0 {
		return nil, transport.ErrTimeout
	}
	if idx >= len(a.steps) {
		idx = len(a.steps) - 1
	}
	step := a.steps[idx]
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Reply, nil
}

// Broadcast plays the scripted broadcast outcome.
func (a *ScriptedAdapter) Broadcast(ctx context.Context, frame []byte, _ time.Duration) ([]transport.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, transport.ErrClosed
	}
	if !a.opened {
		return nil, transport.ErrNotOpen
	}
	if a.BroadcastErr != nil {
		return nil, a.BroadcastErr
	}
	return a.BroadcastReplies, nil
}

// Sent returns copies of the frames sent so far.
func (a *ScriptedAdapter) Sent() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([][]byte, len(a.sent))
	for i, frame := range a.sent {
		out[i] = append([]byte(nil), frame...)
	}
	return out
}
