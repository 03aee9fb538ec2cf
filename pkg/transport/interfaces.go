package transport

import (
	"context"
	"time"
)

// Reply is one frame received in response to a Broadcast, tagged with
// the address it came from. Discovery keys device addresses off reply
// provenance, so the adapter must surface it.
type Reply struct {
	// Addr is the UDP source address of the reply ("host:port").
	Addr string

	// Frame is the raw reply frame.
	Frame []byte
}

// Adapter is the byte-frame transport consumed by the request engine.
// Implemented by UDPAdapter; test code substitutes in-process fakes.
type Adapter interface {
	// Open prepares the adapter for use. Idempotent.
	Open(ctx context.Context) error

	// Send transmits one request frame to the endpoint and returns the
	// next response frame from it. Timeout errors unwrap to ErrTimeout.
	// Sends to the same endpoint are serialized; sends to distinct
	// endpoints proceed in parallel.
	Send(ctx context.Context, ep Endpoint, frame []byte, timeout time.Duration) ([]byte, error)

	// Broadcast transmits one frame on the local broadcast domain and
	// collects every reply arriving within the window. An empty result
	// is not an error.
	Broadcast(ctx context.Context, frame []byte, window time.Duration) ([]Reply, error)

	// Close tears down all sockets. Safe to call more than once; the
	// adapter cannot be reopened afterwards.
	Close() error
}

// Compile-time interface satisfaction checks.
var _ Adapter = (*UDPAdapter)(nil)
