package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bacworks/bacworks-go/pkg/log"
)

// Transport errors.
var (
	ErrNotOpen = errors.New("adapter not open")
	ErrClosed  = errors.New("adapter closed")
	ErrTimeout = errors.New("request timed out")
)

// maxFrameSize is the receive buffer size. The largest BACnet/IP frame
// (1476-octet APDU plus BVLC/NPDU headers) fits in one MTU-sized datagram.
const maxFrameSize = 1500

// maxLoggedFrame caps the frame bytes copied into log events.
const maxLoggedFrame = 512

// UDPConfig configures a UDPAdapter.
type UDPConfig struct {
	// BroadcastAddress is the destination for Broadcast frames
	// (default: "255.255.255.255:47808").
	BroadcastAddress string

	// LocalAddress is the local bind address for the broadcast
	// listener (default: all interfaces, ephemeral port).
	LocalAddress string

	// Logger receives one event per frame sent or received.
	// Nil disables frame logging.
	Logger log.Logger
}

// UDPAdapter exchanges BACnet/IP frames over UDP. Each endpoint gets a
// lazily dialed connected socket so the kernel filters replies by
// source; broadcasts use a separate unconnected socket per call.
type UDPAdapter struct {
	config UDPConfig
	logger log.Logger

	mu        sync.Mutex
	conns     map[string]*endpointConn
	broadcast *net.UDPAddr
	opened    bool
	closed    bool
}

// endpointConn is one device's socket plus the mutex that serializes
// request/response exchanges on it.
type endpointConn struct {
	mu   sync.Mutex
	conn *net.UDPConn
}

// NewUDPAdapter creates a UDP adapter. Call Open before use.
func NewUDPAdapter(config UDPConfig) *UDPAdapter {
	if config.BroadcastAddress == "" {
		config.BroadcastAddress = DefaultBroadcastAddress
	}
	logger := config.Logger
	if logger == nil {
		logger = &log.NoopLogger{}
	}
	return &UDPAdapter{
		config: config,
		logger: logger,
		conns:  make(map[string]*endpointConn),
	}
}

// Open resolves the broadcast address and marks the adapter usable.
// Endpoint sockets are dialed lazily on first Send. Idempotent.
func (a *UDPAdapter) Open(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.opened {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	baddr, err := net.ResolveUDPAddr("udp4", a.config.BroadcastAddress)
	if err != nil {
		return fmt.Errorf("resolve broadcast address %s: %w", a.config.BroadcastAddress, err)
	}

	a.broadcast = baddr
	a.opened = true
	return nil
}

// Send transmits one frame to the endpoint and returns the next reply
// datagram from it. The deadline is the earlier of the per-call timeout
// and the context deadline; a zero timeout falls back to the endpoint's
// configured timeout.
func (a *UDPAdapter) Send(ctx context.Context, ep Endpoint, frame []byte, timeout time.Duration) ([]byte, error) {
	ec, err := a.endpointConn(ep)
	if err != nil {
		return nil, err
	}

	// One exchange at a time per endpoint. Distinct endpoints hold
	// distinct locks and proceed in parallel.
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = ep.Timeout
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}

	buf := make([]byte, maxFrameSize)

	// Drop late replies from prior timed-out exchanges so the next
	// datagram read belongs to this request. The endpoint lock is
	// held, so anything buffered now is stale by definition. An
	// already-expired deadline would fail the read without consuming
	// buffered datagrams, so each pass gets a short future one.
	for {
		ec.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
		if _, err := ec.conn.Read(buf); err != nil {
			break
		}
	}

	a.logFrame(log.DirectionOut, ep.Addr(), ep.DeviceID, frame)

	ec.conn.SetWriteDeadline(deadline)
	if _, err := ec.conn.Write(frame); err != nil {
		return nil, wrapNetError(ctx, "send", ep.Addr(), err)
	}

	ec.conn.SetReadDeadline(deadline)
	n, err := ec.conn.Read(buf)
	if err != nil {
		return nil, wrapNetError(ctx, "receive", ep.Addr(), err)
	}

	reply := buf[:n:n]
	a.logFrame(log.DirectionIn, ep.Addr(), ep.DeviceID, reply)
	return reply, nil
}

// Broadcast transmits the frame to the broadcast address and collects
// every reply arriving before the window closes. Go's UDP sockets have
// SO_BROADCAST enabled, so no extra socket options are needed.
func (a *UDPAdapter) Broadcast(ctx context.Context, frame []byte, window time.Duration) ([]Reply, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, ErrClosed
	}
	if !a.opened {
		a.mu.Unlock()
		return nil, ErrNotOpen
	}
	baddr := a.broadcast
	local := a.config.LocalAddress
	a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var laddr *net.UDPAddr
	if local != "" {
		var err error
		laddr, err = net.ResolveUDPAddr("udp4", local)
		if err != nil {
			return nil, fmt.Errorf("resolve local address %s: %w", local, err)
		}
	}

	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, fmt.Errorf("broadcast listen: %w", err)
	}
	defer conn.Close()

	a.logFrame(log.DirectionOut, baddr.String(), 0, frame)

	if _, err := conn.WriteToUDP(frame, baddr); err != nil {
		return nil, fmt.Errorf("broadcast to %s: %w", baddr, err)
	}

	deadline := time.Now().Add(window)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetReadDeadline(deadline)

	var replies []Reply
	buf := make([]byte, maxFrameSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break // window closed
			}
			return nil, fmt.Errorf("broadcast collect: %w", err)
		}

		reply := append([]byte(nil), buf[:n]...)
		a.logFrame(log.DirectionIn, addr.String(), 0, reply)
		replies = append(replies, Reply{Addr: addr.String(), Frame: reply})
	}

	return replies, nil
}

// Close tears down every endpoint socket. Safe to call more than once.
func (a *UDPAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	a.opened = false

	var firstErr error
	for addr, ec := range a.conns {
		if err := ec.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", addr, err)
		}
	}
	a.conns = nil

	return firstErr
}

// endpointConn returns the cached connected socket for the endpoint,
// dialing it on first use.
func (a *UDPAdapter) endpointConn(ep Endpoint) (*endpointConn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}
	if !a.opened {
		return nil, ErrNotOpen
	}

	addr := ep.Addr()
	if ec, ok := a.conns[addr]; ok {
		return ec, nil
	}

	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	ec := &endpointConn{conn: conn}
	a.conns[addr] = ec
	return ec, nil
}

// logFrame emits one transport-layer frame event. Payloads above
// maxLoggedFrame bytes are truncated in the event, never on the wire.
func (a *UDPAdapter) logFrame(dir log.Direction, remote string, deviceID uint32, frame []byte) {
	data := frame
	truncated := false
	if len(data) > maxLoggedFrame {
		data = data[:maxLoggedFrame]
		truncated = true
	}

	a.logger.Log(log.Event{
		Timestamp:  time.Now(),
		Direction:  dir,
		Layer:      log.LayerTransport,
		Category:   log.CategoryFrame,
		RemoteAddr: remote,
		DeviceID:   deviceID,
		Frame: &log.FrameEvent{
			Size:      len(frame),
			Data:      append([]byte(nil), data...),
			Truncated: truncated,
		},
	})
}

// wrapNetError maps socket errors onto the adapter's sentinel errors.
// Context cancellation takes precedence so callers see the reason the
// deadline fired early.
func wrapNetError(ctx context.Context, op, addr string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s %s: %w", op, addr, ErrTimeout)
	}
	if errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%s %s: %w", op, addr, ErrClosed)
	}
	return fmt.Errorf("%s %s: %w", op, addr, err)
}
