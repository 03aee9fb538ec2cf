// Package transport provides the BACnet/IP transport adapter.
//
// The transport layer handles:
//   - UDP datagram exchange with BACnet/IP devices (default port 47808)
//   - Per-endpoint request/response serialization
//   - Broadcast transmission and reply collection for discovery
//   - Frame-level event logging
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      APDU (services)           │
//	├────────────────────────────────┤
//	│      NPDU (network layer)      │
//	├────────────────────────────────┤
//	│      BVLC (0x81 framing)       │
//	├────────────────────────────────┤
//	│           UDP                  │
//	├────────────────────────────────┤
//	│         IPv4 only              │
//	└────────────────────────────────┘
//
// The adapter is byte-frame I/O only: it transmits request frames built
// by pkg/wire and returns response frames for the engine to interpret.
// It never inspects frame contents beyond logging them.
//
// # Concurrency
//
// Each endpoint gets its own connected socket and its own mutex, so an
// exchange with one device never delays an exchange with another, while
// two requests to the same device can never interleave on the wire.
//
// # Timeouts
//
// Every Send carries an explicit per-call timeout enforced as a socket
// read deadline. Timeout errors unwrap to ErrTimeout so callers can
// classify them without inspecting net.Error.
package transport
