package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultPort is the standard BACnet/IP UDP port (0xBAC0).
const DefaultPort = 47808

// DefaultBroadcastAddress is the limited-broadcast destination on the
// standard BACnet/IP port.
const DefaultBroadcastAddress = "255.255.255.255:47808"

// Endpoint identifies one remote BACnet/IP device.
// It is a value type: construct it once and pass it by value.
type Endpoint struct {
	// DeviceID is the device instance number (0..4194303).
	DeviceID uint32

	// Address is the device host, either "host" or "host:port".
	// A port in the address takes precedence over the Port field.
	Address string

	// Port is the UDP port (default 47808).
	Port int

	// Timeout is the per-request timeout used when the caller does
	// not supply one.
	Timeout time.Duration
}

// Addr returns the full "host:port" dial address for the endpoint.
func (e Endpoint) Addr() string {
	if _, _, err := net.SplitHostPort(e.Address); err == nil {
		return e.Address
	}
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(e.Address, strconv.Itoa(port))
}

// String returns a human-readable endpoint description.
func (e Endpoint) String() string {
	return fmt.Sprintf("device %d at %s", e.DeviceID, e.Addr())
}
