package log

import (
	"time"

	"github.com/bacworks/bacworks-go/pkg/wire"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates frame flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device address (IP:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceID is the device instance number where known.
	DeviceID uint32 `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"8,keyasint,omitempty"`  // Transport layer
	Request     *RequestEvent     `cbor:"9,keyasint,omitempty"`  // Engine layer (decoded)
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Session/health state
	Discovery   *DiscoveryEvent   `cbor:"11,keyasint,omitempty"` // Who-Is/I-Am results
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of frame flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming frame.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing frame.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the UDP frame layer (raw bytes).
	LayerTransport Layer = 0
	// LayerEngine is the request engine layer (decoded services).
	LayerEngine Layer = 1
	// LayerSession is the session layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerEngine:
		return "ENGINE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a raw frame.
	CategoryFrame Category = 0
	// CategoryRequest indicates a decoded service request or response.
	CategoryRequest Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryDiscovery indicates a discovery result.
	CategoryDiscovery Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryRequest:
		return "REQUEST"
	case CategoryState:
		return "STATE"
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// RequestEvent captures one decoded service exchange at the engine layer.
type RequestEvent struct {
	// Service names the BACnet service ("read-property",
	// "write-property", "who-is").
	Service string `cbor:"1,keyasint"`

	// InvokeID correlates confirmed requests with their responses.
	InvokeID uint8 `cbor:"2,keyasint,omitempty"`

	// Object is the target object ("analog-input:3").
	Object string `cbor:"3,keyasint,omitempty"`

	// Property is the target property identifier.
	Property *wire.PropertyID `cbor:"4,keyasint,omitempty"`

	// Attempt is the 1-based attempt number within the retry budget.
	Attempt int `cbor:"5,keyasint,omitempty"`

	// Value is the decoded value read or written.
	Value any `cbor:"6,keyasint,omitempty"`

	// Status summarizes the outcome ("ok", "timeout", "unknown-object").
	Status string `cbor:"7,keyasint,omitempty"`

	// Latency is the round-trip time for completed exchanges.
	// Stored as nanoseconds.
	Latency *time.Duration `cbor:"8,keyasint,omitempty"`
}

// StateChangeEvent captures session and health lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntitySession indicates a session lifecycle change.
	StateEntitySession StateEntity = 0
	// StateEntityHealth indicates a device health state change.
	StateEntityHealth StateEntity = 1
	// StateEntityMonitor indicates a monitor loop state change.
	StateEntityMonitor StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySession:
		return "SESSION"
	case StateEntityHealth:
		return "HEALTH"
	case StateEntityMonitor:
		return "MONITOR"
	default:
		return "UNKNOWN"
	}
}

// DiscoveryEvent captures one device answering a Who-Is sweep.
type DiscoveryEvent struct {
	// DeviceID is the announced device instance number.
	DeviceID uint32 `cbor:"1,keyasint"`

	// Address is where the announcement came from (IP:port).
	Address string `cbor:"2,keyasint"`

	// VendorID is the announced vendor identifier.
	VendorID uint16 `cbor:"3,keyasint,omitempty"`

	// MaxAPDU is the device's advertised APDU limit.
	MaxAPDU uint16 `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
