package testharness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// rejectUnrecognizedService is the Reject reason for services the fake
// device doesn't implement (clause 18.9).
const rejectUnrecognizedService = 9

// ReadRecord is one served ReadProperty request.
type ReadRecord struct {
	Object   wire.ObjectID
	Property wire.PropertyID
}

// WriteRecord is one accepted WriteProperty request.
type WriteRecord struct {
	Object   wire.ObjectID
	Property wire.PropertyID
	Value    any
}

// failure is a scripted per-object rejection.
type failure struct {
	class wire.ErrorClass
	code  wire.ErrorCode
}

// FakeDevice is an in-memory BACnet device behind transport.Adapter.
// Writes store, reads return what was stored.
type FakeDevice struct {
	// VendorID, MaxAPDU and Addr shape the I-Am announcement.
	// Set before first use.
	VendorID uint16
	MaxAPDU  uint16
	Addr     string

	// Latency delays every Send by a fixed amount. Set before first use.
	Latency time.Duration

	mu       sync.Mutex
	deviceID uint32
	objects  map[wire.ObjectID]map[wire.PropertyID]any
	failures map[wire.ObjectID]failure

	timeoutAll    bool
	timeoutNext   int
	malformedNext int

	reads  []ReadRecord
	writes []WriteRecord

	opened bool
	closed bool
}

// Compile-time interface satisfaction checks.
var (
	_ transport.Adapter = (*FakeDevice)(nil)
	_ transport.Adapter = (*ScriptedAdapter)(nil)
)

// NewFakeDevice creates a fake device announcing the given instance.
func NewFakeDevice(deviceID uint32) *FakeDevice {
	return &FakeDevice{
		MaxAPDU:  1476,
		Addr:     "127.0.0.1:47808",
		deviceID: deviceID,
		objects:  make(map[wire.ObjectID]map[wire.PropertyID]any),
		failures: make(map[wire.ObjectID]failure),
	}
}

// SetProperty seeds or overwrites one property value. The object is
// created on first touch.
func (d *FakeDevice) SetProperty(oid wire.ObjectID, prop wire.PropertyID, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	props, ok := d.objects[oid]
	if !ok {
		props = make(map[wire.PropertyID]any)
		d.objects[oid] = props
	}
	props[prop] = value
}

// Property returns a stored property value.
func (d *FakeDevice) Property(oid wire.ObjectID, prop wire.PropertyID) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	props, ok := d.objects[oid]
	if !ok {
		return nil, false
	}
	v, ok := props[prop]
	return v, ok
}

// TimeoutAll makes every Send time out until turned off.
func (d *FakeDevice) TimeoutAll(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeoutAll = on
}

// TimeoutNext makes the next n Sends time out.
func (d *FakeDevice) TimeoutNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeoutNext = n
}

// MalformedNext makes the next Send return an undecodable frame.
func (d *FakeDevice) MalformedNext() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.malformedNext++
}

// FailObject scripts an Error response for every request touching the
// object, whether or not it is seeded.
func (d *FakeDevice) FailObject(oid wire.ObjectID, class wire.ErrorClass, code wire.ErrorCode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[oid] = failure{class: class, code: code}
}

// PassObject removes a scripted failure.
func (d *FakeDevice) PassObject(oid wire.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.failures, oid)
}

// Reads returns the served ReadProperty requests in arrival order.
func (d *FakeDevice) Reads() []ReadRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]ReadRecord, len(d.reads))
	copy(out, d.reads)
	return out
}

// Writes returns the accepted WriteProperty requests in arrival order.
func (d *FakeDevice) Writes() []WriteRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]WriteRecord, len(d.writes))
	copy(out, d.writes)
	return out
}

// Open implements transport.Adapter.
func (d *FakeDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return transport.ErrClosed
	}
	d.opened = true
	return nil
}

// Close implements transport.Adapter. The device cannot be reopened,
// matching the UDP adapter's contract.
func (d *FakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opened = false
	d.closed = true
	return nil
}

// Send serves one confirmed request frame.
func (d *FakeDevice) Send(ctx context.Context, _ transport.Endpoint, frame []byte, _ time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, transport.ErrClosed
	}
	if !d.opened {
		d.mu.Unlock()
		return nil, transport.ErrNotOpen
	}
	latency := d.Latency
	d.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(latency):
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timeoutAll {
		return nil, transport.ErrTimeout
	}
	if d.timeoutNext > 0 {
		d.timeoutNext--
		return nil, transport.ErrTimeout
	}
	if d.malformedNext > 0 {
		d.malformedNext--
		return []byte{0xde, 0xad}, nil
	}

	apdu, err := wire.APDUFromFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("fake device: %w", err)
	}
	invokeID, service, body, err := wire.ParseConfirmedRequest(apdu)
	if err != nil {
		return nil, fmt.Errorf("fake device: %w", err)
	}

	switch service {
	case wire.ServiceConfirmedReadProperty:
		return d.serveRead(invokeID, body)
	case wire.ServiceConfirmedWriteProperty:
		return d.serveWrite(invokeID, body)
	default:
		return wire.WrapAPDU([]byte{wire.APDUReject, invokeID, rejectUnrecognizedService}), nil
	}
}

// Broadcast answers Who-Is with this device's I-Am. Anything else gets
// no replies.
func (d *FakeDevice) Broadcast(ctx context.Context, frame []byte, _ time.Duration) ([]transport.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, transport.ErrClosed
	}
	if !d.opened {
		return nil, transport.ErrNotOpen
	}

	apdu, err := wire.APDUFromFrame(frame)
	if err != nil || len(apdu) < 2 || apdu[0]&0xF0 != wire.APDUUnconfirmedRequest || apdu[1] != wire.ServiceUnconfirmedWhoIs {
		return []transport.Reply{}, nil
	}

	return []transport.Reply{{
		Addr:  d.Addr,
		Frame: wire.EncodeIAm(d.deviceID, d.MaxAPDU, d.VendorID),
	}}, nil
}

// serveRead answers a ReadProperty request. Caller holds d.mu.
func (d *FakeDevice) serveRead(invokeID uint8, body []byte) ([]byte, error) {
	oid, prop, err := wire.ParseReadPropertyRequest(body)
	if err != nil {
		return nil, fmt.Errorf("fake device: read request: %w", err)
	}
	d.reads = append(d.reads, ReadRecord{Object: oid, Property: prop})

	if fail, ok := d.failures[oid]; ok {
		return errorFrame(invokeID, wire.ServiceConfirmedReadProperty, fail), nil
	}
	props, ok := d.objects[oid]
	if !ok {
		return errorFrame(invokeID, wire.ServiceConfirmedReadProperty, failure{wire.ClassObject, wire.CodeUnknownObject}), nil
	}
	value, ok := props[prop]
	if !ok {
		return errorFrame(invokeID, wire.ServiceConfirmedReadProperty, failure{wire.ClassProperty, wire.CodeUnknownProperty}), nil
	}

	encoded, err := appendAppValue(nil, value)
	if err != nil {
		return nil, err
	}
	return wire.WrapAPDU(wire.ComplexACKAPDU(invokeID, oid, prop, encoded)), nil
}

// serveWrite answers a WriteProperty request. Caller holds d.mu.
func (d *FakeDevice) serveWrite(invokeID uint8, body []byte) ([]byte, error) {
	oid, prop, value, err := wire.ParseWritePropertyRequest(body)
	if err != nil {
		return nil, fmt.Errorf("fake device: write request: %w", err)
	}

	if fail, ok := d.failures[oid]; ok {
		return errorFrame(invokeID, wire.ServiceConfirmedWriteProperty, fail), nil
	}
	props, ok := d.objects[oid]
	if !ok {
		return errorFrame(invokeID, wire.ServiceConfirmedWriteProperty, failure{wire.ClassObject, wire.CodeUnknownObject}), nil
	}

	d.writes = append(d.writes, WriteRecord{Object: oid, Property: prop, Value: value})
	props[prop] = value
	return wire.WrapAPDU(wire.SimpleACKAPDU(invokeID, wire.ServiceConfirmedWriteProperty)), nil
}

func errorFrame(invokeID uint8, service byte, f failure) []byte {
	return wire.WrapAPDU(wire.EncodeErrorPDU(invokeID, service, f.class, f.code))
}

// appendAppValue encodes a stored value with its application tag. The
// type mapping mirrors what DecodeAppValue produces, so a stored write
// reads back identically.
func appendAppValue(dst []byte, value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return wire.AppendAppNull(dst), nil
	case bool:
		// Binary present values travel as Enumerated inactive/active.
		if v {
			return wire.AppendAppEnumerated(dst, 1), nil
		}
		return wire.AppendAppEnumerated(dst, 0), nil
	case int:
		return wire.AppendAppUnsigned(dst, uint32(v)), nil
	case uint32:
		return wire.AppendAppUnsigned(dst, v), nil
	case uint64:
		return wire.AppendAppUnsigned(dst, uint32(v)), nil
	case float32:
		return wire.AppendAppReal(dst, float64(v)), nil
	case float64:
		return wire.AppendAppReal(dst, v), nil
	case string:
		return wire.AppendAppString(dst, v), nil
	case wire.BitString:
		return wire.AppendAppBitString(dst, v), nil
	default:
		return nil, fmt.Errorf("fake device: unencodable property value %T", value)
	}
}
