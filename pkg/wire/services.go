package wire

import (
	"bytes"
	"errors"
	"fmt"
)

// Service parse errors.
var (
	ErrNotIAm        = errors.New("not an I-Am frame")
	ErrUnexpectedPDU = errors.New("unexpected PDU type")
)

// IAm is the decoded payload of an I-Am announcement.
type IAm struct {
	Device       ObjectID
	MaxAPDU      uint16
	Segmentation uint8
	VendorID     uint16
}

// EncodeWhoIs builds a complete broadcast Who-Is frame. Negative limits
// omit the device instance range, addressing every device.
func EncodeWhoIs(lowLimit, highLimit int32) []byte {
	var body []byte
	if lowLimit >= 0 && highLimit >= 0 {
		body = appendContextUnsigned(body, 0, uint32(lowLimit))
		body = appendContextUnsigned(body, 1, uint32(highLimit))
	}
	return wrapFrame(BVLCOriginalBroadcast, false, unconfirmedRequestAPDU(ServiceUnconfirmedWhoIs, body))
}

// EncodeIAm builds a complete broadcast I-Am frame. Devices answer Who-Is
// with this; the engine's test harness uses it to impersonate devices.
func EncodeIAm(deviceInstance uint32, maxAPDU uint16, vendorID uint16) []byte {
	var body []byte
	body = AppendAppObjectID(body, ObjectID{Type: ObjectTypeDevice, Instance: deviceInstance})
	body = appendTag(body, TagUnsignedInt, false, 2)
	body = append(body, byte(maxAPDU>>8), byte(maxAPDU))
	body = AppendAppEnumerated(body, 3) // segmentation: no-segmentation
	body = appendTag(body, TagUnsignedInt, false, 2)
	body = append(body, byte(vendorID>>8), byte(vendorID))
	return wrapFrame(BVLCOriginalBroadcast, false, unconfirmedRequestAPDU(ServiceUnconfirmedIAm, body))
}

// ParseIAm decodes an I-Am frame. Frames carrying anything else return
// ErrNotIAm so discovery can skip unrelated broadcast traffic.
func ParseIAm(frame []byte) (IAm, error) {
	apdu, err := APDUFromFrame(frame)
	if err != nil {
		return IAm{}, err
	}
	if len(apdu) < 2 || apdu[0]&0xF0 != APDUUnconfirmedRequest || apdu[1] != ServiceUnconfirmedIAm {
		return IAm{}, ErrNotIAm
	}

	r := bytes.NewReader(apdu[2:])

	oidVal, err := DecodeAppValue(r)
	if err != nil {
		return IAm{}, fmt.Errorf("I-Am object identifier: %w", err)
	}
	oid, ok := oidVal.(ObjectID)
	if !ok || oid.Type != ObjectTypeDevice {
		return IAm{}, fmt.Errorf("%w: announcing object %v", ErrNotIAm, oidVal)
	}

	maxAPDU, err := DecodeAppValue(r)
	if err != nil {
		return IAm{}, fmt.Errorf("I-Am max APDU: %w", err)
	}
	seg, err := DecodeAppValue(r)
	if err != nil {
		return IAm{}, fmt.Errorf("I-Am segmentation: %w", err)
	}
	vendor, err := DecodeAppValue(r)
	if err != nil {
		return IAm{}, fmt.Errorf("I-Am vendor: %w", err)
	}

	maxAPDUNum, ok1 := maxAPDU.(uint64)
	segNum, ok2 := seg.(uint64)
	vendorNum, ok3 := vendor.(uint64)
	if !ok1 || !ok2 || !ok3 {
		return IAm{}, fmt.Errorf("%w: malformed parameters", ErrNotIAm)
	}

	return IAm{
		Device:       oid,
		MaxAPDU:      uint16(maxAPDUNum),
		Segmentation: uint8(segNum),
		VendorID:     uint16(vendorNum),
	}, nil
}

// EncodeReadProperty builds a complete unicast ReadProperty frame.
func EncodeReadProperty(invokeID uint8, oid ObjectID, prop PropertyID) []byte {
	var body []byte
	body = appendContextObjectID(body, 0, oid)
	body = appendContextUnsigned(body, 1, uint32(prop))
	return wrapFrame(BVLCOriginalUnicast, true, confirmedRequestAPDU(invokeID, ServiceConfirmedReadProperty, body))
}

// ParseReadPropertyACK decodes the response to a ReadProperty request.
// A Complex-ACK yields the decoded application value (a slice when the
// property holds more than one value). Error, Reject and Abort PDUs are
// returned as *BACnetError, *RejectError and *AbortError respectively.
func ParseReadPropertyACK(frame []byte, invokeID uint8) (any, error) {
	apdu, err := APDUFromFrame(frame)
	if err != nil {
		return nil, err
	}
	if err := checkServiceError(apdu, invokeID); err != nil {
		return nil, err
	}
	if apdu[0]&0xF0 != APDUComplexACK {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnexpectedPDU, apdu[0]&0xF0)
	}
	if len(apdu) < 3 {
		return nil, fmt.Errorf("%w: complex ACK header", ErrTruncatedFrame)
	}
	if apdu[1] != invokeID {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvokeIDMismatch, apdu[1], invokeID)
	}
	if apdu[2] != ServiceConfirmedReadProperty {
		return nil, fmt.Errorf("%w: service 0x%02x in ReadProperty ACK", ErrUnexpectedPDU, apdu[2])
	}

	r := bytes.NewReader(apdu[3:])
	if _, err := readContextObjectID(r, 0); err != nil {
		return nil, fmt.Errorf("ReadProperty ACK object: %w", err)
	}
	if _, err := readContextUnsigned(r, 1); err != nil {
		return nil, fmt.Errorf("ReadProperty ACK property: %w", err)
	}

	// Property value is bracketed by context tag 3 opening/closing tags.
	octet, err := r.ReadByte()
	if err != nil || octet != 3<<4|0x0E {
		return nil, fmt.Errorf("%w: property value opening tag", ErrUnexpectedTag)
	}

	var values []any
	for !isClosingTag(r, 3) {
		v, err := DecodeAppValue(r)
		if err != nil {
			return nil, fmt.Errorf("ReadProperty ACK value: %w", err)
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		return values, nil
	}
}

// EncodeWriteProperty builds a complete unicast WriteProperty frame.
// value must already be application-tag encoded (AppendApp* helpers).
// priority 0 omits the priority parameter.
func EncodeWriteProperty(invokeID uint8, oid ObjectID, prop PropertyID, value []byte, priority uint8) []byte {
	var body []byte
	body = appendContextObjectID(body, 0, oid)
	body = appendContextUnsigned(body, 1, uint32(prop))
	body = appendOpeningTag(body, 3)
	body = append(body, value...)
	body = appendClosingTag(body, 3)
	if priority > 0 {
		body = appendContextUnsigned(body, 4, uint32(priority))
	}
	return wrapFrame(BVLCOriginalUnicast, true, confirmedRequestAPDU(invokeID, ServiceConfirmedWriteProperty, body))
}

// ParseWritePropertyACK verifies the Simple-ACK for a WriteProperty
// request. Error, Reject and Abort PDUs are returned as typed errors.
func ParseWritePropertyACK(frame []byte, invokeID uint8) error {
	apdu, err := APDUFromFrame(frame)
	if err != nil {
		return err
	}
	if err := checkServiceError(apdu, invokeID); err != nil {
		return err
	}
	if apdu[0]&0xF0 != APDUSimpleACK {
		return fmt.Errorf("%w: 0x%02x", ErrUnexpectedPDU, apdu[0]&0xF0)
	}
	if len(apdu) < 3 {
		return fmt.Errorf("%w: simple ACK header", ErrTruncatedFrame)
	}
	if apdu[1] != invokeID {
		return fmt.Errorf("%w: got %d, want %d", ErrInvokeIDMismatch, apdu[1], invokeID)
	}
	if apdu[2] != ServiceConfirmedWriteProperty {
		return fmt.Errorf("%w: service 0x%02x in WriteProperty ACK", ErrUnexpectedPDU, apdu[2])
	}
	return nil
}

// checkServiceError converts Error, Reject and Abort PDUs into typed
// errors. Other PDU types pass through untouched.
func checkServiceError(apdu []byte, invokeID uint8) error {
	if len(apdu) < 2 {
		return fmt.Errorf("%w: APDU header", ErrTruncatedFrame)
	}
	switch apdu[0] & 0xF0 {
	case APDUError:
		if len(apdu) < 3 {
			return fmt.Errorf("%w: error PDU", ErrTruncatedFrame)
		}
		if apdu[1] != invokeID {
			return fmt.Errorf("%w: got %d, want %d", ErrInvokeIDMismatch, apdu[1], invokeID)
		}
		return parseErrorPDU(apdu[3:])
	case APDUReject:
		if len(apdu) < 3 {
			return fmt.Errorf("%w: reject PDU", ErrTruncatedFrame)
		}
		return &RejectError{Reason: apdu[2]}
	case APDUAbort:
		if len(apdu) < 3 {
			return fmt.Errorf("%w: abort PDU", ErrTruncatedFrame)
		}
		return &AbortError{Reason: apdu[2]}
	}
	return nil
}
