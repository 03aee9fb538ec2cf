package wire

import (
	"bytes"
	"fmt"
)

// ErrorClass is the BACnet error class carried by an Error PDU.
type ErrorClass uint16

// Error classes (clause 18).
const (
	ClassDevice        ErrorClass = 0
	ClassObject        ErrorClass = 1
	ClassProperty      ErrorClass = 2
	ClassResources     ErrorClass = 3
	ClassSecurity      ErrorClass = 4
	ClassServices      ErrorClass = 5
	ClassVT            ErrorClass = 6
	ClassCommunication ErrorClass = 7
)

// String returns the error class name.
func (c ErrorClass) String() string {
	switch c {
	case ClassDevice:
		return "device"
	case ClassObject:
		return "object"
	case ClassProperty:
		return "property"
	case ClassResources:
		return "resources"
	case ClassSecurity:
		return "security"
	case ClassServices:
		return "services"
	case ClassVT:
		return "vt"
	case ClassCommunication:
		return "communication"
	default:
		return fmt.Sprintf("class-%d", uint16(c))
	}
}

// ErrorCode is the BACnet error code carried by an Error PDU.
type ErrorCode uint16

// Error codes the engine commonly sees (clause 18; not exhaustive).
const (
	CodeOther                ErrorCode = 0
	CodeDeviceBusy           ErrorCode = 3
	CodeInvalidDataType      ErrorCode = 9
	CodeOperationalProblem   ErrorCode = 25
	CodeReadAccessDenied     ErrorCode = 27
	CodeServiceRequestDenied ErrorCode = 29
	CodeTimeout              ErrorCode = 30
	CodeUnknownObject        ErrorCode = 31
	CodeUnknownProperty      ErrorCode = 32
	CodeValueOutOfRange      ErrorCode = 37
	CodeWriteAccessDenied    ErrorCode = 40
	CodeInvalidArrayIndex    ErrorCode = 42
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case CodeOther:
		return "other"
	case CodeDeviceBusy:
		return "device-busy"
	case CodeInvalidDataType:
		return "invalid-data-type"
	case CodeOperationalProblem:
		return "operational-problem"
	case CodeReadAccessDenied:
		return "read-access-denied"
	case CodeServiceRequestDenied:
		return "service-request-denied"
	case CodeUnknownObject:
		return "unknown-object"
	case CodeUnknownProperty:
		return "unknown-property"
	case CodeValueOutOfRange:
		return "value-out-of-range"
	case CodeWriteAccessDenied:
		return "write-access-denied"
	case CodeInvalidArrayIndex:
		return "invalid-array-index"
	case CodeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("code-%d", uint16(c))
	}
}

// BACnetError is a semantic rejection from the remote device, decoded
// from an Error PDU. It is never worth retrying.
type BACnetError struct {
	Class ErrorClass
	Code  ErrorCode
}

// Error implements the error interface.
func (e *BACnetError) Error() string {
	return fmt.Sprintf("bacnet error: class %s, code %s", e.Class, e.Code)
}

// RejectError is a Reject PDU: the device refused to parse the request.
type RejectError struct {
	Reason uint8
}

// Error implements the error interface.
func (e *RejectError) Error() string {
	return fmt.Sprintf("bacnet reject: reason %d", e.Reason)
}

// AbortError is an Abort PDU: the transaction was cut short.
type AbortError struct {
	Reason uint8
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return fmt.Sprintf("bacnet abort: reason %d", e.Reason)
}

// parseErrorPDU decodes the error class and code from an Error PDU body.
func parseErrorPDU(body []byte) error {
	r := bytes.NewReader(body)
	classVal, err := DecodeAppValue(r)
	if err != nil {
		return fmt.Errorf("error PDU class: %w", err)
	}
	codeVal, err := DecodeAppValue(r)
	if err != nil {
		return fmt.Errorf("error PDU code: %w", err)
	}
	class, ok1 := classVal.(uint64)
	code, ok2 := codeVal.(uint64)
	if !ok1 || !ok2 {
		return fmt.Errorf("error PDU with non-enumerated class/code")
	}
	return &BACnetError{Class: ErrorClass(class), Code: ErrorCode(code)}
}

// EncodeErrorPDU builds the APDU for an Error response. The test harness
// uses it to script device-side rejections.
func EncodeErrorPDU(invokeID uint8, service byte, class ErrorClass, code ErrorCode) []byte {
	apdu := []byte{APDUError, invokeID, service}
	apdu = AppendAppEnumerated(apdu, uint32(class))
	apdu = AppendAppEnumerated(apdu, uint32(code))
	return apdu
}

// WrapAPDU wraps an APDU into a unicast BACnet/IP frame. Exposed for the
// test harness, which builds response frames directly.
func WrapAPDU(apdu []byte) []byte {
	return wrapFrame(BVLCOriginalUnicast, false, apdu)
}

// SimpleACKAPDU builds the APDU acknowledging a confirmed service.
func SimpleACKAPDU(invokeID uint8, service byte) []byte {
	return []byte{APDUSimpleACK, invokeID, service}
}

// ComplexACKAPDU builds the APDU for a ReadProperty acknowledgement
// carrying the already-encoded application value.
func ComplexACKAPDU(invokeID uint8, oid ObjectID, prop PropertyID, value []byte) []byte {
	apdu := []byte{APDUComplexACK, invokeID, ServiceConfirmedReadProperty}
	apdu = appendContextObjectID(apdu, 0, oid)
	apdu = appendContextUnsigned(apdu, 1, uint32(prop))
	apdu = appendOpeningTag(apdu, 3)
	apdu = append(apdu, value...)
	apdu = appendClosingTag(apdu, 3)
	return apdu
}

// ParseConfirmedRequest pulls apart a confirmed request APDU: invoke ID,
// service choice and body. The test harness uses it to serve requests.
func ParseConfirmedRequest(apdu []byte) (invokeID uint8, service byte, body []byte, err error) {
	if len(apdu) < 4 {
		return 0, 0, nil, fmt.Errorf("%w: confirmed request header", ErrTruncatedFrame)
	}
	if apdu[0]&0xF0 != APDUConfirmedRequest {
		return 0, 0, nil, fmt.Errorf("%w: 0x%02x", ErrUnexpectedPDU, apdu[0]&0xF0)
	}
	return apdu[2], apdu[3], apdu[4:], nil
}

// ParseReadPropertyRequest decodes the body of a ReadProperty request.
func ParseReadPropertyRequest(body []byte) (ObjectID, PropertyID, error) {
	r := bytes.NewReader(body)
	oid, err := readContextObjectID(r, 0)
	if err != nil {
		return ObjectID{}, 0, fmt.Errorf("ReadProperty object: %w", err)
	}
	prop, err := readContextUnsigned(r, 1)
	if err != nil {
		return ObjectID{}, 0, fmt.Errorf("ReadProperty property: %w", err)
	}
	return oid, PropertyID(prop), nil
}

// ParseWritePropertyRequest decodes the body of a WriteProperty request.
// The returned value is the decoded application value.
func ParseWritePropertyRequest(body []byte) (ObjectID, PropertyID, any, error) {
	r := bytes.NewReader(body)
	oid, err := readContextObjectID(r, 0)
	if err != nil {
		return ObjectID{}, 0, nil, fmt.Errorf("WriteProperty object: %w", err)
	}
	prop, err := readContextUnsigned(r, 1)
	if err != nil {
		return ObjectID{}, 0, nil, fmt.Errorf("WriteProperty property: %w", err)
	}
	octet, err := r.ReadByte()
	if err != nil || octet != 3<<4|0x0E {
		return ObjectID{}, 0, nil, fmt.Errorf("%w: property value opening tag", ErrUnexpectedTag)
	}
	value, err := DecodeAppValue(r)
	if err != nil {
		return ObjectID{}, 0, nil, fmt.Errorf("WriteProperty value: %w", err)
	}
	return oid, PropertyID(prop), value, nil
}
