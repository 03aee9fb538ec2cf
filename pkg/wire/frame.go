package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frame layer errors.
var (
	ErrNotBACnetIP      = errors.New("not a BACnet/IP frame")
	ErrTruncatedFrame   = errors.New("truncated frame")
	ErrNetworkMessage   = errors.New("network layer message")
	ErrInvokeIDMismatch = errors.New("invoke ID mismatch")
)

// BVLC constants (BACnet Virtual Link Control, Annex J).
const (
	BVLCTypeBACnetIP byte = 0x81

	BVLCResult            byte = 0x00
	BVLCForwardedNPDU     byte = 0x04
	BVLCOriginalUnicast   byte = 0x0a
	BVLCOriginalBroadcast byte = 0x0b
)

// NPDU control bits.
const (
	NPDUProtocolVersion byte = 0x01

	npduCtrlNetworkMessage byte = 0x80
	npduCtrlDestPresent    byte = 0x20
	npduCtrlSourcePresent  byte = 0x08
	npduCtrlExpectingReply byte = 0x04
)

// APDU PDU types (upper nibble of the first APDU octet).
const (
	APDUConfirmedRequest   byte = 0x00
	APDUUnconfirmedRequest byte = 0x10
	APDUSimpleACK          byte = 0x20
	APDUComplexACK         byte = 0x30
	APDUSegmentACK         byte = 0x40
	APDUError              byte = 0x50
	APDUReject             byte = 0x60
	APDUAbort              byte = 0x70
)

// Service choices used by the engine.
const (
	ServiceUnconfirmedIAm   byte = 0x00
	ServiceUnconfirmedWhoIs byte = 0x08

	ServiceConfirmedReadProperty  byte = 0x0c
	ServiceConfirmedWriteProperty byte = 0x0f
)

// maxAPDUCode 5 advertises a 1476-octet APDU, the BACnet/IP maximum.
// Segmentation is not supported in either direction.
const maxAPDUCode byte = 0x05

// wrapFrame prepends the BVLC and NPDU headers to an APDU, producing a
// complete BACnet/IP frame. expectingReply sets the NPDU control bit that
// tells routers a response will follow the same path back.
func wrapFrame(bvlcFunction byte, expectingReply bool, apdu []byte) []byte {
	control := byte(0)
	if expectingReply {
		control |= npduCtrlExpectingReply
	}

	frame := make([]byte, 0, 6+len(apdu))
	frame = append(frame, BVLCTypeBACnetIP, bvlcFunction, 0, 0)
	frame = append(frame, NPDUProtocolVersion, control)
	frame = append(frame, apdu...)
	binary.BigEndian.PutUint16(frame[2:4], uint16(len(frame)))
	return frame
}

// APDUFromFrame strips the BVLC and NPDU layers and returns the APDU octets.
// Forwarded-NPDU frames (relayed by a BBMD) have their 6-byte origin address
// skipped; frames carrying routing information have it skipped as well.
// Network layer messages return ErrNetworkMessage.
func APDUFromFrame(frame []byte) ([]byte, error) {
	if len(frame) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedFrame, len(frame))
	}
	if frame[0] != BVLCTypeBACnetIP {
		return nil, fmt.Errorf("%w: type 0x%02x", ErrNotBACnetIP, frame[0])
	}
	if length := binary.BigEndian.Uint16(frame[2:4]); int(length) > len(frame) {
		return nil, fmt.Errorf("%w: BVLC length %d exceeds %d bytes", ErrTruncatedFrame, length, len(frame))
	}

	r := bytes.NewReader(frame[4:])
	if frame[1] == BVLCForwardedNPDU {
		// Skip the 6-byte B/IP address of the originating device.
		if r.Len() < 6 {
			return nil, fmt.Errorf("%w: forwarded NPDU origin", ErrTruncatedFrame)
		}
		if _, err := r.Seek(6, io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("%w: forwarded NPDU origin", ErrTruncatedFrame)
		}
	}

	if err := skipNPDU(r); err != nil {
		return nil, err
	}

	if r.Len() == 0 {
		return nil, fmt.Errorf("%w: empty APDU", ErrTruncatedFrame)
	}
	apdu := make([]byte, r.Len())
	if _, err := io.ReadFull(r, apdu); err != nil {
		return nil, fmt.Errorf("%w: APDU", ErrTruncatedFrame)
	}
	return apdu, nil
}

// skipNPDU consumes the NPDU header including optional destination and
// source routing information and the hop count.
func skipNPDU(r *bytes.Reader) error {
	version, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: NPDU version", ErrTruncatedFrame)
	}
	if version != NPDUProtocolVersion {
		return fmt.Errorf("unsupported NPDU version 0x%02x", version)
	}
	control, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: NPDU control", ErrTruncatedFrame)
	}
	if control&npduCtrlNetworkMessage != 0 {
		return ErrNetworkMessage
	}

	if control&npduCtrlDestPresent != 0 {
		if err := skipNPDUAddress(r); err != nil {
			return err
		}
	}
	if control&npduCtrlSourcePresent != 0 {
		if err := skipNPDUAddress(r); err != nil {
			return err
		}
	}
	if control&npduCtrlDestPresent != 0 {
		// Hop count follows the source address when a destination is present.
		if _, err := r.ReadByte(); err != nil {
			return fmt.Errorf("%w: NPDU hop count", ErrTruncatedFrame)
		}
	}
	return nil
}

// skipNPDUAddress consumes one network-number + address pair.
func skipNPDUAddress(r *bytes.Reader) error {
	var net uint16
	if err := binary.Read(r, binary.BigEndian, &net); err != nil {
		return fmt.Errorf("%w: NPDU network number", ErrTruncatedFrame)
	}
	addrLen, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: NPDU address length", ErrTruncatedFrame)
	}
	if r.Len() < int(addrLen) {
		return fmt.Errorf("%w: NPDU address", ErrTruncatedFrame)
	}
	if _, err := r.Seek(int64(addrLen), io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: NPDU address", ErrTruncatedFrame)
	}
	return nil
}

// confirmedRequestAPDU builds the APDU for a confirmed service request.
func confirmedRequestAPDU(invokeID uint8, service byte, body []byte) []byte {
	apdu := make([]byte, 0, 4+len(body))
	apdu = append(apdu, APDUConfirmedRequest, maxAPDUCode, invokeID, service)
	apdu = append(apdu, body...)
	return apdu
}

// unconfirmedRequestAPDU builds the APDU for an unconfirmed service request.
func unconfirmedRequestAPDU(service byte, body []byte) []byte {
	apdu := make([]byte, 0, 2+len(body))
	apdu = append(apdu, APDUUnconfirmedRequest, service)
	apdu = append(apdu, body...)
	return apdu
}
