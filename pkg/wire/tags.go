package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Application tag numbers (clause 20.2.1).
const (
	TagNull            byte = 0
	TagBoolean         byte = 1
	TagUnsignedInt     byte = 2
	TagSignedInt       byte = 3
	TagReal            byte = 4
	TagDouble          byte = 5
	TagCharacterString byte = 7
	TagBitString       byte = 8
	TagEnumerated      byte = 9
	TagObjectID        byte = 12
)

// Tag codec errors.
var (
	ErrUnknownTag    = errors.New("unknown application tag")
	ErrUnexpectedTag = errors.New("unexpected tag")
)

// charsetANSI is the character set octet for ANSI X3.4 / UTF-8 strings.
const charsetANSI byte = 0x00

// BitString is a decoded BACnet bit string. Bit 0 is the most significant
// bit of the first data octet.
type BitString struct {
	UnusedBits uint8
	Data       []byte
}

// Bit returns the value of bit i, or false when i is out of range.
func (b BitString) Bit(i int) bool {
	if i < 0 || i >= b.Len() {
		return false
	}
	return b.Data[i/8]>>(7-uint(i%8))&1 == 1
}

// Len returns the number of bits in the string.
func (b BitString) Len() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data)*8 - int(b.UnusedBits)
}

// StatusFlags is the decoded Status_Flags bit string carried by most
// BACnet objects: in-alarm, fault, overridden, out-of-service.
type StatusFlags struct {
	InAlarm      bool
	Fault        bool
	Overridden   bool
	OutOfService bool
}

// StatusFlagsFromBitString interprets the first four bits of a bit string
// as Status_Flags.
func StatusFlagsFromBitString(b BitString) StatusFlags {
	return StatusFlags{
		InAlarm:      b.Bit(0),
		Fault:        b.Bit(1),
		Overridden:   b.Bit(2),
		OutOfService: b.Bit(3),
	}
}

// appendTag appends a tag octet (and extended length octet where needed).
// context selects a context-specific tag; lvt is the length/value/type field.
func appendTag(dst []byte, number byte, context bool, lvt uint32) []byte {
	octet := number << 4
	if context {
		octet |= 0x08
	}
	if lvt < 5 {
		return append(dst, octet|byte(lvt))
	}
	// Extended length. Values above 253 octets do not occur for the
	// services the engine speaks.
	return append(dst, octet|0x05, byte(lvt))
}

// unsignedOctets returns the minimal big-endian encoding of v.
func unsignedOctets(v uint32) []byte {
	switch {
	case v <= 0xFF:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		return []byte{byte(v >> 8), byte(v)}
	case v <= 0xFFFFFF:
		return []byte{byte(v >> 16), byte(v >> 8), byte(v)}
	default:
		return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
}

// appendContextUnsigned appends a context-tagged unsigned integer.
func appendContextUnsigned(dst []byte, number byte, v uint32) []byte {
	octets := unsignedOctets(v)
	dst = appendTag(dst, number, true, uint32(len(octets)))
	return append(dst, octets...)
}

// appendContextObjectID appends a context-tagged object identifier.
func appendContextObjectID(dst []byte, number byte, oid ObjectID) []byte {
	dst = appendTag(dst, number, true, 4)
	return binary.BigEndian.AppendUint32(dst, oid.Encode())
}

// appendOpeningTag and appendClosingTag bracket constructed data.
func appendOpeningTag(dst []byte, number byte) []byte {
	return append(dst, number<<4|0x0E)
}

func appendClosingTag(dst []byte, number byte) []byte {
	return append(dst, number<<4|0x0F)
}

// AppendAppNull appends an application-tagged Null value.
func AppendAppNull(dst []byte) []byte {
	return append(dst, TagNull<<4)
}

// AppendAppBoolean appends an application-tagged Boolean value.
// The boolean value lives in the tag's length field.
func AppendAppBoolean(dst []byte, v bool) []byte {
	lvt := uint32(0)
	if v {
		lvt = 1
	}
	return appendTag(dst, TagBoolean, false, lvt)
}

// AppendAppUnsigned appends an application-tagged Unsigned value.
func AppendAppUnsigned(dst []byte, v uint32) []byte {
	octets := unsignedOctets(v)
	dst = appendTag(dst, TagUnsignedInt, false, uint32(len(octets)))
	return append(dst, octets...)
}

// AppendAppEnumerated appends an application-tagged Enumerated value.
func AppendAppEnumerated(dst []byte, v uint32) []byte {
	octets := unsignedOctets(v)
	dst = appendTag(dst, TagEnumerated, false, uint32(len(octets)))
	return append(dst, octets...)
}

// AppendAppReal appends an application-tagged Real (IEEE 754 single).
func AppendAppReal(dst []byte, v float64) []byte {
	dst = appendTag(dst, TagReal, false, 4)
	return binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(v)))
}

// AppendAppString appends an application-tagged CharacterString in the
// ANSI X3.4 (UTF-8) character set.
func AppendAppString(dst []byte, s string) []byte {
	dst = appendTag(dst, TagCharacterString, false, uint32(len(s)+1))
	dst = append(dst, charsetANSI)
	return append(dst, s...)
}

// AppendAppBitString appends an application-tagged BitString.
func AppendAppBitString(dst []byte, b BitString) []byte {
	dst = appendTag(dst, TagBitString, false, uint32(len(b.Data)+1))
	dst = append(dst, b.UnusedBits)
	return append(dst, b.Data...)
}

// AppendAppObjectID appends an application-tagged ObjectIdentifier.
func AppendAppObjectID(dst []byte, oid ObjectID) []byte {
	dst = appendTag(dst, TagObjectID, false, 4)
	return binary.BigEndian.AppendUint32(dst, oid.Encode())
}

// readTag reads one tag octet (plus extended length octet if present) and
// returns the tag number, whether it is context-specific, and the lvt field.
func readTag(r *bytes.Reader) (number byte, context bool, lvt uint32, err error) {
	octet, err := r.ReadByte()
	if err != nil {
		return 0, false, 0, fmt.Errorf("%w: tag octet", ErrTruncatedFrame)
	}
	number = octet >> 4
	context = octet&0x08 != 0
	lvt = uint32(octet & 0x07)
	if lvt == 5 {
		ext, err := r.ReadByte()
		if err != nil {
			return 0, false, 0, fmt.Errorf("%w: extended tag length", ErrTruncatedFrame)
		}
		lvt = uint32(ext)
	}
	return number, context, lvt, nil
}

// isClosingTag reports whether the next octet is the closing tag for the
// given context tag number, without consuming it unless it matches.
func isClosingTag(r *bytes.Reader, number byte) bool {
	octet, err := r.ReadByte()
	if err != nil {
		return true // treat EOF as end of constructed data
	}
	if octet == number<<4|0x0F {
		return true
	}
	_ = r.UnreadByte()
	return false
}

// DecodeAppValue decodes one application-tagged value from r.
// Constructed (context) tags are rejected; the caller handles those.
func DecodeAppValue(r *bytes.Reader) (any, error) {
	number, context, lvt, err := readTag(r)
	if err != nil {
		return nil, err
	}
	if context {
		return nil, fmt.Errorf("%w: context tag %d where application tag expected", ErrUnexpectedTag, number)
	}

	switch number {
	case TagNull:
		return nil, nil

	case TagBoolean:
		// The lvt field carries the value.
		return lvt == 1, nil

	case TagUnsignedInt, TagEnumerated:
		v, err := readUnsigned(r, lvt)
		if err != nil {
			return nil, err
		}
		return v, nil

	case TagSignedInt:
		v, err := readUnsigned(r, lvt)
		if err != nil {
			return nil, err
		}
		// Sign-extend from the encoded width.
		shift := uint(64 - 8*lvt)
		return int64(v<<shift) >> shift, nil

	case TagReal:
		if lvt != 4 {
			return nil, fmt.Errorf("real value with length %d", lvt)
		}
		var bits uint32
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, fmt.Errorf("%w: real value", ErrTruncatedFrame)
		}
		return float64(math.Float32frombits(bits)), nil

	case TagDouble:
		if lvt != 8 {
			return nil, fmt.Errorf("double value with length %d", lvt)
		}
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, fmt.Errorf("%w: double value", ErrTruncatedFrame)
		}
		return math.Float64frombits(bits), nil

	case TagCharacterString:
		if lvt < 1 {
			return nil, fmt.Errorf("character string with length %d", lvt)
		}
		charset, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: string charset", ErrTruncatedFrame)
		}
		_ = charset // treated as UTF-8 regardless
		buf := make([]byte, lvt-1)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: string data", ErrTruncatedFrame)
		}
		return string(buf), nil

	case TagBitString:
		if lvt < 1 {
			return nil, fmt.Errorf("bit string with length %d", lvt)
		}
		unused, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: bit string header", ErrTruncatedFrame)
		}
		buf := make([]byte, lvt-1)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: bit string data", ErrTruncatedFrame)
		}
		return BitString{UnusedBits: unused, Data: buf}, nil

	case TagObjectID:
		if lvt != 4 {
			return nil, fmt.Errorf("object identifier with length %d", lvt)
		}
		var raw uint32
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return nil, fmt.Errorf("%w: object identifier", ErrTruncatedFrame)
		}
		return DecodeObjectID(raw), nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, number)
	}
}

// readUnsigned reads length big-endian octets as an unsigned integer.
func readUnsigned(r *bytes.Reader, length uint32) (uint64, error) {
	if length > 8 {
		return 0, fmt.Errorf("unsigned value with length %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("%w: unsigned value", ErrTruncatedFrame)
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// readContextUnsigned reads a context-tagged unsigned integer with the
// expected tag number.
func readContextUnsigned(r *bytes.Reader, expected byte) (uint64, error) {
	number, context, lvt, err := readTag(r)
	if err != nil {
		return 0, err
	}
	if !context || number != expected {
		return 0, fmt.Errorf("%w: got tag %d, want context tag %d", ErrUnexpectedTag, number, expected)
	}
	return readUnsigned(r, lvt)
}

// readContextObjectID reads a context-tagged object identifier with the
// expected tag number.
func readContextObjectID(r *bytes.Reader, expected byte) (ObjectID, error) {
	number, context, lvt, err := readTag(r)
	if err != nil {
		return ObjectID{}, err
	}
	if !context || number != expected || lvt != 4 {
		return ObjectID{}, fmt.Errorf("%w: got tag %d length %d, want context tag %d length 4", ErrUnexpectedTag, number, lvt, expected)
	}
	var raw uint32
	if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
		return ObjectID{}, fmt.Errorf("%w: object identifier", ErrTruncatedFrame)
	}
	return DecodeObjectID(raw), nil
}
