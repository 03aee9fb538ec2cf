package wire

import "fmt"

// MaxInstance is the largest valid object instance number (22 bits).
const MaxInstance uint32 = 0x3FFFFF

// ObjectID identifies one object on a device: a type number and a 22-bit
// instance number, packed into 32 bits on the wire.
type ObjectID struct {
	Type     uint16
	Instance uint32
}

// Encode packs the object identifier into its wire representation.
func (o ObjectID) Encode() uint32 {
	return uint32(o.Type)<<22 | o.Instance&MaxInstance
}

// DecodeObjectID unpacks a wire object identifier.
func DecodeObjectID(raw uint32) ObjectID {
	return ObjectID{
		Type:     uint16(raw >> 22),
		Instance: raw & MaxInstance,
	}
}

// String returns "type:instance" with the symbolic type name where known.
func (o ObjectID) String() string {
	return fmt.Sprintf("%s:%d", ObjectTypeName(o.Type), o.Instance)
}
