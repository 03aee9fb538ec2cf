package object

import (
	"fmt"
	"time"

	"github.com/bacworks/bacworks-go/pkg/wire"
)

// Object is one point on a device: a kind, an instance number and the
// name a session addresses it by.
type Object struct {
	// Kind is the object's BACnet type.
	Kind Kind

	// Instance is the 22-bit instance number on the device.
	Instance uint32

	// Name is the registry key. Unique within a session.
	Name string

	// Description is free text carried through to results and logs.
	Description string

	// Unit is the engineering unit label from the points list.
	Unit string
}

// ID returns the wire object identifier.
func (o Object) ID() wire.ObjectID {
	return wire.ObjectID{Type: o.Kind.WireType(), Instance: o.Instance}
}

// Validate checks that the object can be addressed on the wire.
func (o Object) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("object has no name")
	}
	if !o.Kind.Known() || o.Kind == KindUnknown {
		return fmt.Errorf("%w: object %q", ErrKindUnknown, o.Name)
	}
	if o.Instance > wire.MaxInstance {
		return fmt.Errorf("object %q: instance %d exceeds %d", o.Name, o.Instance, wire.MaxInstance)
	}
	return nil
}

// String returns "name (kind:instance)".
func (o Object) String() string {
	return fmt.Sprintf("%s (%s:%d)", o.Name, o.Kind, o.Instance)
}

// Quality classifies a reading by the object's status flags. Present
// value reads that don't fetch flags report QualityNormal.
type Quality uint8

const (
	QualityNormal Quality = iota
	QualityInAlarm
	QualityOverridden
	QualityOutOfService
	QualityFault
)

// String returns the quality name.
func (q Quality) String() string {
	switch q {
	case QualityNormal:
		return "normal"
	case QualityInAlarm:
		return "in-alarm"
	case QualityOverridden:
		return "overridden"
	case QualityOutOfService:
		return "out-of-service"
	case QualityFault:
		return "fault"
	default:
		return fmt.Sprintf("quality-%d", uint8(q))
	}
}

// QualityFromStatusFlags maps Status_Flags onto a single quality, worst
// flag first: fault, then out-of-service, overridden, in-alarm.
func QualityFromStatusFlags(sf wire.StatusFlags) Quality {
	switch {
	case sf.Fault:
		return QualityFault
	case sf.OutOfService:
		return QualityOutOfService
	case sf.Overridden:
		return QualityOverridden
	case sf.InAlarm:
		return QualityInAlarm
	default:
		return QualityNormal
	}
}

// Reading is one decoded present value.
type Reading struct {
	// Object is the point that was read.
	Object Object

	// Value is the decoded present value: float64, bool, uint64 or
	// string depending on the object kind.
	Value any

	// Quality reflects the object's status flags where known.
	Quality Quality

	// At is when the value arrived.
	At time.Time

	// Attempts is how many requests the read took, including the one
	// that succeeded.
	Attempts int
}

// String returns "name = value [quality]" for logs and shells.
func (r Reading) String() string {
	if r.Quality == QualityNormal {
		return fmt.Sprintf("%s = %v", r.Object.Name, r.Value)
	}
	return fmt.Sprintf("%s = %v [%s]", r.Object.Name, r.Value, r.Quality)
}
