package object

import (
	"errors"
	"fmt"
	"math"

	"github.com/bacworks/bacworks-go/pkg/wire"
)

// Kind classifies a BACnet object by the shape of its present value.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAnalogInput
	KindAnalogOutput
	KindAnalogValue
	KindBinaryInput
	KindBinaryOutput
	KindBinaryValue
	KindMultiStateInput
	KindMultiStateOutput
	KindMultiStateValue
	KindStringValue
	KindDevice
)

// Value errors.
var (
	ErrKindUnknown = errors.New("unknown object kind")
	ErrNotWritable = errors.New("object kind is not writable")
	ErrValueType   = errors.New("invalid value type for object kind")
	ErrValueRange  = errors.New("value out of range for object kind")
	ErrValueDecode = errors.New("device returned unexpected value type")
)

// kindSpec describes one object kind: its wire object type, whether its
// present value accepts writes, and the value conversions in both
// directions. Dispatch happens through the kindSpecs table.
type kindSpec struct {
	name     string
	wireType uint16
	writable bool

	// validate checks a Go value before it goes out in a write.
	validate func(v any) error

	// encode turns a validated Go value into application-tagged octets.
	encode func(v any) []byte

	// decode turns a raw wire value into the kind's Go value.
	decode func(raw any) (any, error)
}

var kindSpecs = map[Kind]kindSpec{
	KindAnalogInput: {
		name:     "analog-input",
		wireType: wire.ObjectTypeAnalogInput,
		decode:   decodeAnalog,
	},
	KindAnalogOutput: {
		name:     "analog-output",
		wireType: wire.ObjectTypeAnalogOutput,
		writable: true,
		validate: validateAnalog,
		encode:   encodeAnalog,
		decode:   decodeAnalog,
	},
	KindAnalogValue: {
		name:     "analog-value",
		wireType: wire.ObjectTypeAnalogValue,
		writable: true,
		validate: validateAnalog,
		encode:   encodeAnalog,
		decode:   decodeAnalog,
	},
	KindBinaryInput: {
		name:     "binary-input",
		wireType: wire.ObjectTypeBinaryInput,
		decode:   decodeBinary,
	},
	KindBinaryOutput: {
		name:     "binary-output",
		wireType: wire.ObjectTypeBinaryOutput,
		writable: true,
		validate: validateBinary,
		encode:   encodeBinary,
		decode:   decodeBinary,
	},
	KindBinaryValue: {
		name:     "binary-value",
		wireType: wire.ObjectTypeBinaryValue,
		writable: true,
		validate: validateBinary,
		encode:   encodeBinary,
		decode:   decodeBinary,
	},
	KindMultiStateInput: {
		name:     "multi-state-input",
		wireType: wire.ObjectTypeMultiStateInput,
		decode:   decodeMultiState,
	},
	KindMultiStateOutput: {
		name:     "multi-state-output",
		wireType: wire.ObjectTypeMultiStateOutput,
		writable: true,
		validate: validateMultiState,
		encode:   encodeMultiState,
		decode:   decodeMultiState,
	},
	KindMultiStateValue: {
		name:     "multi-state-value",
		wireType: wire.ObjectTypeMultiStateValue,
		writable: true,
		validate: validateMultiState,
		encode:   encodeMultiState,
		decode:   decodeMultiState,
	},
	KindStringValue: {
		name:     "string-value",
		wireType: wire.ObjectTypeCharStringValue,
		writable: true,
		validate: validateString,
		encode:   encodeString,
		decode:   decodeString,
	},
	KindDevice: {
		name:     "device",
		wireType: wire.ObjectTypeDevice,
		decode:   func(raw any) (any, error) { return raw, nil },
	},
}

// kindsByName resolves configuration names to kinds. Both the long names
// and the field-sheet abbreviations are accepted.
var kindsByName = map[string]Kind{
	"analog-input":       KindAnalogInput,
	"ai":                 KindAnalogInput,
	"analog-output":      KindAnalogOutput,
	"ao":                 KindAnalogOutput,
	"analog-value":       KindAnalogValue,
	"av":                 KindAnalogValue,
	"binary-input":       KindBinaryInput,
	"bi":                 KindBinaryInput,
	"binary-output":      KindBinaryOutput,
	"bo":                 KindBinaryOutput,
	"binary-value":       KindBinaryValue,
	"bv":                 KindBinaryValue,
	"multi-state-input":  KindMultiStateInput,
	"msi":                KindMultiStateInput,
	"multi-state-output": KindMultiStateOutput,
	"mso":                KindMultiStateOutput,
	"multi-state-value":  KindMultiStateValue,
	"msv":                KindMultiStateValue,
	"string-value":       KindStringValue,
	"device":             KindDevice,
}

// KindByName resolves an object kind from its configuration name.
func KindByName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// String returns the kind's configuration name.
func (k Kind) String() string {
	if spec, ok := kindSpecs[k]; ok {
		return spec.name
	}
	return fmt.Sprintf("kind-%d", uint8(k))
}

// WireType returns the BACnet object type number for the kind.
func (k Kind) WireType() uint16 {
	return kindSpecs[k].wireType
}

// Known reports whether the kind has a table entry.
func (k Kind) Known() bool {
	_, ok := kindSpecs[k]
	return ok
}

// Writable reports whether the kind's present value accepts writes.
func (k Kind) Writable() bool {
	return kindSpecs[k].writable
}

// Validate checks that v is an acceptable present value for the kind.
// Read-only kinds fail with ErrNotWritable before any type checking.
func (k Kind) Validate(v any) error {
	spec, ok := kindSpecs[k]
	if !ok {
		return fmt.Errorf("%w: %d", ErrKindUnknown, uint8(k))
	}
	if !spec.writable {
		return fmt.Errorf("%w: %s", ErrNotWritable, spec.name)
	}
	return spec.validate(v)
}

// EncodeValue converts a validated present value into the
// application-tagged octets WriteProperty carries. Callers validate
// first; EncodeValue panics on values Validate would reject.
func (k Kind) EncodeValue(v any) []byte {
	return kindSpecs[k].encode(v)
}

// DecodeValue converts a raw wire value into the kind's Go value.
func (k Kind) DecodeValue(raw any) (any, error) {
	spec, ok := kindSpecs[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrKindUnknown, uint8(k))
	}
	return spec.decode(raw)
}

// Per-kind conversions.

func validateAnalog(v any) error {
	if !isNumericType(v) {
		return fmt.Errorf("%w: analog expects a number, got %T", ErrValueType, v)
	}
	if f, _ := toFloat64(v); math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: analog value must be finite, got %v", ErrValueRange, f)
	}
	return nil
}

func encodeAnalog(v any) []byte {
	f, _ := toFloat64(v)
	return wire.AppendAppReal(nil, f)
}

func decodeAnalog(raw any) (any, error) {
	f, ok := toFloat64(raw)
	if !ok {
		return nil, fmt.Errorf("%w: analog value %T", ErrValueDecode, raw)
	}
	return f, nil
}

func validateBinary(v any) error {
	if _, ok := v.(bool); !ok {
		return fmt.Errorf("%w: binary expects bool, got %T", ErrValueType, v)
	}
	return nil
}

func encodeBinary(v any) []byte {
	// Binary present values travel as Enumerated inactive(0)/active(1).
	if v.(bool) {
		return wire.AppendAppEnumerated(nil, 1)
	}
	return wire.AppendAppEnumerated(nil, 0)
}

func decodeBinary(raw any) (any, error) {
	switch n := raw.(type) {
	case uint64:
		if n > 1 {
			return nil, fmt.Errorf("%w: binary state %d", ErrValueDecode, n)
		}
		return n == 1, nil
	case bool:
		return n, nil
	default:
		return nil, fmt.Errorf("%w: binary value %T", ErrValueDecode, raw)
	}
}

func validateMultiState(v any) error {
	if !isIntegerType(v) {
		return fmt.Errorf("%w: multi-state expects an integer, got %T", ErrValueType, v)
	}
	n, _ := toFloat64(v)
	if n < 1 {
		// State numbers are 1-based; the device's Number_Of_States
		// bounds the upper end and is enforced device-side.
		return fmt.Errorf("%w: multi-state state %v", ErrValueRange, v)
	}
	return nil
}

func encodeMultiState(v any) []byte {
	n, _ := toFloat64(v)
	return wire.AppendAppUnsigned(nil, uint32(n))
}

func decodeMultiState(raw any) (any, error) {
	n, ok := raw.(uint64)
	if !ok {
		return nil, fmt.Errorf("%w: multi-state value %T", ErrValueDecode, raw)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: multi-state state %d", ErrValueDecode, n)
	}
	return n, nil
}

func validateString(v any) error {
	if _, ok := v.(string); !ok {
		return fmt.Errorf("%w: string expects string, got %T", ErrValueType, v)
	}
	return nil
}

func encodeString(v any) []byte {
	return wire.AppendAppString(nil, v.(string))
}

func decodeString(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: string value %T", ErrValueDecode, raw)
	}
	return s, nil
}

// Helper functions for type checking.

func isIntegerType(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func isNumericType(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
