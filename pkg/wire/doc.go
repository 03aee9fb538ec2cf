// Package wire implements the BACnet/IP frame encoding used by the engine.
//
// A BACnet/IP frame is three nested layers:
//   - BVLC: the virtual link control header (type 0x81, function, length)
//   - NPDU: the network layer header (version, control, optional routing)
//   - APDU: the application layer carrying the service request or response
//
// The package builds complete frames for the services the engine speaks
// (Who-Is, I-Am, ReadProperty, WriteProperty) and parses the corresponding
// replies. Everything here is pure byte manipulation: no sockets, no state.
//
// # Application Values
//
// BACnet application-tagged values decode to plain Go values:
//   - Null -> nil
//   - Boolean -> bool
//   - Unsigned, Enumerated -> uint64
//   - Signed -> int64
//   - Real -> float64
//   - CharacterString -> string
//   - BitString -> BitString
//   - ObjectIdentifier -> ObjectID
//
// Typed interpretation per object kind happens one layer up, in pkg/object.
//
// # Generated Tables
//
// property_gen.go, units_gen.go and vendors_gen.go are generated from the
// YAML registries under docs/registry by cmd/bacworks-gen.
package wire
