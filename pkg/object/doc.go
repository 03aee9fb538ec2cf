// Package object models the BACnet points a session works with: object
// kinds, per-kind value validation and decoding, and read results.
//
// Each kind carries its wire object type, whether its present value
// accepts writes, and how raw wire values map to Go values. Dispatch
// runs through a lookup table keyed by Kind so adding a kind means
// adding a table entry, not another arm in scattered switches.
//
// Values decode to a small set of Go types: analog kinds to float64,
// binary kinds to bool, multi-state kinds to uint64 (1-based state
// numbers) and string kinds to string.
package object
