// Package session is the client-facing facade: one Session binds a
// transport adapter, the request engine, an object registry, a health
// tracker and discovery to a single remote device.
//
// A Session must be opened before use and closed after; Acquire scopes
// both around a callback and releases the transport on every return
// path. Reads and writes address objects by the names they were
// registered under. ReadObjects sweeps every tracked object with
// bounded parallelism, isolating per-object failures, and Monitor
// repeats that sweep on an interval, dispatching predicate callbacks
// on fresh readings.
package session
