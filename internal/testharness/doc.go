// Package testharness provides in-process stand-ins for remote BACnet
// devices, used by engine, session and integration tests.
//
// FakeDevice implements transport.Adapter as a behavioral device: it
// decodes ReadProperty, WriteProperty and Who-Is frames via pkg/wire,
// serves a seeded property table with write-then-read echo semantics,
// and injects scripted failures (timeouts, malformed frames, per-object
// errors).
//
// ScriptedAdapter implements transport.Adapter as a fixed sequence of
// canned outcomes, for tests where exact response ordering matters more
// than device behavior.
//
// Both are silent and depend only on pkg/wire and pkg/transport types.
package testharness
