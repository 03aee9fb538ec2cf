// Package discovery finds BACnet/IP devices with a Who-Is sweep.
//
// Discover broadcasts one Who-Is frame and collects I-Am announcements
// for a reply window. Devices are deduplicated by instance number: the
// last announcement wins for the address and parameters, the first
// decides the position in the result. Frames that are not I-Am, or
// that fail to parse, are skipped.
//
// Discovery never touches a session's object registry. Callers decide
// which of the found devices to talk to.
//
// Cache persists DeviceID to address bindings between runs so command
// line tools can skip a sweep when the network is already known.
package discovery
