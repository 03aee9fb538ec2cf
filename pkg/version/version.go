// Package version carries the library version and the BACnet protocol
// revision the wire codec implements.
package version

import "fmt"

// Version is the library version, overridable at build time with
// -ldflags "-X .../pkg/version.Version=v1.2.3".
var Version = "v0.3.0-dev"

// Protocol constants reported in Device object reads and CLI banners.
const (
	// ProtocolVersion is the BACnet protocol version. Always 1.
	ProtocolVersion = 1

	// ProtocolRevision is the protocol revision the codec targets.
	ProtocolRevision = 19
)

// UserAgent returns the banner string the CLIs print on startup.
func UserAgent() string {
	return fmt.Sprintf("bacworks %s (BACnet %d rev %d)", Version, ProtocolVersion, ProtocolRevision)
}
