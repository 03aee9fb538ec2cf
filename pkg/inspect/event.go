package inspect

import (
	"fmt"
	"strings"

	"github.com/bacworks/bacworks-go/pkg/log"
)

// FormatEvent renders one protocol event as a single line, the shape
// bacworks-log prints by default.
func FormatEvent(event log.Event) string {
	var b strings.Builder

	b.WriteString(event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"))
	if event.SessionID != "" {
		fmt.Fprintf(&b, " [%s]", shortID(event.SessionID))
	}
	fmt.Fprintf(&b, " %-3s %-9s", event.Direction, event.Layer)

	switch {
	case event.Frame != nil:
		fmt.Fprintf(&b, " frame %d bytes", event.Frame.Size)
		if event.RemoteAddr != "" {
			fmt.Fprintf(&b, " %s", event.RemoteAddr)
		}
		if event.Frame.Truncated {
			b.WriteString(" (truncated)")
		}

	case event.Request != nil:
		req := event.Request
		fmt.Fprintf(&b, " %s", req.Service)
		if req.Object != "" {
			fmt.Fprintf(&b, " %s", req.Object)
		}
		if req.Property != nil {
			fmt.Fprintf(&b, " %s", *req.Property)
		}
		if req.Attempt > 1 {
			fmt.Fprintf(&b, " attempt=%d", req.Attempt)
		}
		if req.Status != "" {
			fmt.Fprintf(&b, " %s", req.Status)
		}
		if req.Value != nil {
			fmt.Fprintf(&b, " value=%v", req.Value)
		}
		if req.Latency != nil {
			fmt.Fprintf(&b, " %s", *req.Latency)
		}

	case event.StateChange != nil:
		sc := event.StateChange
		fmt.Fprintf(&b, " %s", sc.Entity)
		if sc.OldState != "" {
			fmt.Fprintf(&b, " %s ->", sc.OldState)
		}
		fmt.Fprintf(&b, " %s", sc.NewState)
		if sc.Reason != "" {
			fmt.Fprintf(&b, " (%s)", sc.Reason)
		}

	case event.Discovery != nil:
		d := event.Discovery
		fmt.Fprintf(&b, " i-am device %d @ %s vendor=%d", d.DeviceID, d.Address, d.VendorID)

	case event.Error != nil:
		fmt.Fprintf(&b, " error: %s", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(&b, " (%s)", event.Error.Context)
		}

	default:
		fmt.Fprintf(&b, " %s", event.Category)
	}

	return b.String()
}

// shortID returns the first 8 characters of a session id.
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
