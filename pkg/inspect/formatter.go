// Package inspect formats engine results for human eyes. The CLIs and
// the shell share these formatters so a reading looks the same
// everywhere it is printed.
package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bacworks/bacworks-go/pkg/discovery"
	"github.com/bacworks/bacworks-go/pkg/health"
	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/session"
)

// FormatValue formats a decoded value for display, with the object's
// unit label when one is configured.
func FormatValue(value any, unit string) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"

	case string:
		return fmt.Sprintf("%q", v)

	case float64:
		if unit != "" {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
		return fmt.Sprintf("%.2f", v)

	case float32:
		return FormatValue(float64(v), unit)

	case uint64:
		if unit != "" {
			return fmt.Sprintf("%d %s", v, unit)
		}
		return fmt.Sprintf("%d", v)

	case uint32:
		return FormatValue(uint64(v), unit)

	case []byte:
		return fmt.Sprintf("0x%x", v)

	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatDevices renders a discovery result set as a table, in the
// order the discoverer returned (first announcement first).
func FormatDevices(devices []discovery.Device) string {
	if len(devices) == 0 {
		return "no devices found\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-22s %-8s %s\n", "DEVICE", "ADDRESS", "MAX-APDU", "VENDOR")
	for _, d := range devices {
		fmt.Fprintf(&b, "%-10d %-22s %-8d %s\n", d.DeviceID, d.Address, d.MaxAPDU, d.VendorName)
	}
	return b.String()
}

// FormatObjects renders the registry contents in registration order.
func FormatObjects(objects []object.Object) string {
	if len(objects) == 0 {
		return "no objects tracked\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-18s %-9s %s\n", "NAME", "TYPE", "INSTANCE", "DESCRIPTION")
	for _, o := range objects {
		fmt.Fprintf(&b, "%-20s %-18s %-9d %s\n", o.Name, o.Kind, o.Instance, o.Description)
	}
	return b.String()
}

// FormatResults renders one sweep's outcome in name order, successes
// as values, failures as their terminal cause.
func FormatResults(results map[string]session.Result) string {
	if len(results) == 0 {
		return "no results\n"
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		res := results[name]
		if res.Err != nil {
			fmt.Fprintf(&b, "%-20s ERROR %v\n", name, res.Err)
			continue
		}
		r := res.Reading
		line := FormatValue(r.Value, r.Object.Unit)
		if r.Quality != object.QualityNormal {
			line += fmt.Sprintf(" [%s]", r.Quality)
		}
		fmt.Fprintf(&b, "%-20s %s\n", name, line)
	}
	return b.String()
}

// FormatSnapshot renders the health statistics as a key/value block.
func FormatSnapshot(s health.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "state:                %s\n", s.State)
	fmt.Fprintf(&b, "attempts:             %d\n", s.Attempts)
	fmt.Fprintf(&b, "successes:            %d\n", s.Successes)
	fmt.Fprintf(&b, "failures:             %d\n", s.Failures)
	fmt.Fprintf(&b, "retries:              %d\n", s.Retries)
	fmt.Fprintf(&b, "consecutive failures: %d\n", s.ConsecutiveFailures)
	if s.AvgLatency > 0 {
		fmt.Fprintf(&b, "avg latency:          %s\n", s.AvgLatency)
	}
	if !s.LastRead.IsZero() {
		fmt.Fprintf(&b, "last read:            %s\n", s.LastRead.Format("2006-01-02 15:04:05"))
	}
	if !s.LastWrite.IsZero() {
		fmt.Fprintf(&b, "last write:           %s\n", s.LastWrite.Format("2006-01-02 15:04:05"))
	}
	if s.LastError != nil {
		fmt.Fprintf(&b, "last error:           %v\n", s.LastError)
	}
	return b.String()
}
