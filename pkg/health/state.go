package health

import "fmt"

// State classifies a device by its recent request outcomes.
type State uint8

const (
	// StateUnknown indicates no operation has completed yet.
	StateUnknown State = iota

	// StateHealthy indicates the last operation succeeded.
	StateHealthy

	// StateDegraded indicates consecutive failures below the threshold.
	StateDegraded

	// StateUnhealthy indicates consecutive failures at or above the
	// threshold.
	StateUnhealthy
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "UNKNOWN"
	case StateHealthy:
		return "HEALTHY"
	case StateDegraded:
		return "DEGRADED"
	case StateUnhealthy:
		return "UNHEALTHY"
	default:
		return fmt.Sprintf("state-%d", uint8(s))
	}
}
