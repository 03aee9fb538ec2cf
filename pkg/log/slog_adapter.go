package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}
	if event.DeviceID != 0 {
		attrs = append(attrs, slog.Uint64("device_id", uint64(event.DeviceID)))
	}

	// Add type-specific attributes
	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Request != nil:
		attrs = append(attrs, slog.String("service", event.Request.Service))
		if event.Request.InvokeID != 0 {
			attrs = append(attrs, slog.Uint64("invoke_id", uint64(event.Request.InvokeID)))
		}
		if event.Request.Object != "" {
			attrs = append(attrs, slog.String("object", event.Request.Object))
		}
		if event.Request.Property != nil {
			attrs = append(attrs, slog.String("property", event.Request.Property.String()))
		}
		if event.Request.Attempt != 0 {
			attrs = append(attrs, slog.Int("attempt", event.Request.Attempt))
		}
		if event.Request.Status != "" {
			attrs = append(attrs, slog.String("status", event.Request.Status))
		}
		if event.Request.Latency != nil {
			attrs = append(attrs, slog.Duration("latency", *event.Request.Latency))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Discovery != nil:
		attrs = append(attrs,
			slog.Uint64("found_device", uint64(event.Discovery.DeviceID)),
			slog.String("found_addr", event.Discovery.Address),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
