// Package log provides structured protocol logging for BACnet sessions.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, engine, session).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLog = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLog, _ = log.NewFileLogger("/var/log/bacworks/site.blog")
//
//	// Both: use MultiLogger
//	cfg.EventLog = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/bacworks/site.blog"),
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw frame bytes (FrameEvent)
//   - Engine: Decoded service exchanges (RequestEvent)
//   - Session: State changes and discovery (StateChangeEvent, DiscoveryEvent)
//
// Errors have a dedicated event type usable at any layer.
//
// # File Format
//
// Log files use CBOR encoding with .blog extension. The bacworks-log CLI
// tool provides viewing, filtering, and export capabilities.
package log
