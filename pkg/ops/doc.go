// Package ops exposes a session's health and statistics over HTTP for
// long-running monitor processes. Three read-only endpoints: /health
// answers probes (503 when the device is unhealthy), /stats returns
// the statistics snapshot, /objects lists the tracked objects.
//
// The server is an optional outer surface; the engine never depends
// on it.
package ops
