//go:build tools

package tools

// Tool dependencies were previously tracked here with blank imports.
// The mocks under pkg/transport/mocks are maintained by hand in the
// testify/mock style, so nothing needs a blank import today. Code
// generation lives in cmd/bacworks-gen instead:
//
//	go run ./cmd/bacworks-gen -registry docs/registry -output pkg/wire
