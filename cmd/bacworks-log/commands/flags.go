// Package commands implements the bacworks-log CLI commands.
package commands

import (
	"fmt"

	"github.com/bacworks/bacworks-go/pkg/log"
)

// ParseLayerFlag converts a -layer flag value into a log.Layer.
func ParseLayerFlag(s string) (log.Layer, error) {
	switch s {
	case "transport":
		return log.LayerTransport, nil
	case "engine":
		return log.LayerEngine, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("unknown layer %q (transport, engine, session)", s)
	}
}

// ParseCategoryFlag converts a -category flag value into a log.Category.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch s {
	case "frame":
		return log.CategoryFrame, nil
	case "request":
		return log.CategoryRequest, nil
	case "state":
		return log.CategoryState, nil
	case "discovery":
		return log.CategoryDiscovery, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (frame, request, state, discovery, error)", s)
	}
}

// ParseDirectionFlag converts a -direction flag value into a log.Direction.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch s {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (in, out)", s)
	}
}
