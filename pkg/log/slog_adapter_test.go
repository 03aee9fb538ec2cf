package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bacworks/bacworks-go/pkg/wire"
)

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryFrame,
		Frame: &FrameEvent{
			Size: 256,
			Data: []byte{0x81, 0x0a},
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	// Parse JSON log entry
	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	// Verify key fields
	if logEntry["session_id"] != "sess-123" {
		t.Errorf("session_id: got %v, want %q", logEntry["session_id"], "sess-123")
	}
	if logEntry["direction"] != "IN" {
		t.Errorf("direction: got %v, want %q", logEntry["direction"], "IN")
	}
	if logEntry["layer"] != "TRANSPORT" {
		t.Errorf("layer: got %v, want %q", logEntry["layer"], "TRANSPORT")
	}
	if logEntry["frame_size"] != float64(256) {
		t.Errorf("frame_size: got %v, want %v", logEntry["frame_size"], 256)
	}
}

func TestSlogAdapterLogsRequestEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	prop := wire.PropPresentValue
	latency := 8 * time.Millisecond

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-456",
		Direction: DirectionOut,
		Layer:     LayerEngine,
		Category:  CategoryRequest,
		DeviceID:  44012,
		Request: &RequestEvent{
			Service:  "read-property",
			InvokeID: 42,
			Object:   "analog-input:3",
			Property: &prop,
			Attempt:  1,
			Status:   "ok",
			Latency:  &latency,
		},
	})

	output := buf.String()
	if output == "" {
		t.Fatal("no output produced")
	}

	// Parse JSON log entry
	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	// Verify request fields
	if logEntry["service"] != "read-property" {
		t.Errorf("service: got %v, want %q", logEntry["service"], "read-property")
	}
	if logEntry["invoke_id"] != float64(42) {
		t.Errorf("invoke_id: got %v, want %v", logEntry["invoke_id"], 42)
	}
	if logEntry["object"] != "analog-input:3" {
		t.Errorf("object: got %v, want %q", logEntry["object"], "analog-input:3")
	}
	if logEntry["property"] != "present-value" {
		t.Errorf("property: got %v, want %q", logEntry["property"], "present-value")
	}
	if logEntry["device_id"] != float64(44012) {
		t.Errorf("device_id: got %v, want %v", logEntry["device_id"], 44012)
	}
	if logEntry["status"] != "ok" {
		t.Errorf("status: got %v, want %q", logEntry["status"], "ok")
	}
}

func TestSlogAdapterLogsDiscoveryEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-disc",
		Direction: DirectionIn,
		Layer:     LayerEngine,
		Category:  CategoryDiscovery,
		Discovery: &DiscoveryEvent{
			DeviceID: 1234,
			Address:  "192.168.1.50:47808",
		},
	})

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if logEntry["found_device"] != float64(1234) {
		t.Errorf("found_device: got %v, want %v", logEntry["found_device"], 1234)
	}
	if logEntry["found_addr"] != "192.168.1.50:47808" {
		t.Errorf("found_addr: got %v, want %q", logEntry["found_addr"], "192.168.1.50:47808")
	}
}

func TestSlogAdapterIncludesSessionID(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slogger := slog.New(handler)

	adapter := NewSlogAdapter(slogger)

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "abc12345-def6-7890",
		Direction: DirectionIn,
		Layer:     LayerSession,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntitySession,
			NewState: "open",
		},
	})

	output := buf.String()
	if !strings.Contains(output, "abc12345-def6-7890") {
		t.Error("output does not contain session ID")
	}
}

func TestSlogAdapterInterfaceSatisfaction(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
