package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, reader *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	return read
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
		{Timestamp: time.Now(), SessionID: "sess-2", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: time.Now(), SessionID: "sess-3", Direction: DirectionIn, Layer: LayerSession, Category: CategoryState},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}

	// Verify order
	if read[0].SessionID != "sess-1" {
		t.Errorf("first event SessionID = %q, want %q", read[0].SessionID, "sess-1")
	}
	if read[2].SessionID != "sess-3" {
		t.Errorf("last event SessionID = %q, want %q", read[2].SessionID, "sess-3")
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.blog")

	// Create empty file
	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderHandlesExhaustedFile(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	// Read first event
	_, err = reader.Next()
	if err != nil {
		t.Fatalf("first Next failed: %v", err)
	}

	// Second read should return EOF
	_, err = reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF after all events, got %v", err)
	}
}

func TestReaderFilterBySessionID(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-A", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
		{Timestamp: time.Now(), SessionID: "sess-B", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: time.Now(), SessionID: "sess-A", Direction: DirectionIn, Layer: LayerSession, Category: CategoryState},
		{Timestamp: time.Now(), SessionID: "sess-C", Direction: DirectionOut, Layer: LayerTransport, Category: CategoryFrame},
	}

	path := createTestLogFile(t, events)

	filter := Filter{SessionID: "sess-A"}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}

	for _, e := range read {
		if e.SessionID != "sess-A" {
			t.Errorf("event has SessionID=%q, want %q", e.SessionID, "sess-A")
		}
	}
}

func TestReaderFilterByLayer(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
		{Timestamp: time.Now(), SessionID: "sess-2", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: time.Now(), SessionID: "sess-3", Direction: DirectionIn, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: time.Now(), SessionID: "sess-4", Direction: DirectionOut, Layer: LayerSession, Category: CategoryState},
	}

	path := createTestLogFile(t, events)

	layer := LayerEngine
	filter := Filter{Layer: &layer}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}

	for _, e := range read {
		if e.Layer != LayerEngine {
			t.Errorf("event has Layer=%v, want %v", e.Layer, LayerEngine)
		}
	}
}

func TestReaderFilterByTimeRange(t *testing.T) {
	baseTime := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

	events := []Event{
		{Timestamp: baseTime.Add(-1 * time.Hour), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
		{Timestamp: baseTime, SessionID: "sess-2", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: baseTime.Add(30 * time.Minute), SessionID: "sess-3", Direction: DirectionIn, Layer: LayerSession, Category: CategoryState},
		{Timestamp: baseTime.Add(2 * time.Hour), SessionID: "sess-4", Direction: DirectionOut, Layer: LayerTransport, Category: CategoryFrame},
	}

	path := createTestLogFile(t, events)

	start := baseTime.Add(-5 * time.Minute)
	end := baseTime.Add(1 * time.Hour)
	filter := Filter{
		TimeStart: &start,
		TimeEnd:   &end,
	}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2 (events within time range)", len(read))
	}

	// Verify it's the middle two events
	if read[0].SessionID != "sess-2" {
		t.Errorf("first event SessionID = %q, want %q", read[0].SessionID, "sess-2")
	}
	if read[1].SessionID != "sess-3" {
		t.Errorf("second event SessionID = %q, want %q", read[1].SessionID, "sess-3")
	}
}

func TestReaderFilterByDirection(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
		{Timestamp: time.Now(), SessionID: "sess-2", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: time.Now(), SessionID: "sess-3", Direction: DirectionIn, Layer: LayerSession, Category: CategoryState},
		{Timestamp: time.Now(), SessionID: "sess-4", Direction: DirectionOut, Layer: LayerTransport, Category: CategoryFrame},
	}

	path := createTestLogFile(t, events)

	dir := DirectionOut
	filter := Filter{Direction: &dir}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}

	for _, e := range read {
		if e.Direction != DirectionOut {
			t.Errorf("event has Direction=%v, want %v", e.Direction, DirectionOut)
		}
	}
}

func TestReaderFilterByDeviceID(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest, DeviceID: 100},
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerEngine, Category: CategoryRequest, DeviceID: 200},
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest, DeviceID: 100},
	}

	path := createTestLogFile(t, events)

	device := uint32(100)
	filter := Filter{DeviceID: &device}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}

	for _, e := range read {
		if e.DeviceID != 100 {
			t.Errorf("event has DeviceID=%d, want 100", e.DeviceID)
		}
	}
}

func TestReaderFilterByObject(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest,
			Request: &RequestEvent{Service: "read-property", Object: "analog-input:1"}},
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest,
			Request: &RequestEvent{Service: "read-property", Object: "analog-input:2"}},
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
		{Timestamp: time.Now(), SessionID: "sess-1", Direction: DirectionIn, Layer: LayerEngine, Category: CategoryRequest,
			Request: &RequestEvent{Service: "read-property", Object: "analog-input:1", Status: "ok"}},
	}

	path := createTestLogFile(t, events)

	filter := Filter{Object: "analog-input:1"}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	// Events without a Request payload never match an Object filter
	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}

	for _, e := range read {
		if e.Request == nil || e.Request.Object != "analog-input:1" {
			t.Errorf("event Request = %+v, want Object %q", e.Request, "analog-input:1")
		}
	}
}

func TestReaderCombinedFilters(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "sess-A", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryFrame},
		{Timestamp: time.Now(), SessionID: "sess-A", Direction: DirectionOut, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: time.Now(), SessionID: "sess-B", Direction: DirectionIn, Layer: LayerEngine, Category: CategoryRequest},
		{Timestamp: time.Now(), SessionID: "sess-A", Direction: DirectionIn, Layer: LayerEngine, Category: CategoryRequest},
	}

	path := createTestLogFile(t, events)

	layer := LayerEngine
	dir := DirectionIn
	filter := Filter{
		SessionID: "sess-A",
		Layer:     &layer,
		Direction: &dir,
	}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	// Only the last event matches all criteria
	if len(read) != 1 {
		t.Fatalf("got %d events, want 1", len(read))
	}

	if read[0].SessionID != "sess-A" || read[0].Layer != LayerEngine || read[0].Direction != DirectionIn {
		t.Error("event doesn't match all filter criteria")
	}
}
