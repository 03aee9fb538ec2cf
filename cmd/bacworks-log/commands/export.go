package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bacworks/bacworks-go/pkg/log"
)

// RunExport writes matching events as JSONL or CSV. An empty output
// path writes to stdout.
func RunExport(path string, filter log.Filter, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(path, filter, w)
	case "csv":
		return exportCSV(path, filter, w)
	default:
		return fmt.Errorf("unknown format %q (jsonl, csv)", format)
	}
}

func exportJSONL(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer reader.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		if err := enc.Encode(exportRecord(event)); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
}

func exportCSV(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer reader.Close()

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session", "direction", "layer", "category",
		"device", "service", "object", "status", "detail"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		rec := exportRecord(event)
		row := []string{
			rec.Timestamp, rec.SessionID, rec.Direction, rec.Layer, rec.Category,
			strconv.FormatUint(uint64(rec.DeviceID), 10),
			rec.Service, rec.Object, rec.Status, rec.Detail,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
}

// record is the flat export shape shared by JSONL and CSV.
type record struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session,omitempty"`
	Direction string `json:"direction"`
	Layer     string `json:"layer"`
	Category  string `json:"category"`
	DeviceID  uint32 `json:"device,omitempty"`
	Service   string `json:"service,omitempty"`
	Object    string `json:"object,omitempty"`
	Status    string `json:"status,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func exportRecord(event log.Event) record {
	rec := record{
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		SessionID: event.SessionID,
		Direction: event.Direction.String(),
		Layer:     event.Layer.String(),
		Category:  event.Category.String(),
		DeviceID:  event.DeviceID,
	}

	switch {
	case event.Frame != nil:
		rec.Detail = fmt.Sprintf("%d bytes", event.Frame.Size)
	case event.Request != nil:
		rec.Service = event.Request.Service
		rec.Object = event.Request.Object
		rec.Status = event.Request.Status
		if event.Request.Value != nil {
			rec.Detail = fmt.Sprintf("%v", event.Request.Value)
		}
	case event.StateChange != nil:
		rec.Detail = fmt.Sprintf("%s %s -> %s", event.StateChange.Entity,
			event.StateChange.OldState, event.StateChange.NewState)
	case event.Discovery != nil:
		rec.Detail = fmt.Sprintf("device %d @ %s", event.Discovery.DeviceID, event.Discovery.Address)
	case event.Error != nil:
		rec.Detail = event.Error.Message
	}
	return rec
}
