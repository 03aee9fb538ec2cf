package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bacworks/bacworks-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	ServiceCounts     map[string]int
	StatusCounts      map[string]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// Collect reads the whole file and aggregates.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		ServiceCounts:     make(map[string]int),
		StatusCounts:      make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Request != nil {
			stats.ServiceCounts[event.Request.Service]++
			if event.Request.Status != "" {
				stats.StatusCounts[event.Request.Status]++
			}
		}
		if event.Error != nil {
			stats.Errors++
		}
	}
	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "events:   %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return nil
	}

	fmt.Fprintf(w, "range:    %s .. %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	fmt.Fprintf(w, "errors:   %d\n", stats.Errors)

	fmt.Fprintln(w, "\nby layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerEngine, log.LayerSession} {
		if n := stats.EventsByLayer[layer]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", layer, n)
		}
	}

	if len(stats.ServiceCounts) > 0 {
		fmt.Fprintln(w, "\nby service:")
		for _, service := range sortedKeys(stats.ServiceCounts) {
			fmt.Fprintf(w, "  %-16s %d\n", service, stats.ServiceCounts[service])
		}
	}

	if len(stats.StatusCounts) > 0 {
		fmt.Fprintln(w, "\nby status:")
		for _, status := range sortedKeys(stats.StatusCounts) {
			fmt.Fprintf(w, "  %-16s %d\n", status, stats.StatusCounts[status])
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
