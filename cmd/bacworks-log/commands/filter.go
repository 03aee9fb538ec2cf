package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bacworks/bacworks-go/pkg/log"
)

// RunFilter copies matching events into a new log file, preserving the
// CBOR encoding so the output is readable by every other command.
func RunFilter(path string, filter log.Filter, output string) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer reader.Close()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	enc := log.NewEncoder(out)
	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		count++
	}

	fmt.Printf("wrote %d events to %s\n", count, output)
	return nil
}
