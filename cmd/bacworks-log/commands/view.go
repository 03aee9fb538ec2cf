package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/bacworks/bacworks-go/pkg/inspect"
	"github.com/bacworks/bacworks-go/pkg/log"
)

// RunView prints matching events one per line.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		fmt.Fprintln(w, inspect.FormatEvent(event))
		count++
	}

	fmt.Fprintf(w, "\n%d events\n", count)
	return nil
}
