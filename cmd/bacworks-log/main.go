// Command bacworks-log views and analyzes bacworks protocol log
// files.
//
// Log files are produced by wiring a log.FileLogger into a session's
// EventLog (the shell and hvac-example expose a -event-log flag).
//
// Usage:
//
//	bacworks-log <command> [flags] <file.blog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	bacworks-log view session.blog
//
//	# View only engine-layer read/write exchanges
//	bacworks-log view -layer engine -category request session.blog
//
//	# Everything that happened to one object since a timestamp
//	bacworks-log view -object zone1-temp -since 2026-03-01T12:00:00Z session.blog
//
//	# Export to JSONL
//	bacworks-log export -format jsonl session.blog
//
//	# Keep only transport frames in a new file
//	bacworks-log filter -layer transport -o frames.blog session.blog
//
//	# Show statistics
//	bacworks-log stats session.blog
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bacworks/bacworks-go/cmd/bacworks-log/commands"
	"github.com/bacworks/bacworks-go/pkg/log"
)

const usage = `bacworks-log - BACnet protocol log analyzer

Usage:
  bacworks-log <command> [flags] <file.blog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "bacworks-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on a flag set and
// returns a builder that assembles the log.Filter after parsing.
func filterFlags(fs *flag.FlagSet) func() log.Filter {
	layer := fs.String("layer", "", "Filter by layer (transport, engine, session)")
	category := fs.String("category", "", "Filter by category (frame, request, state, discovery, error)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	object := fs.String("object", "", "Filter by logical object name")
	session := fs.String("session", "", "Filter by session ID")
	device := fs.Uint("device", 0, "Filter by device instance number")
	since := fs.String("since", "", "Events at or after this time (RFC3339)")
	until := fs.String("until", "", "Events before this time (RFC3339)")

	return func() log.Filter {
		var filter log.Filter
		filter.Object = *object
		filter.SessionID = *session

		if *layer != "" {
			l, err := commands.ParseLayerFlag(*layer)
			fatalIf(err)
			filter.Layer = &l
		}
		if *category != "" {
			c, err := commands.ParseCategoryFlag(*category)
			fatalIf(err)
			filter.Category = &c
		}
		if *direction != "" {
			d, err := commands.ParseDirectionFlag(*direction)
			fatalIf(err)
			filter.Direction = &d
		}
		if *device != 0 {
			id := uint32(*device)
			filter.DeviceID = &id
		}
		if *since != "" {
			t, err := time.Parse(time.RFC3339, *since)
			fatalIf(err)
			filter.TimeStart = &t
		}
		if *until != "" {
			t, err := time.Parse(time.RFC3339, *until)
			fatalIf(err)
			filter.TimeEnd = &t
		}
		return filter
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	buildFilter := filterFlags(fs)
	fatalIf(fs.Parse(args))

	path := requireFile(fs)
	fatalIf(commands.RunView(path, buildFilter(), os.Stdout))
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	buildFilter := filterFlags(fs)
	fatalIf(fs.Parse(args))

	path := requireFile(fs)
	fatalIf(commands.RunExport(path, buildFilter(), *format, *output))
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	output := fs.String("o", "", "Output file (required)")
	buildFilter := filterFlags(fs)
	fatalIf(fs.Parse(args))

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		os.Exit(1)
	}

	path := requireFile(fs)
	fatalIf(commands.RunFilter(path, buildFilter(), *output))
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fatalIf(fs.Parse(args))

	path := requireFile(fs)
	fatalIf(commands.RunStats(path, os.Stdout))
}

func requireFile(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatalIf(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
