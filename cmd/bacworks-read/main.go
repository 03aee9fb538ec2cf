// Command bacworks-read performs one read sweep over the objects in a
// points file and prints the results.
//
// Usage:
//
//	bacworks-read -points building.yaml [-json] [-event-log session.blog]
//
// The exit code is non-zero when any object failed, so the command
// slots into scripts and cron health checks.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bacworks/bacworks-go/pkg/inspect"
	"github.com/bacworks/bacworks-go/pkg/log"
	"github.com/bacworks/bacworks-go/pkg/points"
	"github.com/bacworks/bacworks-go/pkg/session"
)

func main() {
	pointsPath := flag.String("points", "", "Points file (required)")
	jsonOut := flag.Bool("json", false, "Print results as JSON")
	eventLog := flag.String("event-log", "", "Write protocol events to this file")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *pointsPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: bacworks-read -points <file.yaml> [-json] [-event-log <file.blog>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	failed, err := run(*pointsPath, *jsonOut, *eventLog, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run(pointsPath string, jsonOut bool, eventLogPath string, verbose bool) (failed int, err error) {
	file, err := points.Load(pointsPath)
	if err != nil {
		return 0, err
	}

	cfg := file.SessionConfig()
	if verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if eventLogPath != "" {
		fileLog, err := log.NewFileLogger(eventLogPath)
		if err != nil {
			return 0, fmt.Errorf("open event log: %w", err)
		}
		defer fileLog.Close()
		cfg.EventLog = fileLog
	}

	sess, err := session.New(cfg)
	if err != nil {
		return 0, err
	}
	if err := sess.AddObjects(file.TrackedObjects()...); err != nil {
		return 0, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var results map[string]session.Result
	err = sess.Acquire(ctx, func(s *session.Session) error {
		var sweepErr error
		results, sweepErr = s.ReadObjects(ctx)
		return sweepErr
	})
	if err != nil {
		return 0, err
	}

	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonResults(results)); err != nil {
			return failed, err
		}
		return failed, nil
	}

	fmt.Print(inspect.FormatResults(results))
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d objects failed\n", failed, len(results))
	}
	return failed, nil
}

// jsonResult is the JSON shape for one object's outcome.
type jsonResult struct {
	Value   any    `json:"value,omitempty"`
	Quality string `json:"quality,omitempty"`
	Unit    string `json:"unit,omitempty"`
	Error   string `json:"error,omitempty"`
}

func jsonResults(results map[string]session.Result) map[string]jsonResult {
	out := make(map[string]jsonResult, len(results))
	for name, res := range results {
		if res.Err != nil {
			out[name] = jsonResult{Error: res.Err.Error()}
			continue
		}
		out[name] = jsonResult{
			Value:   res.Reading.Value,
			Quality: res.Reading.Quality.String(),
			Unit:    res.Reading.Object.Unit,
		}
	}
	return out
}
