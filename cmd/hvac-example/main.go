// Command hvac-example polls an air handling unit and raises alarms
// on out-of-band readings.
//
// This example shows how to:
//   - Load a points file and build a session from it
//   - Hold the device with Acquire for the life of the program
//   - Monitor readings with predicate watches
//   - Serve health and statistics over HTTP
//
// Usage:
//
//	go run ./cmd/hvac-example -points ahu-1.yaml
//
// The program runs until SIGINT and shuts the ops endpoint down
// before releasing the device.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/ops"
	"github.com/bacworks/bacworks-go/pkg/points"
	"github.com/bacworks/bacworks-go/pkg/session"
	"github.com/bacworks/bacworks-go/pkg/version"
)

func main() {
	pointsPath := flag.String("points", "", "Points file (required)")
	opsAddr := flag.String("ops", ":8090", "Ops endpoint listen address")
	interval := flag.Duration("interval", 10*time.Second, "Poll interval")
	highTemp := flag.Float64("high-temp", 28.0, "Supply temperature alarm threshold")
	flag.Parse()

	if *pointsPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: hvac-example -points <file.yaml> [-ops :8090] [-interval 10s]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info("starting", "agent", version.UserAgent())

	if err := run(*pointsPath, *opsAddr, *interval, *highTemp, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(pointsPath, opsAddr string, interval time.Duration, highTemp float64, logger *slog.Logger) error {
	file, err := points.Load(pointsPath)
	if err != nil {
		return err
	}

	cfg := file.SessionConfig()
	cfg.Logger = logger

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	if err := sess.AddObjects(file.TrackedObjects()...); err != nil {
		return err
	}
	logger.Info("session ready",
		"device", sess.ID(),
		"endpoint", sess.Endpoint(),
		"objects", len(sess.Objects()))

	srv := ops.NewServer(opsAddr, sess, logger)
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn("ops shutdown", "error", err)
		}
	}()
	logger.Info("ops endpoint up", "addr", opsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watches := []session.Watch{
		{
			// Alarm on hot supply air from any analog temperature point.
			When: func(r object.Reading) bool {
				v, ok := r.Value.(float64)
				return ok && r.Object.Unit == "degrees-celsius" && v > highTemp
			},
			Do: func(name string, r object.Reading) {
				logger.Warn("high temperature",
					"object", name,
					"value", r.Value,
					"threshold", highTemp)
			},
		},
		{
			// Any reading that did not come back clean.
			When: func(r object.Reading) bool {
				return r.Quality != object.QualityNormal
			},
			Do: func(name string, r object.Reading) {
				logger.Warn("degraded reading",
					"object", name,
					"quality", r.Quality.String())
			},
		},
		{
			// Trace every reading for the demo.
			Do: func(name string, r object.Reading) {
				logger.Debug("reading", "object", name, "value", r.Value)
			},
		},
	}

	// Acquire holds the device for the whole monitoring run and
	// releases it on the way out, even if a watch panics.
	err = sess.Acquire(ctx, func(s *session.Session) error {
		return s.Monitor(ctx, interval, watches)
	})
	if err != nil {
		return err
	}

	logger.Info("stopped")
	return nil
}
