// Command bacworks-shell is an interactive client for one BACnet
// device: scan the network, track objects, read and write values,
// watch health statistics.
//
// Usage:
//
//	bacworks-shell -address 192.168.1.100 [-device 1234] [-points building.yaml]
//	               [-event-log session.blog] [-history ~/.bacworks_history]
//
// Type "help" at the prompt for the command list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bacworks/bacworks-go/pkg/log"
	"github.com/bacworks/bacworks-go/pkg/points"
	"github.com/bacworks/bacworks-go/pkg/session"
	"github.com/bacworks/bacworks-go/pkg/version"
)

func main() {
	address := flag.String("address", "", "Device address, host or host:port")
	deviceID := flag.Uint("device", 0, "Device instance number")
	pointsPath := flag.String("points", "", "Points file to preload objects from")
	eventLog := flag.String("event-log", "", "Write protocol events to this file")
	timeout := flag.Duration("timeout", 3*time.Second, "Per-request timeout")
	history := flag.String("history", "", "Readline history file")
	flag.Parse()

	if err := run(*address, uint32(*deviceID), *pointsPath, *eventLog, *timeout, *history); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(address string, deviceID uint32, pointsPath, eventLogPath string, timeout time.Duration, history string) error {
	cfg := session.Config{
		DeviceID:      deviceID,
		DeviceAddress: address,
		Timeout:       timeout,
	}

	var file *points.File
	if pointsPath != "" {
		var err error
		file, err = points.Load(pointsPath)
		if err != nil {
			return err
		}
		cfg = file.SessionConfig()
		cfg.Timeout = timeout
		if address != "" {
			cfg.DeviceAddress = address
		}
		if deviceID != 0 {
			cfg.DeviceID = deviceID
		}
	}
	if cfg.DeviceAddress == "" {
		return fmt.Errorf("device address required (-address or a points file)")
	}

	if eventLogPath != "" {
		fileLog, err := log.NewFileLogger(eventLogPath)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer fileLog.Close()
		cfg.EventLog = fileLog
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	if file != nil {
		if err := sess.AddObjects(file.TrackedObjects()...); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println(version.UserAgent())

	return sess.Acquire(ctx, func(s *session.Session) error {
		shell, err := newShell(s, history)
		if err != nil {
			return err
		}
		shell.run(ctx)
		return nil
	})
}
