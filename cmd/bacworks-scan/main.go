// Command bacworks-scan sweeps the local broadcast domain for BACnet
// devices and prints what answered.
//
// Usage:
//
//	bacworks-scan [-window 3s] [-broadcast 255.255.255.255:47808] [-json] [-cache devices.json]
//
// With -cache the result set is merged into a device address cache
// that bacworks-shell and other tooling can use to resolve device
// addresses without a fresh sweep.
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
	"time"

	"github.com/bacworks/bacworks-go/pkg/discovery"
	"github.com/bacworks/bacworks-go/pkg/inspect"
	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/version"
)

func main() {
	window := flag.Duration("window", 3*time.Second, "Reply collection window")
	broadcast := flag.String("broadcast", transport.DefaultBroadcastAddress, "Broadcast destination")
	jsonOut := flag.Bool("json", false, "Print results as JSON")
	cachePath := flag.String("cache", "", "Merge results into this device cache file")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if err := run(*window, *broadcast, *jsonOut, *cachePath, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(window time.Duration, broadcast string, jsonOut bool, cachePath string, verbose bool) error {
	var logger *slog.Logger
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		logger.Info("starting", "version", version.UserAgent())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter := transport.NewUDPAdapter(transport.UDPConfig{BroadcastAddress: broadcast})
	if err := adapter.Open(ctx); err != nil {
		return err
	}
	defer adapter.Close()

	discoverer := discovery.NewDiscoverer(adapter, discovery.Config{
		Broadcast: broadcast,
		Logger:    logger,
	})

	devices, err := discoverer.Discover(ctx, window)
	if err != nil {
		return err
	}

	if cachePath != "" {
		cache := discovery.NewCache(cachePath)
		if err := cache.Save(devices); err != nil {
			return fmt.Errorf("update cache: %w", err)
		}
		if verbose {
			logger.Info("cache updated", "path", cachePath, "devices", len(devices))
		}
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	fmt.Print(inspect.FormatDevices(devices))
	return nil
}
