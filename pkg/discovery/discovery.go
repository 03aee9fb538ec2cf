package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/bacworks/bacworks-go/pkg/engine"
	"github.com/bacworks/bacworks-go/pkg/log"
	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// DefaultWindow is the reply-collection window when none is given.
const DefaultWindow = 3 * time.Second

// Device is one device that answered a Who-Is sweep.
type Device struct {
	// DeviceID is the announced device instance number.
	DeviceID uint32

	// Address is the respondent's UDP address ("ip:port").
	Address string

	// VendorID is the announced vendor identifier.
	VendorID uint16

	// VendorName is the registered vendor name, or "vendor-N" when the
	// identifier is not in the registry.
	VendorName string

	// MaxAPDU is the device's advertised APDU limit.
	MaxAPDU uint16

	// Segmentation is the announced segmentation support.
	Segmentation uint8

	// ObjectCount is the device's advertised object count. Zero when
	// the announcement does not carry one; I-Am never does, so this
	// stays zero until a caller fills it from the device object.
	ObjectCount uint32

	// SeenAt is when the last announcement arrived.
	SeenAt time.Time
}

// Config holds discovery settings.
type Config struct {
	// Window is the reply-collection window used when Discover is
	// called with zero. Defaults to DefaultWindow.
	Window time.Duration

	// Broadcast labels connection errors with the sweep destination.
	// Defaults to transport.DefaultBroadcastAddress.
	Broadcast string

	// Logger receives operational lines. Nil disables them.
	Logger *slog.Logger

	// EventLog receives one discovery event per announcement. Nil
	// disables them.
	EventLog log.Logger
}

// Discoverer runs Who-Is sweeps through a transport adapter.
type Discoverer struct {
	adapter transport.Adapter
	config  Config

	// Clock hook, replaced in tests.
	now func() time.Time
}

// NewDiscoverer creates a discoverer on top of an opened adapter.
func NewDiscoverer(adapter transport.Adapter, config Config) *Discoverer {
	if config.Window <= 0 {
		config.Window = DefaultWindow
	}
	if config.Broadcast == "" {
		config.Broadcast = transport.DefaultBroadcastAddress
	}
	if config.EventLog == nil {
		config.EventLog = &log.NoopLogger{}
	}

	return &Discoverer{
		adapter: adapter,
		config:  config,
		now:     time.Now,
	}
}

// Discover broadcasts a Who-Is and returns every device that answered
// within the window. A window of zero or less uses the configured
// default. No answers is an empty result, not an error.
func (d *Discoverer) Discover(ctx context.Context, window time.Duration) ([]Device, error) {
	if window <= 0 {
		window = d.config.Window
	}

	replies, err := d.adapter.Broadcast(ctx, wire.EncodeWhoIs(-1, -1), window)
	if err != nil {
		return nil, &engine.ConnectionError{
			Endpoint: transport.Endpoint{Address: d.config.Broadcast},
			Attempts: 1,
			Err:      err,
		}
	}

	byID := make(map[uint32]int)
	devices := make([]Device, 0, len(replies))
	for _, reply := range replies {
		iam, err := wire.ParseIAm(reply.Frame)
		if err != nil {
			if d.config.Logger != nil {
				d.config.Logger.Debug("skipping reply",
					"addr", reply.Addr,
					"error", err)
			}
			continue
		}

		dev := Device{
			DeviceID:     iam.Device.Instance,
			Address:      reply.Addr,
			VendorID:     iam.VendorID,
			VendorName:   wire.VendorName(iam.VendorID),
			MaxAPDU:      iam.MaxAPDU,
			Segmentation: iam.Segmentation,
			SeenAt:       d.now(),
		}

		d.config.EventLog.Log(log.Event{
			Timestamp:  dev.SeenAt,
			Direction:  log.DirectionIn,
			Layer:      log.LayerEngine,
			Category:   log.CategoryDiscovery,
			RemoteAddr: dev.Address,
			DeviceID:   dev.DeviceID,
			Discovery: &log.DiscoveryEvent{
				DeviceID: dev.DeviceID,
				Address:  dev.Address,
				VendorID: dev.VendorID,
				MaxAPDU:  dev.MaxAPDU,
			},
		})

		// Duplicate announcements keep their first-seen position but
		// take the newest address and parameters.
		if i, ok := byID[dev.DeviceID]; ok {
			devices[i] = dev
			continue
		}
		byID[dev.DeviceID] = len(devices)
		devices = append(devices, dev)
	}

	if d.config.Logger != nil {
		d.config.Logger.Info("discovery complete",
			"devices", len(devices),
			"replies", len(replies),
			"window", window)
	}
	return devices, nil
}
