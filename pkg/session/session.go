package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bacworks/bacworks-go/pkg/discovery"
	"github.com/bacworks/bacworks-go/pkg/engine"
	"github.com/bacworks/bacworks-go/pkg/health"
	"github.com/bacworks/bacworks-go/pkg/log"
	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/registry"
	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// Session defaults.
const (
	// DefaultTimeout is the per-request transport timeout.
	DefaultTimeout = 3 * time.Second

	// DefaultMaxParallelReads bounds sweep concurrency.
	DefaultMaxParallelReads = 4
)

// Config describes the device a session talks to and the policies it
// talks with. Only DeviceAddress is required.
type Config struct {
	// DeviceID is the remote device instance number. Used for event
	// correlation and health reporting, not for addressing.
	DeviceID uint32

	// DeviceAddress is the device host, "host" or "host:port".
	DeviceAddress string

	// Port is the device UDP port when DeviceAddress carries no port.
	// Zero means the standard port.
	Port int

	// Timeout is the per-request transport timeout. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// RetryCount is the number of retries after the first attempt.
	// Zero means the engine default; negative disables retries.
	RetryCount int

	// RetryDelay is the delay before the first retry. Zero means the
	// engine default.
	RetryDelay time.Duration

	// HealthThreshold is the consecutive-failure count at which the
	// device becomes unhealthy. Zero means the tracker default.
	HealthThreshold int

	// MaxParallelReads bounds the number of in-flight reads during a
	// sweep. Zero means DefaultMaxParallelReads.
	MaxParallelReads int

	// DuplicatePolicy decides what AddObject does when the name is
	// already taken. The zero value replaces.
	DuplicatePolicy registry.DuplicatePolicy

	// Adapter is the transport to use. Nil means a UDP adapter.
	Adapter transport.Adapter

	// Logger receives operational lines. Nil disables them.
	Logger *slog.Logger

	// EventLog receives protocol events. Nil disables them.
	EventLog log.Logger
}

// Session is the top-level client for one remote device. Safe for
// concurrent use once opened.
type Session struct {
	config     Config
	endpoint   transport.Endpoint
	adapter    transport.Adapter
	engine     *engine.Engine
	registry   *registry.Registry
	health     *health.Tracker
	discoverer *discovery.Discoverer
	events     *eventStamper
	logger     *slog.Logger

	mu     sync.Mutex
	opened bool
	id     string
}

// New assembles a session from the config. The transport is not
// touched until Open.
func New(config Config) (*Session, error) {
	if config.DeviceAddress == "" {
		return nil, errors.New("device address required")
	}
	if config.Port == 0 {
		config.Port = transport.DefaultPort
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxParallelReads <= 0 {
		config.MaxParallelReads = DefaultMaxParallelReads
	}

	eventLog := config.EventLog
	if eventLog == nil {
		eventLog = &log.NoopLogger{}
	}
	events := &eventStamper{next: eventLog}

	adapter := config.Adapter
	if adapter == nil {
		adapter = transport.NewUDPAdapter(transport.UDPConfig{Logger: events})
	}

	tracker := health.NewTracker(health.Config{
		Threshold: config.HealthThreshold,
		DeviceID:  config.DeviceID,
		Logger:    config.Logger,
		EventLog:  events,
	})

	return &Session{
		config: config,
		endpoint: transport.Endpoint{
			DeviceID: config.DeviceID,
			Address:  config.DeviceAddress,
			Port:     config.Port,
			Timeout:  config.Timeout,
		},
		adapter:  adapter,
		registry: registry.New(config.DuplicatePolicy),
		health:   tracker,
		engine: engine.New(adapter, engine.Config{
			RetryCount: config.RetryCount,
			RetryDelay: config.RetryDelay,
			Observer:   tracker,
			Logger:     events,
		}),
		discoverer: discovery.NewDiscoverer(adapter, discovery.Config{
			Window:   config.Timeout,
			Logger:   config.Logger,
			EventLog: events,
		}),
		events: events,
		logger: config.Logger,
	}, nil
}

// Open readies the transport and assigns the session id carried in
// events. Idempotent while open; a closed session cannot reopen.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil
	}
	if err := s.adapter.Open(ctx); err != nil {
		return fmt.Errorf("open transport: %w", err)
	}

	s.id = uuid.New().String()
	s.events.id.Store(s.id)
	s.opened = true

	if s.logger != nil {
		s.logger.Info("session opened",
			"session_id", s.id,
			"device_id", s.config.DeviceID,
			"endpoint", s.endpoint.Addr())
	}
	s.lifecycleEvent("", "OPEN")
	return nil
}

// Close tears down the transport. Idempotent; the lifecycle event is
// emitted only on the open-to-closed edge.
func (s *Session) Close() error {
	s.mu.Lock()
	wasOpen := s.opened
	id := s.id
	s.opened = false
	s.mu.Unlock()

	err := s.adapter.Close()

	if wasOpen {
		if s.logger != nil {
			s.logger.Info("session closed",
				"session_id", id,
				"device_id", s.config.DeviceID)
		}
		s.lifecycleEvent("OPEN", "CLOSED")
	}
	return err
}

// Acquire opens the session, runs fn and closes the session on every
// return path. A panic in fn re-raises after the transport is
// released.
func (s *Session) Acquire(ctx context.Context, fn func(*Session) error) (err error) {
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer func() {
		cerr := s.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// AddObject registers one object for reads, writes and sweeps.
func (s *Session) AddObject(obj object.Object) error {
	return s.registry.Add(obj)
}

// AddObjects registers objects in order, stopping at the first error.
func (s *Session) AddObjects(objs ...object.Object) error {
	for _, obj := range objs {
		if err := s.registry.Add(obj); err != nil {
			return err
		}
	}
	return nil
}

// RemoveObject drops the object registered under name and reports
// whether it was present.
func (s *Session) RemoveObject(name string) bool {
	return s.registry.Remove(name)
}

// Objects returns the tracked objects in registration order.
func (s *Session) Objects() []object.Object {
	return s.registry.Objects()
}

// ReadObject reads the present value of one tracked object.
func (s *Session) ReadObject(ctx context.Context, name string) (object.Reading, error) {
	return s.ReadProperty(ctx, name, 0)
}

// ReadProperty reads one property of one tracked object, Present_Value
// when prop is zero.
func (s *Session) ReadProperty(ctx context.Context, name string, prop wire.PropertyID) (object.Reading, error) {
	obj, ok := s.registry.Get(name)
	if !ok {
		return object.Reading{}, &ObjectNotFoundError{Name: name}
	}
	reading, err := s.engine.Read(ctx, s.endpoint, obj, prop)
	if err != nil {
		return object.Reading{}, err
	}
	s.health.MarkRead()
	return reading, nil
}

// WriteObject sets the present value of one tracked object. The value
// is validated against the object's kind before anything goes out on
// the wire.
func (s *Session) WriteObject(ctx context.Context, name string, value any) error {
	obj, ok := s.registry.Get(name)
	if !ok {
		return &ObjectNotFoundError{Name: name}
	}
	if err := obj.Kind.Validate(value); err != nil {
		return &ValidationError{Object: name, Err: err}
	}
	if err := s.engine.Write(ctx, s.endpoint, obj, value, 0); err != nil {
		return err
	}
	s.health.MarkWrite()
	return nil
}

// Stats returns the device's running request statistics.
func (s *Session) Stats() health.Snapshot {
	return s.health.Snapshot()
}

// Health returns the device's current health classification.
func (s *Session) Health() health.State {
	return s.health.State()
}

// Discover sweeps the local broadcast domain for devices. Zero window
// means the discoverer's default.
func (s *Session) Discover(ctx context.Context, window time.Duration) ([]discovery.Device, error) {
	return s.discoverer.Discover(ctx, window)
}

// ID returns the session id assigned at Open, empty before the first
// Open.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Endpoint returns the endpoint the session addresses.
func (s *Session) Endpoint() transport.Endpoint {
	return s.endpoint
}

// lifecycleEvent emits a session state change.
func (s *Session) lifecycleEvent(old, next string) {
	s.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		DeviceID:  s.config.DeviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: old,
			NewState: next,
		},
	})
}

// eventStamper injects the session id into events from layers that
// don't know it. The id is stored at Open, so construction-time events
// go out unstamped.
type eventStamper struct {
	next log.Logger
	id   atomic.Value
}

// Log implements log.Logger.
func (s *eventStamper) Log(event log.Event) {
	if event.SessionID == "" {
		if id, ok := s.id.Load().(string); ok {
			event.SessionID = id
		}
	}
	s.next.Log(event)
}
