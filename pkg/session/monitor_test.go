package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bacworks/bacworks-go/internal/testharness"
	"github.com/bacworks/bacworks-go/pkg/log"
	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

func TestMonitor_RequiresPositiveInterval(t *testing.T) {
	s, err := New(testConfig(testharness.NewFakeDevice(1234)))
	require.NoError(t, err)

	err = s.Monitor(context.Background(), 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestMonitor_DispatchesMatchingWatch(t *testing.T) {
	fake := testharness.NewFakeDevice(1234)
	zone := analogInput("zone-temp", 1)
	fan := object.Object{Kind: object.KindBinaryInput, Instance: 1, Name: "fan-status"}
	fake.SetProperty(zone.ID(), wire.PropPresentValue, 78.5)
	fake.SetProperty(fan.ID(), wire.PropPresentValue, true)

	s, err := New(testConfig(fake))
	require.NoError(t, err)
	require.NoError(t, s.AddObjects(zone, fan))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired []string
	var got object.Reading
	watches := []Watch{{
		Object: "zone-temp",
		When: func(r object.Reading) bool {
			v, ok := r.Value.(float64)
			return ok && v > 75
		},
		Do: func(name string, r object.Reading) {
			fired = append(fired, name)
			got = r
			cancel()
		},
	}}

	require.NoError(t, s.Open(context.Background()))
	defer s.Close()

	err = s.Monitor(ctx, time.Hour, watches)
	require.NoError(t, err, "cancellation ends the monitor cleanly")
	assert.Equal(t, []string{"zone-temp"}, fired)
	assert.Equal(t, 78.5, got.Value)
}

func TestMonitor_NilPredicateMatchesEverything(t *testing.T) {
	fake := testharness.NewFakeDevice(1234)
	zone := analogInput("zone-temp", 1)
	fan := object.Object{Kind: object.KindBinaryInput, Instance: 1, Name: "fan-status"}
	fake.SetProperty(zone.ID(), wire.PropPresentValue, 68.0)
	fake.SetProperty(fan.ID(), wire.PropPresentValue, false)

	s, err := New(testConfig(fake))
	require.NoError(t, err)
	require.NoError(t, s.AddObjects(zone, fan))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired []string
	watches := []Watch{{
		Do: func(name string, _ object.Reading) {
			fired = append(fired, name)
			if len(fired) == 2 {
				cancel()
			}
		},
	}}

	require.NoError(t, s.Open(context.Background()))
	defer s.Close()

	require.NoError(t, s.Monitor(ctx, time.Hour, watches))

	// Dispatch order is name order, stable across cycles.
	assert.Equal(t, []string{"fan-status", "zone-temp"}, fired)
}

func TestMonitor_SkipsFailedObjects(t *testing.T) {
	fake := testharness.NewFakeDevice(1234)
	broken := analogInput("a-broken", 1)
	healthy := analogInput("b-healthy", 2)
	fake.SetProperty(broken.ID(), wire.PropPresentValue, 1.0)
	fake.SetProperty(healthy.ID(), wire.PropPresentValue, 2.0)
	fake.FailObject(broken.ID(), wire.ClassDevice, wire.CodeDeviceBusy)

	s, err := New(testConfig(fake))
	require.NoError(t, err)
	require.NoError(t, s.AddObjects(broken, healthy))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired []string
	watches := []Watch{{
		Do: func(name string, _ object.Reading) {
			fired = append(fired, name)
			cancel()
		},
	}}

	require.NoError(t, s.Open(context.Background()))
	defer s.Close()

	require.NoError(t, s.Monitor(ctx, time.Hour, watches))
	assert.Equal(t, []string{"b-healthy"}, fired, "failed objects never reach a watch")
}

func TestMonitor_ReturnsSweepError(t *testing.T) {
	fake := testharness.NewFakeDevice(1234)
	zone := analogInput("zone-temp", 1)
	fake.SetProperty(zone.ID(), wire.PropPresentValue, 68.0)
	fake.TimeoutAll(true)

	s, err := New(testConfig(fake))
	require.NoError(t, err)
	require.NoError(t, s.AddObject(zone))
	require.NoError(t, s.Open(context.Background()))
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.Monitor(ctx, time.Hour, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEndpointUnreachable)
}

func TestMonitor_CancelWhileWaitingReturnsNil(t *testing.T) {
	fake := testharness.NewFakeDevice(1234)
	zone := analogInput("zone-temp", 1)
	fake.SetProperty(zone.ID(), wire.PropPresentValue, 68.0)

	s, err := New(testConfig(fake))
	require.NoError(t, err)
	require.NoError(t, s.AddObject(zone))
	require.NoError(t, s.Open(context.Background()))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(30*time.Millisecond, cancel)
	defer timer.Stop()

	require.NoError(t, s.Monitor(ctx, time.Hour, nil))
}

func TestMonitor_EmitsLifecycleEvents(t *testing.T) {
	monitorEvents := func(events []log.Event) []*log.StateChangeEvent {
		var out []*log.StateChangeEvent
		for _, ev := range events {
			if ev.StateChange != nil && ev.StateChange.Entity == log.StateEntityMonitor {
				out = append(out, ev.StateChange)
			}
		}
		return out
	}

	t.Run("CleanStop", func(t *testing.T) {
		fake := testharness.NewFakeDevice(1234)
		zone := analogInput("zone-temp", 1)
		fake.SetProperty(zone.ID(), wire.PropPresentValue, 68.0)

		rec := &eventRecorder{}
		cfg := testConfig(fake)
		cfg.EventLog = rec

		s, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, s.AddObject(zone))
		require.NoError(t, s.Open(context.Background()))
		defer s.Close()

		ctx, cancel := context.WithCancel(context.Background())
		watches := []Watch{{Do: func(string, object.Reading) { cancel() }}}
		require.NoError(t, s.Monitor(ctx, time.Hour, watches))

		changes := monitorEvents(rec.Events())
		require.Len(t, changes, 2)
		assert.Equal(t, "RUNNING", changes[0].NewState)
		assert.Equal(t, "STOPPED", changes[1].NewState)
		assert.Empty(t, changes[1].Reason)
	})

	t.Run("SweepFailure", func(t *testing.T) {
		fake := testharness.NewFakeDevice(1234)
		zone := analogInput("zone-temp", 1)
		fake.SetProperty(zone.ID(), wire.PropPresentValue, 68.0)
		fake.TimeoutAll(true)

		rec := &eventRecorder{}
		cfg := testConfig(fake)
		cfg.EventLog = rec

		s, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, s.AddObject(zone))
		require.NoError(t, s.Open(context.Background()))
		defer s.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.Error(t, s.Monitor(ctx, time.Hour, nil))

		changes := monitorEvents(rec.Events())
		require.Len(t, changes, 2)
		assert.Equal(t, "STOPPED", changes[1].NewState)
		assert.Contains(t, changes[1].Reason, "unreachable")
	})
}
