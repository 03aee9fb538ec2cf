package bacworks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bacworks/bacworks-go/internal/testharness"
	"github.com/bacworks/bacworks-go/pkg/engine"
	"github.com/bacworks/bacworks-go/pkg/health"
	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/session"
	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// ahu returns a fake air handler with a typical point mix, and a
// session tracking all of it.
func ahu(t *testing.T) (*session.Session, *testharness.FakeDevice) {
	t.Helper()

	device := testharness.NewFakeDevice(900100)
	device.SetProperty(wire.ObjectID{Type: wire.ObjectTypeAnalogInput, Instance: 1},
		wire.PropPresentValue, float64(21.5))
	device.SetProperty(wire.ObjectID{Type: wire.ObjectTypeAnalogValue, Instance: 3},
		wire.PropPresentValue, float64(22.0))
	device.SetProperty(wire.ObjectID{Type: wire.ObjectTypeBinaryOutput, Instance: 2},
		wire.PropPresentValue, uint64(0))
	device.SetProperty(wire.ObjectID{Type: wire.ObjectTypeMultiStateValue, Instance: 1},
		wire.PropPresentValue, uint64(2))

	sess, err := session.New(session.Config{
		DeviceID:      900100,
		DeviceAddress: "10.0.40.17",
		RetryCount:    -1,
		Adapter:       device,
	})
	require.NoError(t, err)

	require.NoError(t, sess.AddObjects(
		object.Object{Kind: object.KindAnalogInput, Instance: 1, Name: "supply-temp", Unit: "degrees-celsius"},
		object.Object{Kind: object.KindAnalogValue, Instance: 3, Name: "temp-setpoint", Unit: "degrees-celsius"},
		object.Object{Kind: object.KindBinaryOutput, Instance: 2, Name: "fan-start"},
		object.Object{Kind: object.KindMultiStateValue, Instance: 1, Name: "occupancy-mode"},
	))
	return sess, device
}

func TestSessionReadWriteRoundTrip(t *testing.T) {
	sess, device := ahu(t)
	ctx := context.Background()

	err := sess.Acquire(ctx, func(s *session.Session) error {
		reading, err := s.ReadObject(ctx, "supply-temp")
		require.NoError(t, err)
		assert.Equal(t, float64(21.5), reading.Value)
		assert.Equal(t, object.QualityNormal, reading.Quality)

		// Write then read back every writable kind.
		require.NoError(t, s.WriteObject(ctx, "temp-setpoint", 23.5))
		require.NoError(t, s.WriteObject(ctx, "fan-start", true))
		require.NoError(t, s.WriteObject(ctx, "occupancy-mode", 3))

		reading, err = s.ReadObject(ctx, "temp-setpoint")
		require.NoError(t, err)
		assert.Equal(t, 23.5, reading.Value)

		reading, err = s.ReadObject(ctx, "fan-start")
		require.NoError(t, err)
		assert.Equal(t, true, reading.Value)

		reading, err = s.ReadObject(ctx, "occupancy-mode")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), reading.Value)
		return nil
	})
	require.NoError(t, err)

	// Acquire released the transport on return.
	_, err = sess.ReadObject(ctx, "supply-temp")
	assert.ErrorIs(t, err, transport.ErrClosed)

	// The writes reached the device in order.
	writes := device.Writes()
	require.Len(t, writes, 3)
	assert.Equal(t, wire.ObjectID{Type: wire.ObjectTypeAnalogValue, Instance: 3}, writes[0].Object)
}

func TestSweepIsolatesObjectFailures(t *testing.T) {
	sess, device := ahu(t)
	ctx := context.Background()

	badObject := wire.ObjectID{Type: wire.ObjectTypeBinaryOutput, Instance: 2}
	device.FailObject(badObject, wire.ClassObject, wire.CodeUnknownObject)

	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	results, err := sess.ReadObjects(ctx)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var objErr *engine.ObjectError
	require.ErrorAs(t, results["fan-start"].Err, &objErr)
	assert.Equal(t, wire.CodeUnknownObject, objErr.Code)

	// The other three objects read clean.
	for _, name := range []string{"supply-temp", "temp-setpoint", "occupancy-mode"} {
		assert.NoError(t, results[name].Err, name)
	}

	// A device-side rejection is never retried.
	reads := 0
	for _, rec := range device.Reads() {
		if rec.Object == badObject {
			reads++
		}
	}
	assert.Equal(t, 1, reads)
}

func TestSweepEndpointUnreachable(t *testing.T) {
	sess, device := ahu(t)
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	device.TimeoutAll(true)
	_, err := sess.ReadObjects(ctx)
	assert.ErrorIs(t, err, session.ErrEndpointUnreachable)
}

func TestRetryRecoversTransientTimeout(t *testing.T) {
	device := testharness.NewFakeDevice(900100)
	device.SetProperty(wire.ObjectID{Type: wire.ObjectTypeAnalogInput, Instance: 1},
		wire.PropPresentValue, float64(18.0))

	sess, err := session.New(session.Config{
		DeviceID:      900100,
		DeviceAddress: "10.0.40.17",
		RetryCount:    2,
		RetryDelay:    time.Millisecond,
		Adapter:       device,
	})
	require.NoError(t, err)
	require.NoError(t, sess.AddObject(object.Object{
		Kind: object.KindAnalogInput, Instance: 1, Name: "supply-temp",
	}))

	ctx := context.Background()
	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	device.TimeoutNext(2)
	reading, err := sess.ReadObject(ctx, "supply-temp")
	require.NoError(t, err)
	assert.Equal(t, float64(18.0), reading.Value)
	assert.Equal(t, 3, reading.Attempts)

	// The recovery is invisible to health: one operation, one success.
	assert.Equal(t, health.StateHealthy, sess.Health())
	snap := sess.Stats()
	assert.Equal(t, uint64(3), snap.Attempts)
	assert.Equal(t, uint64(1), snap.Successes)
	assert.Zero(t, snap.Failures)
}

func TestHealthTransitions(t *testing.T) {
	device := testharness.NewFakeDevice(900100)
	device.SetProperty(wire.ObjectID{Type: wire.ObjectTypeAnalogInput, Instance: 1},
		wire.PropPresentValue, float64(18.0))

	sess, err := session.New(session.Config{
		DeviceID:        900100,
		DeviceAddress:   "10.0.40.17",
		RetryCount:      -1,
		HealthThreshold: 3,
		Adapter:         device,
	})
	require.NoError(t, err)
	require.NoError(t, sess.AddObject(object.Object{
		Kind: object.KindAnalogInput, Instance: 1, Name: "supply-temp",
	}))

	ctx := context.Background()
	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	assert.Equal(t, health.StateUnknown, sess.Health())

	_, err = sess.ReadObject(ctx, "supply-temp")
	require.NoError(t, err)
	assert.Equal(t, health.StateHealthy, sess.Health())

	device.TimeoutAll(true)
	for i := 0; i < 2; i++ {
		_, err = sess.ReadObject(ctx, "supply-temp")
		require.Error(t, err)
	}
	assert.Equal(t, health.StateDegraded, sess.Health())

	_, err = sess.ReadObject(ctx, "supply-temp")
	require.Error(t, err)
	assert.Equal(t, health.StateUnhealthy, sess.Health())

	// One success restores the session.
	device.TimeoutAll(false)
	_, err = sess.ReadObject(ctx, "supply-temp")
	require.NoError(t, err)
	assert.Equal(t, health.StateHealthy, sess.Health())

	snap := sess.Stats()
	assert.Equal(t, uint64(2), snap.Successes)
	assert.Equal(t, uint64(3), snap.Failures)
	assert.Zero(t, snap.ConsecutiveFailures)
}

func TestDiscoverFindsFakeDevice(t *testing.T) {
	sess, device := ahu(t)
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	devices, err := sess.Discover(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, uint32(900100), devices[0].DeviceID)
	assert.Equal(t, device.Addr, devices[0].Address)
	assert.Equal(t, device.MaxAPDU, devices[0].MaxAPDU)
}

func TestAcquireReleasesOnCallbackPanic(t *testing.T) {
	sess, _ := ahu(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = sess.Acquire(ctx, func(s *session.Session) error {
			panic("watch blew up")
		})
	})

	// The transport was still released on the way out.
	assert.ErrorIs(t, sess.Open(ctx), transport.ErrClosed)
}

func TestMonitorStopsOnCancel(t *testing.T) {
	sess, _ := ahu(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	fired := make(chan struct{}, 1)
	watches := []session.Watch{{
		Object: "supply-temp",
		Do: func(name string, r object.Reading) {
			select {
			case fired <- struct{}{}:
			default:
			}
		},
	}}

	done := make(chan error, 1)
	go func() {
		done <- sess.Monitor(ctx, 10*time.Millisecond, watches)
	}()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never dispatched a reading")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
}

func TestMalformedResponseFailsConnection(t *testing.T) {
	sess, device := ahu(t)
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	// An undecodable frame counts against the endpoint, not the object.
	device.MalformedNext()
	_, err := sess.ReadObject(ctx, "supply-temp")
	var connErr *engine.ConnectionError
	require.ErrorAs(t, err, &connErr)

	// The next read is unaffected.
	reading, err := sess.ReadObject(ctx, "supply-temp")
	require.NoError(t, err)
	assert.Equal(t, float64(21.5), reading.Value)
}

func TestMistypedValueSurfacesDecodeError(t *testing.T) {
	sess, device := ahu(t)
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	// The device answers with a string where an analog value belongs.
	device.SetProperty(wire.ObjectID{Type: wire.ObjectTypeAnalogInput, Instance: 1},
		wire.PropPresentValue, "out of order")

	_, err := sess.ReadObject(ctx, "supply-temp")
	var decodeErr *engine.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.ErrorIs(t, err, object.ErrValueDecode)
}

func TestWriteValidationRejectsBeforeWire(t *testing.T) {
	sess, device := ahu(t)
	ctx := context.Background()

	require.NoError(t, sess.Open(ctx))
	defer sess.Close()

	err := sess.WriteObject(ctx, "fan-start", "definitely-not-a-bool")
	var valErr *session.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.ErrorIs(t, err, object.ErrValueType)

	// Nothing reached the device.
	assert.Empty(t, device.Writes())

	var notFound *session.ObjectNotFoundError
	_, err = sess.ReadObject(ctx, "no-such-point")
	assert.ErrorAs(t, err, &notFound)
	assert.False(t, errors.Is(err, session.ErrEndpointUnreachable))
}
