package session

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bacworks/bacworks-go/pkg/log"
	"github.com/bacworks/bacworks-go/pkg/object"
)

// Watch is one monitor callback. Do fires when When accepts a fresh
// reading of Object. A nil When fires on every reading; an empty
// Object matches every tracked object.
type Watch struct {
	// Object is the logical name to watch, empty for all.
	Object string

	// When filters readings. Nil accepts everything.
	When func(reading object.Reading) bool

	// Do receives the matching reading.
	Do func(name string, reading object.Reading)
}

// Monitor sweeps the registry every interval and dispatches watches
// over the fresh readings. Only the latest sweep is held; there is no
// history. The loop runs until the context is canceled, which returns
// nil, or until a whole sweep fails, which returns the sweep error.
func (s *Session) Monitor(ctx context.Context, interval time.Duration, watches []Watch) (err error) {
	if interval <= 0 {
		return errors.New("monitor interval must be positive")
	}

	s.monitorState("", "RUNNING", "")
	defer func() {
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		s.monitorState("RUNNING", "STOPPED", reason)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		results, err := s.ReadObjects(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		dispatch(watches, results)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// dispatch runs the watches over one sweep's results in name order, so
// callback order is stable across cycles. Failed objects are skipped;
// a watch sees values, not errors.
func dispatch(watches []Watch, results map[string]Result) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := results[name]
		if res.Err != nil {
			continue
		}
		for _, w := range watches {
			if w.Object != "" && w.Object != name {
				continue
			}
			if w.When != nil && !w.When(res.Reading) {
				continue
			}
			if w.Do != nil {
				w.Do(name, res.Reading)
			}
		}
	}
}

// monitorState emits a monitor lifecycle event.
func (s *Session) monitorState(old, next, reason string) {
	s.events.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		DeviceID:  s.config.DeviceID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityMonitor,
			OldState: old,
			NewState: next,
			Reason:   reason,
		},
	})
}
