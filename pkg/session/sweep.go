package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bacworks/bacworks-go/pkg/engine"
	"github.com/bacworks/bacworks-go/pkg/object"
)

// Result is one object's outcome in a sweep.
type Result struct {
	// Reading holds the decoded value when Err is nil.
	Reading object.Reading

	// Err is this object's failure. Other objects are unaffected.
	Err error
}

// ReadObjects reads the present value of every tracked object, at most
// MaxParallelReads in flight at once. Per-object failures land in the
// result map and never abort the sweep. The sweep itself fails only
// when the context is canceled or when every object failed with a
// connection error, in which case the error wraps
// ErrEndpointUnreachable.
func (s *Session) ReadObjects(ctx context.Context) (map[string]Result, error) {
	objects := s.registry.Objects()
	results := make(map[string]Result, len(objects))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	slots := make(chan struct{}, s.config.MaxParallelReads)

launch:
	for _, obj := range objects {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			break launch
		}

		obj := obj
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()

			reading, err := s.engine.Read(ctx, s.endpoint, obj, 0)
			if err == nil {
				s.health.MarkRead()
			}

			mu.Lock()
			results[obj.Name] = Result{Reading: reading, Err: err}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, sweepVerdict(objects, results)
}

// sweepVerdict decides whether a completed sweep failed as a whole.
// One reachable object, or one definitive per-object answer from the
// device, proves the endpoint is alive.
func sweepVerdict(objects []object.Object, results map[string]Result) error {
	if len(objects) == 0 {
		return nil
	}

	var last *engine.ConnectionError
	for _, obj := range objects {
		res, ok := results[obj.Name]
		if !ok || res.Err == nil {
			return nil
		}
		var connErr *engine.ConnectionError
		if !errors.As(res.Err, &connErr) {
			return nil
		}
		last = connErr
	}
	return fmt.Errorf("%w: %w", ErrEndpointUnreachable, last)
}
