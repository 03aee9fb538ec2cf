package registry

import (
	"fmt"
	"sync"

	"github.com/bacworks/bacworks-go/pkg/object"
)

// DuplicatePolicy decides what Add does when the name is already taken.
type DuplicatePolicy uint8

const (
	// Replace swaps in the new object, keeping the original position.
	Replace DuplicatePolicy = iota

	// Reject fails the Add with a DuplicateObjectError.
	Reject
)

// String returns the policy name.
func (p DuplicatePolicy) String() string {
	switch p {
	case Replace:
		return "replace"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("policy-%d", uint8(p))
	}
}

// DuplicateObjectError is returned by Add under the Reject policy.
type DuplicateObjectError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("object %q already registered", e.Name)
}

// Registry holds a session's objects, keyed by name, iterated in
// insertion order. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	policy  DuplicatePolicy
	order   []string
	objects map[string]object.Object
}

// New creates an empty registry with the given duplicate policy.
func New(policy DuplicatePolicy) *Registry {
	return &Registry{
		policy:  policy,
		objects: make(map[string]object.Object),
	}
}

// Add registers an object under its name. Invalid objects are rejected
// before the duplicate policy applies.
func (r *Registry) Add(obj object.Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[obj.Name]; exists {
		if r.policy == Reject {
			return &DuplicateObjectError{Name: obj.Name}
		}
		// Replace keeps the original position in the order.
		r.objects[obj.Name] = obj
		return nil
	}

	r.order = append(r.order, obj.Name)
	r.objects[obj.Name] = obj
	return nil
}

// Get returns the object registered under name.
func (r *Registry) Get(name string) (object.Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objects[name]
	return obj, ok
}

// Remove drops the object registered under name and reports whether it
// was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[name]; !ok {
		return false
	}
	delete(r.objects, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Objects returns a snapshot of all objects in insertion order.
func (r *Registry) Objects() []object.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]object.Object, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.objects[name])
	}
	return result
}

// Names returns the registered names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
