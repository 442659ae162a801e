// Package replica provides a value with a single writer whose changes are
// observed by any number of readers.
package replica

import (
	"context"
	"sync"
)

// Value is the read side of a replicated value
type Value[T any] struct {
	mu      sync.RWMutex
	value   T
	set     bool
	version uint64
	changed chan struct{}

	subs   map[int]func(prev, next T)
	nextID int
}

// Writer is the only handle able to change a Value
type Writer[T any] struct {
	v *Value[T]
}

// New creates an unset value and its writer
func New[T any]() (*Value[T], *Writer[T]) {
	v := &Value[T]{
		changed: make(chan struct{}),
		subs:    make(map[int]func(prev, next T)),
	}
	return v, &Writer[T]{v: v}
}

// Set stores next and notifies subscribers in subscription order
func (w *Writer[T]) Set(next T) {
	v := w.v

	v.mu.Lock()
	prev := v.value
	v.value = next
	v.set = true
	v.version++
	close(v.changed)
	v.changed = make(chan struct{})
	subs := v.snapshot()
	v.mu.Unlock()

	for _, fn := range subs {
		fn(prev, next)
	}
}

// Value returns the read side
func (w *Writer[T]) Value() *Value[T] {
	return w.v
}

// Get returns the current value and whether it has ever been set
func (v *Value[T]) Get() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value, v.set
}

// Version counts the writes so far
func (v *Value[T]) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Subscribe registers fn for every later change. The returned func removes it.
func (v *Value[T]) Subscribe(fn func(prev, next T)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Wait blocks until the value has been set at least once
func (v *Value[T]) Wait(ctx context.Context) (T, error) {
	for {
		v.mu.RLock()
		value, set, changed := v.value, v.set, v.changed
		v.mu.RUnlock()
		if set {
			return value, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Changed returns a channel closed on the next write
func (v *Value[T]) Changed() <-chan struct{} {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.changed
}

// snapshot returns the subscribers ordered by registration; caller holds mu
func (v *Value[T]) snapshot() []func(prev, next T) {
	out := make([]func(prev, next T), 0, len(v.subs))
	for id := 0; id < v.nextID; id++ {
		if fn, ok := v.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
