// Package sim runs the fixed-timestep simulation loop.
package sim

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Handler is a system advanced once per tick
type Handler interface {
	Tick(dt time.Duration)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(dt time.Duration)

// Tick calls f(dt)
func (f HandlerFunc) Tick(dt time.Duration) { f(dt) }

type namedHandler struct {
	name string
	h    Handler
}

// Loop invokes registered handlers in registration order on a fixed step
type Loop struct {
	step     time.Duration
	mu       sync.Mutex
	handlers []namedHandler
	ticks    atomic.Uint64
}

// NewLoop creates a loop advancing by step each tick
func NewLoop(step time.Duration) *Loop {
	return &Loop{step: step}
}

// Register appends a handler; it runs after every handler registered before it
func (l *Loop) Register(name string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, namedHandler{name: name, h: h})
}

// Step runs one tick synchronously
func (l *Loop) Step() {
	l.mu.Lock()
	handlers := append([]namedHandler(nil), l.handlers...)
	l.mu.Unlock()

	for _, nh := range handlers {
		nh.h.Tick(l.step)
	}
	l.ticks.Add(1)
}

// Ticks returns the number of completed ticks
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Run ticks until ctx is cancelled. Late ticks are caught up one at a time
// so game time never jumps by more than one step per handler call.
func (l *Loop) Run(ctx context.Context) error {
	log.Printf("[sim] loop started, step %v", l.step)
	ticker := time.NewTicker(l.step)
	defer ticker.Stop()

	next := time.Now().Add(l.step)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[sim] loop stopped after %d ticks", l.Ticks())
			return ctx.Err()
		case now := <-ticker.C:
			for !now.Before(next) {
				l.Step()
				next = next.Add(l.step)
			}
		}
	}
}
