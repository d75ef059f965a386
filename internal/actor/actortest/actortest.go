// Package actortest provides deterministic helpers for actor-based tests.
package actortest

import (
	"context"
	"sync"
	"time"

	"github.com/dmfenton/Sketchpad-sub000/internal/actor"
)

// FakeClock is a manually advanced Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ actor.Clock = (*FakeClock)(nil)

// NewFakeClock returns a FakeClock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now implements actor.Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// RecordingRuntime captures effects handed to it without executing any.
type RecordingRuntime struct {
	mu      sync.Mutex
	effects []actor.Effect
}

var _ actor.Runtime = (*RecordingRuntime)(nil)

// HandleEffects implements actor.Runtime.
func (r *RecordingRuntime) HandleEffects(_ context.Context, effects []actor.Effect, _ func(actor.Input)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, effects...)
}

// Stop implements actor.Runtime.
func (r *RecordingRuntime) Stop() {}

// Effects returns a copy of all captured effects.
func (r *RecordingRuntime) Effects() []actor.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]actor.Effect, len(r.effects))
	copy(out, r.effects)
	return out
}
