// Package actor provides the single-goroutine event loop that owns the
// client's mutable state.
//
// One goroutine (the loop) holds state of type S. A pure reducer maps
// (state, input) to (state', effects). Effects are data; a Runtime
// interprets them asynchronously and feeds resulting events back into the
// mailbox. Reducers stay deterministic and trivially unit-testable, and
// there is never shared mutable state to race on.
package actor

import (
	"context"
	"errors"
	"sync"
)

// Input is an item delivered to the actor mailbox: either an event observed
// by a runtime or a command issued by a caller.
type Input interface {
	isInput()
}

// Effect is a declarative side-effect returned by a reducer. Effects carry
// data only; the Runtime executes them.
type Effect interface {
	isEffect()
}

// InputBase is embedded by input structs to satisfy Input.
type InputBase struct{}

func (InputBase) isInput() {}

// EffectBase is embedded by effect structs to satisfy Effect.
type EffectBase struct{}

func (EffectBase) isEffect() {}

// ReducerFunc is a pure state transition. It must not perform I/O, spawn
// goroutines, or read wall-clock time; timestamps arrive inside inputs.
type ReducerFunc[S any] func(state S, input Input) (next S, effects []Effect)

// Runtime interprets effects. Implementations must return quickly, run
// blocking work on their own goroutines, emit follow-up inputs only through
// emit, and stop emitting once ctx is canceled. They never touch actor
// state directly.
type Runtime interface {
	HandleEffects(ctx context.Context, effects []Effect, emit func(Input))
	Stop()
}

// Hooks observe the loop without participating in it. They implement the
// logging-as-middleware layer around the pure reducer.
type Hooks[S any] struct {
	// OnTransition runs after each reduce, with the applied state change and
	// the effects about to be handed to the runtime.
	OnTransition func(prev, next S, input Input, effects []Effect)
	// OnPanic runs if the loop panics; when nil the panic propagates.
	OnPanic func(recovered any)
}

// ErrStopped is returned by helpers once the actor has been stopped.
var ErrStopped = errors.New("actor stopped")

const defaultMailboxSize = 256

// Actor runs the event loop for state S.
type Actor[S any] struct {
	reduce  ReducerFunc[S]
	runtime Runtime
	hooks   Hooks[S]

	mu     sync.Mutex
	state  S
	inbox  chan Input
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Option configures an Actor.
type Option[S any] func(*Actor[S])

// WithHooks attaches observability hooks.
func WithHooks[S any](hooks Hooks[S]) Option[S] {
	return func(a *Actor[S]) { a.hooks = hooks }
}

// WithMailboxSize overrides the mailbox buffer size.
func WithMailboxSize[S any](n int) Option[S] {
	return func(a *Actor[S]) {
		if n > 0 {
			a.inbox = make(chan Input, n)
		}
	}
}

// New creates an actor with its initial state, reducer, and runtime.
func New[S any](initial S, reducer ReducerFunc[S], runtime Runtime, opts ...Option[S]) *Actor[S] {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Actor[S]{
		reduce:  reducer,
		runtime: runtime,
		state:   initial,
		inbox:   make(chan Input, defaultMailboxSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start launches the loop. Idempotent.
func (a *Actor[S]) Start() {
	a.once.Do(func() { go a.loop() })
}

// Stop cancels the loop and stops the runtime. Safe to call repeatedly.
func (a *Actor[S]) Stop() {
	a.cancel()
	if a.runtime != nil {
		a.runtime.Stop()
	}
}

// Done closes when the loop has exited.
func (a *Actor[S]) Done() <-chan struct{} { return a.done }

// Enqueue delivers an input to the mailbox. It reports false if the actor
// is stopped or the mailbox is full; callers needing backpressure should
// size the mailbox accordingly.
func (a *Actor[S]) Enqueue(input Input) bool {
	if input == nil {
		return false
	}
	select {
	case <-a.ctx.Done():
		return false
	default:
	}
	select {
	case a.inbox <- input:
		return true
	default:
		return false
	}
}

// State returns a snapshot of the current state. Intended for tests and
// read-only views; behavior should flow from reducer outputs.
func (a *Actor[S]) State() S {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Actor[S]) loop() {
	defer close(a.done)
	defer func() {
		if r := recover(); r != nil {
			if a.hooks.OnPanic != nil {
				a.hooks.OnPanic(r)
				return
			}
			panic(r)
		}
	}()

	emit := func(in Input) { _ = a.Enqueue(in) }

	for {
		select {
		case <-a.ctx.Done():
			return
		case in := <-a.inbox:
			if in == nil {
				continue
			}

			a.mu.Lock()
			prev := a.state
			a.mu.Unlock()

			next, effects := a.reduce(prev, in)

			a.mu.Lock()
			a.state = next
			a.mu.Unlock()

			if a.hooks.OnTransition != nil {
				a.hooks.OnTransition(prev, next, in, effects)
			}
			if a.runtime != nil && len(effects) > 0 {
				a.runtime.HandleEffects(a.ctx, effects, emit)
			}
		}
	}
}

// Step applies reducer to one (state, input) pair without executing
// effects. It is the reducer-level unit test entry point.
func Step[S any](state S, input Input, reducer ReducerFunc[S]) (S, []Effect) {
	return reducer(state, input)
}
