// Package client wires the synchronization core together: the transport
// feeds the router, the router feeds the store actor, the store's effects
// drive the transport, the performer, and the REST collaborator, and the
// refresh guard recovers from auth failures.
package client

import (
	"context"
	"log"
	"time"

	"github.com/dmfenton/Sketchpad-sub000/internal/actor"
	"github.com/dmfenton/Sketchpad-sub000/internal/auth"
	"github.com/dmfenton/Sketchpad-sub000/internal/canvas"
	"github.com/dmfenton/Sketchpad-sub000/internal/config"
	"github.com/dmfenton/Sketchpad-sub000/internal/performer"
	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
	"github.com/dmfenton/Sketchpad-sub000/internal/rest"
	"github.com/dmfenton/Sketchpad-sub000/internal/transport"
)

// refreshBeforeConnectWindow triggers a proactive token refresh when the
// cached token expires this soon.
const refreshBeforeConnectWindow = time.Minute

// Client is the assembled synchronization core.
type Client struct {
	cfg   *config.Config
	creds auth.Credentials
	clock actor.Clock

	store     *actor.Actor[canvas.State]
	transport *transport.Client
	performer *performer.Performer
	guard     *auth.RefreshGuard
	rest      *rest.Client
}

// New assembles a client from configuration, an auth collaborator, and an
// initial access token (may be stale; Connect refreshes proactively).
func New(cfg *config.Config, creds auth.Credentials, token string) *Client {
	c := &Client{
		cfg:   cfg,
		creds: creds,
		clock: actor.RealClock{},
		rest:  rest.NewClient(cfg.ServerURL, token),
	}

	c.guard = auth.NewRefreshGuard(creds, c.onTokenRefreshed,
		auth.WithCooldown(cfg.RefreshCooldown),
		auth.WithGuardDebug(cfg.Debug),
	)

	c.transport = transport.NewClient(cfg.SocketURL, transport.Callbacks{
		OnEvent:     c.onServerEvent,
		OnOpen:      func() { c.store.Enqueue(canvas.NewConnectedEvent()) },
		OnClose:     func(reason string) { c.store.Enqueue(canvas.NewDisconnectedEvent(reason)) },
		OnAuthError: func() { c.guard.HandleAuthError(context.Background()) },
	},
		transport.WithBackoff(cfg.ReconnectBackoff),
		transport.WithDebug(cfg.Debug),
	)

	c.performer = performer.New(c.rest, &performerSink{store: func() *actor.Actor[canvas.State] { return c.store }},
		performer.WithDebug(cfg.Debug),
	)

	hooks := actor.Hooks[canvas.State]{
		OnTransition: c.onTransition,
		OnPanic:      func(r any) { log.Printf("store: panic: %v", r) },
	}
	c.store = actor.New(canvas.NewState(), canvas.Reduce, &storeRuntime{client: c}, actor.WithHooks(hooks))

	return c
}

// Start launches the store actor and the performer.
func (c *Client) Start() {
	c.store.Start()
	c.performer.Start()
	c.performer.SetGate(c.store.State().RenderGateOpen())
}

// Connect refreshes the token when it is about to expire, then dials.
func (c *Client) Connect(ctx context.Context, token string) error {
	if auth.TokenExpiringSoon(token, refreshBeforeConnectWindow) {
		if fresh, ok, err := c.creds.RefreshToken(ctx); err == nil && ok {
			token = fresh
			c.rest.SetToken(fresh)
		}
	}
	return c.transport.Connect(token)
}

// Stop tears everything down: socket, reconnect timer, playback, actor.
// Safe to call on every exit path.
func (c *Client) Stop() {
	c.transport.Disconnect()
	c.performer.Stop()
	c.store.Stop()
}

// Store exposes the state actor for commands and snapshots.
func (c *Client) Store() *actor.Actor[canvas.State] { return c.store }

// Submit enqueues a store command or event.
func (c *Client) Submit(input actor.Input) bool { return c.store.Enqueue(input) }

func (c *Client) onServerEvent(ev *protocol.ServerEvent) {
	nowMs := c.clock.Now().UnixMilli()
	for _, input := range canvas.RouteServerEvent(ev, nowMs) {
		if !c.store.Enqueue(input) {
			log.Printf("client: store mailbox full, dropping %s", ev.Type)
		}
	}
}

func (c *Client) onTokenRefreshed(token string) {
	c.rest.SetToken(token)
	if err := c.transport.Connect(token); err != nil {
		log.Printf("client: reconnect after refresh: %v", err)
	}
}

// onTransition is the logging middleware around the pure reducer, and the
// point where state-derived gates propagate to the performer.
func (c *Client) onTransition(prev, next canvas.State, _ actor.Input, effects []actor.Effect) {
	if prev.RenderGateOpen() != next.RenderGateOpen() {
		c.performer.SetGate(next.RenderGateOpen())
	}
	if c.cfg.Debug {
		if prev.Status != next.Status {
			log.Printf("store: status %s -> %s", prev.Status, next.Status)
		}
		if len(effects) > 0 {
			log.Printf("store: %d effect(s)", len(effects))
		}
	}
}

// storeRuntime interprets canvas effects.
type storeRuntime struct {
	client *Client
}

var _ actor.Runtime = (*storeRuntime)(nil)

func (r *storeRuntime) HandleEffects(ctx context.Context, effects []actor.Effect, _ func(actor.Input)) {
	for _, eff := range effects {
		select {
		case <-ctx.Done():
			return
		default:
		}
		switch e := eff.(type) {
		case canvas.EffSend:
			r.client.transport.Send(e.Msg)
		case canvas.EffEnqueueBatch:
			r.client.performer.Enqueue(e.BatchID, e.Strokes)
		case canvas.EffResetPlayback:
			r.client.performer.Reset()
		default:
			// Unknown effect: ignore.
		}
	}
}

func (r *storeRuntime) Stop() {}

// performerSink forwards playback output into the store. The store
// accessor is deferred because the performer is built before the actor.
type performerSink struct {
	store func() *actor.Actor[canvas.State]
}

var _ performer.Sink = (*performerSink)(nil)

func (s *performerSink) OnPen(p protocol.Point, down bool) {
	s.store().Enqueue(canvas.NewPenEvent(p, down))
}

func (s *performerSink) OnStrokeFinished(stroke protocol.Stroke) {
	s.store().Enqueue(canvas.NewAgentStrokeDoneEvent(stroke))
}

func (s *performerSink) OnBatchFinished(batchID string) {
	s.store().Enqueue(canvas.NewBatchAnimatedEvent(batchID))
}

func (s *performerSink) OnBatchAbandoned(batchID string) {
	s.store().Enqueue(canvas.NewBatchAbandonedEvent(batchID))
}
