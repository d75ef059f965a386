// Package auth serializes token-refresh attempts triggered by transport
// auth errors. Every rejected frame after an expired token funnels into
// one in-flight refresh instead of its own refresh-then-signout cycle.
package auth

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dmfenton/Sketchpad-sub000/internal/actor"
)

// DefaultCooldown is the window after a refresh attempt during which
// further auth errors are ignored.
const DefaultCooldown = 5 * time.Second

// Credentials is the authentication collaborator. Token storage and the
// sign-in/sign-up flows behind it are outside this client core.
type Credentials interface {
	// RefreshToken attempts to refresh the access token. It returns true
	// with the new token when the refresh succeeded.
	RefreshToken(ctx context.Context) (token string, ok bool, err error)
	// SignOut tears the session down; the UI returns to authentication.
	SignOut(ctx context.Context) error
}

// RefreshGuard coalesces concurrent refresh attempts.
//
// Guarantees: at most one refresh is in flight at any time, and SignOut is
// invoked at most once per failed flight.
type RefreshGuard struct {
	creds    Credentials
	cooldown time.Duration
	clock    actor.Clock
	debug    bool

	// onRefreshed receives the new token; the transport reconnects with it.
	onRefreshed func(token string)

	mu          sync.Mutex
	inFlight    bool
	lastAttempt time.Time
}

// GuardOption configures a RefreshGuard.
type GuardOption func(*RefreshGuard)

// WithCooldown overrides the cooldown window.
func WithCooldown(d time.Duration) GuardOption {
	return func(g *RefreshGuard) {
		if d > 0 {
			g.cooldown = d
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(clock actor.Clock) GuardOption {
	return func(g *RefreshGuard) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithGuardDebug enables verbose logging.
func WithGuardDebug(enabled bool) GuardOption {
	return func(g *RefreshGuard) { g.debug = enabled }
}

// NewRefreshGuard creates a guard around the given credentials.
// onRefreshed is called with the fresh token after a successful flight.
func NewRefreshGuard(creds Credentials, onRefreshed func(token string), opts ...GuardOption) *RefreshGuard {
	g := &RefreshGuard{
		creds:       creds,
		cooldown:    DefaultCooldown,
		clock:       actor.RealClock{},
		onRefreshed: onRefreshed,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HandleAuthError reacts to a transport auth failure. Calls within the
// cooldown window of the last attempt are no-ops; calls while a flight is
// active coalesce into it. Otherwise a refresh starts: success hands the
// new token to onRefreshed, failure signs out.
func (g *RefreshGuard) HandleAuthError(ctx context.Context) {
	now := g.clock.Now()

	g.mu.Lock()
	if g.inFlight {
		g.mu.Unlock()
		if g.debug {
			log.Printf("auth: refresh already in flight, coalescing")
		}
		return
	}
	if !g.lastAttempt.IsZero() && now.Sub(g.lastAttempt) < g.cooldown {
		g.mu.Unlock()
		if g.debug {
			log.Printf("auth: refresh attempted %s ago, within cooldown", now.Sub(g.lastAttempt))
		}
		return
	}
	g.inFlight = true
	g.lastAttempt = now
	g.mu.Unlock()

	go g.runFlight(ctx)
}

func (g *RefreshGuard) runFlight(ctx context.Context) {
	defer func() {
		g.mu.Lock()
		g.inFlight = false
		g.mu.Unlock()
	}()

	token, ok, err := g.creds.RefreshToken(ctx)
	if err == nil && ok {
		if g.debug {
			log.Printf("auth: token refreshed")
		}
		if g.onRefreshed != nil {
			g.onRefreshed(token)
		}
		return
	}

	if err != nil {
		log.Printf("auth: refresh failed: %v", err)
	} else {
		log.Printf("auth: refresh rejected")
	}
	if serr := g.creds.SignOut(ctx); serr != nil {
		log.Printf("auth: sign out failed: %v", serr)
	}
}
