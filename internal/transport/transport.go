// Package transport owns the websocket connection to the Sketchpad
// server: dialing with a token-qualified URL, the read loop, reconnect
// backoff, and auth-failure signaling. It carries no business logic;
// decoded events are handed to a callback in arrival order.
package transport

import (
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// Status is the connection state machine position.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusOpen
	StatusClosedRetryable
	StatusClosedAuthFailed
)

// String returns the state name for logs.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosedRetryable:
		return "closed-retryable"
	case StatusClosedAuthFailed:
		return "closed-auth-failed"
	default:
		return "unknown"
	}
}

// AuthFailureCloseCode is the reserved close code the server uses to
// reject an expired or invalid token. Any other close schedules a
// reconnect; this one escalates to the refresh guard instead.
const AuthFailureCloseCode = 4008

// DefaultReconnectBackoff is the fixed delay before a reconnect attempt.
const DefaultReconnectBackoff = 3 * time.Second

const defaultDialTimeout = 10 * time.Second

// ErrNoToken is returned by Connect when no access token is available.
// The client never attempts an anonymous connection.
var ErrNoToken = fmt.Errorf("transport: no access token")

// Callbacks receive transport notifications. All callbacks fire from the
// transport's goroutines; receivers must be safe for that.
type Callbacks struct {
	// OnEvent delivers decoded server events in arrival order.
	OnEvent func(ev *protocol.ServerEvent)
	// OnOpen fires after the socket transitions to Open.
	OnOpen func()
	// OnClose fires after any close, with the last error text.
	OnClose func(reason string)
	// OnAuthError fires when the server closed with AuthFailureCloseCode.
	// No reconnect is scheduled; recovery belongs to the refresh guard.
	OnAuthError func()
}

// Client is the websocket connection state machine.
type Client struct {
	wsURL     string
	backoff   time.Duration
	callbacks Callbacks
	debug     bool

	mu             sync.Mutex
	status         Status
	token          string
	lastError      string
	conn           *websocket.Conn
	reconnectTimer *time.Timer
	gen            int64
	dialer         *websocket.Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithBackoff overrides the reconnect delay.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithDebug enables verbose logging.
func WithDebug(enabled bool) Option {
	return func(c *Client) { c.debug = enabled }
}

// NewClient creates a transport for the given websocket endpoint.
func NewClient(wsURL string, callbacks Callbacks, opts ...Option) *Client {
	c := &Client{
		wsURL:     wsURL,
		backoff:   DefaultReconnectBackoff,
		callbacks: callbacks,
		status:    StatusDisconnected,
		dialer:    &websocket.Dialer{HandshakeTimeout: defaultDialTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastError returns the most recent close or dial error text.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Connect dials the server with the token as a query credential. Calling
// Connect while already Connecting or Open with the same token is a
// no-op. An empty token fails fast.
func (c *Client) Connect(token string) error {
	if token == "" {
		return ErrNoToken
	}

	c.mu.Lock()
	if (c.status == StatusConnecting || c.status == StatusOpen) && c.token == token {
		c.mu.Unlock()
		return nil
	}
	c.stopReconnectLocked()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.token = token
	c.status = StatusConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	u, err := url.Parse(c.wsURL)
	if err != nil {
		c.failConnect(gen, fmt.Sprintf("parse url: %v", err))
		return fmt.Errorf("parse ws url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	if c.debug {
		log.Printf("transport: connecting to %s", c.wsURL)
	}

	conn, _, err := c.dialer.Dial(u.String(), nil)
	if err != nil {
		c.failConnect(gen, fmt.Sprintf("dial: %v", err))
		return nil
	}

	c.mu.Lock()
	if gen != c.gen {
		// A newer Connect or Disconnect superseded this dial.
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.status = StatusOpen
	c.lastError = ""
	c.mu.Unlock()

	if c.debug {
		log.Printf("transport: open")
	}
	if c.callbacks.OnOpen != nil {
		c.callbacks.OnOpen()
	}

	go c.readLoop(conn, gen)
	return nil
}

// failConnect records a failed dial and schedules a retry.
func (c *Client) failConnect(gen int64, reason string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.status = StatusClosedRetryable
	c.lastError = reason
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	log.Printf("transport: connect failed: %s", reason)
	if c.callbacks.OnClose != nil {
		c.callbacks.OnClose(reason)
	}
}

// Send transmits one outbound message. Messages are silently dropped when
// the socket is not open; the caller decides whether an action warrants a
// retry.
func (c *Client) Send(msg protocol.Outbound) {
	c.mu.Lock()
	conn := c.conn
	open := c.status == StatusOpen
	c.mu.Unlock()

	if !open || conn == nil {
		if c.debug {
			log.Printf("transport: dropping %s (not open)", msg.MessageType())
		}
		return
	}

	data, err := protocol.EncodeOutbound(msg)
	if err != nil {
		log.Printf("transport: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		// The read loop observes the same failure and drives the close
		// transition; nothing more to do here.
		if c.debug {
			log.Printf("transport: write %s: %v", msg.MessageType(), err)
		}
	}
}

// Disconnect cancels any pending reconnect and closes the socket. Safe to
// call multiple times and on teardown paths.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopReconnectLocked()
	c.gen++
	conn := c.conn
	c.conn = nil
	c.status = StatusDisconnected
	c.token = ""
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) readLoop(conn *websocket.Conn, gen int64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(gen, err)
			return
		}

		ev, derr := protocol.DecodeServerEvent(data)
		if derr != nil {
			// One bad frame never tears down the connection.
			log.Printf("transport: dropping frame: %v", derr)
			continue
		}
		if c.callbacks.OnEvent != nil {
			c.callbacks.OnEvent(ev)
		}
	}
}

func (c *Client) handleReadError(gen int64, err error) {
	authFailed := false
	if ce, ok := err.(*websocket.CloseError); ok && ce.Code == AuthFailureCloseCode {
		authFailed = true
	}

	c.mu.Lock()
	if gen != c.gen {
		// Stale loop from a superseded connection.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.lastError = err.Error()
	if authFailed {
		c.status = StatusClosedAuthFailed
	} else {
		c.status = StatusClosedRetryable
		c.scheduleReconnectLocked()
	}
	c.mu.Unlock()

	if c.debug {
		log.Printf("transport: closed: %v", err)
	}
	if c.callbacks.OnClose != nil {
		c.callbacks.OnClose(err.Error())
	}
	if authFailed && c.callbacks.OnAuthError != nil {
		c.callbacks.OnAuthError()
	}
}

// scheduleReconnectLocked arms the backoff timer. Caller holds mu.
func (c *Client) scheduleReconnectLocked() {
	c.stopReconnectLocked()
	token := c.token
	gen := c.gen
	c.reconnectTimer = time.AfterFunc(c.backoff, func() {
		c.mu.Lock()
		stale := gen != c.gen
		c.mu.Unlock()
		if stale || token == "" {
			return
		}
		if c.debug {
			log.Printf("transport: reconnecting")
		}
		_ = c.Connect(token)
	})
}

// stopReconnectLocked cancels the pending reconnect timer. Caller holds mu.
func (c *Client) stopReconnectLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}
