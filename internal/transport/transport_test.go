package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

var upgrader = websocket.Upgrader{}

// wsServer runs handle for every websocket upgrade and counts them.
type wsServer struct {
	srv      *httptest.Server
	upgrades atomic.Int32
	tokens   sync.Map
}

func newWSServer(t *testing.T, handle func(conn *websocket.Conn, upgradeNum int32)) *wsServer {
	t.Helper()
	ws := &wsServer{}
	ws.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ws.upgrades.Add(1)
		ws.tokens.Store(n, r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if handle != nil {
			handle(conn, n)
		}
	}))
	t.Cleanup(ws.srv.Close)
	return ws
}

func (ws *wsServer) url() string {
	return "ws" + strings.TrimPrefix(ws.srv.URL, "http")
}

func TestConnectRequiresToken(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://localhost:0", Callbacks{})
	require.ErrorIs(t, c.Connect(""), ErrNoToken)
	require.Equal(t, StatusDisconnected, c.Status())
}

func TestConnectDeliversEventsInOrder(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"type":"status","status":"thinking"}`,
		`not json at all`,
		`{"type":"unknown_tag"}`,
		`{"no_type_field":true}`,
		`{"type":"thinking_delta","text":"hello"}`,
	}
	hold := make(chan struct{})
	ws := newWSServer(t, func(conn *websocket.Conn, _ int32) {
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		<-hold
	})
	defer close(hold)

	var mu sync.Mutex
	var got []string
	c := NewClient(ws.url(), Callbacks{
		OnEvent: func(ev *protocol.ServerEvent) {
			mu.Lock()
			got = append(got, ev.Type)
			mu.Unlock()
		},
	})
	defer c.Disconnect()

	require.NoError(t, c.Connect("tok-123"))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// Malformed and unknown frames are dropped without killing the socket.
	require.Equal(t, []string{protocol.TypeStatus, protocol.TypeThinkingDelta}, got)
	require.Equal(t, StatusOpen, c.Status())

	tok, ok := ws.tokens.Load(int32(1))
	require.True(t, ok)
	require.Equal(t, "tok-123", tok, "token travels as a query credential")
}

func TestAuthCloseStopsReconnecting(t *testing.T) {
	t.Parallel()

	ws := newWSServer(t, func(conn *websocket.Conn, _ int32) {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(AuthFailureCloseCode, "token expired"), deadline)
		// Wait for the client's close response before dropping the TCP
		// connection, so the close code reaches the read loop.
		_, _, _ = conn.ReadMessage()
	})

	var authErrors atomic.Int32
	c := NewClient(ws.url(), Callbacks{
		OnAuthError: func() { authErrors.Add(1) },
	}, WithBackoff(30*time.Millisecond))
	defer c.Disconnect()

	require.NoError(t, c.Connect("expired-tok"))
	require.Eventually(t, func() bool {
		return c.Status() == StatusClosedAuthFailed
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), authErrors.Load())

	// Well past the backoff window: still exactly one upgrade.
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), ws.upgrades.Load(), "auth failure must not schedule a reconnect")
	require.Equal(t, StatusClosedAuthFailed, c.Status())
}

func TestOrdinaryCloseReconnects(t *testing.T) {
	t.Parallel()

	hold := make(chan struct{})
	ws := newWSServer(t, func(conn *websocket.Conn, n int32) {
		if n == 1 {
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "restart"), deadline)
			_, _, _ = conn.ReadMessage()
			return
		}
		<-hold
	})
	defer close(hold)

	c := NewClient(ws.url(), Callbacks{}, WithBackoff(30*time.Millisecond))
	defer c.Disconnect()

	require.NoError(t, c.Connect("tok"))
	require.Eventually(t, func() bool {
		return ws.upgrades.Load() == 2 && c.Status() == StatusOpen
	}, 2*time.Second, 5*time.Millisecond)

	// The retry reuses the original token.
	tok, ok := ws.tokens.Load(int32(2))
	require.True(t, ok)
	require.Equal(t, "tok", tok)
}

func TestDisconnectCancelsPendingReconnect(t *testing.T) {
	t.Parallel()

	ws := newWSServer(t, func(conn *websocket.Conn, _ int32) {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), deadline)
		_, _, _ = conn.ReadMessage()
	})

	c := NewClient(ws.url(), Callbacks{}, WithBackoff(50*time.Millisecond))
	require.NoError(t, c.Connect("tok"))

	require.Eventually(t, func() bool {
		return c.Status() == StatusClosedRetryable
	}, 2*time.Second, 5*time.Millisecond)

	// Disconnect lands between the close and the armed retry firing.
	c.Disconnect()
	require.Equal(t, StatusDisconnected, c.Status())

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), ws.upgrades.Load(), "disconnect must cancel the reconnect timer")
}

func TestSendDropsWhenNotOpen(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://localhost:0", Callbacks{})
	// Must not panic or block with no connection.
	c.Send(protocol.NewNudgeMessage("keep going"))
	require.Equal(t, StatusDisconnected, c.Status())
}

func TestDialFailureSchedulesRetry(t *testing.T) {
	t.Parallel()

	ws := newWSServer(t, func(conn *websocket.Conn, _ int32) {
		time.Sleep(200 * time.Millisecond)
	})
	// Shut the server down so the first dial fails, then observe status.
	url := ws.url()
	ws.srv.Close()

	var closes atomic.Int32
	c := NewClient(url, Callbacks{
		OnClose: func(string) { closes.Add(1) },
	}, WithBackoff(20*time.Millisecond))
	defer c.Disconnect()

	require.NoError(t, c.Connect("tok"))
	require.Eventually(t, func() bool {
		return closes.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)
	require.NotEmpty(t, c.LastError())

	// Retries keep hitting the dead endpoint until Disconnect.
	require.Eventually(t, func() bool {
		return closes.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}
