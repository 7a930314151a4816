package application

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/composables"
)

const (
	ChannelAuthenticated = "authenticated"

	writeWait = 10 * time.Second
)

var ErrHubClosed = errors.New("websocket hub closed")

// TenantChannel names the channel every connection of a tenant joins.
func TenantChannel(state authn.AuthState) string {
	return "tenant/" + state.TenantID.String()
}

type HubOptions struct {
	Logger      *logrus.Logger
	CheckOrigin func(r *http.Request) bool
}

type WsCallback func(ctx context.Context, conn *Connection) error

// Hub upgrades requests to websocket connections and groups them into channels.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logrus.Logger

	mu       sync.RWMutex
	closed   bool
	conns    map[*Connection]struct{}
	channels map[string]map[*Connection]struct{}
}

func NewHub(opts *HubOptions) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		logger:   logger,
		conns:    make(map[*Connection]struct{}),
		channels: make(map[string]map[*Connection]struct{}),
	}
}

// Upgrade completes the websocket handshake. Authenticated connections join
// the authenticated channel and their tenant channel.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrHubClosed
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, errors.Wrap(err, "websocket upgrade")
	}
	conn := &Connection{hub: h, ws: ws}
	if state, err := composables.UseAuthState(r.Context()); err == nil {
		conn.state = state
		conn.authenticated = true
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	if conn.authenticated {
		h.JoinChannel(ChannelAuthenticated, conn)
		h.JoinChannel(TenantChannel(conn.state), conn)
	}
	return conn, nil
}

func (h *Hub) JoinChannel(channel string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Connection]struct{})
		h.channels[channel] = members
	}
	members[conn] = struct{}{}
}

func (h *Hub) ConnectionsInChannel(channel string) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Connection, 0, len(h.channels[channel]))
	for c := range h.channels[channel] {
		out = append(out, c)
	}
	return out
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// ForEach calls f for every connection of channel with a context carrying
// the connection's AuthState. The first error stops the iteration.
func (h *Hub) ForEach(channel string, f WsCallback) error {
	for _, conn := range h.ConnectionsInChannel(channel) {
		ctx := composables.WithLogger(context.Background(), logrus.NewEntry(h.logger))
		if conn.authenticated {
			ctx = composables.WithAuthState(ctx, conn.state)
		}
		if err := f(ctx, conn); err != nil {
			return err
		}
	}
	return nil
}

// Broadcast sends v as JSON to every connection of channel. Send failures
// are logged and the connection dropped.
func (h *Hub) Broadcast(channel string, v any) {
	_ = h.ForEach(channel, func(ctx context.Context, conn *Connection) error {
		if err := conn.SendJSON(v); err != nil {
			h.logger.WithError(err).Debug("dropping websocket connection")
			_ = conn.Close()
		}
		return nil
	})
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	for name, members := range h.channels {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.channels, name)
		}
	}
}

// Shutdown sends a going-away close frame to every connection and refuses
// new upgrades.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Connection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.writeMu.Unlock()
		_ = c.Close()
	}
}

// Connection is a single websocket client. Writes are serialized; reads
// must happen from one goroutine.
type Connection struct {
	hub           *Hub
	ws            *websocket.Conn
	state         authn.AuthState
	authenticated bool

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *Connection) AuthState() (authn.AuthState, bool) {
	return c.state, c.authenticated
}

func (c *Connection) SendMessage(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, message)
}

func (c *Connection) SendJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// ReadJSON blocks for the next message and decodes it into v.
func (c *Connection) ReadJSON(v any) error {
	return c.ws.ReadJSON(v)
}

func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.hub.remove(c)
		err = c.ws.Close()
	})
	return err
}

// IsClosedError reports whether err ends a read loop normally.
func IsClosedError(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
		errors.Is(err, websocket.ErrCloseSent)
}
