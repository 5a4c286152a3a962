package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tola-rs/tola/internal/core"
)

const (
	pingInterval = 20 * time.Second
	pongWait     = 10 * time.Second
)

// conn is one connected client: its socket, a buffered outbound queue
// drained by a single writer goroutine (gorilla/websocket connections are
// not safe for concurrent writes from multiple goroutines), and the
// client-reported active route used to prioritize that page's recompiles.
type conn struct {
	id      uuid.UUID
	ws      *websocket.Conn
	outbox  chan Message
	closeCh chan struct{}

	mu          sync.Mutex
	activeRoute core.Permalink
}

// Hub is the broadcaster: the set of live connections plus the pending
// per-path error replay a newly connected client should receive
// immediately (so a client that connects mid-outage sees the current
// failure state instead of waiting for the next edit).
type Hub struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*conn

	pendingErrors map[core.Permalink]string
}

// NewHub returns an empty broadcaster.
func NewHub() *Hub {
	return &Hub{
		conns:         make(map[uuid.UUID]*conn),
		pendingErrors: make(map[core.Permalink]string),
	}
}

// Register adopts ws as a new client connection, starts its reader/writer
// goroutines, and replays any outstanding errors.
func (h *Hub) Register(ws *websocket.Conn) {
	c := &conn{
		id:      uuid.New(),
		ws:      ws,
		outbox:  make(chan Message, 32),
		closeCh: make(chan struct{}),
	}

	h.mu.Lock()
	h.conns[c.id] = c
	pending := make(map[core.Permalink]string, len(h.pendingErrors))
	for k, v := range h.pendingErrors {
		pending[k] = v
	}
	h.mu.Unlock()

	go h.writeLoop(c)
	go h.readLoop(c)

	c.outbox <- Connected()
	for path, errMsg := range pending {
		c.outbox <- NewError(string(path), errMsg)
	}
}

func (h *Hub) writeLoop(c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer h.remove(c)

	for {
		select {
		case <-c.closeCh:
			return
		case msg, ok := <-c.outbox:
			if !ok {
				return
			}
			data, err := msg.ToJSON()
			if err != nil {
				continue
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			data, _ := Ping().ToJSON()
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readLoop(c *conn) {
	defer close(c.closeCh)
	defer c.ws.Close()
	_ = c.ws.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pingInterval + pongWait))

		msg, err := FromJSON(data)
		if err != nil {
			continue
		}
		if msg.Type == TypePong {
			continue
		}
		if msg.Path != "" {
			c.mu.Lock()
			c.activeRoute = core.Permalink(msg.Path)
			c.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		select {
		case c.outbox <- msg:
		default: // a stalled client never blocks the broadcaster
		}
	}
}

// RecordError tracks path's current failure so a newly connecting client
// receives it on handshake, and broadcasts it to clients already
// connected.
func (h *Hub) RecordError(path core.Permalink, errMsg string) {
	h.mu.Lock()
	h.pendingErrors[path] = errMsg
	h.mu.Unlock()
	h.Broadcast(NewError(string(path), errMsg))
}

// ClearError drops path's pending failure and tells clients to clear it.
func (h *Hub) ClearError(path core.Permalink) {
	h.mu.Lock()
	delete(h.pendingErrors, path)
	h.mu.Unlock()
	h.Broadcast(ClearError(string(path)))
}

// ConnectionCount returns the number of currently connected clients,
// used by internal/tui's dashboard status line.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// ActiveRoutes returns the set of permalinks at least one connected
// client currently has open, used by the scheduler to assign Priority
// Active to those pages' recompiles.
func (h *Hub) ActiveRoutes() map[core.Permalink]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[core.Permalink]bool)
	for _, c := range h.conns {
		c.mu.Lock()
		if c.activeRoute != "" {
			out[c.activeRoute] = true
		}
		c.mu.Unlock()
	}
	return out
}
