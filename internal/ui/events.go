package ui

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/speech-coach/internal/orchestrator"
)

const (
	clientBufferSize = 32
	writeWait        = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// The page is served from the same origin; CORS already limits API callers
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// EventHub fans run events out to websocket subscribers.
// Publish never blocks: a client whose buffer is full is dropped.
type EventHub struct {
	logger zerolog.Logger

	mu      sync.Mutex
	clients map[*eventClient]struct{}
	closed  bool
}

type eventClient struct {
	conn *websocket.Conn
	send chan orchestrator.Event
	once sync.Once
}

func (c *eventClient) close() {
	c.once.Do(func() { close(c.send) })
}

// NewEventHub creates an empty hub
func NewEventHub(logger zerolog.Logger) *EventHub {
	return &EventHub{
		logger:  logger.With().Str("component", "event_hub").Logger(),
		clients: make(map[*eventClient]struct{}),
	}
}

// Publish implements orchestrator.EventSink
func (h *EventHub) Publish(e orchestrator.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			h.logger.Warn().Str("run_id", e.RunID).Msg("Event subscriber too slow, dropping connection")
			delete(h.clients, c)
			c.close()
		}
	}
}

// ClientCount returns the number of connected subscribers
func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber and refuses new ones
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *EventHub) register(c *eventClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *EventHub) unregister(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// ServeWS upgrades the request and streams events until the client leaves
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	c := &eventClient{conn: conn, send: make(chan orchestrator.Event, clientBufferSize)}
	if !h.register(c) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Event subscriber connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages and notices disconnects
func (h *EventHub) readLoop(c *eventClient) {
	defer h.unregister(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
	}
}

func (h *EventHub) writeLoop(c *eventClient) {
	defer c.conn.Close()

	for e := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(e); err != nil {
			h.logger.Debug().Err(err).Msg("Event write failed")
			h.unregister(c)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
