package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBufferSize = 64
)

// ErrClientGone is returned when sending to a closed or stalled client.
var ErrClientGone = errors.New("websocket client is gone")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// HandlerFunc handles one incoming message type. It runs on the client's
// read goroutine; long work should be started in its own goroutine.
type HandlerFunc func(client *Client, payload json.RawMessage)

// Hub tracks connected clients and routes their messages to handlers.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]bool
	handlers map[string]HandlerFunc
	logger   zerolog.Logger
}

// Client represents a WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	ip     string
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
	busy      bool
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		handlers: make(map[string]HandlerFunc),
		logger:   logger.With().Str("component", "websocket").Logger(),
	}
}

// Handle registers fn for messages of msgType.
func (h *Hub) Handle(msgType string, fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[msgType] = fn
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles WebSocket connection upgrade.
func (h *Hub) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ip:     c.RealIP(),
		ctx:    ctx,
		cancel: cancel,
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()

	return nil
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// dispatch routes a raw message from a client to its handler.
func (h *Hub) dispatch(c *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		_ = c.Send("error", map[string]string{"error": "invalid message"})
		return
	}

	h.mu.RLock()
	fn, ok := h.handlers[msg.Type]
	h.mu.RUnlock()
	if !ok {
		_ = c.Send("error", map[string]string{"error": "unknown message type " + msg.Type})
		return
	}
	fn(c, msg.Payload)
}

// IP returns the client's address as seen at upgrade time.
func (c *Client) IP() string {
	return c.ip
}

// Context is canceled when the connection closes.
func (c *Client) Context() context.Context {
	return c.ctx
}

// TryAcquire marks the client busy. It returns false when it already is.
func (c *Client) TryAcquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

// Release clears the busy mark set by TryAcquire.
func (c *Client) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
}

// Send queues a message for this client only. It never blocks: a client
// whose buffer is full is disconnected.
func (c *Client) Send(msgType string, payload any) error {
	data, err := json.Marshal(outgoingMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientGone
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.hub.logger.Warn().Str("type", msgType).Msg("client send buffer full, disconnecting")
		c.closeLocked()
		return ErrClientGone
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	c.closeOnce.Do(func() {
		c.closed = true
		c.cancel()
		close(c.send)
	})
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			break
		}
		c.hub.dispatch(c, message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
