package sockets

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultSendBuffer   = 64
	writeWait           = 10 * time.Second
	maxMessageSize      = 512
)

var ErrClosed = errors.New("closed connection")

// Msg is the envelope of every message pushed to clients.
type Msg struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Hub fans messages out to every connected websocket client. Clients are
// receive-only, anything they send is discarded.
type Hub struct {
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	sendBuffer   int
	onError      func(error)
	onConnected  func(*Conn)
	logger       *zap.Logger

	mu      sync.RWMutex
	clients map[*Conn]struct{}
	closed  bool
}

type Conn struct {
	hub  *Hub
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func New(opts ...func(*Hub)) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: defaultPingInterval,
		sendBuffer:   defaultSendBuffer,
		logger:       zap.L(),
		clients:      make(map[*Conn]struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.error(err)
		return
	}
	c := &Conn{
		hub:  h,
		ws:   ws,
		send: make(chan []byte, h.sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = ws.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", zap.Int("clients", h.ClientCount()))

	go c.writePump()
	go c.readPump()

	if h.onConnected != nil {
		h.onConnected(c)
	}
}

// Broadcast marshals payload into a Msg and queues it for every client.
// Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(msgType string, payload any) error {
	body, err := json.Marshal(Msg{Type: msgType, Timestamp: time.Now().UTC(), Payload: payload})
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := make([]*Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.Send(body); err != nil {
			h.logger.Debug("dropping websocket client", zap.Error(err))
			h.unregister(c)
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Conn]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
	return nil
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Debug("websocket client disconnected", zap.Int("clients", h.ClientCount()))
	}
}

func (h *Hub) error(err error) {
	h.logger.Warn("websocket error", zap.Error(err))
	if h.onError != nil {
		h.onError(err)
	}
}

// Send queues body without blocking.
func (c *Conn) Send(body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- body:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Conn) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	pongWait := c.hub.pingInterval + writeWait
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.error(err)
			}
			return
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case body, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, body); err != nil {
				c.hub.error(err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
