package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/tether/internal/logging"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Message is pushed to every connected browser.
type Message struct {
	Type     string `json:"type"`
	Revision uint64 `json:"revision"`
	HTML     string `json:"html,omitempty"`
	Error    string `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// hub fans messages out to connected clients.
type hub struct {
	logger logging.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func newHub(logger logging.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[string]*client),
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug(context.Background(), "client connected", "client", c.id, "clients", n)
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug(context.Background(), "client disconnected", "client", c.id, "clients", n)
}

// broadcast queues msg for every client. Clients whose queue is full are
// dropped.
func (h *hub) broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(context.Background(), err, "cannot encode message")
		return
	}

	var slow []*client
	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.unregister(c)
		c.conn.Close(websocket.StatusPolicyViolation, "client too slow")
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// serve registers conn before first is rendered, so no broadcast between
// the two is lost.
func (h *hub) serve(ctx context.Context, conn *websocket.Conn, first func() ([]byte, error)) {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 16),
	}
	conn.SetReadLimit(maxMessageSize)
	h.register(c)
	payload, err := first()
	if err != nil {
		h.unregister(c)
		return
	}
	select {
	case c.send <- payload:
	default:
	}

	go h.writePump(ctx, c)
	h.readPump(ctx, c)
}

// readPump drains the connection until it closes. Browsers never send
// anything meaningful; writes go through the HTTP API.
func (h *hub) readPump(ctx context.Context, c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway &&
				!errors.Is(err, context.Canceled) {
				h.logger.Debug(ctx, "websocket read ended", "client", c.id, "error", err.Error())
			}
			return
		}
	}
}

func (h *hub) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// originAllowed accepts same-host origins and the loopback names on the
// server port.
func originAllowed(r *http.Request, port int) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	for _, host := range []string{"localhost", "127.0.0.1"} {
		if u.Host == fmt.Sprintf("%s:%d", host, port) {
			return true
		}
	}
	return false
}
