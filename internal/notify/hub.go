// Package notify carries the post-commit "schedule changed" signal from the
// booking engine to connected clients. The signal is opaque: subscribers
// only learn that some doctor's calendar changed and are expected to
// re-fetch what they care about.
package notify

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Notifier is what the services see. Implementations must be safe to call
// after a transaction commits, from any goroutine.
type Notifier interface {
	ScheduleChanged()
}

const scheduleChangedMessage = "schedule_update"

// Hub fans the schedule-changed signal out to every connected WebSocket
// client. All operations are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

type client struct {
	send chan string
	conn *websocket.Conn
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			// The signal carries no payload, so cross-origin reads are harmless.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ScheduleChanged broadcasts the opaque signal to every client. Slow clients
// are dropped rather than blocking the caller.
func (h *Hub) ScheduleChanged() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- scheduleChangedMessage:
		default:
			h.logger.Warn("dropping slow schedule subscriber")
			go h.remove(c)
		}
	}
}

// Handler upgrades the request and serves the client until it disconnects.
func (h *Hub) Handler(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{send: make(chan string, 8), conn: conn}
	h.add(cl)
	h.logger.Debug("schedule subscriber connected")

	go cl.writeLoop()
	cl.readLoop() // blocks until the peer goes away
	h.remove(cl)
	h.logger.Debug("schedule subscriber disconnected")
	return nil
}

// ClientCount reports the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl] = struct{}{}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, cl)
	h.mu.Unlock()

	close(cl.send)
	cl.conn.Close()
}

func (cl *client) writeLoop() {
	for msg := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return
		}
	}
}

func (cl *client) readLoop() {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
