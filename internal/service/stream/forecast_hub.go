package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"PatientPulse/internal/domain/models"
	domrepo "PatientPulse/internal/domain/repository"
	"PatientPulse/internal/repository"
	applogger "PatientPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Hub pushes every published forecast to connected dashboard websockets.
// New clients receive the latest forecast on connect.
type Hub struct {
	pingInterval time.Duration
	sendBuffer   int
	upgrader     websocket.Upgrader
	log          *applogger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(pingInterval time.Duration, sendBuffer int, log *applogger.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	if log == nil {
		log = applogger.NewNop()
	}
	return &Hub{
		pingInterval: pingInterval,
		sendBuffer:   sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Publish broadcasts f. Clients whose buffer is full miss the frame.
func (h *Hub) Publish(_ context.Context, f models.Forecast) error {
	b, err := json.Marshal(repository.NewForecastEvent(f))
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.last = b
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.log.Warn("forecast stream client lagging, frame dropped")
		}
	}
	return nil
}

// Clients is the number of connected websockets.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams forecasts until the peer leaves.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	cl := &client{conn: conn, send: make(chan []byte, h.sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	h.clients[cl] = struct{}{}
	if h.last != nil {
		cl.send <- h.last
	}
	h.mu.Unlock()
	h.log.Debug("forecast stream client connected", applogger.String("remote", c.RealIP()))

	go h.writePump(cl)
	h.readPump(cl)
	return nil
}

// readPump only tracks liveness; client frames are discarded.
func (h *Hub) readPump(cl *client) {
	defer h.remove(cl)
	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case b, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// Close disconnects every client. Later publishes are ignored.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
	return nil
}

var _ domrepo.ForecastPublisher = (*Hub)(nil)
