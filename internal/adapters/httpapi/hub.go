package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensorice/internal/ports"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Hub fans pest alerts out to live websocket clients.
// This implements the ports.AlertNotifier interface
type Hub struct {
	upgrader websocket.Upgrader
	metrics  *Metrics

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// liveMessage is the frame pushed to clients.
type liveMessage struct {
	Type  string          `json:"type"`
	Alert ports.PestAlert `json:"alert"`
}

// NewHub creates a hub accepting browser connections from allowOrigins,
// the same list the router's CORS policy uses. metrics may be nil
func NewHub(metrics *Metrics, allowOrigins []string) *Hub {
	origins := originsOrDefault(allowOrigins)
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(origins, r.Header.Get("Origin"))
			},
		},
		metrics: metrics,
		clients: make(map[*wsClient]struct{}),
	}
}

// originAllowed accepts requests without an Origin header (non-browser
// clients) and browser origins on the list.
func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and keeps the client until it disconnects
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(client)
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("live client connected")

	go h.writePump(client)
	h.readPump(client)
}

// NotifyPestRisk broadcasts the alert to every client
func (h *Hub) NotifyPestRisk(ctx context.Context, alert ports.PestAlert) error {
	msg, err := json.Marshal(liveMessage{Type: "pest_alert", Alert: alert})
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	if h.metrics != nil {
		h.metrics.alerts.Inc()
	}
	return nil
}

// Broadcast queues msg for every client; clients that can't keep up are dropped
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	var slow []*wsClient
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("dropping slow live client")
		h.remove(c)
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c)
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.wsClients.Set(float64(n))
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.once.Do(func() { close(c.send) })
	if h.metrics != nil {
		h.metrics.wsClients.Set(float64(n))
	}
}

// readPump discards client frames; it only exists to notice disconnects and pongs.
func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
