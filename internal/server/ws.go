package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/shakehands/internal/logging"
	"github.com/ayusman/shakehands/internal/server/api"
	"github.com/ayusman/shakehands/internal/volume"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Event types sent over /api/volume/ws.
const (
	EventState    = "state"
	EventDecision = "decision"
)

// VolumeEvent is one websocket message.
type VolumeEvent struct {
	Type     string             `json:"type"`
	Volume   api.VolumeResponse `json:"volume"`
	Decision *volume.Decision   `json:"decision,omitempty"`
	Time     int64              `json:"timestamp"`
}

// Hub pushes volume decisions to websocket clients.
type Hub struct {
	svc     api.VolumeService
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a Hub. svc supplies the state sent to new clients and may
// be nil.
func NewHub(svc api.VolumeService) *Hub {
	return &Hub{
		svc:     svc,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	if h.svc != nil {
		ev := VolumeEvent{
			Type:   EventState,
			Volume: api.NewVolumeResponse(h.svc.State(), h.svc.AppliedVolume(), h.svc.IsEnabled()),
			Time:   time.Now().UnixMilli(),
		}
		if err := writeEvent(conn, ev); err != nil {
			h.mu.Unlock()
			return
		}
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish broadcasts a decision to every client. Clients that cannot be
// written to are dropped.
func (h *Hub) Publish(d volume.Decision) {
	applied, enabled := d.Volume, true
	if h.svc != nil {
		applied, enabled = h.svc.AppliedVolume(), h.svc.IsEnabled()
	}
	ev := VolumeEvent{
		Type:     EventDecision,
		Volume:   api.NewVolumeResponse(d.State, applied, enabled),
		Decision: &d,
		Time:     time.Now().UnixMilli(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := writeEvent(conn, ev); err != nil {
			logging.Debugf("dropping websocket client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func writeEvent(conn *websocket.Conn, ev VolumeEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
