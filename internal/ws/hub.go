package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tamaralmogy/message-app/internal/models"
	"github.com/tamaralmogy/message-app/internal/observability"
)

// Hub maintains active message-feed connections keyed by recipient.
type Hub struct {
	feeds    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		feeds:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection on a recipient's feed.
func (h *Hub) AddClient(userID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.feeds[userID]; !ok {
		h.feeds[userID] = make(map[*websocket.Conn]bool)
	}
	h.feeds[userID][conn] = true
	if _, ok := h.connInfo[userID]; !ok {
		h.connInfo[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[userID][conn] = info
}

// RemoveClient removes a feed connection.
func (h *Hub) RemoveClient(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.feeds[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.feeds, userID)
		}
	}
	if infos, ok := h.connInfo[userID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, userID)
		}
	}
}

// NotifyMessage pushes a stored copy to every connection on the
// recipient's feed. Delivery is best-effort: a write failure drops the
// connection without affecting the stored message.
func (h *Hub) NotifyMessage(userID string, msg models.Message) {
	h.mu.RLock()
	conns := h.feeds[userID]
	h.mu.RUnlock()

	event := models.MessageEvent{Type: "message", Message: &msg}
	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(userID, conn)
			h.publishWSError(userID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(userID string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(userID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "feed",
			"user_id":     userID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), feedRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("feed", "ws_error")
}

func (h *Hub) getConnInfo(userID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[userID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

const feedRoutingKey = "ws_events.feeds"
