package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/tamaralmogy/message-app/internal/observability"
)

// FeedHandler upgrades message-feed websocket connections.
type FeedHandler struct {
	hub *Hub
}

// NewFeedHandler constructs a FeedHandler.
func NewFeedHandler(hub *Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client on the
// recipient's feed. The connection stays open until the peer closes it;
// inbound frames are drained and discarded.
func (h *FeedHandler) Handle(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx, span := otel.Tracer("message-app/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(userID, conn, info)

	observability.IncWSActive("feed")
	observability.IncWSEvent("feed", "ws_connect")
	publishFeedEvent(ctx, "ws_connect", info, "")

	// keep connection alive and clean up on close
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(userID, conn)
			observability.DecWSActive("feed")
			observability.IncWSEvent("feed", "ws_disconnect")
			publishFeedEvent(ctx, "ws_disconnect", info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("feed", "ws_error")
					publishFeedEvent(ctx, "ws_error", info, closeReason)
				}
				return
			}
		}
	}()
}

func publishFeedEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "feed",
			"user_id":     info.UserID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	_ = observability.PublishEvent(ctx, feedRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
