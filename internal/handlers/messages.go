package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tamaralmogy/message-app/internal/delivery"
	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/messagestore"
	"github.com/tamaralmogy/message-app/internal/observability"
	"github.com/tamaralmogy/message-app/internal/telemetry"
	"github.com/tamaralmogy/message-app/internal/ws"
)

// MessageHandler manages send and retrieval endpoints.
type MessageHandler struct {
	sender   delivery.Sender
	messages messagestore.MessageStore
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(sender delivery.Sender, messages messagestore.MessageStore, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{sender: sender, messages: messages, hub: hub, audit: audit}
}

// SendDirect handles POST /messages.
func (h *MessageHandler) SendDirect(c *gin.Context) {
	var req struct {
		SenderID    string `json:"senderId" binding:"required"`
		RecipientID string `json:"recipientId" binding:"required"`
		Content     string `json:"content" binding:"required"`
		Timestamp   string `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload", "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.sender.SendDirect(c.Request.Context(), req.SenderID, req.RecipientID, req.Content, req.Timestamp)
	if errors.Is(err, delivery.ErrBlocked) {
		observability.IncSendBlocked()
		h.emitAudit(c, "ERROR", "sender blocked by recipient", req.SenderID)
		c.JSON(http.StatusForbidden, gin.H{"error": "You are blocked from sending messages to this user."})
		return
	}
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error", req.SenderID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	observability.AddMessagesDelivered("direct", 1)
	if h.hub != nil {
		h.hub.NotifyMessage(msg.RecipientID, msg)
	}
	h.emitAudit(c, "INFO", "Message sent", req.SenderID)
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Message sent successfully",
		"messageId": msg.MessageID,
	})
}

// SendGroup handles POST /groups/:group_id/messages. One copy is stored
// per member, all sharing a single message id.
func (h *MessageHandler) SendGroup(c *gin.Context) {
	groupID := c.Param("group_id")

	var req struct {
		SenderID  string `json:"senderId" binding:"required"`
		Content   string `json:"content" binding:"required"`
		Timestamp string `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload", "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	copies, err := h.sender.SendGroup(c.Request.Context(), req.SenderID, groupID, req.Content, req.Timestamp)
	if errors.Is(err, directory.ErrGroupNotFound) {
		h.emitAudit(c, "ERROR", "group not found", req.SenderID)
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	if errors.Is(err, delivery.ErrEmptyGroup) {
		h.emitAudit(c, "ERROR", "group has no members", req.SenderID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "group has no members"})
		return
	}
	if err != nil {
		// copies written before the failure stay in the store; the
		// caller sees a single failure either way.
		h.emitAudit(c, "ERROR", "internal error", req.SenderID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send group message"})
		return
	}

	observability.AddMessagesDelivered("group", len(copies))
	observability.ObserveGroupFanout(len(copies))
	if h.hub != nil {
		for _, msg := range copies {
			h.hub.NotifyMessage(msg.RecipientID, msg)
		}
	}
	h.emitAudit(c, "INFO", "Group message sent", req.SenderID)
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Message sent to group successfully",
		"messageId": copies[0].MessageID,
	})
}

// List handles GET /messages/:user_id.
func (h *MessageHandler) List(c *gin.Context) {
	userID := c.Param("user_id")

	msgs, err := h.messages.ListForRecipient(c.Request.Context(), userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if len(msgs) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No messages found for this user."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text, userID string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUser(userID))
}
