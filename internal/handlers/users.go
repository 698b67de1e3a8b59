package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/telemetry"
)

// UserHandler manages user registration, deletion and blocking.
type UserHandler struct {
	users directory.UserDirectory
	audit *telemetry.AuditEmitter
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users directory.UserDirectory, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{users: users, audit: audit}
}

// Register handles POST /users.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload", "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error", "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		return
	}

	h.emitAudit(c, "INFO", "User registered", user.UserID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.UserID,
	})
}

// Delete handles DELETE /users/:user_id. Deleting an unknown id still
// reports success.
func (h *UserHandler) Delete(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		h.emitAudit(c, "ERROR", "internal error", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}

	h.emitAudit(c, "INFO", "User deleted", userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"userId":  userID,
	})
}

// Block handles POST /users/block.
func (h *UserHandler) Block(c *gin.Context) {
	var req struct {
		BlockerID string `json:"blockerId" binding:"required"`
		BlockedID string `json:"blockedId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload", "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.users.Block(c.Request.Context(), req.BlockerID, req.BlockedID)
	if errors.Is(err, directory.ErrUserNotFound) {
		h.emitAudit(c, "ERROR", "blocker not found", req.BlockerID)
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error", req.BlockerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not block user"})
		return
	}

	h.emitAudit(c, "INFO", "User blocked", req.BlockerID)
	c.JSON(http.StatusOK, gin.H{
		"message":   "User blocked successfully",
		"blockerId": req.BlockerID,
		"blockedId": req.BlockedID,
	})
}

func (h *UserHandler) emitAudit(c *gin.Context, level, text, userID string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUser(userID))
}
