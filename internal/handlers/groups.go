package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/telemetry"
)

// GroupHandler manages group and membership endpoints.
type GroupHandler struct {
	groups directory.GroupDirectory
	audit  *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups directory.GroupDirectory, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{groups: groups, audit: audit}
}

// Create handles POST /groups. Member ids are stored verbatim, without
// an existence check.
func (h *GroupHandler) Create(c *gin.Context) {
	// Members is a pointer so a missing field is rejected while an
	// explicit empty list is still accepted.
	var req struct {
		GroupName string    `json:"groupName" binding:"required"`
		Members   *[]string `json:"members" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload", "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.Create(c.Request.Context(), req.GroupName, *req.Members)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error", "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	h.emitAudit(c, "INFO", "Group created", "")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Group created successfully",
		"groupId": group.GroupID,
	})
}

// AddMember handles POST /groups/:group_id/members.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID := c.Param("group_id")

	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload", "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.groups.AddMember(c.Request.Context(), groupID, req.UserID)
	if errors.Is(err, directory.ErrGroupNotFound) {
		h.emitAudit(c, "ERROR", "group not found", req.UserID)
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error", req.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add member"})
		return
	}

	h.emitAudit(c, "INFO", "User added to group", req.UserID)
	c.JSON(http.StatusOK, gin.H{
		"message": "User added to group successfully",
		"groupId": groupID,
		"userId":  req.UserID,
	})
}

// RemoveMember handles DELETE /groups/:group_id/members/:user_id. Every
// occurrence of the user id is removed from the member sequence.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID := c.Param("group_id")
	userID := c.Param("user_id")

	err := h.groups.RemoveMember(c.Request.Context(), groupID, userID)
	if errors.Is(err, directory.ErrGroupNotFound) {
		h.emitAudit(c, "ERROR", "group not found", userID)
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove member"})
		return
	}

	h.emitAudit(c, "INFO", "User removed from group", userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "User removed from group successfully",
		"groupId": groupID,
		"userId":  userID,
	})
}

// GetMembers handles GET /groups/:group_id/members.
func (h *GroupHandler) GetMembers(c *gin.Context) {
	groupID := c.Param("group_id")

	members, err := h.groups.GetMembers(c.Request.Context(), groupID)
	if errors.Is(err, directory.ErrGroupNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load members"})
		return
	}
	if members == nil {
		members = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"groupId": groupID,
		"members": members,
	})
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text, userID string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUser(userID))
}
