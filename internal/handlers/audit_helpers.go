package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tamaralmogy/message-app/internal/middleware"
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(middleware.RequestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(middleware.RequestIDContextKey, requestID)
	return requestID
}

// auditUser wraps a user id for the audit envelope; empty ids map to nil.
func auditUser(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
