package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	svc StickerService
}

// NewHealthHandler creates a new HealthHandler.
// In Go, constructors are just regular functions prefixed with "New".
func NewHealthHandler(svc StickerService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Healthz responds with service status and the optional features this
// instance can serve, so a caller knows up front whether video works.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"service":      "sticker-service",
		"capabilities": h.svc.Capabilities(),
	})
}
