package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultRecent = 20
	maxRecent     = 200
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	svc    StickerService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc StickerService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// Stats returns conversion journal counters and the latest entries.
// Route: GET /api/v1/admin/stats?recent=20
func (h *AdminHandler) Stats(c *gin.Context) {
	recent := defaultRecent
	if s := c.Query("recent"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			badRequest(c, "recent must be a non-negative integer")
			return
		}
		recent = min(n, maxRecent)
	}

	stats, err := h.svc.Stats(c.Request.Context(), recent)
	if err != nil {
		h.logger.Error("reading conversion stats", zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
