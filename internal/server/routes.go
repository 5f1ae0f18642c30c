// Package server configures the HTTP server and routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/config"
	"github.com/fleveque/sticker-service/internal/handler"
	"github.com/fleveque/sticker-service/internal/metrics"
	"github.com/fleveque/sticker-service/internal/middleware"
	"github.com/fleveque/sticker-service/internal/model"
)

// Deps holds everything the routes need. Built once in main.
type Deps struct {
	Service handler.StickerService
	Metrics *metrics.Metrics
	// Registry backs /metrics. Nil skips the endpoint.
	Registry *prometheus.Registry
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
// In Go, we pass dependencies explicitly — no DI container, no magic.
// Each handler gets exactly the dependencies it needs.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.Service)
	stickerHandler := handler.NewStickerHandler(deps.Service, cfg.Sticker.MaxUploadBytes(), logger)
	quoteHandler := handler.NewQuoteHandler(deps.Service, model.ParseTheme(cfg.Quote.Theme), cfg.Sticker.MaxUploadBytes(), logger)
	adminHandler := handler.NewAdminHandler(deps.Service, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)
	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		api.Use(middleware.Metrics(deps.Metrics))
	}
	// Group middleware only runs for matched routes. Without this, browser
	// preflights for the POST endpoints would 404 before CORS sees them.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// Authenticated API endpoints
	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/stickers", stickerHandler.Create)
		authed.POST("/quotes", quoteHandler.Create)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
	}
}
