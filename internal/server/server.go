package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/config"
)

const (
	// uploadBudget covers reading a full-size upload and any time a transcode
	// spends queued before a worker picks it up.
	uploadBudget = 15 * time.Second

	// responseMargin is kept between the request deadline and WriteTimeout,
	// so a handler that gives up still has time to write its error.
	responseMargin = 5 * time.Second
)

// Server wraps the HTTP server and its dependencies.
// In Go, you typically compose a struct with all the pieces your server needs,
// then wire them together in the constructor (New function).
type Server struct {
	cfg             *config.Config
	router          *gin.Engine
	logger          *zap.Logger
	http            *http.Server
	requestDeadline time.Duration
}

// Timeouts derives the HTTP write timeout and the per-request deadline from
// the transcoder budget. A transcode that is still queued or running when the
// request deadline passes is cancelled, so the response always goes out
// before the connection's write deadline.
func Timeouts(cfg *config.Config) (write, request time.Duration) {
	write = cfg.Transcoder.Timeout + uploadBudget + responseMargin
	return write, write - responseMargin
}

// New creates and configures a new Server.
func New(cfg *config.Config, deps Deps, logger *zap.Logger) *Server {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	writeTimeout, requestDeadline := Timeouts(cfg)

	router := gin.New()

	// Recovery middleware catches panics and returns 500 instead of crashing.
	router.Use(gin.Recovery())
	router.Use(withDeadline(requestDeadline))

	RegisterRoutes(router, cfg, deps, logger)

	return &Server{
		cfg:             cfg,
		router:          router,
		logger:          logger,
		requestDeadline: requestDeadline,
		http: &http.Server{
			Addr:              cfg.Server.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       uploadBudget,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// withDeadline bounds every request's context. Handlers pass it down to the
// transcoder, which gives up on queued and running work once it expires.
func withDeadline(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Start begins listening for HTTP requests. This blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.cfg.Server.Address()),
		zap.Duration("write_timeout", s.http.WriteTimeout),
		zap.Duration("request_deadline", s.requestDeadline),
	)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}

// Router returns the underlying Gin engine (useful for testing).
func (s *Server) Router() *gin.Engine {
	return s.router
}
