package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/config"
	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/metrics"
	"github.com/fleveque/sticker-service/internal/model"
	"github.com/fleveque/sticker-service/internal/service"
)

type stubService struct{}

func (stubService) Convert(context.Context, model.MediaAsset, media.ConvertOptions) (*media.Result, error) {
	return nil, media.ErrUnsupportedFormat
}

func (stubService) Quote(context.Context, model.QuoteRequest) (*model.StickerOutput, error) {
	return &model.StickerOutput{Data: []byte("webp"), Container: model.ContainerStaticImage}, nil
}

func (stubService) Capabilities() media.Capabilities { return media.Capabilities{VectorRendering: true} }

func (stubService) Stats(context.Context, int) (*service.Stats, error) {
	return &service.Stats{Total: 1}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Auth:       config.AuthConfig{AdminKeys: []string{"admin-secret"}},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit:  config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		Log:        config.LogConfig{Level: "info"},
		Sticker:    config.StickerConfig{CanvasSize: 512, Quality: 95, MaxUploadMB: 1},
		Transcoder: config.TranscoderConfig{Timeout: time.Minute, Workers: 1},
		Quote:      config.QuoteConfig{Theme: "dark"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(testConfig(), Deps{
		Service:  stubService{},
		Metrics:  metrics.New("sticker_test", reg),
		Registry: reg,
	}, zap.NewNop())
}

func do(s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestRoutes_Healthz(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/healthz", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"vector_rendering":true`)
}

func TestRoutes_QuoteIsOpenWithoutAPIKeys(t *testing.T) {
	w := do(newTestServer(t), http.MethodPost, "/api/v1/quotes", `{"text":"hi"}`,
		map[string]string{"Content-Type": "application/json"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/webp", w.Header().Get("Content-Type"))
}

func TestRoutes_AdminRequiresKey(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(s, http.MethodGet, "/api/v1/admin/stats", "", map[string]string{"X-API-Key": "admin-secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_MetricsExposeRequests(t *testing.T) {
	s := newTestServer(t)
	do(s, http.MethodPost, "/api/v1/quotes", `{"text":"hi"}`, map[string]string{"Content-Type": "application/json"})

	w := do(s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sticker_test_http_requests_total")
	assert.Contains(t, w.Body.String(), `path="/api/v1/quotes"`)
}

func TestRoutes_UnknownStickerRoute(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/api/v1/stickers", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_PreflightForPostEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/quotes", "/api/v1/stickers", "/api/v1/admin/stats"} {
		t.Run(path, func(t *testing.T) {
			w := do(s, http.MethodOptions, path, "", map[string]string{
				"Origin":                         "http://localhost:3000",
				"Access-Control-Request-Method":  "POST",
				"Access-Control-Request-Headers": "Content-Type",
			})

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		})
	}
}

func TestRoutes_PreflightFromUnknownOrigin(t *testing.T) {
	w := do(newTestServer(t), http.MethodOptions, "/api/v1/quotes", "", map[string]string{
		"Origin": "https://evil.example",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTimeouts(t *testing.T) {
	cfg := testConfig()
	cfg.Transcoder.Timeout = 30 * time.Second

	write, request := Timeouts(cfg)
	assert.Greater(t, request, cfg.Transcoder.Timeout)
	assert.Less(t, request, write)

	s := New(cfg, Deps{Service: stubService{}}, zap.NewNop())
	assert.Equal(t, write, s.http.WriteTimeout)
}

func TestRequestsCarryDeadline(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, Deps{Service: stubService{}}, zap.NewNop())
	_, request := Timeouts(cfg)

	var (
		deadline time.Time
		ok       bool
	)
	s.Router().GET("/deadline", func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	start := time.Now()
	w := do(s, http.MethodGet, "/deadline", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, ok, "request context has no deadline")
	assert.WithinDuration(t, start.Add(request), deadline, time.Second)
}

func TestWithDeadline_CancelsSlowHandlers(t *testing.T) {
	r := gin.New()
	r.Use(withDeadline(50 * time.Millisecond))

	var ctxErr error
	r.GET("/slow", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			ctxErr = c.Request.Context().Err()
		case <-time.After(5 * time.Second):
		}
		c.Status(http.StatusGatewayTimeout)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.True(t, errors.Is(ctxErr, context.DeadlineExceeded))
}
