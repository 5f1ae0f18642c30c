package handler

import (
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/model"
)

// QuoteHandler renders quote cards.
type QuoteHandler struct {
	svc          StickerService
	defaultTheme model.Theme
	maxBody      int64
	logger       *zap.Logger
}

// NewQuoteHandler creates a QuoteHandler. defaultTheme applies when the
// request doesn't name one.
func NewQuoteHandler(svc StickerService, defaultTheme model.Theme, maxBody int64, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{svc: svc, defaultTheme: defaultTheme, maxBody: maxBody, logger: logger}
}

// quoteBody is the JSON request. Images are base64, optionally as data URLs.
type quoteBody struct {
	Text       string `json:"text"`
	AuthorName string `json:"author_name"`
	Avatar     string `json:"avatar"`
	Badge      string `json:"badge"`
	Theme      string `json:"theme"`
	Background string `json:"background"` // "#rrggbb"
	TextColor  string `json:"text_color"`
	HideAvatar bool   `json:"hide_avatar"`
}

// Create renders a quote card.
// Route: POST /api/v1/quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	var body quoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}

	req, err := h.toRequest(body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := h.svc.Quote(c.Request.Context(), req)
	if err != nil {
		h.logger.Info("quote rejected", zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="quote.webp"`)
	c.Data(http.StatusOK, out.Container.ContentType(), out.Data)
}

func (h *QuoteHandler) toRequest(b quoteBody) (model.QuoteRequest, error) {
	req := model.QuoteRequest{
		Text:       b.Text,
		AuthorName: strings.TrimSpace(b.AuthorName),
		Theme:      h.defaultTheme,
		HideAvatar: b.HideAvatar,
	}
	if b.Theme != "" {
		req.Theme = model.ParseTheme(b.Theme)
	}

	if b.Background != "" {
		bg, err := model.ParseRGB(b.Background)
		if err != nil {
			return req, fmt.Errorf("background: %w", err)
		}
		req.BackgroundColorOverride = &bg
	}
	if b.TextColor != "" {
		fg, err := model.ParseRGB(b.TextColor)
		if err != nil {
			return req, fmt.Errorf("text_color: %w", err)
		}
		req.TextColorOverride = &fg
	}

	var err error
	if req.AvatarImage, err = decodeInlineImage(b.Avatar); err != nil {
		return req, fmt.Errorf("avatar: %w", err)
	}
	if req.BadgeImage, err = decodeInlineImage(b.Badge); err != nil {
		return req, fmt.Errorf("badge: %w", err)
	}
	return req, nil
}

// decodeInlineImage accepts raw base64 or a data URL. Empty input means no image.
func decodeInlineImage(s string) (image.Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		s = s[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	img, err := media.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return img, nil
}
