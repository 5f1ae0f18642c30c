package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/model"
)

// StickerHandler converts uploaded media into stickers.
type StickerHandler struct {
	svc       StickerService
	maxUpload int64
	logger    *zap.Logger
}

// NewStickerHandler creates a StickerHandler. maxUpload caps the request body in bytes.
func NewStickerHandler(svc StickerService, maxUpload int64, logger *zap.Logger) *StickerHandler {
	return &StickerHandler{svc: svc, maxUpload: maxUpload, logger: logger}
}

// Create converts the uploaded file.
// Route: POST /api/v1/stickers (multipart/form-data)
//
//	file    the media (required)
//	mime    overrides the part's Content-Type (optional)
//	static  "true" forces a still WebP for GIF and video input (optional)
//
// The response body is the sticker itself: image/webp or video/webm.
func (h *StickerHandler) Create(c *gin.Context) {
	// http.MaxBytesReader stops reading past the limit instead of buffering
	// an arbitrarily large upload.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "too_large",
				"message": fmt.Sprintf("upload exceeds %d bytes", h.maxUpload),
			})
			return
		}
		badRequest(c, "multipart field \"file\" is required")
		return
	}

	static := false
	if s := c.PostForm("static"); s != "" {
		static, err = strconv.ParseBool(s)
		if err != nil {
			badRequest(c, "static must be a boolean")
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, err)
		return
	}

	mimeType := c.PostForm("mime")
	if mimeType == "" {
		mimeType = fh.Header.Get("Content-Type")
	}

	res, err := h.svc.Convert(c.Request.Context(), model.MediaAsset{
		Data:     data,
		MimeType: mimeType,
		Filename: fh.Filename,
	}, media.ConvertOptions{Static: static})
	if err != nil {
		h.logger.Info("sticker conversion rejected",
			zap.String("filename", fh.Filename),
			zap.Error(err),
		)
		abortWithError(c, err)
		return
	}

	c.Header("X-Sticker-Kind", string(res.Kind))
	c.Header("X-Sticker-Animated", strconv.FormatBool(res.IsAnimated))
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="sticker%s"`, res.Container.Extension()))
	c.Data(http.StatusOK, res.Container.ContentType(), res.Data)
}

// isTooLarge reports whether err came from the MaxBytesReader limit. Some
// multipart paths flatten the error, so the message is checked as well.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
