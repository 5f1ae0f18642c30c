package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/service"
)

// errorStatus maps a conversion error to an HTTP status and a stable code
// clients can switch on.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, media.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, media.ErrVectorRenderingDisabled):
		return http.StatusServiceUnavailable, "vector_rendering_disabled"
	case errors.Is(err, media.ErrVideoDecodingDisabled):
		return http.StatusServiceUnavailable, "video_decoding_disabled"
	case errors.Is(err, media.ErrMissingTranscoder):
		return http.StatusServiceUnavailable, "missing_transcoder"
	case errors.Is(err, media.ErrDecodeFailure):
		return http.StatusUnprocessableEntity, "decode_failure"
	case errors.Is(err, media.ErrTranscodeFailure):
		return http.StatusBadGateway, "transcode_failure"
	case errors.Is(err, service.ErrInvalidQuote):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, service.ErrJournalDisabled):
		return http.StatusServiceUnavailable, "journal_disabled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// abortWithError writes the error response. Internal errors don't leak
// their message to the client.
func abortWithError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":   code,
		"message": msg,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": msg,
	})
}
