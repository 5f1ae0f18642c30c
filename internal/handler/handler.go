// Package handler contains HTTP request handlers.
// In Gin, a handler is any function with signature func(*gin.Context).
// No need for controller classes — just functions grouped by file.
package handler

import (
	"context"

	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/model"
	"github.com/fleveque/sticker-service/internal/service"
)

// StickerService is what the handlers need from the service layer.
// *service.StickerService satisfies it; tests use a fake.
type StickerService interface {
	Convert(ctx context.Context, asset model.MediaAsset, opts media.ConvertOptions) (*media.Result, error)
	Quote(ctx context.Context, req model.QuoteRequest) (*model.StickerOutput, error)
	Capabilities() media.Capabilities
	Stats(ctx context.Context, recent int) (*service.Stats, error)
}

var _ StickerService = (*service.StickerService)(nil)
