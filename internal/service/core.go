package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/config"
	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/quote"
	"github.com/fleveque/sticker-service/internal/storage"
)

// Core is the stateless conversion pipeline built from configuration. The
// server and the CLI share it.
type Core struct {
	Capabilities media.Capabilities
	Converter    *media.Converter
	Renderer     *quote.Renderer
	Transcoder   *media.Transcoder
	Scratch      *storage.Scratch
}

// BuildCore wires the media and quote packages from cfg. Call Close when done
// so the transcoder pool drains.
func BuildCore(cfg *config.Config, logger *zap.Logger) (*Core, error) {
	scratch, err := storage.NewScratch(cfg.Storage.ScratchDir)
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	caps := media.DetectCapabilities(cfg.Capabilities.Vector, cfg.Capabilities.Video, cfg.Transcoder.FFmpegBin)
	if !caps.HasTranscoder() {
		logger.Warn("ffmpeg not found: animated stickers and video input are unavailable",
			zap.String("configured", cfg.Transcoder.FFmpegBin))
	} else {
		logger.Info("transcoder located", zap.String("path", caps.TranscoderPath))
	}

	side := cfg.Sticker.CanvasSize
	transcoder := media.NewTranscoder(caps.TranscoderPath, scratch, media.TranscoderOptions{
		Params: media.TranscodeParams{
			MaxSeconds: cfg.Transcoder.MaxSeconds,
			MaxSide:    cfg.Transcoder.MaxSide,
			FPS:        cfg.Transcoder.FPS,
			Bitrate:    cfg.Transcoder.Bitrate,
		},
		Timeout: cfg.Transcoder.Timeout,
		Workers: cfg.Transcoder.Workers,
	}, logger)

	extractor := media.NewExtractor(caps, scratch, cfg.Transcoder.Timeout, logger)
	extractor.SetMaxPixels(cfg.Sticker.MaxPixels)

	converter := media.NewConverter(side, caps, extractor,
		media.NewStaticEncoder(cfg.Sticker.Quality),
		transcoder, logger)

	fonts, err := quote.LoadFonts(cfg.Quote.FontPath, cfg.Quote.BoldFontPath, logger)
	if err != nil {
		transcoder.Close()
		return nil, fmt.Errorf("loading quote fonts: %w", err)
	}

	return &Core{
		Capabilities: caps,
		Converter:    converter,
		Renderer:     quote.NewRenderer(fonts, side, logger),
		Transcoder:   transcoder,
		Scratch:      scratch,
	}, nil
}

// Close waits for in-flight transcodes to finish.
func (c *Core) Close() {
	c.Transcoder.Close()
}
