// Package service ties the conversion core to the rest of the application.
// StickerService runs conversions and quote renders and records each call:
//
//	Journal: one row per call in SQLite (never read back as a cache)
//	Metrics: Prometheus counters and histograms
//	Logging: one structured completion or failure line
//
// The media and quote packages stay free of persistence; everything
// stateful lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/metrics"
	"github.com/fleveque/sticker-service/internal/model"
	"github.com/fleveque/sticker-service/internal/quote"
	"github.com/fleveque/sticker-service/internal/storage"
)

// ErrInvalidQuote is returned for quote requests that can't be rendered.
var ErrInvalidQuote = errors.New("invalid quote request")

// StickerService is the application entry point for both pipelines.
type StickerService struct {
	converter *media.Converter
	renderer  *quote.Renderer
	journal   storage.ConversionRepository // nil disables journaling
	metrics   *metrics.Metrics             // nil disables metrics
	logger    *zap.Logger
}

// NewStickerService wires the service. journal and m may be nil, which the
// CLI uses to run conversions without a database or metrics registry.
func NewStickerService(
	converter *media.Converter,
	renderer *quote.Renderer,
	journal storage.ConversionRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *StickerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StickerService{
		converter: converter,
		renderer:  renderer,
		journal:   journal,
		metrics:   m,
		logger:    logger,
	}
}

// Capabilities reports which optional features this instance supports.
func (s *StickerService) Capabilities() media.Capabilities {
	return s.converter.Capabilities()
}

// Convert turns an uploaded asset into a sticker.
func (s *StickerService) Convert(ctx context.Context, asset model.MediaAsset, opts media.ConvertOptions) (*media.Result, error) {
	start := time.Now()
	res, err := s.converter.Convert(ctx, asset, opts)

	entry := &model.Conversion{
		Operation:  model.OperationSticker,
		InputBytes: int64(len(asset.Data)),
	}
	if res != nil {
		entry.SourceKind = string(res.Kind)
		entry.Container = string(res.Container)
		entry.OutputBytes = int64(len(res.Data))
	} else if kind, cerr := media.Classify(asset.MimeType, asset.Filename); cerr == nil {
		entry.SourceKind = string(kind)
	}
	s.record(ctx, entry, start, err,
		zap.String("mime", asset.MimeType),
		zap.String("filename", asset.Filename),
		zap.Bool("static", opts.Static),
	)

	if err != nil {
		return nil, err
	}
	return res, nil
}

// Quote renders a quote card and encodes it as a static sticker.
func (s *StickerService) Quote(ctx context.Context, req model.QuoteRequest) (*model.StickerOutput, error) {
	start := time.Now()
	out, err := s.renderQuote(req)

	entry := &model.Conversion{
		Operation:  model.OperationQuote,
		SourceKind: "quote",
		InputBytes: int64(len(req.Text)),
	}
	if out != nil {
		entry.Container = string(out.Container)
		entry.OutputBytes = int64(len(out.Data))
	}
	s.record(ctx, entry, start, err,
		zap.String("theme", string(req.Theme)),
		zap.Bool("avatar", req.AvatarImage != nil),
	)

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StickerService) renderQuote(req model.QuoteRequest) (*model.StickerOutput, error) {
	if req.Text == "" && req.AuthorName == "" {
		return nil, fmt.Errorf("%w: text or author name is required", ErrInvalidQuote)
	}
	if req.CanvasSize <= 0 {
		req.CanvasSize = s.converter.Side()
	}

	canvas, _, err := s.renderer.Render(req)
	if err != nil {
		return nil, fmt.Errorf("rendering quote: %w", err)
	}
	return s.converter.EncodeStatic(canvas)
}

// record finishes a journal entry and reports it to metrics and the log.
// A journal write failure never fails the call that produced the sticker.
func (s *StickerService) record(ctx context.Context, entry *model.Conversion, start time.Time, err error, fields ...zap.Field) {
	elapsed := time.Since(start)
	entry.ID = uuid.NewString()
	entry.DurationMs = elapsed.Milliseconds()
	entry.Status = model.StatusSucceeded
	if err != nil {
		entry.Status = model.StatusFailed
		msg := err.Error()
		entry.ErrorMessage = &msg
	}

	fields = append(fields,
		zap.String("id", entry.ID),
		zap.String("operation", string(entry.Operation)),
		zap.String("kind", entry.SourceKind),
		zap.Int64("input_bytes", entry.InputBytes),
		zap.Duration("elapsed", elapsed),
	)
	if err != nil {
		s.logger.Warn("conversion failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Info("conversion done", append(fields,
			zap.String("container", entry.Container),
			zap.Int64("output_bytes", entry.OutputBytes),
		)...)
	}

	if s.metrics != nil {
		s.metrics.RecordConversion(string(entry.Operation), entry.SourceKind, string(entry.Status),
			entry.Container, int(entry.OutputBytes), elapsed)
	}

	if s.journal != nil {
		// The request may already be cancelled; the journal row should still land.
		if jerr := s.journal.Create(context.WithoutCancel(ctx), entry); jerr != nil {
			s.logger.Error("writing conversion journal", zap.String("id", entry.ID), zap.Error(jerr))
		}
	}
}

// Stats summarizes the conversion journal.
type Stats struct {
	Total     int64              `json:"total"`
	Succeeded int64              `json:"succeeded"`
	Failed    int64              `json:"failed"`
	ByKind    map[string]int64   `json:"by_kind"`
	Recent    []model.Conversion `json:"recent"`
}

// ErrJournalDisabled is returned by Stats when no journal is configured.
var ErrJournalDisabled = errors.New("conversion journal disabled")

// Stats returns journal counters and the most recent entries.
func (s *StickerService) Stats(ctx context.Context, recent int) (*Stats, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}

	total, err := s.journal.Count(ctx)
	if err != nil {
		return nil, err
	}
	succeeded, err := s.journal.CountByStatus(ctx, model.StatusSucceeded)
	if err != nil {
		return nil, err
	}
	failed, err := s.journal.CountByStatus(ctx, model.StatusFailed)
	if err != nil {
		return nil, err
	}
	byKind, err := s.journal.CountByKind(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.journal.ListRecent(ctx, recent)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Total:     total,
		Succeeded: succeeded,
		Failed:    failed,
		ByKind:    byKind,
		Recent:    list,
	}, nil
}
