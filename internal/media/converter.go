package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/model"
)

// ConvertOptions tweaks a single conversion.
type ConvertOptions struct {
	// Static forces the still path for GIF and video input: the first frame
	// becomes a WebP instead of a WebM.
	Static bool
}

// Result is a finished sticker plus what the classifier decided about it.
type Result struct {
	*model.StickerOutput
	Kind model.MediaKind
}

// Converter is the conversion entry point: bytes and metadata in, one
// finished sticker or a typed error out. It holds no per-call state and is
// safe for concurrent use.
type Converter struct {
	side       int
	caps       Capabilities
	extractor  *Extractor
	encoder    *StaticEncoder
	transcoder *Transcoder
	logger     *zap.Logger
}

// NewConverter wires the pipeline stages together. transcoder may be nil, in
// which case animated output fails with ErrMissingTranscoder.
func NewConverter(side int, caps Capabilities, extractor *Extractor, encoder *StaticEncoder, transcoder *Transcoder, logger *zap.Logger) *Converter {
	if side <= 0 {
		side = DefaultCanvasSide
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		side:       side,
		caps:       caps,
		extractor:  extractor,
		encoder:    encoder,
		transcoder: transcoder,
		logger:     logger.Named("converter"),
	}
}

// Side returns the canvas side every output is fitted to.
func (c *Converter) Side() int { return c.side }

// Capabilities returns the feature flags the converter was built with.
func (c *Converter) Capabilities() Capabilities { return c.caps }

// Convert classifies the asset and routes it: video and GIF go straight to
// the transcoder, everything else is extracted, fitted and encoded as WebP.
func (c *Converter) Convert(ctx context.Context, asset model.MediaAsset, opts ConvertOptions) (*Result, error) {
	if len(asset.Data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailure)
	}

	kind, mimeType, err := c.classify(asset)
	if err != nil {
		return nil, err
	}

	log := c.logger.With(
		zap.String("kind", string(kind)),
		zap.String("mime", mimeType),
		zap.Bool("static", opts.Static),
	)

	if kind.IsMotion() && !opts.Static {
		log.Debug("routing to transcoder")
		out, err := c.animated(ctx, asset, mimeType)
		if err != nil {
			return nil, err
		}
		return &Result{StickerOutput: out, Kind: kind}, nil
	}

	log.Debug("routing to static encoder")
	frame, err := c.extractor.Extract(ctx, asset.Data, kind, extOf(asset.Filename), c.side)
	if err != nil {
		return nil, err
	}
	out, err := c.EncodeStatic(Fit(frame, c.side))
	if err != nil {
		return nil, err
	}
	return &Result{StickerOutput: out, Kind: kind}, nil
}

// EncodeStatic encodes an already-composed canvas. Quote cards use it too.
func (c *Converter) EncodeStatic(canvas *Canvas) (*model.StickerOutput, error) {
	data, err := c.encoder.Encode(canvas)
	if err != nil {
		return nil, err
	}
	return &model.StickerOutput{
		Data:       data,
		Container:  model.ContainerStaticImage,
		IsAnimated: false,
	}, nil
}

func (c *Converter) animated(ctx context.Context, asset model.MediaAsset, mimeType string) (*model.StickerOutput, error) {
	if c.transcoder == nil {
		return nil, ErrMissingTranscoder
	}
	data, err := c.transcoder.Transcode(ctx, asset.Data, mimeType, asset.Filename)
	if err != nil {
		return nil, err
	}
	return &model.StickerOutput{
		Data:       data,
		Container:  model.ContainerAnimatedVideo,
		IsAnimated: true,
	}, nil
}

// classify uses the declared metadata first. When that fails and the declared
// MIME type is generic (or absent), the content is sniffed and classified again.
// Returns the MIME type that was actually used.
func (c *Converter) classify(asset model.MediaAsset) (model.MediaKind, string, error) {
	kind, err := Classify(asset.MimeType, asset.Filename)
	if err == nil {
		return kind, asset.MimeType, nil
	}
	if !errors.Is(err, ErrUnsupportedFormat) || !isGeneric(asset.MimeType) {
		return "", "", err
	}

	sniffed := Sniff(asset.Data)
	kind, sniffErr := Classify(sniffed, "")
	if sniffErr != nil {
		return "", "", err
	}
	c.logger.Debug("classified by content", zap.String("sniffed", sniffed))
	return kind, sniffed, nil
}

func extOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
