package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"time"

	// Register image format decoders for image.Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/model"
	"github.com/fleveque/sticker-service/internal/storage"
)

// DefaultFrameTimeout bounds a single video frame grab.
const DefaultFrameTimeout = 30 * time.Second

// DefaultMaxPixels caps width×height of any raster input. Decoders allocate
// the full pixel buffer up front, so the header is checked before decoding.
const DefaultMaxPixels int64 = 8192 * 8192

// Extractor produces one representative RGBA frame from raw media bytes.
type Extractor struct {
	caps      Capabilities
	scratch   *storage.Scratch
	timeout   time.Duration
	maxPixels int64
	logger    *zap.Logger
}

// NewExtractor creates an Extractor. scratch is only used for video input.
func NewExtractor(caps Capabilities, scratch *storage.Scratch, timeout time.Duration, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultFrameTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		caps:      caps,
		scratch:   scratch,
		timeout:   timeout,
		maxPixels: DefaultMaxPixels,
		logger:    logger.Named("extractor"),
	}
}

// SetMaxPixels changes the raster pixel budget. Non-positive values restore
// DefaultMaxPixels.
func (e *Extractor) SetMaxPixels(n int64) {
	if n <= 0 {
		n = DefaultMaxPixels
	}
	e.maxPixels = n
}

// Extract decodes data according to kind. side is the target canvas side,
// used to rasterize vector input at full resolution. ext is the source file
// extension (may be empty) and only matters for video.
func (e *Extractor) Extract(ctx context.Context, data []byte, kind model.MediaKind, ext string, side int) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailure)
	}

	switch kind {
	case model.KindVector:
		if !e.caps.VectorRendering {
			return nil, ErrVectorRenderingDisabled
		}
		return rasterizeSVG(data, side)
	case model.KindVideo:
		if !e.caps.VideoDecoding {
			return nil, ErrVideoDecodingDisabled
		}
		return e.videoFrame(ctx, data, ext)
	case model.KindRasterAnimated:
		return firstGIFFrame(data, e.maxPixels)
	case model.KindRasterStill:
		return decodeStill(data, e.maxPixels)
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedFormat, kind)
	}
}

// rasterizeSVG renders the document so its larger side equals side.
func rasterizeSVG(data []byte, side int) (*image.RGBA, error) {
	if side <= 0 {
		side = DefaultCanvasSide
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing svg: %v", ErrDecodeFailure, err)
	}

	// Documents without a viewBox are treated as square.
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(side), float64(side)
	}

	scale := float64(side) / max(w, h)
	outW := clamp(int(w*scale+0.5), 1, side)
	outH := clamp(int(h*scale+0.5), 1, side)
	icon.SetTarget(0, 0, float64(outW), float64(outH))

	img := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, img, img.Bounds())
	raster := rasterx.NewDasher(outW, outH, scanner)
	icon.Draw(raster, 1.0)

	return img, nil
}

// firstGIFFrame composites frame 0 onto the GIF's logical screen and drops the
// rest. Inputs that only claim to be GIF fall back to generic decoding.
func firstGIFFrame(data []byte, maxPixels int64) (*image.RGBA, error) {
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return decodeStill(data, maxPixels)
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, err
	}

	// gif.Decode stops after the first frame; the decoder rejects frames
	// that fall outside the logical screen checked above.
	frame, err := gif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding gif: %v", ErrDecodeFailure, err)
	}

	bounds := image.Rect(0, 0, cfg.Width, cfg.Height)
	if bounds.Empty() {
		bounds = frame.Bounds()
	}

	screen := image.NewRGBA(bounds)
	draw.Draw(screen, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
	return toRGBA(screen), nil
}

// DecodeImage decodes any supported still format (JPEG, PNG, GIF, WebP, BMP,
// TIFF) to RGBA within DefaultMaxPixels. Errors wrap ErrDecodeFailure.
func DecodeImage(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailure)
	}
	return decodeStill(data, DefaultMaxPixels)
}

func decodeStill(data []byte, maxPixels int64) (*image.RGBA, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: reading image header: %v", ErrDecodeFailure, err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image (format=%s): %v", ErrDecodeFailure, format, err)
	}
	return toRGBA(img), nil
}

// checkPixels rejects declared dimensions that are empty or over budget.
func checkPixels(w, h int, maxPixels int64) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: image has no pixels (%dx%d)", ErrDecodeFailure, w, h)
	}
	if int64(w)*int64(h) > maxPixels {
		return fmt.Errorf("%w: image %dx%d exceeds the %d pixel limit", ErrDecodeFailure, w, h, maxPixels)
	}
	return nil
}

// videoFrame asks ffmpeg for the first decodable frame as a PNG on stdout.
// The input must be a real file: containers like MP4 aren't seekable through a pipe.
func (e *Extractor) videoFrame(ctx context.Context, data []byte, ext string) (*image.RGBA, error) {
	if ext == "" {
		ext = ".mp4"
	}

	in, err := e.scratch.WriteTemp("frame", ext, data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := e.scratch.Remove(in); err != nil {
			e.logger.Warn("removing scratch file", zap.String("path", in), zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", in,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	var stdout bytes.Buffer
	if err := runProcess(ctx, e.caps.TranscoderPath, args, &stdout); err != nil {
		return nil, fmt.Errorf("%w: reading first video frame: %v", ErrDecodeFailure, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no decodable video frame", ErrDecodeFailure)
	}

	return decodeStill(stdout.Bytes(), e.maxPixels)
}
