package media

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/h2non/bimg"
)

// DefaultQuality is the WebP quality used for stickers and quote cards.
const DefaultQuality = 95

// StaticEncoder serializes a fitted canvas to WebP. It never resizes: pixels
// in, bytes out.
//
// bimg (libvips bindings) does the WebP encode. Go's image packages can decode
// WebP but not encode it, so the canvas goes through a lossless PNG hand-off first.
type StaticEncoder struct {
	quality int
}

// NewStaticEncoder creates an encoder. Quality outside 1..100 uses DefaultQuality.
func NewStaticEncoder(quality int) *StaticEncoder {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &StaticEncoder{quality: quality}
}

// Encode returns the WebP bytes for the canvas.
func (e *StaticEncoder) Encode(c *Canvas) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, c.RGBA); err != nil {
		return nil, fmt.Errorf("encoding canvas: %w", err)
	}

	// Only Type and Quality are set, so libvips keeps the canvas dimensions.
	out, err := bimg.NewImage(buf.Bytes()).Process(bimg.Options{
		Type:           bimg.WEBP,
		Quality:        e.quality,
		StripMetadata:  true,
		Interpretation: bimg.InterpretationSRGB,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding webp: %w", err)
	}
	return out, nil
}
