// Package quote renders quote cards: a rounded speech bubble holding an
// avatar, the author's name, an optional badge and the wrapped quote text,
// drawn on the same square canvas used for stickers.
package quote

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Fonts holds the parsed regular and bold typefaces. Parsed fonts are
// immutable and shared; faces are not, so Face creates a new one per call.
type Fonts struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// LoadFonts parses the TTF/OTF files at the given paths. An empty or
// unreadable path falls back to the embedded Go fonts, so the service always
// has something to draw with.
func LoadFonts(regularPath, boldPath string, logger *zap.Logger) (*Fonts, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	regular, err := loadFont(regularPath, goregular.TTF, logger)
	if err != nil {
		return nil, err
	}
	bold, err := loadFont(boldPath, gobold.TTF, logger)
	if err != nil {
		return nil, err
	}
	return &Fonts{regular: regular, bold: bold}, nil
}

// DefaultFonts returns the embedded Go Regular / Go Bold pair.
func DefaultFonts() *Fonts {
	f, err := LoadFonts("", "", nil)
	if err != nil {
		// The embedded fonts are known-good.
		panic(err)
	}
	return f
}

func loadFont(path string, fallback []byte, logger *zap.Logger) (*opentype.Font, error) {
	data := fallback
	if path != "" {
		custom, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("could not load custom font, using default",
				zap.String("path", path), zap.Error(err))
		} else {
			data = custom
		}
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %q: %w", path, err)
	}
	return parsed, nil
}

// Face returns a new face at size points (72 DPI, so points equal pixels).
// The caller must Close it.
func (f *Fonts) Face(bold bool, size float64) (font.Face, error) {
	parsed := f.regular
	if bold {
		parsed = f.bold
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	return face, nil
}

// TextMetrics is what the layout needs to know about a face.
type TextMetrics struct {
	Measure    MeasureFunc
	LineHeight int
	Ascent     int
}

// MetricsFor derives TextMetrics from a face.
func MetricsFor(face font.Face) TextMetrics {
	m := face.Metrics()
	return TextMetrics{
		Measure: func(s string) int {
			return font.MeasureString(face, s).Ceil()
		},
		LineHeight: m.Height.Ceil(),
		Ascent:     m.Ascent.Ceil(),
	}
}
