package model

import (
	"fmt"
	"image"
	"strings"
)

// Theme selects the default quote palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps user input to a Theme. Anything other than "light" is dark,
// matching the bot's behavior.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeLight)) {
		return ThemeLight
	}
	return ThemeDark
}

// RGB is an opaque color.
type RGB struct {
	R, G, B uint8
}

// Luminance returns the perceived brightness (0-255) using the Rec. 601 weights.
func (c RGB) Luminance() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB converts a hex color string (with or without #) to RGB.
// Go's fmt.Sscanf is like C's scanf: it parses formatted strings.
func ParseRGB(hex string) (RGB, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color: %q (expected 6 characters)", hex)
	}

	var c RGB
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, fmt.Errorf("parsing hex color %q: %w", hex, err)
	}
	return c, nil
}

// QuoteRequest describes a quote card to render. Pointer fields are optional:
// nil means "not provided".
type QuoteRequest struct {
	Text                    string
	AuthorName              string
	AvatarImage             image.Image
	BadgeImage              image.Image
	Theme                   Theme
	BackgroundColorOverride *RGB
	TextColorOverride       *RGB
	CanvasSize              int
	HideAvatar              bool
}
