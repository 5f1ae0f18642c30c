package quote

import "github.com/fleveque/sticker-service/internal/model"

// ContrastThreshold is the background luminance above which text switches
// to the dark palette. Empirical; tune freely.
const ContrastThreshold = 140.0

// Palette is the set of colors a quote card is drawn with.
type Palette struct {
	Bubble model.RGB
	Text   model.RGB
	Meta   model.RGB // author name
}

var (
	darkPalette = Palette{
		Bubble: model.RGB{R: 34, G: 40, B: 52},
		Text:   model.RGB{R: 245, G: 246, B: 248},
		Meta:   model.RGB{R: 170, G: 175, B: 186},
	}
	lightPalette = Palette{
		Bubble: model.RGB{R: 245, G: 246, B: 248},
		Text:   model.RGB{R: 25, G: 25, B: 28},
		Meta:   model.RGB{R: 90, G: 90, B: 95},
	}
)

// ThemePalette returns the default colors for a theme.
func ThemePalette(t model.Theme) Palette {
	if t == model.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// contrastFor picks the palette whose text reads well on bg.
func contrastFor(bg model.RGB) Palette {
	if bg.Luminance() > ContrastThreshold {
		return lightPalette
	}
	return darkPalette
}

// TextColorFor returns a readable text color for the background bg.
func TextColorFor(bg model.RGB) model.RGB {
	return contrastFor(bg).Text
}

// ResolvePalette applies the request's overrides to its theme. A background
// override without a text override picks the text and name colors by
// luminance so the card stays legible.
func ResolvePalette(req model.QuoteRequest) Palette {
	p := ThemePalette(req.Theme)

	if bg := req.BackgroundColorOverride; bg != nil {
		c := contrastFor(*bg)
		p = Palette{Bubble: *bg, Text: c.Text, Meta: c.Meta}
	}
	if fg := req.TextColorOverride; fg != nil {
		p.Text = *fg
	}
	return p
}
