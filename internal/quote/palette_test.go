package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleveque/sticker-service/internal/model"
)

func gray(v uint8) model.RGB { return model.RGB{R: v, G: v, B: v} }

func TestTextColorFor(t *testing.T) {
	white := model.RGB{R: 255, G: 255, B: 255}
	black := model.RGB{}

	assert.Equal(t, lightPalette.Text, TextColorFor(white), "white background needs dark text")
	assert.Equal(t, darkPalette.Text, TextColorFor(black), "black background needs light text")
	assert.Equal(t, lightPalette.Text, TextColorFor(gray(141)))
	assert.Equal(t, darkPalette.Text, TextColorFor(gray(139)))
}

func TestTextColorFor_BoundaryIsStable(t *testing.T) {
	for _, bg := range []model.RGB{gray(140), {R: 140, G: 140, B: 141}, {R: 255, G: 100, B: 0}} {
		first := TextColorFor(bg)
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, TextColorFor(bg))
		}
	}
}

func TestResolvePalette(t *testing.T) {
	white := model.RGB{R: 255, G: 255, B: 255}
	navy := model.RGB{R: 10, G: 20, B: 60}
	pink := model.RGB{R: 255, G: 0, B: 128}

	tests := []struct {
		name string
		req  model.QuoteRequest
		want Palette
	}{
		{
			name: "dark theme defaults",
			req:  model.QuoteRequest{Theme: model.ThemeDark},
			want: darkPalette,
		},
		{
			name: "light theme defaults",
			req:  model.QuoteRequest{Theme: model.ThemeLight},
			want: lightPalette,
		},
		{
			name: "light background on dark theme gets dark text",
			req:  model.QuoteRequest{Theme: model.ThemeDark, BackgroundColorOverride: &white},
			want: Palette{Bubble: white, Text: lightPalette.Text, Meta: lightPalette.Meta},
		},
		{
			name: "dark background on light theme gets light text",
			req:  model.QuoteRequest{Theme: model.ThemeLight, BackgroundColorOverride: &navy},
			want: Palette{Bubble: navy, Text: darkPalette.Text, Meta: darkPalette.Meta},
		},
		{
			name: "explicit text color wins",
			req:  model.QuoteRequest{BackgroundColorOverride: &white, TextColorOverride: &pink},
			want: Palette{Bubble: white, Text: pink, Meta: lightPalette.Meta},
		},
		{
			name: "text color alone keeps the theme bubble",
			req:  model.QuoteRequest{Theme: model.ThemeDark, TextColorOverride: &pink},
			want: Palette{Bubble: darkPalette.Bubble, Text: pink, Meta: darkPalette.Meta},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePalette(tt.req))
		})
	}
}
