package quote

import (
	"image"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/fleveque/sticker-service/internal/model"
)

// AccentColor fills generated avatars; initials are drawn in white on top.
var AccentColor = model.RGB{R: 88, G: 101, B: 242}

// Initials returns the uppercased first letters of up to two words of name,
// or "?" when there are none.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// InitialsAvatar draws name's initials centered in an accent-colored circle
// of the given diameter. The area outside the circle is transparent.
func InitialsAvatar(name string, diameter int, face font.Face) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, diameter, diameter))
	dc := gg.NewContextForRGBA(img)

	r := float64(diameter) / 2
	dc.DrawCircle(r, r, r)
	dc.SetRGB255(int(AccentColor.R), int(AccentColor.G), int(AccentColor.B))
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetRGB255(255, 255, 255)
	dc.DrawStringAnchored(Initials(name), r, r, 0.5, 0.35)
	return img
}

// CircleAvatar center-crops src to a square, resizes it to diameter and
// masks it to a circle.
func CircleAvatar(src image.Image, diameter int) *image.RGBA {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, side, side).Add(image.Pt(
		b.Min.X+(b.Dx()-side)/2,
		b.Min.Y+(b.Dy()-side)/2,
	))

	resized := image.NewRGBA(image.Rect(0, 0, diameter, diameter))
	draw.CatmullRom.Scale(resized, resized.Bounds(), src, crop, draw.Src, nil)

	out := image.NewRGBA(resized.Bounds())
	dc := gg.NewContextForRGBA(out)
	r := float64(diameter) / 2
	dc.DrawCircle(r, r, r)
	dc.Clip()
	dc.DrawImage(resized, 0, 0)
	return out
}
