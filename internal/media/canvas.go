package media

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// DefaultCanvasSide is the sticker side length in pixels.
const DefaultCanvasSide = 512

// Canvas is the square RGBA surface every sticker and quote card is drawn on.
// It always has an alpha channel and starts fully transparent.
type Canvas struct {
	*image.RGBA
}

// NewCanvas allocates a transparent side×side canvas. Non-positive sides fall
// back to DefaultCanvasSide.
func NewCanvas(side int) *Canvas {
	if side <= 0 {
		side = DefaultCanvasSide
	}
	// image.NewRGBA zeroes the pixel buffer, which is transparent black.
	return &Canvas{RGBA: image.NewRGBA(image.Rect(0, 0, side, side))}
}

// Side returns the canvas side length.
func (c *Canvas) Side() int {
	return c.Bounds().Dx()
}

// FitSize returns the dimensions of a w×h frame scaled so its larger side
// equals side, preserving aspect ratio. Neither result exceeds side and
// neither drops below one pixel.
func FitSize(w, h, side int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := float64(side) / float64(max(w, h))
	fw := clamp(int(math.Round(float64(w)*scale)), 1, side)
	fh := clamp(int(math.Round(float64(h)*scale)), 1, side)
	return fw, fh
}

// Fit scales frame to fit inside a side×side canvas and centers it. Pixels the
// frame doesn't cover stay fully transparent.
//
// Catmull-Rom is the high-quality resampler from x/image/draw; it's the
// closest match to Lanczos available without cgo.
func Fit(frame image.Image, side int) *Canvas {
	canvas := NewCanvas(side)
	side = canvas.Side()

	b := frame.Bounds()
	fw, fh := FitSize(b.Dx(), b.Dy(), side)
	if fw == 0 || fh == 0 {
		return canvas
	}

	x := (side - fw) / 2
	y := (side - fh) / 2
	dst := image.Rect(x, y, x+fw, y+fh)

	if fw == b.Dx() && fh == b.Dy() {
		draw.Draw(canvas.RGBA, dst, frame, b.Min, draw.Src)
		return canvas
	}

	xdraw.CatmullRom.Scale(canvas.RGBA, dst, frame, b, xdraw.Src, nil)
	return canvas
}

// toRGBA normalizes any decoded image to a tightly packed *image.RGBA at the origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
