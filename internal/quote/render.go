package quote

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/model"
)

// Layout constants, in pixels. They were picked by eye for a 512px canvas.
const (
	OuterMargin  = 24
	AvatarSize   = 72
	AvatarGap    = 16
	InnerMarginX = 16
	InnerMarginY = 16
	LineSpacing  = 8
	NameGap      = 6 // between the name block and the body
	BadgeGap     = 6
	CornerRadius = 24

	NameFontSize = 20
	BodyFontSize = 24
)

// BubbleGeometry is the rounded rectangle behind the card's content.
type BubbleGeometry struct {
	X0, Y0, X1, Y1 int
	CornerRadius   int
}

// Width returns X1-X0.
func (b BubbleGeometry) Width() int { return b.X1 - b.X0 }

// Height returns Y1-Y0.
func (b BubbleGeometry) Height() int { return b.Y1 - b.Y0 }

// Rect returns the bubble as an image.Rectangle.
func (b BubbleGeometry) Rect() image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1, b.Y1)
}

// Layout is the computed position of every element on the card. Y values of
// text lines are the top of the line box; the baseline is Y + Ascent.
type Layout struct {
	CanvasSize int
	Bubble     BubbleGeometry
	Avatar     image.Rectangle // empty when the avatar is hidden
	Badge      image.Rectangle // empty without a badge

	TextX     int
	NameLines []LayoutLine
	NameY     int
	BodyLines []LayoutLine
	BodyY     int

	NameMetrics TextMetrics
	BodyMetrics TextMetrics
}

// NameLineY returns the top of name line i.
func (l *Layout) NameLineY(i int) int {
	return l.NameY + i*(l.NameMetrics.LineHeight+LineSpacing)
}

// BodyLineY returns the top of body line i.
func (l *Layout) BodyLineY(i int) int {
	return l.BodyY + i*(l.BodyMetrics.LineHeight+LineSpacing)
}

// blockHeight is n lines of height lh separated by LineSpacing.
func blockHeight(n, lh int) int {
	if n == 0 {
		return 0
	}
	return n*lh + (n-1)*LineSpacing
}

// ComputeLayout sizes and positions the bubble and its contents. It does no
// drawing, so the geometry can be checked with any text metrics.
//
// The avatar sits inside the bubble on its left, vertically centered. Name
// and body share one text column to its right. The bubble grows to fit the
// widest line and is centered on the canvas.
func ComputeLayout(req model.QuoteRequest, name, body TextMetrics, badge image.Point) *Layout {
	w := req.CanvasSize
	if w <= 0 {
		w = media.DefaultCanvasSide
	}

	av, gap := 0, 0
	if !req.HideAvatar {
		av, gap = AvatarSize, AvatarGap
	}

	maxBubbleW := w - 2*OuterMargin
	avail := max(maxBubbleW-2*InnerMarginX-av-gap, 1)

	l := &Layout{CanvasSize: w, NameMetrics: name, BodyMetrics: body}

	badgeW := 0
	if badge.X > 0 && badge.Y > 0 {
		badgeW = badge.X + BadgeGap
	}

	if req.AuthorName != "" {
		l.NameLines = Wrap(req.AuthorName, max(avail-badgeW, 1), name.Measure)
	}
	l.BodyLines = Wrap(req.Text, avail, body.Measure)

	contentW := 0
	for i, ln := range l.NameLines {
		lw := ln.Width
		if i == 0 {
			lw += badgeW
		}
		contentW = max(contentW, lw)
	}
	if len(l.NameLines) == 0 && badgeW > 0 {
		contentW = badgeW - BadgeGap
	}
	for _, ln := range l.BodyLines {
		contentW = max(contentW, ln.Width)
	}

	nameH := blockHeight(len(l.NameLines), name.LineHeight)
	if nameH > 0 {
		nameH += NameGap
	} else if badgeW > 0 {
		nameH = badge.Y + NameGap
	}
	contentH := nameH + blockHeight(len(l.BodyLines), body.LineHeight)

	bubbleH := max(contentH+2*InnerMarginY, av+2*InnerMarginY)
	bubbleW := min(InnerMarginX+av+gap+contentW+InnerMarginX, maxBubbleW)

	x0 := (w - bubbleW) / 2
	y0 := (w - bubbleH) / 2
	l.Bubble = BubbleGeometry{
		X0:           x0,
		Y0:           y0,
		X1:           x0 + bubbleW,
		Y1:           y0 + bubbleH,
		CornerRadius: min(CornerRadius, bubbleH/2, bubbleW/2),
	}

	if av > 0 {
		ay := y0 + (bubbleH-av)/2
		l.Avatar = image.Rect(x0+InnerMarginX, ay, x0+InnerMarginX+av, ay+av)
	}

	// When the avatar sets the height, the text block is centered in the slack.
	l.TextX = x0 + InnerMarginX + av + gap
	l.NameY = y0 + InnerMarginY + (bubbleH-2*InnerMarginY-contentH)/2
	l.BodyY = l.NameY + nameH

	if badgeW > 0 {
		bx := l.TextX
		if len(l.NameLines) > 0 {
			bx += l.NameLines[0].Width + BadgeGap
		}
		by := l.NameY + (name.LineHeight-badge.Y)/2
		if len(l.NameLines) == 0 {
			by = l.NameY
		}
		l.Badge = image.Rect(bx, by, bx+badge.X, by+badge.Y)
	}

	return l
}

// Renderer draws quote cards. Safe for concurrent use: font faces are
// created per call.
type Renderer struct {
	fonts  *Fonts
	side   int
	logger *zap.Logger
}

// NewRenderer creates a Renderer. side is the default canvas size for
// requests that don't set one.
func NewRenderer(fonts *Fonts, side int, logger *zap.Logger) *Renderer {
	if fonts == nil {
		fonts = DefaultFonts()
	}
	if side <= 0 {
		side = media.DefaultCanvasSide
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{fonts: fonts, side: side, logger: logger.Named("quote")}
}

// Render draws req onto a fresh transparent canvas and returns it with the
// layout used.
func (r *Renderer) Render(req model.QuoteRequest) (*media.Canvas, *Layout, error) {
	if req.CanvasSize <= 0 {
		req.CanvasSize = r.side
	}

	nameFace, err := r.fonts.Face(true, NameFontSize)
	if err != nil {
		return nil, nil, err
	}
	defer nameFace.Close()

	bodyFace, err := r.fonts.Face(false, BodyFontSize)
	if err != nil {
		return nil, nil, err
	}
	defer bodyFace.Close()

	nameMetrics := MetricsFor(nameFace)
	bodyMetrics := MetricsFor(bodyFace)

	var badge *image.RGBA
	var badgeSize image.Point
	if req.BadgeImage != nil {
		badge = scaleToHeight(req.BadgeImage, nameMetrics.LineHeight)
		badgeSize = badge.Bounds().Size()
	}

	layout := ComputeLayout(req, nameMetrics, bodyMetrics, badgeSize)
	palette := ResolvePalette(req)

	canvas := media.NewCanvas(req.CanvasSize)
	dc := gg.NewContextForRGBA(canvas.RGBA)

	b := layout.Bubble
	dc.DrawRoundedRectangle(float64(b.X0), float64(b.Y0), float64(b.Width()), float64(b.Height()), float64(b.CornerRadius))
	setColor(dc, palette.Bubble)
	dc.Fill()

	if !layout.Avatar.Empty() {
		avatar, err := r.avatar(req)
		if err != nil {
			return nil, nil, err
		}
		dc.DrawImage(avatar, layout.Avatar.Min.X, layout.Avatar.Min.Y)
	}

	dc.SetFontFace(nameFace)
	setColor(dc, palette.Meta)
	for i, ln := range layout.NameLines {
		dc.DrawString(ln.Text, float64(layout.TextX), float64(layout.NameLineY(i)+nameMetrics.Ascent))
	}

	if badge != nil && !layout.Badge.Empty() {
		dc.DrawImage(badge, layout.Badge.Min.X, layout.Badge.Min.Y)
	}

	dc.SetFontFace(bodyFace)
	setColor(dc, palette.Text)
	for i, ln := range layout.BodyLines {
		dc.DrawString(ln.Text, float64(layout.TextX), float64(layout.BodyLineY(i)+bodyMetrics.Ascent))
	}

	r.logger.Debug("rendered quote",
		zap.Int("name_lines", len(layout.NameLines)),
		zap.Int("body_lines", len(layout.BodyLines)),
		zap.Bool("avatar", !layout.Avatar.Empty()),
		zap.Bool("badge", badge != nil),
	)
	return canvas, layout, nil
}

func (r *Renderer) avatar(req model.QuoteRequest) (*image.RGBA, error) {
	if req.AvatarImage != nil && !req.AvatarImage.Bounds().Empty() {
		return CircleAvatar(req.AvatarImage, AvatarSize), nil
	}

	face, err := r.fonts.Face(true, AvatarSize*0.4)
	if err != nil {
		return nil, fmt.Errorf("avatar font: %w", err)
	}
	defer face.Close()
	return InitialsAvatar(req.AuthorName, AvatarSize, face), nil
}

// scaleToHeight resizes img to height h, keeping its aspect ratio.
func scaleToHeight(img image.Image, h int) *image.RGBA {
	b := img.Bounds()
	if b.Empty() || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	w := max(1, b.Dx()*h/b.Dy())
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

func setColor(dc *gg.Context, c model.RGB) {
	dc.SetRGB255(int(c.R), int(c.G), int(c.B))
}
