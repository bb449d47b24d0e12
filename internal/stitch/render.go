package stitch

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Default notice-page configuration, overridable via Options.
const (
	DefaultNoticeText = "This book is read Right to Left! Go to the last page :)"
	DefaultFontSize   = 40
)

// Options configures spread rendering and the notice page.
type Options struct {
	NoticeText string
	FontPath   string // TTF on disk; embedded Go Regular when empty
	FontSize   float64
	SkipNotice bool
}

// Text returns the configured notice text or the default.
func (o Options) Text() string {
	if o.NoticeText != "" {
		return o.NoticeText
	}
	return DefaultNoticeText
}

// Render composes a spread onto a white canvas: left page at the origin,
// right page immediately after it. Pages are never scaled; when the two
// differ in size the canvas height is the larger of the two and pages are
// top-aligned, letterboxed against white. A blank right slot mirrors the
// left page's dimensions as empty space.
func Render(s Spread) *image.NRGBA {
	leftW, leftH := s.Left.Width(), s.Left.Height()
	rightW, rightH := leftW, leftH
	if s.Right != nil {
		rightW, rightH = s.Right.Width(), s.Right.Height()
	}

	height := leftH
	if rightH > height {
		height = rightH
	}

	canvas := imaging.New(leftW+rightW, height, color.White)
	canvas = imaging.Paste(canvas, s.Left.Image, image.Pt(0, 0))
	if s.Right != nil {
		canvas = imaging.Paste(canvas, s.Right.Image, image.Pt(leftW, 0))
	}
	return canvas
}

// RenderNotice draws the go-to-the-back notice centered on a white canvas
// of the given dimensions. Callers pass the dimensions of an already
// composed spread so the notice matches the rest of the book.
func RenderNotice(width, height int, face font.Face, text string) *image.NRGBA {
	canvas := imaging.New(width, height, color.White)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.Black,
		Face: face,
	}

	textWidth := d.MeasureString(text)
	metrics := face.Metrics()
	textHeight := metrics.Ascent + metrics.Descent

	d.Dot = fixed.Point26_6{
		X: (fixed.I(width) - textWidth) / 2,
		Y: (fixed.I(height)-textHeight)/2 + metrics.Ascent,
	}
	d.DrawString(text)
	return canvas
}
