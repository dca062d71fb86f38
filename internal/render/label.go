package render

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

const (
	minFontSize      = 10
	upscaleThreshold = 1.1
	maxGrowth        = 1.85
)

type anchor int

const (
	anchorCenter anchor = iota
	anchorBottom        // label bottom sits on the anchor line
	anchorRight         // rotated text ends at the anchor line
)

// availableLength is the room left for a label along a footprint edge.
func availableLength(extent float64) float64 {
	return math.Max(0, extent-labelInset)
}

// fitFontSize returns the font size at which a label measuring textWidth at
// base fits into maxWidth. Labels that would need less than minFontSize are
// dropped (ok is false). When maximize is set, generous room grows the font
// up to maxGrowth times the base size.
func fitFontSize(textWidth, maxWidth float64, base int, maximize bool) (int, bool) {
	if maxWidth <= 0 || textWidth <= 0 {
		return 0, false
	}
	ratio := maxWidth / textWidth
	switch {
	case ratio < 1:
		size := int(math.Floor(float64(base) * ratio))
		if size < minFontSize {
			return 0, false
		}
		return size, true
	case maximize && ratio > upscaleThreshold:
		return int(math.Floor(float64(base) * math.Min(ratio, maxGrowth))), true
	default:
		return base, true
	}
}

// shouldRotate reports whether a label fits better along the vertical edge.
func shouldRotate(textWidth, availW, availH float64) bool {
	if textWidth <= 0 {
		return false
	}
	return availH/textWidth > availW/textWidth
}

// drawName centers the piece name in its footprint, turning it 90 degrees
// when the footprint is taller than it is wide enough for the text.
func drawName(dc *gg.Context, fonts *fontSet, name string, x, y, w, h float64, optical bool) {
	width, _ := text.Measure(name, fonts.bold.face(nameFontSize))
	availW := availableLength(w)
	availH := availableLength(h)

	if shouldRotate(width, availW, availH) {
		drawFittedVertical(dc, fonts.bold, name, x+w/2, y+h/2, availH, nameFontSize, optical, anchorCenter)
		return
	}
	drawFitted(dc, fonts.bold, name, x+w/2, y+h/2, availW, nameFontSize, optical, anchorCenter)
}

// drawFitted draws a horizontal label centered on cx. With anchorBottom the
// bottom of the label sits on cy.
func drawFitted(dc *gg.Context, family *fontFamily, s string, cx, cy, maxWidth float64, base int, maximize bool, a anchor) {
	width, _ := text.Measure(s, family.face(base))
	size, ok := fitFontSize(width, maxWidth, base, maximize)
	if !ok {
		return
	}

	img := typeset(s, family.face(size))
	if img == nil {
		return
	}
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())

	py := cy - ih/2
	if a == anchorBottom {
		py = cy - ih
	}
	dc.DrawImage(gg.ImageBufFromImage(img), cx-iw/2, py)
}

// drawFittedVertical draws a label reading bottom to top. Text drawing
// ignores the context transform, so the label is rotated as an image.
func drawFittedVertical(dc *gg.Context, family *fontFamily, s string, cx, cy, maxLength float64, base int, maximize bool, a anchor) {
	width, _ := text.Measure(s, family.face(base))
	size, ok := fitFontSize(width, maxLength, base, maximize)
	if !ok {
		return
	}

	img := typeset(s, family.face(size))
	if img == nil {
		return
	}
	rotated := imaging.Rotate90(img)
	iw := float64(rotated.Bounds().Dx())
	ih := float64(rotated.Bounds().Dy())

	px := cx - iw/2
	if a == anchorRight {
		px = cx - iw
	}
	dc.DrawImage(gg.ImageBufFromImage(rotated), px, cy-ih/2)
}

// typeset draws s on a transparent surface sized to the face's ascent and
// descent. Glyphs never reach past the returned bounds.
func typeset(s string, face text.Face) image.Image {
	tw, _ := text.Measure(s, face)
	m := face.Metrics()
	lw := int(math.Ceil(tw)) + 2
	lh := int(math.Ceil(m.Ascent+m.Descent)) + 2
	if lw <= 2 || lh <= 2 {
		return nil
	}

	label := gg.NewContext(lw, lh)
	defer func() { _ = label.Close() }()
	label.SetFont(face)
	label.SetRGB(0, 0, 0)
	label.DrawString(s, 1, 1+m.Ascent)
	_ = label.FlushGPU()
	return imaging.Clone(label.Image())
}
