package render

import (
	"math/rand"

	"github.com/gogpu/gg"

	"github.com/piwi3910/cutplan/internal/model"
)

const (
	woodBase   = "#e3c099"
	veinWidth  = 3
	veinStep   = 12
	veinSpread = 8
	veinJitter = 4
)

// drawWoodTexture fills the rectangle with a wood base and bezier veins
// running along the grain. The veins are cosmetic; rng decides where they go.
func drawWoodTexture(dc *gg.Context, rng *rand.Rand, x, y, w, h float64, grain model.Grain) error {
	dc.Push()
	defer dc.Pop()

	dc.ClipRect(x, y, w, h)

	dc.SetHexColor(woodBase)
	dc.DrawRectangle(x, y, w, h)
	if err := dc.Fill(); err != nil {
		return err
	}

	// rgba(139, 69, 19, 0.3)
	dc.SetRGBA(139.0/255, 69.0/255, 19.0/255, 0.3)
	dc.SetLineWidth(veinWidth)

	jitter := func() float64 { return rng.Float64()*2*veinJitter - veinJitter }

	if grain == model.GrainHorizontal {
		for i := 0.0; i < h; i += veinStep + rng.Float64()*veinSpread {
			startY := y + i
			dc.MoveTo(x, startY)
			dc.CubicTo(x+w/3, startY+jitter(), x+2*w/3, startY+jitter(), x+w, startY)
			if err := dc.Stroke(); err != nil {
				return err
			}
		}
		return nil
	}

	for i := 0.0; i < w; i += veinStep + rng.Float64()*veinSpread {
		startX := x + i
		dc.MoveTo(startX, y)
		dc.CubicTo(startX+jitter(), y+h/3, startX+jitter(), y+2*h/3, startX, y+h)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}
