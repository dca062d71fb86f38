package engine

import (
	"math"

	"github.com/piwi3910/cutplan/internal/model"
)

// position is a candidate placement for a piece.
type position struct {
	x, y    float64
	rotated bool
}

// findPosition picks the bottom-left free rectangle that admits the piece:
// smallest y, then smallest x. The unrotated footprint wins a tie at the same
// corner. Returns false when no free rectangle admits either orientation.
func findPosition(sheet *model.Sheet, w, h float64, allowRotate bool, spacing float64) (position, bool) {
	var best position
	found := false
	bestX, bestY := math.Inf(1), math.Inf(1)

	spacedW := w + spacing
	spacedH := h + spacing

	consider := func(r model.Rect, rotated bool) {
		if r.Y < bestY || (r.Y == bestY && r.X < bestX) {
			best = position{x: r.X, y: r.Y, rotated: rotated}
			bestX, bestY = r.X, r.Y
			found = true
		}
	}

	for _, r := range sheet.FreeRects {
		if fits(r, spacedW, spacedH) {
			consider(r, false)
		}
		if allowRotate && fits(r, spacedH, spacedW) {
			consider(r, true)
		}
	}
	return best, found
}

// findBestAreaPosition picks the free rectangle that leaves the least unused
// area after the spaced footprint is taken out of it. Ties fall back to the
// bottom-left rule. The returned leftover is -1 when nothing fits.
func findBestAreaPosition(sheet *model.Sheet, w, h float64, allowRotate bool, spacing float64) (position, float64) {
	var best position
	bestLeft := float64(-1)

	spacedW := w + spacing
	spacedH := h + spacing
	footprint := spacedW * spacedH

	consider := func(r model.Rect, rotated bool) {
		left := r.Area() - footprint
		better := bestLeft < 0 || left < bestLeft-eps
		if !better && math.Abs(left-bestLeft) <= eps {
			better = r.Y < best.y || (r.Y == best.y && r.X < best.x)
		}
		if better {
			best = position{x: r.X, y: r.Y, rotated: rotated}
			bestLeft = math.Max(left, 0)
		}
	}

	for _, r := range sheet.FreeRects {
		if fits(r, spacedW, spacedH) {
			consider(r, false)
		}
		if allowRotate && fits(r, spacedH, spacedW) {
			consider(r, true)
		}
	}
	return best, bestLeft
}
