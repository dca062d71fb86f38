package engine

import "github.com/piwi3910/cutplan/internal/model"

// newSheet opens a sheet whose only free rectangle is the interior inset by
// margin on all four sides.
func newSheet(width, height, margin float64) *model.Sheet {
	return &model.Sheet{
		Width:  width,
		Height: height,
		FreeRects: []model.Rect{{
			X: margin,
			Y: margin,
			W: width - 2*margin,
			H: height - 2*margin,
		}},
	}
}

// splitFreeRect cuts placed out of free and returns the maximal residual
// rectangles above, below, left and right of it. The residuals overlap each
// other; pruneFreeRects removes the redundancy later.
func splitFreeRect(free, placed model.Rect) []model.Rect {
	if !intersects(free, placed) {
		return []model.Rect{free}
	}

	splits := make([]model.Rect, 0, 4)

	// Above
	if placed.Y > free.Y+eps {
		splits = append(splits, model.Rect{
			X: free.X, Y: free.Y,
			W: free.W, H: placed.Y - free.Y,
		})
	}
	// Below
	if placed.Bottom() < free.Bottom()-eps {
		splits = append(splits, model.Rect{
			X: free.X, Y: placed.Bottom(),
			W: free.W, H: free.Bottom() - placed.Bottom(),
		})
	}
	// Left
	if placed.X > free.X+eps {
		splits = append(splits, model.Rect{
			X: free.X, Y: free.Y,
			W: placed.X - free.X, H: free.H,
		})
	}
	// Right
	if placed.Right() < free.Right()-eps {
		splits = append(splits, model.Rect{
			X: placed.Right(), Y: free.Y,
			W: free.Right() - placed.Right(), H: free.H,
		})
	}

	kept := splits[:0]
	for _, r := range splits {
		if r.W > eps && r.H > eps {
			kept = append(kept, r)
		}
	}
	return kept
}

// pruneFreeRects removes every rectangle contained in another one. It walks
// from the end, so of two identical rectangles the later one is dropped.
func pruneFreeRects(rects []model.Rect) []model.Rect {
	for i := len(rects) - 1; i >= 0; i-- {
		for j := range rects {
			if i != j && contains(rects[j], rects[i]) {
				rects = append(rects[:i], rects[i+1:]...)
				break
			}
		}
	}
	return rects
}

// placeRect records piece on sheet and carves its spaced footprint out of
// the free-space ledger.
func placeRect(sheet *model.Sheet, piece model.PlacedPiece, spacing float64) {
	sheet.UsedRects = append(sheet.UsedRects, piece)

	spaced := model.Rect{
		X: piece.X,
		Y: piece.Y,
		W: piece.DrawnW + spacing,
		H: piece.DrawnH + spacing,
	}

	next := make([]model.Rect, 0, len(sheet.FreeRects)+4)
	for _, free := range sheet.FreeRects {
		next = append(next, splitFreeRect(free, spaced)...)
	}
	sheet.FreeRects = pruneFreeRects(next)
}
