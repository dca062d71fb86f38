package model

import "sort"

// Offcut represents a usable rectangular remnant left over after cutting.
type Offcut struct {
	SheetIndex int     `json:"sheet_index"` // Index of the source sheet in the plan
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Area returns the area of the offcut.
func (o Offcut) Area() float64 {
	return o.Width * o.Height
}

// MinOffcutDimension is the default minimum width or height for a remnant to
// be considered usable, in sheet units.
const MinOffcutDimension = 5.0

// MinOffcutArea is the default minimum remnant area, in square sheet units.
const MinOffcutArea = 100.0

// DetectOffcuts lists the free rectangles left on a packed sheet that are
// large enough to be reused. Free rectangles are maximal, so two offcuts may
// share material; each one is individually cuttable.
func DetectOffcuts(sheet Sheet, sheetIndex int, minDim, minArea float64) []Offcut {
	var offcuts []Offcut
	for _, r := range sheet.FreeRects {
		if r.W < minDim || r.H < minDim || r.Area() < minArea {
			continue
		}
		offcuts = append(offcuts, Offcut{
			SheetIndex: sheetIndex,
			X:          r.X,
			Y:          r.Y,
			Width:      r.W,
			Height:     r.H,
		})
	}

	// Sort by area descending (largest offcuts first)
	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})

	return offcuts
}

// DetectAllOffcuts finds offcuts across all sheets of a plan.
func DetectAllOffcuts(sheets []Sheet, minDim, minArea float64) []Offcut {
	var all []Offcut
	for i, sheet := range sheets {
		all = append(all, DetectOffcuts(sheet, i, minDim, minArea)...)
	}
	return all
}

// TotalOffcutArea returns the summed area of the offcuts. Overlapping offcuts
// are counted once each.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
