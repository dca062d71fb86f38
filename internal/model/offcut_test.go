package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOffcuts_FiltersAndSorts(t *testing.T) {
	sheet := Sheet{
		Width:  100,
		Height: 100,
		FreeRects: []Rect{
			{X: 0, Y: 60, W: 40, H: 40},  // 1600
			{X: 50, Y: 0, W: 50, H: 100}, // 5000
			{X: 0, Y: 50, W: 2, H: 50},   // too narrow
			{X: 0, Y: 0, W: 9, H: 9},     // too small
		},
	}

	offcuts := DetectOffcuts(sheet, 3, MinOffcutDimension, MinOffcutArea)
	require.Len(t, offcuts, 2)
	assert.Equal(t, 5000.0, offcuts[0].Area())
	assert.Equal(t, 1600.0, offcuts[1].Area())
	assert.Equal(t, 3, offcuts[0].SheetIndex)
}

func TestDetectOffcuts_NoFreeSpace(t *testing.T) {
	assert.Empty(t, DetectOffcuts(Sheet{Width: 10, Height: 10}, 0, 1, 1))
}

func TestDetectAllOffcuts(t *testing.T) {
	sheets := []Sheet{
		{FreeRects: []Rect{{W: 20, H: 20}}},
		{FreeRects: []Rect{{W: 30, H: 10}}},
	}
	all := DetectAllOffcuts(sheets, 5, 100)
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].SheetIndex)
	assert.Equal(t, 1, all[1].SheetIndex)
	assert.Equal(t, 700.0, TotalOffcutArea(all))
}
