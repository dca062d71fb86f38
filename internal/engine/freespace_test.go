package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cutplan/internal/model"
)

func TestGeometry_Predicates(t *testing.T) {
	c := model.Rect{X: 0, Y: 0, W: 10, H: 10}
	assert.True(t, fits(c, 10, 10))
	assert.True(t, fits(c, 10+eps/2, 10))
	assert.False(t, fits(c, 10.001, 1))

	// Touching edges do not intersect
	assert.False(t, intersects(c, model.Rect{X: 10, Y: 0, W: 5, H: 5}))
	assert.False(t, intersects(c, model.Rect{X: 0, Y: 10, W: 5, H: 5}))
	assert.True(t, intersects(c, model.Rect{X: 9, Y: 9, W: 5, H: 5}))

	assert.True(t, contains(c, model.Rect{X: 2, Y: 2, W: 8, H: 8}))
	assert.True(t, contains(c, c))
	assert.False(t, contains(c, model.Rect{X: 2, Y: 2, W: 9, H: 8}))
}

func TestSplitFreeRect_NoIntersection(t *testing.T) {
	free := model.Rect{X: 0, Y: 0, W: 10, H: 10}
	out := splitFreeRect(free, model.Rect{X: 20, Y: 20, W: 5, H: 5})
	assert.Equal(t, []model.Rect{free}, out)
}

func TestSplitFreeRect_CenterPlacement(t *testing.T) {
	free := model.Rect{X: 0, Y: 0, W: 100, H: 100}
	out := splitFreeRect(free, model.Rect{X: 40, Y: 30, W: 20, H: 10})

	require.Len(t, out, 4)
	assert.Equal(t, model.Rect{X: 0, Y: 0, W: 100, H: 30}, out[0])  // above
	assert.Equal(t, model.Rect{X: 0, Y: 40, W: 100, H: 60}, out[1]) // below
	assert.Equal(t, model.Rect{X: 0, Y: 0, W: 40, H: 100}, out[2])  // left
	assert.Equal(t, model.Rect{X: 60, Y: 0, W: 40, H: 100}, out[3]) // right
}

func TestSplitFreeRect_CornerPlacement(t *testing.T) {
	free := model.Rect{X: 0, Y: 0, W: 100, H: 100}
	out := splitFreeRect(free, model.Rect{X: 0, Y: 0, W: 50, H: 50})

	require.Len(t, out, 2)
	assert.Equal(t, model.Rect{X: 0, Y: 50, W: 100, H: 50}, out[0])
	assert.Equal(t, model.Rect{X: 50, Y: 0, W: 50, H: 100}, out[1])
}

func TestSplitFreeRect_FullCover(t *testing.T) {
	free := model.Rect{X: 5, Y: 5, W: 10, H: 10}
	assert.Empty(t, splitFreeRect(free, model.Rect{X: 0, Y: 0, W: 20, H: 20}))
}

func TestPruneFreeRects(t *testing.T) {
	rects := []model.Rect{
		{X: 0, Y: 50, W: 100, H: 50},
		{X: 50, Y: 50, W: 50, H: 50}, // inside the first
		{X: 50, Y: 0, W: 50, H: 100},
	}
	out := pruneFreeRects(rects)
	assert.Equal(t, []model.Rect{
		{X: 0, Y: 50, W: 100, H: 50},
		{X: 50, Y: 0, W: 50, H: 100},
	}, out)
}

func TestPruneFreeRects_DuplicatesKeepOne(t *testing.T) {
	r := model.Rect{X: 1, Y: 1, W: 5, H: 5}
	out := pruneFreeRects([]model.Rect{r, r, r})
	assert.Equal(t, []model.Rect{r}, out)
}

func TestPlaceRect_SpacingOnTrailingEdges(t *testing.T) {
	sheet := newSheet(100, 100, 0)
	placeRect(sheet, model.PlacedPiece{
		Rect:   model.Rect{X: 0, Y: 0, W: 40, H: 40},
		DrawnW: 40,
		DrawnH: 40,
		OrigW:  40,
		OrigH:  40,
	}, 10)

	require.Len(t, sheet.UsedRects, 1)
	assert.Equal(t, []model.Rect{
		{X: 0, Y: 50, W: 100, H: 50},
		{X: 50, Y: 0, W: 50, H: 100},
	}, sheet.FreeRects)
}

func TestNewSheet_Margin(t *testing.T) {
	s := newSheet(100, 80, 5)
	assert.Equal(t, []model.Rect{{X: 5, Y: 5, W: 90, H: 70}}, s.FreeRects)
	assert.Empty(t, s.UsedRects)
}

func TestFindPosition_BottomLeft(t *testing.T) {
	sheet := &model.Sheet{FreeRects: []model.Rect{
		{X: 50, Y: 10, W: 50, H: 50},
		{X: 0, Y: 10, W: 50, H: 50},
		{X: 0, Y: 30, W: 100, H: 70},
	}}
	pos, ok := findPosition(sheet, 20, 20, false, 0)
	require.True(t, ok)
	assert.Equal(t, position{x: 0, y: 10}, pos)
}

func TestFindPosition_Rotation(t *testing.T) {
	sheet := newSheet(100, 50, 0)

	pos, ok := findPosition(sheet, 40, 90, true, 0)
	require.True(t, ok)
	assert.True(t, pos.rotated)

	_, ok = findPosition(sheet, 40, 90, false, 0)
	assert.False(t, ok)
}

func TestFindPosition_PrefersUnrotatedAtSameCorner(t *testing.T) {
	sheet := newSheet(100, 100, 0)
	pos, ok := findPosition(sheet, 10, 20, true, 0)
	require.True(t, ok)
	assert.False(t, pos.rotated)
}

func TestFindBestAreaPosition(t *testing.T) {
	sheet := &model.Sheet{FreeRects: []model.Rect{
		{X: 0, Y: 0, W: 100, H: 100},
		{X: 0, Y: 60, W: 25, H: 25},
	}}
	pos, left := findBestAreaPosition(sheet, 20, 20, false, 0)
	assert.Equal(t, position{x: 0, y: 60}, pos)
	assert.InDelta(t, 225.0, left, 1e-9)

	_, left = findBestAreaPosition(sheet, 200, 20, true, 0)
	assert.Equal(t, -1.0, left)
}
