package render

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cutplan/internal/model"
)

func testSheet() model.Sheet {
	return model.Sheet{
		Width:  200,
		Height: 100,
		UsedRects: []model.PlacedPiece{
			{
				Rect:  model.Rect{X: 0, Y: 0, W: 100, H: 100},
				Name:  "Door",
				OrigW: 100, OrigH: 100, DrawnW: 100, DrawnH: 100,
			},
			{
				Rect:    model.Rect{X: 100, Y: 0, W: 60, H: 30},
				Index:   1,
				Name:    "Shelf",
				Rotated: true,
				OrigW:   30, OrigH: 60, DrawnW: 60, DrawnH: 30,
			},
		},
	}
}

func grayAt(img image.Image, x, y int) (uint32, uint32, uint32) {
	r, g, b, _ := img.At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func TestCanvasSize(t *testing.T) {
	w, h := canvasSize(2400, 275, 185)
	assert.Equal(t, 2400, w)
	assert.Equal(t, 1665, h)

	w, h = canvasSize(2400, 100, 100)
	assert.Equal(t, 2400, w)
	assert.Equal(t, 2400+2*padding, h)
}

func TestFitFontSize(t *testing.T) {
	// Shrinks when the label is too wide
	size, ok := fitFontSize(200, 100, 45, false)
	require.True(t, ok)
	assert.Equal(t, 22, size)

	// Dropped below the floor
	_, ok = fitFontSize(1000, 100, 45, false)
	assert.False(t, ok)

	// Base size when room is generous but growth is off
	size, ok = fitFontSize(100, 500, 45, false)
	require.True(t, ok)
	assert.Equal(t, 45, size)

	// Growth is capped
	size, ok = fitFontSize(100, 500, 45, true)
	require.True(t, ok)
	assert.Equal(t, 83, size)

	// No growth inside the threshold
	size, ok = fitFontSize(100, 105, 45, true)
	require.True(t, ok)
	assert.Equal(t, 45, size)

	_, ok = fitFontSize(100, 0, 45, true)
	assert.False(t, ok)
}

func TestShouldRotate(t *testing.T) {
	assert.True(t, shouldRotate(100, 40, 300))
	assert.False(t, shouldRotate(100, 300, 40))
	assert.False(t, shouldRotate(100, 50, 50))
	assert.False(t, shouldRotate(0, 10, 50))
}

func TestAvailableLength(t *testing.T) {
	assert.Equal(t, 80.0, availableLength(100))
	assert.Equal(t, 0.0, availableLength(5))
}

func TestRenderer_DimensionLabel(t *testing.T) {
	r := New()
	assert.Equal(t, "60 cm", r.dimensionLabel(60))
	assert.Equal(t, "12.5 cm", r.dimensionLabel(12.5))

	r = New(WithUnit(""))
	assert.Equal(t, "7", r.dimensionLabel(7))
}

func TestRenderer_HeadlessReturnsEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := New(Headless(), WithLogger(log.New(&buf)))

	assert.False(t, r.Available())
	assert.Equal(t, "", r.RenderSheet(testSheet(), model.PackConfig{SheetWidth: 200, SheetHeight: 100}))
	assert.Contains(t, buf.String(), "cannot render sheet")

	_, err := r.Draw(testSheet(), model.PackConfig{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRenderer_Draw(t *testing.T) {
	r := New(WithSeed(1), WithWidth(800))
	require.True(t, r.Available())

	img, err := r.Draw(testSheet(), model.PackConfig{Grain: model.GrainNone})
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 800, b.Dx())
	assert.Equal(t, 400+2*padding, b.Dy())

	// Background outside the sheet border
	rr, gg, bb := grayAt(img, 2, 2)
	assert.Equal(t, [3]uint32{0xFF, 0xFF, 0xFF}, [3]uint32{rr, gg, bb})

	// Flat fill near the top-left corner of the first piece
	rr, gg, bb = grayAt(img, padding+12, padding+12)
	assert.InDelta(t, 0xCC, rr, 2)
	assert.InDelta(t, 0xCC, gg, 2)
	assert.InDelta(t, 0xCC, bb, 2)
}

// darkPixels counts near-black pixels in the half-open pixel rectangle.
func darkPixels(img image.Image, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if rr, _, _ := grayAt(img, x, y); rr < 0x80 {
				n++
			}
		}
	}
	return n
}

func TestRenderer_LabelsStayInsideFootprint(t *testing.T) {
	sheet := model.Sheet{
		Width:  100,
		Height: 100,
		UsedRects: []model.PlacedPiece{{
			Rect:  model.Rect{W: 50, H: 50},
			Name:  "Door",
			OrigW: 50, OrigH: 50, DrawnW: 50, DrawnH: 50,
		}},
	}
	img, err := New(WithSeed(1), WithWidth(800)).Draw(sheet, model.PackConfig{Grain: model.GrainNone})
	require.NoError(t, err)

	// 7.5 px per unit across, 8 px per unit down: the piece spans x 25..400
	// and y 25..425. Leave room for the piece border and the sheet border.
	below := image.Rect(padding+pieceBorder, 425+pieceBorder, 400, 850-padding-sheetBorder)
	right := image.Rect(400+pieceBorder, padding+pieceBorder, 800-padding-sheetBorder, 425)
	assert.Zero(t, darkPixels(img, below), "ink below the piece")
	assert.Zero(t, darkPixels(img, right), "ink right of the piece")

	// The labels themselves were drawn
	inside := image.Rect(padding+pieceBorder, padding+pieceBorder, 400-pieceBorder, 425-pieceBorder)
	assert.Positive(t, darkPixels(img, inside))
}

func TestRenderer_DrawOversize(t *testing.T) {
	sheet := model.Sheet{
		Width:  10,
		Height: 10,
		UsedRects: []model.PlacedPiece{{
			Rect:  model.Rect{W: 20, H: 5},
			Name:  "Long",
			OrigW: 20, OrigH: 5, DrawnW: 20, DrawnH: 5, Oversize: true,
		}},
	}
	r := New(WithSeed(1), WithWidth(400))
	img, err := r.Draw(sheet, model.PackConfig{Grain: model.GrainHorizontal})
	require.NoError(t, err)

	rr, gg, bb := grayAt(img, padding+12, padding+12)
	assert.InDelta(t, 0x66, rr, 2)
	assert.InDelta(t, 0x66, gg, 2)
	assert.InDelta(t, 0x66, bb, 2)
}

func TestRenderer_SeededTextureIsReproducible(t *testing.T) {
	cfg := model.PackConfig{Grain: model.GrainVertical}

	a := New(WithSeed(99), WithWidth(600)).RenderSheet(testSheet(), cfg)
	b := New(WithSeed(99), WithWidth(600)).RenderSheet(testSheet(), cfg)

	require.True(t, strings.HasPrefix(a, DataURLPrefix))
	assert.Equal(t, a, b)
}

func TestRenderer_InvalidSheet(t *testing.T) {
	_, err := New().Draw(model.Sheet{}, model.PackConfig{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestDataURLRoundTrip(t *testing.T) {
	img, err := New(WithSeed(5), WithWidth(300)).Draw(testSheet(), model.PackConfig{Grain: model.GrainHorizontal})
	require.NoError(t, err)

	url, err := EncodeDataURL(img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	decoded, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Size(), decoded.Bounds().Size())

	_, err = DecodeDataURL("data:image/jpeg;base64,AAAA")
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 200))

	thumb := Thumbnail(img, 100)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())

	assert.Same(t, img, Thumbnail(img, 800))
}
