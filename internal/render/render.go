// Package render draws packed sheets as raster images for printed and
// on-screen review.
package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"

	"github.com/piwi3910/cutplan/internal/model"
)

// ErrUnavailable is returned when no drawing surface can be produced.
var ErrUnavailable = errors.New("render: drawing surface unavailable")

// DataURLPrefix starts every encoded sheet image.
const DataURLPrefix = "data:image/png;base64,"

const (
	defaultWidth   = 2400
	padding        = 25
	sheetBorder    = 6
	pieceBorder    = 4
	nameFontSize   = 45
	dimFontSize    = 43
	labelInset     = 20
	dimMargin      = 10
	dimMinExtent   = 60
	opticalAspect  = 1.25
	oversizeFill   = "#666666"
	freeGrainFill  = "#CCCCCC"
	defaultUnit    = "cm"
	maxImageHeight = 20000
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for capability warnings.
func WithLogger(logger *log.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSeed pins the wood-grain texture so repeated renders are identical.
func WithSeed(seed int64) Option {
	return func(r *Renderer) { r.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand uses rng for the wood-grain texture.
func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithUnit sets the suffix printed after dimension labels.
func WithUnit(unit string) Option {
	return func(r *Renderer) { r.unit = unit }
}

// WithWidth sets the output image width in pixels.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 2*padding {
			r.width = width
		}
	}
}

// Headless makes the renderer behave as if no drawing surface existed.
func Headless() Option {
	return func(r *Renderer) { r.headless = true }
}

// Renderer draws sheets onto a software surface. It is safe for concurrent
// use; draws are serialized so the texture source stays reproducible.
type Renderer struct {
	mu       sync.Mutex
	rng      *rand.Rand
	unit     string
	width    int
	headless bool
	logger   *log.Logger
	fonts    *fontSet
}

// New creates a Renderer. Without WithSeed or WithRand the texture differs
// on every render.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		unit:   defaultUnit,
		width:  defaultWidth,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports whether the renderer can produce images.
func (r *Renderer) Available() bool {
	if r.headless {
		return false
	}
	_, err := loadFonts()
	return err == nil
}

// RenderSheet draws sheet and returns a PNG data URL. It returns "" and logs
// a warning when no drawing surface is available.
func (r *Renderer) RenderSheet(sheet model.Sheet, cfg model.PackConfig) string {
	img, err := r.Draw(sheet, cfg)
	if err != nil {
		r.logger.Warn("cannot render sheet, skipping image", "err", err)
		return ""
	}
	url, err := EncodeDataURL(img)
	if err != nil {
		r.logger.Warn("cannot encode sheet image", "err", err)
		return ""
	}
	return url
}

// Draw renders sheet to an image.
func (r *Renderer) Draw(sheet model.Sheet, cfg model.PackConfig) (image.Image, error) {
	if r.headless {
		return nil, ErrUnavailable
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !(sheet.Width > 0) || !(sheet.Height > 0) {
		return nil, fmt.Errorf("render: invalid sheet size %vx%v", sheet.Width, sheet.Height)
	}

	width, height := canvasSize(r.width, sheet.Width, sheet.Height)
	if height > maxImageHeight {
		return nil, fmt.Errorf("render: sheet aspect needs a %dpx tall image", height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(width, height)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(gg.White)
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(sheetBorder)
	dc.DrawRectangle(padding, padding, float64(width-2*padding), float64(height-2*padding))
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("render: sheet border: %w", err)
	}

	scaleX := float64(width-2*padding) / sheet.Width
	scaleY := float64(height-2*padding) / sheet.Height
	optical := sheet.Height/sheet.Width > opticalAspect

	for _, u := range sheet.UsedRects {
		x := u.X*scaleX + padding
		y := u.Y*scaleY + padding
		w := u.DrawnW * scaleX
		h := u.DrawnH * scaleY

		if err := r.drawPiece(dc, fonts, u, cfg.Grain, x, y, w, h, optical); err != nil {
			return nil, err
		}
	}

	_ = dc.FlushGPU()
	return dc.Image(), nil
}

func (r *Renderer) drawPiece(dc *gg.Context, fonts *fontSet, u model.PlacedPiece, grain model.Grain, x, y, w, h float64, optical bool) error {
	fx, fy, fw, fh := x+0.5, y+0.5, w-1, h-1

	switch {
	case u.Oversize:
		dc.SetHexColor(oversizeFill)
		dc.DrawRectangle(fx, fy, fw, fh)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("render: piece %d fill: %w", u.Index, err)
		}
	case grain == model.GrainHorizontal || grain == model.GrainVertical:
		if err := drawWoodTexture(dc, r.rng, fx, fy, fw, fh, grain); err != nil {
			return fmt.Errorf("render: piece %d texture: %w", u.Index, err)
		}
	default:
		dc.SetHexColor(freeGrainFill)
		dc.DrawRectangle(fx, fy, fw, fh)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("render: piece %d fill: %w", u.Index, err)
		}
	}

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(pieceBorder)
	dc.DrawRectangle(fx, fy, fw, fh)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("render: piece %d border: %w", u.Index, err)
	}

	drawName(dc, fonts, u.Name, x, y, w, h, optical)

	if w > dimMinExtent {
		label := r.dimensionLabel(u.WidthLabel())
		drawFitted(dc, fonts.regular, label, x+w/2, y+h-dimMargin, availableLength(w), dimFontSize, optical, anchorBottom)
	}
	if h > dimMinExtent {
		label := r.dimensionLabel(u.HeightLabel())
		drawFittedVertical(dc, fonts.regular, label, x+w-dimMargin, y+h/2, availableLength(h), dimFontSize, optical, anchorRight)
	}
	return nil
}

func (r *Renderer) dimensionLabel(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if r.unit == "" {
		return s
	}
	return s + " " + r.unit
}

// canvasSize keeps the sheet's aspect ratio at the requested width.
func canvasSize(width int, sheetW, sheetH float64) (int, int) {
	return width, int(math.Round(float64(width)*(sheetH/sheetW))) + 2*padding
}

// EncodeDataURL encodes img as a base64 PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL decodes a PNG data URL produced by EncodeDataURL.
func DecodeDataURL(url string) (image.Image, error) {
	if len(url) < len(DataURLPrefix) || url[:len(DataURLPrefix)] != DataURLPrefix {
		return nil, errors.New("render: not a PNG data URL")
	}
	data, err := base64.StdEncoding.DecodeString(url[len(DataURLPrefix):])
	if err != nil {
		return nil, fmt.Errorf("render: decode data URL: %w", err)
	}
	return decodePNG(bytes.NewReader(data))
}
