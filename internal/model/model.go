package model

import (
	"fmt"
	"strings"
)

// Grain represents the piece-rotation policy of a material.
type Grain int

const (
	GrainNone       Grain = iota // No grain constraint, can rotate freely
	GrainHorizontal              // Grain runs along the width, never rotate
	GrainVertical                // Grain runs along the height, never rotate
)

func (g Grain) String() string {
	switch g {
	case GrainHorizontal:
		return "Horizontal"
	case GrainVertical:
		return "Vertical"
	default:
		return "None"
	}
}

// Code returns the short orientation code used in job files: "H", "V" or "VH".
func (g Grain) Code() string {
	switch g {
	case GrainHorizontal:
		return "H"
	case GrainVertical:
		return "V"
	default:
		return "VH"
	}
}

// AllowsRotation reports whether the placement heuristic may try the 90°
// rotated footprint. Fixed-grain modes never rotate.
func (g Grain) AllowsRotation() bool {
	return g == GrainNone
}

// ParseGrain converts an orientation code or name into a Grain.
func ParseGrain(s string) (Grain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return GrainHorizontal, nil
	case "v", "vertical":
		return GrainVertical, nil
	case "vh", "hv", "", "none", "free":
		return GrainNone, nil
	default:
		return GrainNone, fmt.Errorf("unknown orientation %q (want H, V or VH)", s)
	}
}

// MarshalText encodes the grain as its orientation code.
func (g Grain) MarshalText() ([]byte, error) {
	return []byte(g.Code()), nil
}

// UnmarshalText decodes an orientation code. Used by the JSON, YAML and TOML
// job file codecs.
func (g *Grain) UnmarshalText(b []byte) error {
	parsed, err := ParseGrain(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// DefaultPieceName labels pieces submitted without a name.
const DefaultPieceName = "Piece"

// Piece represents a required rectangle to be cut. Identity is positional:
// the index of the piece in PackConfig.Items.
type Piece struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Width  float64 `json:"w" yaml:"w" toml:"w"`
	Height float64 `json:"h" yaml:"h" toml:"h"`
}

// Area returns the declared area of the piece.
func (p Piece) Area() float64 {
	return p.Width * p.Height
}

// Label returns the piece name, or DefaultPieceName when it has none.
func (p Piece) Label() string {
	if p.Name == "" {
		return DefaultPieceName
	}
	return p.Name
}

// PackConfig holds everything one optimization run consumes. It is built
// once per run and never mutated by the optimizer.
type PackConfig struct {
	SheetWidth      float64 `json:"sheetW" yaml:"sheetW" toml:"sheetW"`
	SheetHeight     float64 `json:"sheetH" yaml:"sheetH" toml:"sheetH"`
	Items           []Piece `json:"items" yaml:"items" toml:"items"`
	Margin          float64 `json:"margin" yaml:"margin" toml:"margin"`
	PieceSpacing    float64 `json:"pieceSpacing" yaml:"pieceSpacing" toml:"pieceSpacing"`
	Grain           Grain   `json:"orientation" yaml:"orientation" toml:"orientation"`
	WastePercentage float64 `json:"wastePercentage" yaml:"wastePercentage" toml:"wastePercentage"`
}

// Rect is an axis-aligned rectangle in sheet-local coordinates with the
// origin at the sheet's top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the trailing edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the trailing edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Area returns w*h.
func (r Rect) Area() float64 { return r.W * r.H }

// PlacedPiece is a piece positioned on a sheet.
type PlacedPiece struct {
	Rect
	Index    int     `json:"index"` // Position of the piece in the input list
	Name     string  `json:"name"`
	Rotated  bool    `json:"rotated"`
	OrigW    float64 `json:"origW"`  // Declared width before rotation
	OrigH    float64 `json:"origH"`  // Declared height before rotation
	DrawnW   float64 `json:"drawnW"` // Footprint width actually consumed
	DrawnH   float64 `json:"drawnH"` // Footprint height actually consumed
	Oversize bool    `json:"oversize,omitempty"`
}

// Footprint returns the rectangle the piece covers on the sheet.
func (p PlacedPiece) Footprint() Rect {
	return Rect{X: p.X, Y: p.Y, W: p.DrawnW, H: p.DrawnH}
}

// WidthLabel returns the dimension shown along the footprint's horizontal
// edge, which is the declared height when the piece was rotated.
func (p PlacedPiece) WidthLabel() float64 {
	if p.Rotated {
		return p.OrigH
	}
	return p.OrigW
}

// HeightLabel returns the dimension shown along the footprint's vertical edge.
func (p PlacedPiece) HeightLabel() float64 {
	if p.Rotated {
		return p.OrigW
	}
	return p.OrigH
}

// Sheet is one instance of stock material. FreeRects is the live frontier of
// placeable space; UsedRects only grows.
type Sheet struct {
	Width     float64       `json:"w"`
	Height    float64       `json:"h"`
	FreeRects []Rect        `json:"freeRects"`
	UsedRects []PlacedPiece `json:"usedRects"`
}

// UsedArea returns the declared area of every non-oversize placed piece.
func (s Sheet) UsedArea() float64 {
	var total float64
	for _, u := range s.UsedRects {
		if u.Oversize {
			continue
		}
		total += u.OrigW * u.OrigH
	}
	return total
}

// TotalArea returns the sheet area.
func (s Sheet) TotalArea() float64 {
	return s.Width * s.Height
}

// Clone returns a deep copy of the sheet.
func (s Sheet) Clone() Sheet {
	cp := s
	cp.FreeRects = append([]Rect(nil), s.FreeRects...)
	cp.UsedRects = append([]PlacedPiece(nil), s.UsedRects...)
	return cp
}

// OversizePiece identifies a piece that could not fit a fresh sheet and was
// force-placed at the origin.
type OversizePiece struct {
	Index      int     `json:"index"`
	SheetIndex int     `json:"sheet"`
	Name       string  `json:"name"`
	Width      float64 `json:"w"`
	Height     float64 `json:"h"`
}

// Result is the utilization report of one plan.
type Result struct {
	UtilizationPerSheet   []float64       `json:"utilizationPerSheet"`
	TotalFractionalSheets float64         `json:"totalFractionalSheets"`
	TotalIntegerSheets    int             `json:"totalIntegerSheets"`
	Base64Images          []string        `json:"base64Images,omitempty"`
	OversizedPieces       []OversizePiece `json:"oversizedPieces,omitempty"`
}

// Efficiency returns fractional sheets over integer sheets, or 0 when no
// sheet was opened.
func (r Result) Efficiency() float64 {
	if r.TotalIntegerSheets == 0 {
		return 0
	}
	return r.TotalFractionalSheets / float64(r.TotalIntegerSheets)
}

// HasImages reports whether images were requested for this result.
func (r Result) HasImages() bool {
	return r.Base64Images != nil
}

// DefaultSettings returns the configuration used when a job omits values.
func DefaultSettings() PackConfig {
	return PackConfig{
		SheetWidth:      275,
		SheetHeight:     185,
		Margin:          0,
		PieceSpacing:    0,
		Grain:           GrainNone,
		WastePercentage: 5,
	}
}
