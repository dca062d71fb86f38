package engine

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/cutplan/internal/model"
)

// Policy selects how the packer chooses among existing sheets.
type Policy int

const (
	// PolicyFirstFit places each piece on the first sheet, in creation
	// order, that admits it.
	PolicyFirstFit Policy = iota
	// PolicyBestFit compares every existing sheet and takes the free
	// rectangle with the least leftover area. It produces different sheet
	// assignments than PolicyFirstFit.
	PolicyBestFit
)

func (p Policy) String() string {
	if p == PolicyBestFit {
		return "best-fit"
	}
	return "first-fit"
}

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "first-fit", "firstfit", "first":
		return PolicyFirstFit, true
	case "best-fit", "bestfit", "best":
		return PolicyBestFit, true
	}
	return PolicyFirstFit, false
}

// Option configures a Plan.
type Option func(*Plan)

// WithLogger sets the logger used for packing diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(p *Plan) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPolicy sets the sheet selection policy.
func WithPolicy(policy Policy) Option {
	return func(p *Plan) { p.policy = policy }
}

// Plan is a packed configuration. All packing happens in New; afterwards the
// plan is read-only and safe to share.
type Plan struct {
	cfg       model.PackConfig
	policy    Policy
	logger    *log.Logger
	sheets    []*model.Sheet
	oversized []model.OversizePiece
}

// New packs cfg and returns the finished plan. cfg must pass Validate; the
// packer does not check it again.
func New(cfg model.PackConfig, opts ...Option) *Plan {
	p := &Plan{
		cfg:    cfg,
		policy: PolicyFirstFit,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.pack()
	return p
}

// Config returns the configuration the plan was built from.
func (p *Plan) Config() model.PackConfig { return p.cfg }

// Policy returns the sheet selection policy used.
func (p *Plan) Policy() Policy { return p.policy }

// SheetCount returns the number of sheets opened.
func (p *Plan) SheetCount() int { return len(p.sheets) }

// Sheets returns deep copies of the packed sheets in creation order.
func (p *Plan) Sheets() []model.Sheet {
	out := make([]model.Sheet, len(p.sheets))
	for i, s := range p.sheets {
		out[i] = s.Clone()
	}
	return out
}

// Oversized lists the pieces that did not fit an empty sheet and were
// force-placed at the sheet origin.
func (p *Plan) Oversized() []model.OversizePiece {
	return append([]model.OversizePiece(nil), p.oversized...)
}

type indexedPiece struct {
	index int
	piece model.Piece
}

func (p *Plan) pack() {
	items := make([]indexedPiece, len(p.cfg.Items))
	for i, it := range p.cfg.Items {
		items[i] = indexedPiece{index: i, piece: it}
	}

	// Largest area first reduces fragmentation; equal areas keep input order
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].piece.Area() > items[j].piece.Area()
	})

	allowRotate := p.cfg.Grain.AllowsRotation()
	spacing := p.cfg.PieceSpacing

	for _, it := range items {
		w, h := it.piece.Width, it.piece.Height

		sheet, pos, ok := p.selectSheet(w, h, allowRotate, spacing)
		if ok {
			placeRect(sheet, placedPiece(it, pos), spacing)
			continue
		}

		sheet = newSheet(p.cfg.SheetWidth, p.cfg.SheetHeight, p.cfg.Margin)
		if pos, ok := findPosition(sheet, w, h, allowRotate, spacing); ok {
			placeRect(sheet, placedPiece(it, pos), spacing)
		} else {
			p.forcePlace(sheet, it)
		}
		p.sheets = append(p.sheets, sheet)
	}

	p.logger.Debug("packed configuration",
		"pieces", len(items),
		"sheets", len(p.sheets),
		"policy", p.policy,
		"oversize", len(p.oversized))
}

// selectSheet looks for an existing sheet that admits the piece.
func (p *Plan) selectSheet(w, h float64, allowRotate bool, spacing float64) (*model.Sheet, position, bool) {
	if p.policy == PolicyBestFit {
		var (
			bestSheet *model.Sheet
			bestPos   position
			bestLeft  = float64(-1)
		)
		for _, s := range p.sheets {
			pos, left := findBestAreaPosition(s, w, h, allowRotate, spacing)
			if left < 0 {
				continue
			}
			// Strict comparisons keep the earliest sheet on full ties
			if bestSheet == nil || left < bestLeft-eps ||
				(left <= bestLeft+eps && (pos.y < bestPos.y || (pos.y == bestPos.y && pos.x < bestPos.x))) {
				bestSheet, bestPos, bestLeft = s, pos, left
			}
		}
		return bestSheet, bestPos, bestSheet != nil
	}

	for _, s := range p.sheets {
		if pos, ok := findPosition(s, w, h, allowRotate, spacing); ok {
			return s, pos, true
		}
	}
	return nil, position{}, false
}

// forcePlace puts a piece that cannot fit an empty sheet at the origin. The
// free-space ledger is left untouched.
func (p *Plan) forcePlace(sheet *model.Sheet, it indexedPiece) {
	w, h := it.piece.Width, it.piece.Height
	sheet.UsedRects = append(sheet.UsedRects, model.PlacedPiece{
		Rect:     model.Rect{X: 0, Y: 0, W: w, H: h},
		Index:    it.index,
		Name:     it.piece.Label(),
		OrigW:    w,
		OrigH:    h,
		DrawnW:   w,
		DrawnH:   h,
		Oversize: true,
	})
	p.oversized = append(p.oversized, model.OversizePiece{
		Index:      it.index,
		SheetIndex: len(p.sheets),
		Name:       it.piece.Label(),
		Width:      w,
		Height:     h,
	})
	p.logger.Warn("piece does not fit the sheet, placed as oversize",
		"index", it.index,
		"name", it.piece.Label(),
		"size", formatSize(w, h),
		"sheet", formatSize(p.cfg.SheetWidth, p.cfg.SheetHeight),
		"margin", p.cfg.Margin)
}

func placedPiece(it indexedPiece, pos position) model.PlacedPiece {
	w, h := it.piece.Width, it.piece.Height
	drawnW, drawnH := w, h
	if pos.rotated {
		drawnW, drawnH = h, w
	}
	return model.PlacedPiece{
		Rect:    model.Rect{X: pos.x, Y: pos.y, W: drawnW, H: drawnH},
		Index:   it.index,
		Name:    it.piece.Label(),
		Rotated: pos.rotated,
		OrigW:   w,
		OrigH:   h,
		DrawnW:  drawnW,
		DrawnH:  drawnH,
	}
}
