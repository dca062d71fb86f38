package engine

import (
	"fmt"
	"strconv"

	"github.com/piwi3910/cutplan/internal/model"
)

// Renderer draws one sheet of a plan and returns it as a self-contained
// encoded image. It returns "" when no drawing surface is available.
type Renderer interface {
	RenderSheet(sheet model.Sheet, cfg model.PackConfig) string
}

// CalculateOptions controls what Calculate produces besides the numbers.
type CalculateOptions struct {
	IncludeImages bool
	Renderer      Renderer
}

// Calculate computes the utilization report. When images are requested, the
// image list is aligned with UtilizationPerSheet; a missing renderer yields
// empty entries rather than an error.
func (p *Plan) Calculate(opts CalculateOptions) model.Result {
	result := model.Result{
		UtilizationPerSheet: make([]float64, p.SheetCount()),
		TotalIntegerSheets:  p.SheetCount(),
		OversizedPieces:     p.Oversized(),
	}

	for i, s := range p.sheets {
		u := utilization(*s, p.cfg.WastePercentage)
		result.UtilizationPerSheet[i] = u
		result.TotalFractionalSheets += u
	}

	if opts.IncludeImages {
		result.Base64Images = make([]string, p.SheetCount())
		if opts.Renderer == nil {
			p.logger.Warn("images requested without a renderer, leaving them empty")
		} else {
			for i, s := range p.sheets {
				result.Base64Images[i] = opts.Renderer.RenderSheet(s.Clone(), p.cfg)
			}
		}
	}

	return result
}

// utilization returns the used share of the sheet. A sheet whose waste is
// within wastePercentage counts as fully used.
func utilization(sheet model.Sheet, wastePercentage float64) float64 {
	total := sheet.TotalArea()
	if total <= 0 {
		return 0
	}
	u := sheet.UsedArea() / total
	waste := 1 - u
	if waste > 0 && waste <= wastePercentage/100 {
		return 1
	}
	return u
}

func formatSize(w, h float64) string {
	return fmt.Sprintf("%sx%s", strconv.FormatFloat(w, 'f', -1, 64), strconv.FormatFloat(h, 'f', -1, 64))
}
