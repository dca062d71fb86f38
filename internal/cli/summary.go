package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/piwi3910/cutplan/internal/engine"
	"github.com/piwi3910/cutplan/internal/model"
	"github.com/piwi3910/cutplan/internal/project"
)

func printPlanSummary(w io.Writer, job project.Job, packed []packedMaterial, pricePerSheet float64) {
	printTitle(w, "%s", job.Title)
	if job.Client != "" {
		printKeyValue(w, "Client", job.Client)
	}
	printKeyValue(w, "Plan code", jobCode(job))
	printKeyValue(w, "Pieces", fmt.Sprintf("%d", job.PieceCount()))
	fmt.Fprintln(w)

	headers := []string{"Material", "Sheets", "Used", "Efficiency", "Per sheet"}
	if pricePerSheet > 0 {
		headers = append(headers, "Cost")
	}

	rows := make([][]string, 0, len(packed))
	results := make([]model.Result, 0, len(packed))
	var billed float64
	for _, m := range packed {
		res := m.Result
		results = append(results, res)
		row := []string{
			m.Material.Name,
			fmt.Sprintf("%d", res.TotalIntegerSheets),
			fmt.Sprintf("%.2f", res.TotalFractionalSheets),
			formatPercent(res.Efficiency()),
			formatUtilizations(res.UtilizationPerSheet),
		}
		if pricePerSheet > 0 {
			est := model.CalculatePurchaseEstimate(res, pricePerSheet)
			billed += est.BilledCost
			row = append(row, fmt.Sprintf("%.2f", est.BilledCost))
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(w, renderTable(headers, rows))

	printKeyValue(w, "Efficiency", formatPercent(engine.AverageEfficiency(results...)))
	if pricePerSheet > 0 {
		printKeyValue(w, "Total cost", fmt.Sprintf("%.2f", billed))
	}

	for _, m := range packed {
		sheets := m.Plan.Sheets()
		offcuts := model.DetectAllOffcuts(sheets, model.MinOffcutDimension, model.MinOffcutArea)
		if len(offcuts) > 0 {
			printKeyValue(w, "Offcuts", fmt.Sprintf("%s: %d reusable, largest %s",
				m.Material.Name, len(offcuts), formatDims(offcuts[0].Width, offcuts[0].Height)))
		}
		for _, o := range m.Result.OversizedPieces {
			printWarning(w, "%s: %q (%s) does not fit the sheet, placed alone on sheet %d",
				m.Material.Name, o.Name, formatDims(o.Width, o.Height), o.SheetIndex+1)
		}
	}
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func formatDims(w, h float64) string {
	return fmt.Sprintf("%gx%g", w, h)
}

// formatUtilizations lists per-sheet utilization, eliding long plans.
func formatUtilizations(us []float64) string {
	const maxShown = 6
	parts := make([]string, 0, maxShown+1)
	for i, u := range us {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("+%d", len(us)-maxShown))
			break
		}
		parts = append(parts, fmt.Sprintf("%.0f%%", u*100))
	}
	return strings.Join(parts, " ")
}

// slug turns a material name into a file name fragment.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "material"
	}
	return s
}
