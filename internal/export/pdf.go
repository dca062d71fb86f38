// Package export writes packed plans to documents and machine files.
package export

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/maruel/natural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"

	"github.com/piwi3910/cutplan/internal/engine"
	"github.com/piwi3910/cutplan/internal/model"
	"github.com/piwi3910/cutplan/internal/render"
)

// MaterialSection is one material of a plan document: its configuration,
// the packed sheets and their utilization report.
type MaterialSection struct {
	Name   string
	Code   string
	Config model.PackConfig
	Sheets []model.Sheet
	Result model.Result
}

// PlanDocument is everything the cutting-plan PDF prints.
type PlanDocument struct {
	Title       string
	Client      string
	PlanCode    string
	GeneratedAt time.Time
	Unit        string // Dimension suffix, "cm" when empty
	Locale      string // BCP 47 tag for number formatting, "en" when empty
	Notes       string // Printed after the computed notes
	Materials   []MaterialSection
}

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
	lineHeight   = 5.0
	thumbWidth   = 1200
)

// planWriter carries the document state while pages are laid out.
type planWriter struct {
	pdf     *fpdf.Fpdf
	tr      func(string) string
	printer *message.Printer
	unit    string
	y       float64
}

// ExportPlanPDF generates the cutting-plan document: a header, one section
// per material with its piece list and sheet layouts, and a notes block with
// the average material efficiency.
func ExportPlanPDF(path string, doc PlanDocument) error {
	if len(doc.Materials) == 0 {
		return fmt.Errorf("no materials to export")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	w := &planWriter{
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		printer: message.NewPrinter(parseLocale(doc.Locale)),
		unit:    doc.Unit,
	}
	if w.unit == "" {
		w.unit = "cm"
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-marginBottom + 3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	w.y = marginTop
	w.header(doc)

	results := make([]model.Result, 0, len(doc.Materials))
	for i, m := range doc.Materials {
		if err := w.material(i, m); err != nil {
			return err
		}
		results = append(results, m.Result)
	}

	w.notes(doc, results)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build plan document: %w", err)
	}
	return pdf.OutputFileAndClose(path)
}

func parseLocale(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}

func (w *planWriter) text(s string) string {
	return w.tr(norm.NFC.String(s))
}

// ensure starts a new page when h millimeters do not fit on this one.
func (w *planWriter) ensure(h float64) {
	if w.y+h > pageHeight-marginBottom {
		w.pdf.AddPage()
		w.y = marginTop
	}
}

func (w *planWriter) line(style string, size float64, s string) {
	w.ensure(lineHeight)
	w.pdf.SetFont("Helvetica", style, size)
	w.pdf.SetXY(marginLeft, w.y)
	w.pdf.CellFormat(contentWidth, lineHeight, w.text(s), "", 0, "L", false, 0, "")
	w.y += lineHeight
}

func (w *planWriter) header(doc PlanDocument) {
	title := doc.Title
	if title == "" {
		title = "Cutting Plan"
	}

	w.pdf.SetFont("Helvetica", "B", 16)
	w.pdf.SetXY(marginLeft, w.y)
	w.pdf.CellFormat(contentWidth, 10, w.text(title), "", 0, "L", false, 0, "")
	w.y += 11

	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.SetLineWidth(0.5)
	w.pdf.Line(marginLeft, w.y, pageWidth-marginRight, w.y)
	w.y += 3

	if doc.Client != "" {
		w.line("", 10, "Client: "+doc.Client)
	}
	if doc.PlanCode != "" {
		w.line("", 10, "Plan: "+doc.PlanCode)
	}
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	w.line("", 10, "Generated: "+generated.Format("2006-01-02 15:04"))
	w.y += 4
}

func (w *planWriter) material(index int, m MaterialSection) error {
	w.ensure(30)

	name := m.Name
	if name == "" {
		name = fmt.Sprintf("Material %d", index+1)
	}
	w.pdf.SetFillColor(230, 230, 230)
	w.pdf.SetFont("Helvetica", "B", 12)
	w.pdf.SetXY(marginLeft, w.y)
	w.pdf.CellFormat(contentWidth, 7, w.text(name), "", 0, "L", true, 0, "")
	w.y += 8

	if m.Code != "" {
		w.line("", 9, "Code: "+m.Code)
	}
	w.line("", 9, "Cut direction: "+m.Config.Grain.Code())
	w.line("", 9, w.printer.Sprintf("Sheets: %d (%.2f sheets of material, %.1f%% efficiency)",
		m.Result.TotalIntegerSheets, m.Result.TotalFractionalSheets, m.Result.Efficiency()*100))
	w.y += 2

	w.line("B", 10, "Pieces")
	for _, label := range w.pieceList(m.Config.Items) {
		w.line("", 9, label)
	}
	w.y += 3

	for i, sheet := range m.Sheets {
		if err := w.sheet(index, i, sheet, m); err != nil {
			return err
		}
	}

	if len(m.Result.OversizedPieces) > 0 {
		w.ensure(2 * lineHeight)
		w.pdf.SetTextColor(200, 0, 0)
		w.line("B", 10, "WARNING: pieces larger than the sheet")
		for _, o := range m.Result.OversizedPieces {
			w.line("", 9, fmt.Sprintf("- %s (%s) on sheet %d", o.Name, w.size(o.Width, o.Height), o.SheetIndex+1))
		}
		w.pdf.SetTextColor(0, 0, 0)
	}
	w.y += 5
	return nil
}

// pieceList returns "- name (w x h unit)" lines in natural name order.
func (w *planWriter) pieceList(items []model.Piece) []string {
	sorted := append([]model.Piece(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return natural.Less(sorted[i].Label(), sorted[j].Label())
	})
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = fmt.Sprintf("- %s (%s)", p.Label(), w.size(p.Width, p.Height))
	}
	return out
}

func (w *planWriter) size(width, height float64) string {
	return fmt.Sprintf("%s x %s %s", formatNumber(width), formatNumber(height), w.unit)
}

func (w *planWriter) sheet(materialIndex, sheetIndex int, sheet model.Sheet, m MaterialSection) error {
	drawH := contentWidth * sheet.Height / sheet.Width
	maxH := pageHeight - marginTop - marginBottom - 2*lineHeight
	drawW := contentWidth
	if drawH > maxH {
		drawW = contentWidth * maxH / drawH
		drawH = maxH
	}
	w.ensure(lineHeight + drawH + 4)

	util := 0.0
	if sheetIndex < len(m.Result.UtilizationPerSheet) {
		util = m.Result.UtilizationPerSheet[sheetIndex]
	}
	w.line("B", 10, w.printer.Sprintf("Sheet %d (%s) - %.1f%%", sheetIndex+1, w.size(sheet.Width, sheet.Height), util*100))

	x := marginLeft + (contentWidth-drawW)/2
	img := ""
	if sheetIndex < len(m.Result.Base64Images) {
		img = m.Result.Base64Images[sheetIndex]
	}

	if img != "" {
		if err := w.sheetImage(fmt.Sprintf("sheet_%d_%d", materialIndex, sheetIndex), img, x, w.y, drawW, drawH); err != nil {
			return err
		}
	} else {
		w.sheetOutline(sheet, x, w.y, drawW/sheet.Width)
	}
	w.y += drawH + 4
	return nil
}

// sheetImage places a rendered sheet, scaled down to keep the file small.
func (w *planWriter) sheetImage(name, dataURL string, x, y, width, height float64) error {
	img, err := render.DecodeDataURL(dataURL)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, render.Thumbnail(img, thumbWidth)); err != nil {
		return fmt.Errorf("failed to encode image %s: %w", name, err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	w.pdf.RegisterImageOptionsReader(name, opts, &buf)
	w.pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	return nil
}

// sheetOutline draws the layout as vector rectangles when no raster image
// is available.
func (w *planWriter) sheetOutline(sheet model.Sheet, x, y, scale float64) {
	pdf := w.pdf
	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y, sheet.Width*scale, sheet.Height*scale, "D")

	for _, u := range sheet.UsedRects {
		pw := math.Min(u.DrawnW, sheet.Width-u.X) * scale
		ph := math.Min(u.DrawnH, sheet.Height-u.Y) * scale
		px := x + u.X*scale
		py := y + u.Y*scale

		if u.Oversize {
			pdf.SetFillColor(102, 102, 102)
		} else {
			pdf.SetFillColor(204, 204, 204)
		}
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 6 {
			pdf.SetFont("Helvetica", "", 6)
			label := w.text(u.Name)
			if pdf.GetStringWidth(label) < pw-2 {
				pdf.SetXY(px, py+ph/2-2)
				pdf.CellFormat(pw, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}
}

func (w *planWriter) notes(doc PlanDocument, results []model.Result) {
	w.ensure(4 * lineHeight)
	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.SetLineWidth(0.3)
	w.pdf.Line(marginLeft, w.y, pageWidth-marginRight, w.y)
	w.y += 2

	w.line("B", 11, "Notes")
	w.line("", 10, w.printer.Sprintf("Average efficiency: %.2f%%", engine.AverageEfficiency(results...)*100))

	var sheets int
	for _, r := range results {
		sheets += r.TotalIntegerSheets
	}
	w.line("", 10, w.printer.Sprintf("Sheets to cut: %d", sheets))

	if doc.Notes != "" {
		w.ensure(lineHeight)
		w.pdf.SetFont("Helvetica", "", 10)
		w.pdf.SetXY(marginLeft, w.y)
		w.pdf.MultiCell(contentWidth, lineHeight, w.text(doc.Notes), "", "L", false)
		w.y = w.pdf.GetY()
	}
}

// formatNumber prints whole numbers without decimals.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
