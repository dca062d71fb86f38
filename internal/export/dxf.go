package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/cutplan/internal/model"
)

// DXF layer names. Each concern gets its own layer so a CAM program can
// toggle them independently.
const (
	LayerSheet    = "SHEET"
	LayerMargin   = "MARGIN"
	LayerPieces   = "PIECES"
	LayerOversize = "OVERSIZE"
	LayerLabels   = "LABELS"
)

const dxfTextHeight = 2.0

// ExportDXF writes one sheet layout as DXF line work: the sheet outline, the
// margin inset and every placed footprint. DXF has the y axis pointing up, so
// the layout is mirrored to keep the origin at the top-left corner.
func ExportDXF(path string, sheet model.Sheet, index int, margin float64) error {
	if !(sheet.Width > 0) || !(sheet.Height > 0) {
		return fmt.Errorf("invalid sheet size %vx%v", sheet.Width, sheet.Height)
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerSheet, color.White},
		{LayerMargin, color.Cyan},
		{LayerPieces, color.Yellow},
		{LayerOversize, color.Red},
		{LayerLabels, color.Green},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	flip := func(y float64) float64 { return sheet.Height - y }

	if err := d.ChangeLayer(LayerSheet); err != nil {
		return err
	}
	if err := dxfRect(d, 0, 0, sheet.Width, sheet.Height, flip); err != nil {
		return err
	}

	if margin > 0 {
		if err := d.ChangeLayer(LayerMargin); err != nil {
			return err
		}
		if err := dxfRect(d, margin, margin, sheet.Width-2*margin, sheet.Height-2*margin, flip); err != nil {
			return err
		}
	}

	for _, u := range sheet.UsedRects {
		layer := LayerPieces
		if u.Oversize {
			layer = LayerOversize
		}
		if err := d.ChangeLayer(layer); err != nil {
			return err
		}
		if err := dxfRect(d, u.X, u.Y, u.DrawnW, u.DrawnH, flip); err != nil {
			return fmt.Errorf("failed to draw piece %q: %w", u.Name, err)
		}

		if err := d.ChangeLayer(LayerLabels); err != nil {
			return err
		}
		label := fmt.Sprintf("%s %sx%s", u.Name, formatNumber(u.WidthLabel()), formatNumber(u.HeightLabel()))
		if _, err := d.Text(label, u.X+1, flip(u.Y+u.DrawnH)+1, 0, dxfTextHeight); err != nil {
			return fmt.Errorf("failed to label piece %q: %w", u.Name, err)
		}
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return err
	}
	title := fmt.Sprintf("Sheet %d (%sx%s)", index+1, formatNumber(sheet.Width), formatNumber(sheet.Height))
	if _, err := d.Text(title, 0, sheet.Height+dxfTextHeight, 0, dxfTextHeight); err != nil {
		return err
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF %s: %w", path, err)
	}
	return nil
}

// ExportDXFDir writes one DXF per sheet into dir as <prefix>-<n>.dxf and
// returns the written paths. dir is created when missing.
func ExportDXFDir(dir, prefix string, sheets []model.Sheet, margin float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DXF directory: %w", err)
	}
	paths := make([]string, 0, len(sheets))
	for i, s := range sheets {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d.dxf", prefix, i+1))
		if err := ExportDXF(path, s, i, margin); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// dxfRect draws an axis-aligned rectangle as four lines.
func dxfRect(d *drawing.Drawing, x, y, w, h float64, flip func(float64) float64) error {
	x1, y1 := x, flip(y)
	x2, y2 := x+w, flip(y+h)
	edges := [][4]float64{
		{x1, y1, x2, y1},
		{x2, y1, x2, y2},
		{x2, y2, x1, y2},
		{x1, y2, x1, y1},
	}
	for _, e := range edges {
		if _, err := d.Line(e[0], e[1], 0, e[2], e[3], 0); err != nil {
			return err
		}
	}
	return nil
}
