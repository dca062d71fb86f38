// Package gcode turns packed sheets into router toolpaths. Every placed
// piece is cut along its footprint, offset outward by the tool radius, in
// as many depth passes as the material needs.
package gcode

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/cutplan/internal/model"
)

// Generator produces G-code for the sheets of one packing configuration.
type Generator struct {
	Settings model.MachineSettings
	profile  Profile
	cfg      model.PackConfig
}

// New creates a Generator for sheets packed from cfg.
func New(settings model.MachineSettings, cfg model.PackConfig) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		Settings: settings,
		profile:  GetProfile(settings.Profile),
		cfg:      cfg,
	}, nil
}

// GenerateSheet produces G-code for a single sheet. Oversize pieces are
// listed in a comment and not cut.
func (g *Generator) GenerateSheet(sheet model.Sheet, sheetIndex int) string {
	var b strings.Builder

	g.writeHeader(&b, sheet, sheetIndex)

	n := 0
	for _, u := range sheet.UsedRects {
		if u.Oversize {
			b.WriteString(g.comment(fmt.Sprintf("SKIPPED oversize piece %s (%g x %g)", u.Name, u.OrigW, u.OrigH)))
			continue
		}
		n++
		g.writePiece(&b, sheet, u, n)
	}

	g.writeFooter(&b)
	return b.String()
}

// GenerateAll produces one G-code program per sheet.
func (g *Generator) GenerateAll(sheets []model.Sheet) []string {
	codes := make([]string, len(sheets))
	for i, sheet := range sheets {
		codes[i] = g.GenerateSheet(sheet, i+1)
	}
	return codes
}

// WriteDir writes one .nc file per sheet into dir, named
// <prefix>_sheet_NN.nc, and returns the paths.
func (g *Generator) WriteDir(dir, prefix string, sheets []model.Sheet) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create G-code directory: %w", err)
	}
	var paths []string
	for i, code := range g.GenerateAll(sheets) {
		path := filepath.Join(dir, fmt.Sprintf("%s_sheet_%02d.nc", prefix, i+1))
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			return paths, fmt.Errorf("failed to write G-code file: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *Generator) writeHeader(b *strings.Builder, sheet model.Sheet, idx int) {
	p := g.profile
	s := g.Settings

	b.WriteString(g.comment(fmt.Sprintf("cutplan G-code - Sheet %d", idx)))
	b.WriteString(g.comment(fmt.Sprintf("Stock: %s x %s mm", g.format(sheet.Width*s.UnitScale), g.format(sheet.Height*s.UnitScale))))
	b.WriteString(g.comment(fmt.Sprintf("Pieces: %d, Utilization: %.1f%%", len(sheet.UsedRects), 100*sheet.UsedArea()/sheet.TotalArea())))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min", s.ToolDiameter, s.FeedRate, s.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %d passes", s.CutDepth, s.Passes())))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	if g.cfg.PieceSpacing*s.UnitScale < s.ToolDiameter {
		b.WriteString(g.comment(fmt.Sprintf("WARNING: piece spacing %g is narrower than the tool", g.cfg.PieceSpacing)))
	}
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", s.SpindleSpeed))
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(s.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString(g.comment("=== Job complete ==="))
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
	for _, code := range p.EndCode {
		b.WriteString(strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ)) + "\n")
	}
}

// toolRect returns the machine-space rectangle the tool centre follows for
// a footprint. Sheet y grows downward; machine Y grows upward.
func (g *Generator) toolRect(sheet model.Sheet, r model.Rect) (x0, y0, x1, y1 float64) {
	s := g.Settings.UnitScale
	toolR := g.Settings.ToolDiameter / 2
	x0 = r.X*s - toolR
	x1 = r.Right()*s + toolR
	y0 = (sheet.Height-r.Bottom())*s - toolR
	y1 = (sheet.Height-r.Y)*s + toolR
	return x0, y0, x1, y1
}

func (g *Generator) writePiece(b *strings.Builder, sheet model.Sheet, u model.PlacedPiece, num int) {
	s := g.Settings
	x0, y0, x1, y1 := g.toolRect(sheet, u.Footprint())

	b.WriteString(g.comment(fmt.Sprintf("--- Piece %d: %s (%g x %g)%s ---",
		num, u.Name, u.OrigW, u.OrigH, rotatedStr(u.Rotated))))

	passes := s.Passes()
	for pass := 1; pass <= passes; pass++ {
		depth := math.Min(float64(pass)*s.PassDepth, s.CutDepth)

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, passes, depth)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(x0), g.format(y0)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(s.PlungeRate)))

		if pass == passes && s.TabsPerSide > 0 {
			g.writePerimeterWithTabs(b, x0, y0, x1, y1, depth)
		} else {
			g.writePerimeter(b, x0, y0, x1, y1)
		}

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(s.SafeZ)))
	}
	b.WriteString("\n")
}

func (g *Generator) writePerimeter(b *strings.Builder, x0, y0, x1, y1 float64) {
	p := g.profile
	b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove, g.format(x1), g.format(y0), g.format(g.Settings.FeedRate)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x1), g.format(y1)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y1)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y0)))
}

// writePerimeterWithTabs cuts the four sides, lifting to the tab height
// over each tab.
func (g *Generator) writePerimeterWithTabs(b *strings.Builder, x0, y0, x1, y1, depth float64) {
	tabDepth := math.Max(depth-g.Settings.TabHeight, 0)

	corners := [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
	for i := 0; i < 4; i++ {
		from, to := corners[i], corners[i+1]
		g.writeSideWithTabs(b, from[0], from[1], to[0], to[1], depth, tabDepth)
	}
}

func (g *Generator) writeSideWithTabs(b *strings.Builder, x0, y0, x1, y1, cutDepth, tabDepth float64) {
	feed := g.profile.FeedMove
	length := math.Hypot(x1-x0, y1-y0)
	tw := g.Settings.TabWidth
	n := g.Settings.TabsPerSide

	// A side too short for its tabs is cut plain
	if length < 0.001 || float64(n)*tw >= length {
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed, g.format(x1), g.format(y1), g.format(g.Settings.FeedRate)))
		return
	}

	nx, ny := (x1-x0)/length, (y1-y0)/length
	spacing := length / float64(n+1)
	for t := 1; t <= n; t++ {
		center := spacing * float64(t)
		start, end := center-tw/2, center+tw/2

		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed, g.format(x0+nx*start), g.format(y0+ny*start), g.format(g.Settings.FeedRate)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", feed, g.format(-tabDepth)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", feed, g.format(x0+nx*end), g.format(y0+ny*end)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", feed, g.format(-cutDepth)))
	}
	b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed, g.format(x1), g.format(y1), g.format(g.Settings.FeedRate)))
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	if v == 0 {
		v = 0 // no "-0.000"
	}
	return fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
}

func rotatedStr(r bool) string {
	if r {
		return " [rotated]"
	}
	return ""
}
