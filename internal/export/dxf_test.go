package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/cutplan/internal/model"
)

func TestExportDXF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.dxf")

	sheet := buildLabelsTestMaterials()[0].Sheets[0]
	if err := ExportDXF(path, sheet, 0, 2); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	for _, want := range []string{LayerSheet, LayerMargin, LayerPieces, "LINE", "Side Panel"} {
		if !strings.Contains(content, want) {
			t.Errorf("DXF output missing %q", want)
		}
	}
}

func TestExportDXF_InvalidSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dxf")
	if err := ExportDXF(path, model.Sheet{}, 0, 0); err == nil {
		t.Fatal("expected error for empty sheet, got nil")
	}
}

func TestExportDXFDir(t *testing.T) {
	dir := t.TempDir()
	sheets := []model.Sheet{
		buildLabelsTestMaterials()[0].Sheets[0],
		buildLabelsTestMaterials()[1].Sheets[0],
	}

	paths, err := ExportDXFDir(dir, "mdf", sheets, 0)
	if err != nil {
		t.Fatalf("ExportDXFDir returned error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %d", len(paths))
	}
	if filepath.Base(paths[1]) != "mdf-2.dxf" {
		t.Errorf("unexpected file name %s", paths[1])
	}
	for _, p := range paths {
		assertFile(t, p, 100)
	}
}

func TestExportDXFDir_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "dxf")
	sheets := []model.Sheet{buildLabelsTestMaterials()[0].Sheets[0]}

	paths, err := ExportDXFDir(dir, "ply", sheets, 0)
	if err != nil {
		t.Fatalf("ExportDXFDir into a missing directory returned error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 file, got %d", len(paths))
	}
	assertFile(t, paths[0], 100)
}
