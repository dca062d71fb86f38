package export

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/piwi3910/cutplan/internal/model"
)

func buildLabelsTestMaterials() []MaterialSection {
	return []MaterialSection{
		{
			Name: "Plywood",
			Sheets: []model.Sheet{
				{
					Width: 244, Height: 122,
					UsedRects: []model.PlacedPiece{
						{Rect: model.Rect{X: 0, Y: 0, W: 60, H: 40}, Index: 0, Name: "Side Panel", OrigW: 60, OrigH: 40, DrawnW: 60, DrawnH: 40},
						{Rect: model.Rect{X: 60, Y: 0, W: 30, H: 50}, Index: 1, Name: "Top", Rotated: true, OrigW: 50, OrigH: 30, DrawnW: 30, DrawnH: 50},
					},
				},
			},
		},
		{
			Name: "MDF",
			Sheets: []model.Sheet{
				{
					Width: 100, Height: 100,
					UsedRects: []model.PlacedPiece{
						{Rect: model.Rect{X: 0, Y: 0, W: 200, H: 50}, Index: 0, Name: "Back Panel", Oversize: true, OrigW: 200, OrigH: 50, DrawnW: 200, DrawnH: 50},
					},
				},
			},
		},
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildLabelsTestMaterials()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestExportLabels_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportLabels(path, nil); err == nil {
		t.Fatal("expected error for no pieces, got nil")
	}
}

func TestExportLabels_MultiplePages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	sheet := model.Sheet{Width: 1000, Height: 1000}
	for i := 0; i < 35; i++ {
		sheet.UsedRects = append(sheet.UsedRects, model.PlacedPiece{
			Index: i, Name: "Ripped strip with a rather long descriptive name",
			OrigW: 10, OrigH: 10, DrawnW: 10, DrawnH: 10,
		})
	}
	if err := ExportLabels(path, []MaterialSection{{Sheets: []model.Sheet{sheet}}}); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildLabelsTestMaterials())
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}

	top := labels[1]
	if top.PieceName != "Top" || !top.Rotated || top.SheetIndex != 1 || top.Material != "Plywood" {
		t.Errorf("unexpected label: %+v", top)
	}
	if top.Width != 50 || top.Height != 30 {
		t.Errorf("label should carry declared size, got %vx%v", top.Width, top.Height)
	}
	if !labels[2].Oversize || labels[2].Material != "MDF" {
		t.Errorf("expected oversize MDF label, got %+v", labels[2])
	}
}

func TestLabelInfo_JSON(t *testing.T) {
	info := CollectLabelInfos(buildLabelsTestMaterials())[0]
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded LabelInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != info {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, info)
	}
}
