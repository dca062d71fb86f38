package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/cutplan/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[rune]string{
		',':  "Name,Width,Height,Qty\nShelf,60,30,2\nDoor,40,80,1\n",
		';':  "Name;Width;Height;Qty\nShelf;60;30;2\nDoor;40;80;1\n",
		'\t': "Name\tWidth\tHeight\tQty\nShelf\t60\t30\t2\nDoor\t40\t80\t1\n",
		'|':  "Name|Width|Height|Qty\nShelf|60|30|2\nDoor|40|80|1\n",
	}
	for want, data := range cases {
		if got := DetectCSVDelimiter([]byte(data)); got != want {
			t.Errorf("expected %q delimiter, got %q", want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Name", "Width", "Height", "Quantity"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_PortugueseHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Qtde", "Nome", "Largura", "Altura"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 1, Width: 2, Height: 3, Quantity: 0}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_FoldsCaseAndAccents(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{" PEÇA ", "Comprimento", "Altura", "Quantidade"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_FirstColumnWins(t *testing.T) {
	mapping, _ := DetectColumns([]string{"Name", "W", "H", "Description"})
	if mapping.Label != 0 {
		t.Errorf("expected label column 0, got %d", mapping.Label)
	}
	if mapping.Quantity != -1 {
		t.Errorf("expected no quantity column, got %d", mapping.Quantity)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Shelf", "60", "30", "2"})

	if isHeader {
		t.Error("expected no header")
	}
	want := ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}
	if mapping != want {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Name,Width,Height,Qty\nShelf,60,30,2\nDoor,40,80,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Rows != 2 {
		t.Errorf("expected 2 rows, got %d", result.Rows)
	}
	if len(result.Pieces) != 3 {
		t.Fatalf("expected 3 pieces after quantity expansion, got %d", len(result.Pieces))
	}
	want := model.Piece{Name: "Shelf", Width: 60, Height: 30}
	if result.Pieces[0] != want || result.Pieces[1] != want {
		t.Errorf("expected two shelves first, got %+v", result.Pieces[:2])
	}
	if result.Pieces[2].Name != "Door" {
		t.Errorf("expected Door last, got %q", result.Pieces[2].Name)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Shelf,60,30,1\nDoor,40,80,1\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces, got %d", len(result.Pieces))
	}
}

func TestImportCSVFromReader_QuantityOptional(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,W,H\nShelf,60,30\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 1 {
		t.Errorf("expected 1 piece, got %d", len(result.Pieces))
	}
}

func TestImportCSVFromReader_DecimalComma(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Nome;Largura;Altura;Qtde\nPorta;70,5;45;1\n"), ';')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Pieces[0].Width != 70.5 {
		t.Errorf("expected width 70.5, got %v", result.Pieces[0].Width)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	data := strings.Join([]string{
		"Name,Width,Height,Qty",
		"Good,10,10,1",
		"BadWidth,abc,10,1",
		"BadQty,10,10,x",
		"Negative,-1,10,1",
		"Zero,10,10,0",
		"MissingHeight,10,,1",
		"",
		"AlsoGood,5,5,1",
	}, "\n")
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 5 {
		t.Errorf("expected 5 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces, got %d", len(result.Pieces))
	}
	if !strings.Contains(result.Errors[0], "Line 3") {
		t.Errorf("expected error to name Line 3, got %q", result.Errors[0])
	}
}

func TestRowError(t *testing.T) {
	err := &RowError{Row: "Row 4", Reason: "Missing width value"}
	if err.Error() != "Row 4: Missing width value" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestImportExcel_RowErrorsNameRows(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Nome", "Largura", "Altura"},
		{"Porta", "abc", 80},
	})

	result := ImportExcel(path)
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Row 2:") {
		t.Errorf("expected one error naming Row 2, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyLabel(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Height\n,10,10\n"), ',')

	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(result.Pieces))
	}
	if result.Pieces[0].Name != "Piece 1" {
		t.Errorf("expected default name, got %q", result.Pieces[0].Name)
	}
}

func TestImportCSVFromReader_QuantityCap(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,W,H,Qty\nChip,1,1,20000\n"), ',')

	if len(result.Pieces) != MaxQuantity {
		t.Errorf("expected %d pieces, got %d", MaxQuantity, len(result.Pieces))
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a cap warning")
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Qty\nShelf,10,1\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected missing Height error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

// ─── ImportCSV Tests ───────────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pieces.csv")
	if err := os.WriteFile(path, []byte("Name;Width;Height;Qty\nShelf;60;30;2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces, got %d", len(result.Pieces))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pieces.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "Width", "Height", "Quantity"},
		{"Shelf", 60, 30, 2},
		{"Door", 40.5, 80, 1},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(result.Pieces))
	}
	if result.Pieces[2].Width != 40.5 {
		t.Errorf("expected width 40.5, got %v", result.Pieces[2].Width)
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Shelf", 60, 30, 1},
		{"Door", 40, 80, 1},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces, got %d", len(result.Pieces))
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
