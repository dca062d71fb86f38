// Package importer reads piece lists from CSV and Excel files. Columns are
// matched by header name in English or Portuguese, and a row with a quantity
// becomes that many pieces.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/piwi3910/cutplan/internal/model"
)

// MaxQuantity caps the copies a single row may request.
const MaxQuantity = 10000

// ImportResult holds the results of an import operation. Rows with a
// quantity above one are expanded into that many pieces.
type ImportResult struct {
	Pieces   []model.Piece
	Rows     int // Data rows that produced pieces
	Errors   []string
	Warnings []string
}

func (r *ImportResult) fail(format string, args ...any) ImportResult {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	return *r
}

// ColumnMapping holds the column index of each piece attribute, -1 when the
// list has no such column.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
}

// positional is the layout assumed for lists without a header row.
var positional = ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}

type columnRole int

const (
	roleLabel columnRole = iota
	roleWidth
	roleHeight
	roleQuantity
)

// headerAliases are compared after case and accent folding, so "Peça" and
// "PECA" both match "peca".
var headerAliases = map[columnRole][]string{
	roleLabel:    {"label", "name", "part", "part name", "description", "desc", "piece", "item", "nome", "peca", "descricao"},
	roleWidth:    {"width", "w", "length", "len", "x", "largura", "comprimento"},
	roleHeight:   {"height", "h", "depth", "d", "y", "altura"},
	roleQuantity: {"quantity", "qty", "count", "num", "amount", "pcs", "pieces", "qtde", "qtd", "quantidade"},
}

var aliasRoles = func() map[string]columnRole {
	m := make(map[string]columnRole)
	for role, aliases := range headerAliases {
		for _, a := range aliases {
			m[a] = role
		}
	}
	return m
}()

// foldHeader lowercases a header cell and strips its diacritics.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// set records idx for role unless an earlier column already claimed it.
func (m *ColumnMapping) set(role columnRole, idx int) {
	slot := map[columnRole]*int{
		roleLabel:    &m.Label,
		roleWidth:    &m.Width,
		roleHeight:   &m.Height,
		roleQuantity: &m.Quantity,
	}[role]
	if *slot == -1 {
		*slot = idx
	}
}

// missing names the required columns the mapping lacks.
func (m ColumnMapping) missing() []string {
	var names []string
	if m.Width == -1 {
		names = append(names, "Width")
	}
	if m.Height == -1 {
		names = append(names, "Height")
	}
	return names
}

// DetectColumns examines a header row and returns a ColumnMapping. When no
// cell names a known column it returns the positional mapping
// (label, width, height, quantity) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Height: -1, Quantity: -1}
	found := false
	for i, cell := range row {
		if role, ok := aliasRoles[foldHeader(cell)]; ok {
			mapping.set(role, i)
			found = true
		}
	}
	if !found {
		return positional, false
	}
	return mapping, true
}

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

// DetectCSVDelimiter guesses the delimiter of a piece list. Each candidate
// is scored by how many lines split into the same number of fields as the
// first line, ties going to the candidate with more fields. Candidates that
// leave the first line whole are ignored; comma is the fallback.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readRecords(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		width := len(records[0])
		consistent := 0
		for _, rec := range records {
			if len(rec) == width {
				consistent++
			}
		}
		if score := consistent*10 + width; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

func readRecords(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// parseNumber accepts both "12.5" and the decimal-comma form "12,5".
func parseNumber(s string) (float64, error) {
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// RowError describes a list row that produced no pieces.
type RowError struct {
	Row    string // e.g. "Line 3" or "Row 3"
	Reason string
}

func (e *RowError) Error() string {
	return e.Row + ": " + e.Reason
}

// pieceList accumulates pieces row by row.
type pieceList struct {
	mapping ColumnMapping
	prefix  string // "Line" for CSV, "Row" for spreadsheets
	result  ImportResult
}

func (l *pieceList) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (l *pieceList) dimension(row []string, idx int, rowName, what string) (float64, error) {
	s := l.cell(row, idx)
	if s == "" {
		return 0, &RowError{rowName, "Missing " + what + " value"}
	}
	v, err := parseNumber(s)
	if err != nil {
		return 0, &RowError{rowName, fmt.Sprintf("Invalid %s '%s'", what, s)}
	}
	return v, nil
}

// add parses one row and appends its copies of the piece.
func (l *pieceList) add(row []string, line int) error {
	rowName := fmt.Sprintf("%s %d", l.prefix, line)
	m := l.mapping

	width, err := l.dimension(row, m.Width, rowName, "width")
	if err != nil {
		return err
	}
	height, err := l.dimension(row, m.Height, rowName, "height")
	if err != nil {
		return err
	}

	qty := 1
	if s := l.cell(row, m.Quantity); s != "" {
		if qty, err = strconv.Atoi(s); err != nil {
			return &RowError{rowName, fmt.Sprintf("Invalid quantity '%s'", s)}
		}
	}
	if width <= 0 || height <= 0 || qty <= 0 {
		return &RowError{rowName, "Width, height, and quantity must be positive"}
	}
	if qty > MaxQuantity {
		l.result.Warnings = append(l.result.Warnings,
			fmt.Sprintf("%s: Quantity %d capped at %d", rowName, qty, MaxQuantity))
		qty = MaxQuantity
	}

	name := l.cell(row, m.Label)
	if name == "" {
		name = fmt.Sprintf("%s %d", model.DefaultPieceName, l.result.Rows+1)
	}
	piece := model.Piece{Name: name, Width: width, Height: height}

	l.result.Rows++
	for n := 0; n < qty; n++ {
		l.result.Pieces = append(l.result.Pieces, piece)
	}
	return nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports pieces from a CSV file, sniffing the delimiter.
func ImportCSV(path string) ImportResult {
	var result ImportResult

	data, err := os.ReadFile(path)
	if err != nil {
		return result.fail("Cannot open file: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return result.fail("File is empty")
	}

	delim := DetectCSVDelimiter(data)
	var warnings []string
	if delim != ',' {
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimiterNames[delim]))
	}

	records, err := readRecords(bytes.NewReader(data), delim)
	if err != nil {
		return result.fail("Cannot read CSV: %v", err)
	}
	return importRows(records, "Line", warnings)
}

// ImportCSVFromReader imports pieces from CSV data with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	records, err := readRecords(r, delimiter)
	if err != nil {
		var result ImportResult
		return result.fail("Cannot read CSV: %v", err)
	}
	return importRows(records, "Line", nil)
}

// ImportExcel imports pieces from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	var result ImportResult

	f, err := excelize.OpenFile(path)
	if err != nil {
		return result.fail("Cannot open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return result.fail("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return result.fail("Cannot read Excel data: %v", err)
	}
	return importRows(rows, "Row", nil)
}

// importRows maps the columns of rows and builds the piece list. Row errors
// are collected and never stop the import.
func importRows(rows [][]string, prefix string, warnings []string) ImportResult {
	list := pieceList{prefix: prefix, result: ImportResult{Warnings: warnings}}
	if len(rows) == 0 {
		return list.result.fail("File is empty")
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	switch {
	case hasHeader:
		if missing := mapping.missing(); len(missing) > 0 {
			return list.result.fail("Required columns not found in header: %s", strings.Join(missing, ", "))
		}
		start = 1
	case len(rows[0]) >= 3:
		// An unrecognized header still reads as text where the width belongs
		if _, err := parseNumber(strings.TrimSpace(rows[0][positional.Width])); err != nil {
			start = 1
		}
	}
	if start == 1 {
		list.result.Warnings = append(list.result.Warnings, "Detected header row, skipping")
	}
	list.mapping = mapping

	for i := start; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		if err := list.add(rows[i], i+1); err != nil {
			list.result.Errors = append(list.result.Errors, err.Error())
		}
	}
	return list.result
}
