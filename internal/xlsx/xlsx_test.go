package xlsx

import (
	"bytes"
	"path/filepath"
	"testing"

	"gridwright/engine/internal/grid"
)

func buildFixture(t *testing.T) *grid.Workbook {
	t.Helper()
	wb := grid.NewWithSheet("Budget")
	sheet, err := wb.Sheet("Budget")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if err := sheet.SetCell(0, 0, grid.Text("Item")); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := sheet.SetCell(1, 0, grid.Text("Rent")); err != nil {
		t.Fatalf("set text: %v", err)
	}
	if err := sheet.SetCell(1, 1, grid.Number(1200.5)); err != nil {
		t.Fatalf("set number: %v", err)
	}
	if err := sheet.SetCell(2, 1, grid.Boolean(true)); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if err := sheet.SetCell(3, 1, grid.Formula("=SUM(B2:B3)")); err != nil {
		t.Fatalf("set formula: %v", err)
	}
	if err := sheet.SetStyle(0, 0, TokenBold); err != nil {
		t.Fatalf("set style: %v", err)
	}
	if _, err := wb.AddSheet("Notes", 10, 4); err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	return wb
}

func TestSaveLoadRoundTrip(t *testing.T) {
	wb := buildFixture(t)
	path := filepath.Join(t.TempDir(), "budget.xlsx")
	if err := Save(wb, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	names := loaded.SheetNames()
	if len(names) != 2 || names[0] != "Budget" || names[1] != "Notes" {
		t.Fatalf("sheet names = %v", names)
	}
	sheet, err := loaded.Sheet("Budget")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	cell, err := sheet.Cell(1, 0)
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if cell.Value.Kind != grid.KindText || cell.Value.Text != "Rent" {
		t.Fatalf("B2 text = %+v", cell.Value)
	}
	cell, err = sheet.Cell(1, 1)
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if cell.Value.Kind != grid.KindNumber || cell.Value.Number != 1200.5 {
		t.Fatalf("B2 number = %+v", cell.Value)
	}
	cell, err = sheet.Cell(3, 1)
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if cell.Value.Kind != grid.KindFormula || cell.Value.Formula != "=SUM(B2:B3)" {
		t.Fatalf("B4 formula = %+v", cell.Value)
	}
	cell, err = sheet.Cell(0, 0)
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if cell.Style.Token != TokenBold {
		t.Fatalf("A1 style token = %q", cell.Style.Token)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	wb := buildFixture(t)
	data, err := Bytes(wb)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	loaded, err := LoadReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("load reader: %v", err)
	}
	if !loaded.HasSheet("Budget") {
		t.Fatalf("missing sheet after in-memory round trip")
	}
}

func TestLoadGrowsSheetToDefaultBounds(t *testing.T) {
	wb := grid.New()
	if _, err := wb.AddSheet("Tiny", 2, 2); err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tiny.xlsx")
	if err := Save(wb, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sheet, err := loaded.Sheet("Tiny")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if sheet.Rows() < grid.DefaultRows || sheet.Cols() < grid.DefaultCols {
		t.Fatalf("bounds = %dx%d", sheet.Rows(), sheet.Cols())
	}
}

func TestStyleTokenMapping(t *testing.T) {
	cases := []string{TokenBold, TokenItalic, TokenPercent, TokenDate, TokenHighlight, TokenCurrency}
	for _, token := range cases {
		style := styleForToken(token, false)
		if style == nil {
			t.Fatalf("styleForToken(%q) = nil", token)
		}
		if got := tokenFromStyle(style); got != token {
			t.Errorf("tokenFromStyle(styleForToken(%q)) = %q", token, got)
		}
	}
	if styleForToken("", false) != nil {
		t.Fatalf("empty token without lock should map to no style")
	}
	locked := styleForToken("", true)
	if locked == nil || locked.Protection == nil || !locked.Protection.Locked {
		t.Fatalf("lock flag lost: %+v", locked)
	}
}
