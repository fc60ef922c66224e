// Package xlsx moves workbooks between the in-memory grid and .xlsx files.
// Style tokens are mapped to concrete spreadsheet styling through a small
// named-style registry; unknown tokens round-trip as plain cells.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gridwright/engine/internal/grid"
)

const (
	TokenBold      = "bold"
	TokenItalic    = "italic"
	TokenCurrency  = "currency"
	TokenPercent   = "percent"
	TokenDate      = "date"
	TokenHighlight = "highlight"
)

const (
	numFmtCurrency = 164
	numFmtPercent  = 10
	numFmtDate     = 14
)

var currencyFormat = "$#,##0.00"

func styleForToken(token string, locked bool) *excelize.Style {
	style := &excelize.Style{}
	switch token {
	case TokenBold:
		style.Font = &excelize.Font{Bold: true}
	case TokenItalic:
		style.Font = &excelize.Font{Italic: true}
	case TokenCurrency:
		style.CustomNumFmt = &currencyFormat
	case TokenPercent:
		style.NumFmt = numFmtPercent
	case TokenDate:
		style.NumFmt = numFmtDate
	case TokenHighlight:
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}}
	case "":
		if !locked {
			return nil
		}
	default:
		// Unknown tokens carry no concrete styling; the lock flag may
		// still need a style entry.
		if !locked {
			return nil
		}
	}
	if locked {
		style.Protection = &excelize.Protection{Locked: true}
	}
	return style
}

func tokenFromStyle(style *excelize.Style) string {
	if style == nil {
		return ""
	}
	if style.Font != nil {
		if style.Font.Bold {
			return TokenBold
		}
		if style.Font.Italic {
			return TokenItalic
		}
	}
	if style.CustomNumFmt != nil && strings.Contains(*style.CustomNumFmt, "$") {
		return TokenCurrency
	}
	switch style.NumFmt {
	case numFmtPercent, 9:
		return TokenPercent
	case numFmtDate, 15, 16, 17:
		return TokenDate
	}
	if style.Fill.Type == "pattern" && len(style.Fill.Color) > 0 {
		return TokenHighlight
	}
	return ""
}

// Save writes the workbook to path as an .xlsx file.
func Save(wb *grid.Workbook, path string) error {
	f, err := build(wb)
	if err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Bytes serializes the workbook into an in-memory .xlsx document.
func Bytes(wb *grid.Workbook) ([]byte, error) {
	f, err := build(wb)
	if err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func build(wb *grid.Workbook) (*excelize.File, error) {
	f := excelize.NewFile()
	names := wb.SheetNames()
	if len(names) == 0 {
		return f, nil
	}
	if names[0] != "Sheet1" {
		if err := f.SetSheetName("Sheet1", names[0]); err != nil {
			return nil, err
		}
	}
	styleIDs := make(map[grid.Style]int)
	for i, name := range names {
		if i > 0 {
			if _, err := f.NewSheet(name); err != nil {
				return nil, err
			}
		}
		sheet, err := wb.Sheet(name)
		if err != nil {
			return nil, err
		}
		var cellErr error
		sheet.EachCell(func(row, col int, cell grid.Cell) {
			if cellErr != nil {
				return
			}
			cellErr = writeCell(f, name, row, col, cell, styleIDs)
		})
		if cellErr != nil {
			return nil, cellErr
		}
	}
	return f, nil
}

func writeCell(f *excelize.File, sheet string, row, col int, cell grid.Cell, styleIDs map[grid.Style]int) error {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	switch cell.Value.Kind {
	case grid.KindNumber:
		if err := f.SetCellFloat(sheet, axis, cell.Value.Number, -1, 64); err != nil {
			return err
		}
	case grid.KindText:
		if err := f.SetCellStr(sheet, axis, cell.Value.Text); err != nil {
			return err
		}
	case grid.KindBoolean:
		if err := f.SetCellBool(sheet, axis, cell.Value.Bool); err != nil {
			return err
		}
	case grid.KindFormula:
		expr := strings.TrimPrefix(cell.Value.Formula, "=")
		if err := f.SetCellFormula(sheet, axis, expr); err != nil {
			return err
		}
	}
	if cell.Style == (grid.Style{}) {
		return nil
	}
	id, ok := styleIDs[cell.Style]
	if !ok {
		style := styleForToken(cell.Style.Token, cell.Style.Locked)
		if style == nil {
			return nil
		}
		id, err = f.NewStyle(style)
		if err != nil {
			return err
		}
		styleIDs[cell.Style] = id
	}
	return f.SetCellStyle(sheet, axis, axis, id)
}

// Load reads an .xlsx file from path into a workbook.
func Load(path string) (*grid.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	defer f.Close()
	wb, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	return wb, nil
}

// LoadReader reads an .xlsx document from r into a workbook.
func LoadReader(r io.Reader) (*grid.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	defer f.Close()
	wb, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	return wb, nil
}

func read(f *excelize.File) (*grid.Workbook, error) {
	wb := grid.New()
	for _, name := range f.GetSheetList() {
		rowsData, err := f.GetRows(name)
		if err != nil {
			return nil, err
		}
		rows := len(rowsData)
		cols := 0
		for _, row := range rowsData {
			if len(row) > cols {
				cols = len(row)
			}
		}
		if rows < grid.DefaultRows {
			rows = grid.DefaultRows
		}
		if cols < grid.DefaultCols {
			cols = grid.DefaultCols
		}
		sheet, err := wb.AddSheet(name, rows, cols)
		if err != nil {
			return nil, err
		}
		for r, row := range rowsData {
			for c, raw := range row {
				if err := readCell(f, sheet, name, r, c, raw); err != nil {
					return nil, err
				}
			}
		}
	}
	return wb, nil
}

func readCell(f *excelize.File, sheet *grid.Sheet, name string, row, col int, raw string) error {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	value, err := readValue(f, name, axis, raw)
	if err != nil {
		return err
	}
	if !value.IsEmpty() {
		if err := sheet.SetCell(row, col, value); err != nil {
			return err
		}
	}
	styleID, err := f.GetCellStyle(name, axis)
	if err != nil || styleID == 0 {
		return nil
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return nil
	}
	if token := tokenFromStyle(style); token != "" {
		if err := sheet.SetStyle(row, col, token); err != nil {
			return err
		}
	}
	if style.Protection != nil && style.Protection.Locked {
		if err := sheet.LockFormat(row, col, true); err != nil {
			return err
		}
	}
	return nil
}

func readValue(f *excelize.File, name, axis, raw string) (grid.Value, error) {
	formula, err := f.GetCellFormula(name, axis)
	if err == nil && formula != "" {
		return grid.Formula("=" + formula), nil
	}
	if raw == "" {
		return grid.Empty(), nil
	}
	cellType, err := f.GetCellType(name, axis)
	if err == nil && cellType == excelize.CellTypeBool {
		return grid.Boolean(raw == "TRUE" || raw == "1"), nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return grid.Number(n), nil
	}
	return grid.Text(raw), nil
}
