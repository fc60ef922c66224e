package grid

import (
	"fmt"
	"strings"
)

const (
	summaryMaxRows = 5
	summaryMaxCols = 12
)

// Summary renders the workbook shape for model grounding: per sheet, its
// dimensions, the header row, and the first few data rows. Trailing empty
// columns are trimmed so the summary stays compact.
func (w *Workbook) Summary() string {
	var b strings.Builder
	for _, name := range w.order {
		sheet := w.sheets[name]
		fmt.Fprintf(&b, "Sheet: %s (%d rows x %d cols)\n", name, sheet.rows, sheet.cols)
		used := sheet.usedCols()
		if used == 0 {
			continue
		}
		if used > summaryMaxCols {
			used = summaryMaxCols
		}
		maxRows := summaryMaxRows
		if sheet.rows < maxRows {
			maxRows = sheet.rows
		}
		for row := 0; row < maxRows; row++ {
			values := make([]string, used)
			hasData := false
			for col := 0; col < used; col++ {
				cell := sheet.cells[cellKey{row, col}]
				values[col] = cell.Value.Display()
				if !cell.Value.IsEmpty() {
					hasData = true
				}
			}
			if row > 0 && !hasData {
				continue
			}
			label := "Headers"
			if row > 0 {
				label = fmt.Sprintf("Row %d", row)
			}
			fmt.Fprintf(&b, "  %s: %s\n", label, strings.Join(values, ", "))
		}
	}
	if b.Len() == 0 {
		return "Empty document (no sheets).\n"
	}
	return b.String()
}

func (s *Sheet) usedCols() int {
	max := 0
	for key, cell := range s.cells {
		if cell.Value.IsEmpty() {
			continue
		}
		if key.col+1 > max {
			max = key.col + 1
		}
	}
	return max
}
