// Package exec applies validated operations to the real document. Each
// operation is atomic: every grid mutation checks its preconditions before
// touching a cell, so a failed application leaves the document exactly as it
// was before that operation. Failures never roll back earlier successes; the
// report records the boundary between applied and not-applied.
package exec

import (
	"context"
	"fmt"

	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/ops"
	"gridwright/engine/internal/parser"
	"gridwright/engine/internal/validate"
)

// CellSnapshot captures one cell at a point in time.
type CellSnapshot struct {
	Sheet    string
	Row, Col int
	Cell     grid.Cell
}

// Change is the outcome of one accepted operation: the before/after snapshots
// of the cells it addressed, or the failure that left the document untouched
// by this operation.
type Change struct {
	Index   int
	Op      ops.Operation
	Applied bool
	Before  []CellSnapshot
	After   []CellSnapshot
	Err     string
}

// Report is the full record of one instruction cycle: what was applied, what
// the validator rejected, and what the parser could not read. It is returned
// to the caller and never persisted.
type Report struct {
	Changes     []Change
	Rejections  []validate.Result
	ParseErrors []parser.ParseError
}

func (r *Report) AppliedCount() int {
	n := 0
	for _, change := range r.Changes {
		if change.Applied {
			n++
		}
	}
	return n
}

func (r *Report) FailedCount() int {
	return len(r.Changes) - r.AppliedCount()
}

// Apply runs the accepted subsequence of results against wb in original
// order. Rejected results are carried into the report untouched. Each
// operation's application is non-interruptible; cancellation is only observed
// between operations, and the remaining accepted operations are recorded as
// not applied.
func Apply(ctx context.Context, wb *grid.Workbook, results []validate.Result) *Report {
	report := &Report{}
	canceled := false
	for _, result := range results {
		if !result.Accepted {
			report.Rejections = append(report.Rejections, result)
			continue
		}
		change := Change{Index: result.Index, Op: result.Op}
		if !canceled && ctx != nil && ctx.Err() != nil {
			canceled = true
		}
		if canceled {
			change.Err = "canceled before application"
			report.Changes = append(report.Changes, change)
			continue
		}
		change.Before = snapshot(wb, result.Op)
		if err := applyOne(wb, result.Op); err != nil {
			change.Err = err.Error()
		} else {
			change.Applied = true
			change.After = snapshot(wb, result.Op)
		}
		report.Changes = append(report.Changes, change)
	}
	return report
}

// applyOne relies on the grid methods being atomic themselves: every grid
// mutation checks its preconditions before touching any cell.
func applyOne(wb *grid.Workbook, op ops.Operation) error {
	switch o := op.(type) {
	case ops.SetCell:
		sheet, err := wb.Sheet(o.SheetName)
		if err != nil {
			return err
		}
		return sheet.SetCell(o.Row, o.Col, o.Value)
	case ops.SetRange:
		sheet, err := wb.Sheet(o.SheetName)
		if err != nil {
			return err
		}
		// Bounds are uniform across the range; check corners before the
		// first write so a partial application is impossible.
		if _, err := sheet.Cell(o.R0, o.C0); err != nil {
			return err
		}
		if _, err := sheet.Cell(o.R1, o.C1); err != nil {
			return err
		}
		for row := o.R0; row <= o.R1; row++ {
			for col := o.C0; col <= o.C1; col++ {
				if err := sheet.SetCell(row, col, o.Value); err != nil {
					return err
				}
			}
		}
		return nil
	case ops.InsertRow:
		sheet, err := wb.Sheet(o.SheetName)
		if err != nil {
			return err
		}
		return sheet.InsertRow(o.Index)
	case ops.InsertColumn:
		sheet, err := wb.Sheet(o.SheetName)
		if err != nil {
			return err
		}
		return sheet.InsertCol(o.Index)
	case ops.DeleteRow:
		sheet, err := wb.Sheet(o.SheetName)
		if err != nil {
			return err
		}
		return sheet.DeleteRow(o.Index, o.Force)
	case ops.DeleteColumn:
		sheet, err := wb.Sheet(o.SheetName)
		if err != nil {
			return err
		}
		return sheet.DeleteCol(o.Index, o.Force)
	case ops.ApplyFormat:
		sheet, err := wb.Sheet(o.SheetName)
		if err != nil {
			return err
		}
		return sheet.ApplyFormat(o.R0, o.C0, o.R1, o.C1, o.StyleToken)
	case ops.AddSheet:
		_, err := wb.AddSheet(o.Name, o.Rows, o.Cols)
		return err
	default:
		return fmt.Errorf("unknown operation %T", op)
	}
}

// snapshot captures the cells an operation directly addresses. Structural
// operations move whole rows or columns; their snapshots cover the stored
// cells of the addressed index so the report can show what an insert
// displaced or a delete removed.
func snapshot(wb *grid.Workbook, op ops.Operation) []CellSnapshot {
	switch o := op.(type) {
	case ops.SetCell:
		return snapshotRange(wb, o.SheetName, o.Row, o.Col, o.Row, o.Col)
	case ops.SetRange:
		return snapshotRange(wb, o.SheetName, o.R0, o.C0, o.R1, o.C1)
	case ops.ApplyFormat:
		return snapshotRange(wb, o.SheetName, o.R0, o.C0, o.R1, o.C1)
	case ops.DeleteRow:
		return snapshotLine(wb, o.SheetName, o.Index, -1)
	case ops.DeleteColumn:
		return snapshotLine(wb, o.SheetName, -1, o.Index)
	case ops.InsertRow:
		return snapshotLine(wb, o.SheetName, o.Index, -1)
	case ops.InsertColumn:
		return snapshotLine(wb, o.SheetName, -1, o.Index)
	default:
		return nil
	}
}

func snapshotRange(wb *grid.Workbook, name string, r0, c0, r1, c1 int) []CellSnapshot {
	sheet, err := wb.Sheet(name)
	if err != nil {
		return nil
	}
	var snaps []CellSnapshot
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cell, err := sheet.Cell(row, col)
			if err != nil {
				continue
			}
			snaps = append(snaps, CellSnapshot{Sheet: name, Row: row, Col: col, Cell: cell})
		}
	}
	return snaps
}

// snapshotLine captures the stored cells of one row (col == -1) or one
// column (row == -1).
func snapshotLine(wb *grid.Workbook, name string, row, col int) []CellSnapshot {
	sheet, err := wb.Sheet(name)
	if err != nil {
		return nil
	}
	var snaps []CellSnapshot
	sheet.EachCell(func(r, c int, cell grid.Cell) {
		if (row >= 0 && r == row) || (col >= 0 && c == col) {
			snaps = append(snaps, CellSnapshot{Sheet: name, Row: r, Col: c, Cell: cell})
		}
	})
	return snaps
}
