package validate

import (
	"strings"
	"testing"

	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/ops"
)

func newWorkbook(t *testing.T) (*grid.Workbook, *grid.Sheet) {
	t.Helper()
	wb := grid.New()
	sheet, err := wb.AddSheet("Sheet1", 10, 8)
	if err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	return wb, sheet
}

func TestCheckRejectsOutOfBounds(t *testing.T) {
	wb, _ := newWorkbook(t)
	results := Check(wb, []ops.Operation{
		ops.SetCell{SheetName: "Sheet1", Row: 0, Col: 0, Value: grid.Number(5)},
		ops.SetCell{SheetName: "Sheet1", Row: 998, Col: 25, Value: grid.Number(1)},
	})
	if !results[0].Accepted {
		t.Fatalf("in-bounds op rejected: %+v", results[0])
	}
	if results[1].Accepted || results[1].Reason != ReasonOutOfBounds {
		t.Fatalf("expected OutOfBounds, got %+v", results[1])
	}
}

func TestCheckUnknownSheet(t *testing.T) {
	wb, _ := newWorkbook(t)
	results := Check(wb, []ops.Operation{
		ops.SetCell{SheetName: "Nope", Row: 0, Col: 0, Value: grid.Number(1)},
	})
	if results[0].Accepted || results[0].Reason != ReasonOutOfBounds {
		t.Fatalf("expected OutOfBounds for unknown sheet, got %+v", results[0])
	}
}

func TestCheckSimulatesInsertBeforeWrite(t *testing.T) {
	wb, _ := newWorkbook(t)
	// Row 10 is out of bounds now but valid after the insert.
	results := Check(wb, []ops.Operation{
		ops.InsertRow{SheetName: "Sheet1", Index: 0},
		ops.SetCell{SheetName: "Sheet1", Row: 10, Col: 0, Value: grid.Text("hello")},
	})
	for _, result := range results {
		if !result.Accepted {
			t.Fatalf("expected both accepted, got %+v", result)
		}
	}
}

func TestCheckSimulatesAddSheet(t *testing.T) {
	wb, _ := newWorkbook(t)
	results := Check(wb, []ops.Operation{
		ops.AddSheet{Name: "Report", Rows: 5, Cols: 5},
		ops.SetCell{SheetName: "Report", Row: 4, Col: 4, Value: grid.Number(1)},
		ops.SetCell{SheetName: "Report", Row: 5, Col: 0, Value: grid.Number(1)},
	})
	if !results[0].Accepted || !results[1].Accepted {
		t.Fatalf("expected AddSheet and in-bounds write accepted: %+v %+v", results[0], results[1])
	}
	if results[2].Accepted || results[2].Reason != ReasonOutOfBounds {
		t.Fatalf("expected OutOfBounds past new sheet bounds, got %+v", results[2])
	}
}

func TestCheckDependencyFailedPropagation(t *testing.T) {
	wb, _ := newWorkbook(t)
	results := Check(wb, []ops.Operation{
		ops.InsertRow{SheetName: "Sheet1", Index: 99}, // rejected: beyond bounds
		ops.SetCell{SheetName: "Sheet1", Row: 0, Col: 0, Value: grid.Number(1)},
		ops.AddSheet{Name: "Other"},
		ops.SetCell{SheetName: "Other", Row: 0, Col: 0, Value: grid.Number(2)},
	})
	if results[0].Accepted || results[0].Reason != ReasonOutOfBounds {
		t.Fatalf("expected structural rejection, got %+v", results[0])
	}
	if results[1].Accepted || results[1].Reason != ReasonDependencyFailed {
		t.Fatalf("expected DependencyFailed on same sheet, got %+v", results[1])
	}
	if !strings.Contains(results[1].Detail, "operation 0") {
		t.Fatalf("expected detail naming the failed op, got %q", results[1].Detail)
	}
	// Independent sheet is unaffected.
	if !results[2].Accepted || !results[3].Accepted {
		t.Fatalf("independent ops blocked: %+v %+v", results[2], results[3])
	}
}

func TestCheckFormatConflictOnLockedCell(t *testing.T) {
	wb, sheet := newWorkbook(t)
	if err := sheet.LockFormat(1, 1, true); err != nil {
		t.Fatalf("lock: %v", err)
	}
	results := Check(wb, []ops.Operation{
		ops.SetCell{SheetName: "Sheet1", Row: 1, Col: 1, Value: grid.Number(9)},
		ops.SetRange{SheetName: "Sheet1", R0: 0, C0: 0, R1: 2, C1: 2, Value: grid.Text("x")},
		ops.ApplyFormat{SheetName: "Sheet1", R0: 1, C0: 1, R1: 1, C1: 1, StyleToken: "bold"},
	})
	if results[0].Accepted || results[0].Reason != ReasonFormatConflict {
		t.Fatalf("expected FormatConflict, got %+v", results[0])
	}
	if results[1].Accepted || results[1].Reason != ReasonFormatConflict {
		t.Fatalf("expected FormatConflict for range covering locked cell, got %+v", results[1])
	}
	if !results[2].Accepted {
		t.Fatalf("format op on locked cell should pass, got %+v", results[2])
	}
}

func TestCheckLockTrackingThroughInsert(t *testing.T) {
	wb, sheet := newWorkbook(t)
	if err := sheet.LockFormat(2, 0, true); err != nil {
		t.Fatalf("lock: %v", err)
	}
	results := Check(wb, []ops.Operation{
		ops.InsertRow{SheetName: "Sheet1", Index: 0},
		ops.SetCell{SheetName: "Sheet1", Row: 2, Col: 0, Value: grid.Number(1)}, // lock moved to row 3
		ops.SetCell{SheetName: "Sheet1", Row: 3, Col: 0, Value: grid.Number(1)},
	})
	if !results[1].Accepted {
		t.Fatalf("write at old lock position should pass after shift: %+v", results[1])
	}
	if results[2].Accepted || results[2].Reason != ReasonFormatConflict {
		t.Fatalf("expected FormatConflict at shifted lock, got %+v", results[2])
	}
}

func TestCheckTypeMismatchAgainstColumnPolicy(t *testing.T) {
	wb, sheet := newWorkbook(t)
	if err := sheet.SetColumnPolicy(2, grid.KindNumber); err != nil {
		t.Fatalf("policy: %v", err)
	}
	results := Check(wb, []ops.Operation{
		ops.SetCell{SheetName: "Sheet1", Row: 0, Col: 2, Value: grid.Text("oops")},
		ops.SetCell{SheetName: "Sheet1", Row: 0, Col: 2, Value: grid.Number(3)},
		ops.SetCell{SheetName: "Sheet1", Row: 1, Col: 2, Value: grid.Empty()},
	})
	if results[0].Accepted || results[0].Reason != ReasonTypeMismatch {
		t.Fatalf("expected TypeMismatch, got %+v", results[0])
	}
	if !results[1].Accepted {
		t.Fatalf("matching kind rejected: %+v", results[1])
	}
	if !results[2].Accepted {
		t.Fatalf("clearing a policy column should pass: %+v", results[2])
	}
}

func TestCheckDuplicateAddSheet(t *testing.T) {
	wb, _ := newWorkbook(t)
	results := Check(wb, []ops.Operation{
		ops.AddSheet{Name: "Sheet1"},
	})
	if results[0].Accepted {
		t.Fatalf("duplicate AddSheet accepted")
	}
}

func TestCheckDuplicateAddSheetDoesNotPoisonSheet(t *testing.T) {
	wb, _ := newWorkbook(t)
	results := Check(wb, []ops.Operation{
		ops.AddSheet{Name: "Sheet1"},
		ops.SetCell{SheetName: "Sheet1", Row: 0, Col: 0, Value: grid.Number(7)},
		ops.InsertRow{SheetName: "Sheet1", Index: 0},
	})
	if results[0].Accepted {
		t.Fatalf("duplicate AddSheet accepted")
	}
	// The sheet already exists with intact simulated state, so later
	// operations on it stand on their own.
	if !results[1].Accepted {
		t.Fatalf("write after duplicate AddSheet rejected: %+v", results[1])
	}
	if !results[2].Accepted {
		t.Fatalf("insert after duplicate AddSheet rejected: %+v", results[2])
	}
}
