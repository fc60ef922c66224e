// Package validate is the semantic pre-flight check: every operation is
// judged against a simulated document state, not the original snapshot, so an
// operation that depends on an earlier operation's effect in the same batch
// (insert a row, then write into it) validates correctly. The real document
// is never touched here.
package validate

import (
	"fmt"

	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/ops"
)

// Reason classifies a rejection.
type Reason string

const (
	ReasonOutOfBounds         Reason = "OutOfBounds"
	ReasonFormatConflict      Reason = "FormatConflict"
	ReasonTypeMismatch        Reason = "TypeMismatch"
	ReasonVocabularyViolation Reason = "VocabularyViolation"
	ReasonDependencyFailed    Reason = "DependencyFailed"
	// ReasonBatchCapExceeded marks operations past the configured batch
	// cap. The session rejects them before validation; they still appear
	// in the report.
	ReasonBatchCapExceeded Reason = "BatchCapExceeded"
)

// Result is the per-operation outcome of one validation pass.
type Result struct {
	Index    int
	Op       ops.Operation
	Accepted bool
	Reason   Reason
	Detail   string
}

type cellAddr struct {
	row, col int
}

// sheetState is the simulated view of one sheet: bounds, format locks, and
// column value policies, advanced as each accepted operation is replayed.
type sheetState struct {
	rows, cols int
	locked     map[cellAddr]bool
	policies   map[int]grid.ValueKind
}

func newSheetState(sheet *grid.Sheet) *sheetState {
	st := &sheetState{
		rows:     sheet.Rows(),
		cols:     sheet.Cols(),
		locked:   make(map[cellAddr]bool),
		policies: make(map[int]grid.ValueKind),
	}
	sheet.EachCell(func(row, col int, cell grid.Cell) {
		if cell.Style.Locked {
			st.locked[cellAddr{row, col}] = true
		}
	})
	for col := 0; col < sheet.Cols(); col++ {
		if kind, ok := sheet.ColumnPolicy(col); ok {
			st.policies[col] = kind
		}
	}
	return st
}

// Check validates operations in order against a read-only workbook. Rejected
// operations do not block later independent operations; when a structural
// operation is rejected, every later operation on the same sheet is rejected
// with DependencyFailed because the simulated bounds it would validate
// against are no longer trustworthy.
func Check(wb *grid.Workbook, operations []ops.Operation) []Result {
	sheets := make(map[string]*sheetState)
	for _, name := range wb.SheetNames() {
		sheet, err := wb.Sheet(name)
		if err != nil {
			continue
		}
		sheets[name] = newSheetState(sheet)
	}
	broken := make(map[string]int) // sheet name -> index of the rejected structural op

	results := make([]Result, 0, len(operations))
	for i, op := range operations {
		result := Result{Index: i, Op: op, Accepted: true}
		if failedAt, ok := broken[op.Sheet()]; ok {
			result.Accepted = false
			result.Reason = ReasonDependencyFailed
			result.Detail = fmt.Sprintf("depends on rejected operation %d (%s)", failedAt, operations[failedAt].Kind())
			results = append(results, result)
			continue
		}
		if reason, detail := checkOne(sheets, op); reason != "" {
			result.Accepted = false
			result.Reason = reason
			result.Detail = detail
			if breaksDependents(sheets, op) {
				broken[op.Sheet()] = i
			}
			results = append(results, result)
			continue
		}
		advance(sheets, op)
		results = append(results, result)
	}
	return results
}

// breaksDependents reports whether rejecting op leaves the simulated state of
// its sheet untrustworthy for later operations. A rejected AddSheet whose
// sheet already exists changed nothing: the existing sheet's simulated state
// is intact and later operations on it still validate correctly.
func breaksDependents(sheets map[string]*sheetState, op ops.Operation) bool {
	if !op.Structural() {
		return false
	}
	if _, ok := op.(ops.AddSheet); ok {
		_, exists := sheets[op.Sheet()]
		return !exists
	}
	return true
}

func checkOne(sheets map[string]*sheetState, op ops.Operation) (Reason, string) {
	switch o := op.(type) {
	case ops.SetCell:
		st, reason, detail := lookup(sheets, o.SheetName)
		if st == nil {
			return reason, detail
		}
		return checkWrite(st, o.Row, o.Col, o.Row, o.Col, o.Value)
	case ops.SetRange:
		st, reason, detail := lookup(sheets, o.SheetName)
		if st == nil {
			return reason, detail
		}
		return checkWrite(st, o.R0, o.C0, o.R1, o.C1, o.Value)
	case ops.InsertRow:
		st, reason, detail := lookup(sheets, o.SheetName)
		if st == nil {
			return reason, detail
		}
		if o.Index > st.rows {
			return ReasonOutOfBounds, fmt.Sprintf("insert row %d exceeds %d rows", o.Index, st.rows)
		}
	case ops.InsertColumn:
		st, reason, detail := lookup(sheets, o.SheetName)
		if st == nil {
			return reason, detail
		}
		if o.Index > st.cols {
			return ReasonOutOfBounds, fmt.Sprintf("insert col %d exceeds %d cols", o.Index, st.cols)
		}
	case ops.DeleteRow:
		st, reason, detail := lookup(sheets, o.SheetName)
		if st == nil {
			return reason, detail
		}
		if o.Index >= st.rows {
			return ReasonOutOfBounds, fmt.Sprintf("delete row %d exceeds %d rows", o.Index, st.rows)
		}
	case ops.DeleteColumn:
		st, reason, detail := lookup(sheets, o.SheetName)
		if st == nil {
			return reason, detail
		}
		if o.Index >= st.cols {
			return ReasonOutOfBounds, fmt.Sprintf("delete col %d exceeds %d cols", o.Index, st.cols)
		}
	case ops.ApplyFormat:
		st, reason, detail := lookup(sheets, o.SheetName)
		if st == nil {
			return reason, detail
		}
		if o.R0 < 0 || o.C0 < 0 || o.R1 >= st.rows || o.C1 >= st.cols {
			return ReasonOutOfBounds, fmt.Sprintf("range %s exceeds %dx%d", ops.FormatRange(o.R0, o.C0, o.R1, o.C1), st.rows, st.cols)
		}
	case ops.AddSheet:
		if _, ok := sheets[o.Name]; ok {
			return ReasonOutOfBounds, fmt.Sprintf("sheet %q already exists", o.Name)
		}
	default:
		return ReasonVocabularyViolation, fmt.Sprintf("unknown operation %T", op)
	}
	return "", ""
}

func lookup(sheets map[string]*sheetState, name string) (*sheetState, Reason, string) {
	st, ok := sheets[name]
	if !ok {
		return nil, ReasonOutOfBounds, fmt.Sprintf("no sheet named %q", name)
	}
	return st, "", ""
}

func checkWrite(st *sheetState, r0, c0, r1, c1 int, value grid.Value) (Reason, string) {
	if r0 < 0 || c0 < 0 || r1 >= st.rows || c1 >= st.cols {
		return ReasonOutOfBounds, fmt.Sprintf("range %s exceeds %dx%d", ops.FormatRange(r0, c0, r1, c1), st.rows, st.cols)
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if st.locked[cellAddr{row, col}] {
				return ReasonFormatConflict, fmt.Sprintf("cell %s is format-locked", ops.FormatRef(row, col))
			}
		}
	}
	if !value.IsEmpty() {
		for col := c0; col <= c1; col++ {
			if kind, ok := st.policies[col]; ok && kind != value.Kind {
				return ReasonTypeMismatch, fmt.Sprintf("column %d accepts %s values, got %s", col, kind, value.Kind)
			}
		}
	}
	return "", ""
}

// advance replays an accepted operation onto the simulated state.
func advance(sheets map[string]*sheetState, op ops.Operation) {
	switch o := op.(type) {
	case ops.InsertRow:
		st := sheets[o.SheetName]
		st.rows++
		st.locked = shiftLocked(st.locked, func(addr cellAddr) cellAddr {
			if addr.row >= o.Index {
				addr.row++
			}
			return addr
		})
	case ops.InsertColumn:
		st := sheets[o.SheetName]
		st.cols++
		st.locked = shiftLocked(st.locked, func(addr cellAddr) cellAddr {
			if addr.col >= o.Index {
				addr.col++
			}
			return addr
		})
		st.policies = shiftPolicies(st.policies, o.Index, +1)
	case ops.DeleteRow:
		st := sheets[o.SheetName]
		st.rows--
		shifted := make(map[cellAddr]bool, len(st.locked))
		for addr := range st.locked {
			if addr.row == o.Index {
				continue
			}
			if addr.row > o.Index {
				addr.row--
			}
			shifted[addr] = true
		}
		st.locked = shifted
	case ops.DeleteColumn:
		st := sheets[o.SheetName]
		st.cols--
		shifted := make(map[cellAddr]bool, len(st.locked))
		for addr := range st.locked {
			if addr.col == o.Index {
				continue
			}
			if addr.col > o.Index {
				addr.col--
			}
			shifted[addr] = true
		}
		st.locked = shifted
		st.policies = shiftPolicies(st.policies, o.Index, -1)
	case ops.AddSheet:
		rows, cols := o.Rows, o.Cols
		if rows <= 0 {
			rows = grid.DefaultRows
		}
		if cols <= 0 {
			cols = grid.DefaultCols
		}
		sheets[o.Name] = &sheetState{
			rows:     rows,
			cols:     cols,
			locked:   make(map[cellAddr]bool),
			policies: make(map[int]grid.ValueKind),
		}
	}
}

func shiftLocked(locked map[cellAddr]bool, shift func(cellAddr) cellAddr) map[cellAddr]bool {
	shifted := make(map[cellAddr]bool, len(locked))
	for addr := range locked {
		shifted[shift(addr)] = true
	}
	return shifted
}

func shiftPolicies(policies map[int]grid.ValueKind, index, delta int) map[int]grid.ValueKind {
	shifted := make(map[int]grid.ValueKind, len(policies))
	for col, kind := range policies {
		switch {
		case delta < 0 && col == index:
			continue
		case delta < 0 && col > index:
			col--
		case delta > 0 && col >= index:
			col++
		}
		shifted[col] = kind
	}
	return shifted
}
