// Package ops defines the closed vocabulary of spreadsheet mutations. No
// operation outside this set is expressible, which keeps validation decidable:
// the validator only reasons about these shapes. Operations are immutable
// value objects once constructed.
package ops

import (
	"fmt"

	"gridwright/engine/internal/grid"
)

// Kind names an operation variant.
type Kind string

const (
	KindSetCell      Kind = "SetCell"
	KindSetRange     Kind = "SetRange"
	KindInsertRow    Kind = "InsertRow"
	KindInsertColumn Kind = "InsertColumn"
	KindDeleteRow    Kind = "DeleteRow"
	KindDeleteColumn Kind = "DeleteColumn"
	KindApplyFormat  Kind = "ApplyFormat"
	KindAddSheet     Kind = "AddSheet"
)

// Operation is one typed spreadsheet mutation. FormatPreserving operations
// never alter cell styles; ValuePreserving operations never alter cell values.
type Operation interface {
	Kind() Kind
	// Sheet names the sheet the operation touches. AddSheet returns the
	// name of the sheet it creates.
	Sheet() string
	// Structural reports whether the operation changes sheet bounds or the
	// sheet set, which is what later operations in a batch can depend on.
	Structural() bool
	FormatPreserving() bool
	ValuePreserving() bool
	String() string
}

type SetCell struct {
	SheetName string
	Row, Col  int
	Value     grid.Value
}

func (op SetCell) Kind() Kind             { return KindSetCell }
func (op SetCell) Sheet() string          { return op.SheetName }
func (op SetCell) Structural() bool       { return false }
func (op SetCell) FormatPreserving() bool { return true }
func (op SetCell) ValuePreserving() bool  { return false }
func (op SetCell) String() string {
	return fmt.Sprintf("SetCell %s %s = %s", op.SheetName, FormatRef(op.Row, op.Col), op.Value.Display())
}

type SetRange struct {
	SheetName      string
	R0, C0, R1, C1 int
	Value          grid.Value
}

func (op SetRange) Kind() Kind             { return KindSetRange }
func (op SetRange) Sheet() string          { return op.SheetName }
func (op SetRange) Structural() bool       { return false }
func (op SetRange) FormatPreserving() bool { return true }
func (op SetRange) ValuePreserving() bool  { return false }
func (op SetRange) String() string {
	return fmt.Sprintf("SetRange %s %s = %s", op.SheetName, FormatRange(op.R0, op.C0, op.R1, op.C1), op.Value.Display())
}

type InsertRow struct {
	SheetName string
	Index     int
}

func (op InsertRow) Kind() Kind             { return KindInsertRow }
func (op InsertRow) Sheet() string          { return op.SheetName }
func (op InsertRow) Structural() bool       { return true }
func (op InsertRow) FormatPreserving() bool { return true }
func (op InsertRow) ValuePreserving() bool  { return true }
func (op InsertRow) String() string {
	return fmt.Sprintf("InsertRow %s %d", op.SheetName, op.Index)
}

type InsertColumn struct {
	SheetName string
	Index     int
}

func (op InsertColumn) Kind() Kind             { return KindInsertColumn }
func (op InsertColumn) Sheet() string          { return op.SheetName }
func (op InsertColumn) Structural() bool       { return true }
func (op InsertColumn) FormatPreserving() bool { return true }
func (op InsertColumn) ValuePreserving() bool  { return true }
func (op InsertColumn) String() string {
	return fmt.Sprintf("InsertColumn %s %d", op.SheetName, op.Index)
}

type DeleteRow struct {
	SheetName string
	Index     int
	Force     bool
}

func (op DeleteRow) Kind() Kind             { return KindDeleteRow }
func (op DeleteRow) Sheet() string          { return op.SheetName }
func (op DeleteRow) Structural() bool       { return true }
func (op DeleteRow) FormatPreserving() bool { return true }
func (op DeleteRow) ValuePreserving() bool  { return true }
func (op DeleteRow) String() string {
	s := fmt.Sprintf("DeleteRow %s %d", op.SheetName, op.Index)
	if op.Force {
		s += " force"
	}
	return s
}

type DeleteColumn struct {
	SheetName string
	Index     int
	Force     bool
}

func (op DeleteColumn) Kind() Kind             { return KindDeleteColumn }
func (op DeleteColumn) Sheet() string          { return op.SheetName }
func (op DeleteColumn) Structural() bool       { return true }
func (op DeleteColumn) FormatPreserving() bool { return true }
func (op DeleteColumn) ValuePreserving() bool  { return true }
func (op DeleteColumn) String() string {
	s := fmt.Sprintf("DeleteColumn %s %d", op.SheetName, op.Index)
	if op.Force {
		s += " force"
	}
	return s
}

type ApplyFormat struct {
	SheetName      string
	R0, C0, R1, C1 int
	StyleToken     string
}

func (op ApplyFormat) Kind() Kind             { return KindApplyFormat }
func (op ApplyFormat) Sheet() string          { return op.SheetName }
func (op ApplyFormat) Structural() bool       { return false }
func (op ApplyFormat) FormatPreserving() bool { return false }
func (op ApplyFormat) ValuePreserving() bool  { return true }
func (op ApplyFormat) String() string {
	return fmt.Sprintf("ApplyFormat %s %s %s", op.SheetName, FormatRange(op.R0, op.C0, op.R1, op.C1), op.StyleToken)
}

type AddSheet struct {
	Name       string
	Rows, Cols int
}

func (op AddSheet) Kind() Kind             { return KindAddSheet }
func (op AddSheet) Sheet() string          { return op.Name }
func (op AddSheet) Structural() bool       { return true }
func (op AddSheet) FormatPreserving() bool { return true }
func (op AddSheet) ValuePreserving() bool  { return true }
func (op AddSheet) String() string {
	if op.Rows > 0 || op.Cols > 0 {
		return fmt.Sprintf("AddSheet %s %d %d", op.Name, op.Rows, op.Cols)
	}
	return fmt.Sprintf("AddSheet %s", op.Name)
}
