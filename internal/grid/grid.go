// Package grid holds the in-memory spreadsheet document: an ordered set of
// sheets, each a bounded 2D region of cells. All mutation goes through the
// bounds-checked methods here; a method either applies fully or returns an
// error before touching any cell.
package grid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOutOfBounds   = errors.New("cell reference out of bounds")
	ErrNotEmpty      = errors.New("region not empty; force required")
	ErrSheetExists   = errors.New("sheet already exists")
	ErrSheetNotFound = errors.New("sheet not found")
)

const (
	DefaultRows = 100
	DefaultCols = 26
)

// Style is an opaque formatting token plus a lock flag. The grid never
// interprets the token; the xlsx collaborator maps it to concrete styling.
type Style struct {
	Token  string
	Locked bool
}

// Cell pairs a value with its style. The zero Cell is an empty, unstyled cell.
type Cell struct {
	Value Value
	Style Style
}

type cellKey struct {
	row, col int
}

// Sheet is a bounded sparse grid of cells. Bounds grow only through explicit
// insert operations.
type Sheet struct {
	name     string
	rows     int
	cols     int
	cells    map[cellKey]Cell
	policies map[int]ValueKind
}

func (s *Sheet) Name() string { return s.name }
func (s *Sheet) Rows() int    { return s.rows }
func (s *Sheet) Cols() int    { return s.cols }

func (s *Sheet) checkBounds(row, col int) error {
	if row < 0 || col < 0 || row >= s.rows || col >= s.cols {
		return fmt.Errorf("%w: %s row %d col %d (sheet is %dx%d)", ErrOutOfBounds, s.name, row, col, s.rows, s.cols)
	}
	return nil
}

// Cell returns the cell at (row, col). Absent cells inside bounds read as the
// zero Cell.
func (s *Sheet) Cell(row, col int) (Cell, error) {
	if err := s.checkBounds(row, col); err != nil {
		return Cell{}, err
	}
	return s.cells[cellKey{row, col}], nil
}

// SetCell writes a value and leaves the cell's style untouched.
func (s *Sheet) SetCell(row, col int, v Value) error {
	if err := s.checkBounds(row, col); err != nil {
		return err
	}
	key := cellKey{row, col}
	cell := s.cells[key]
	cell.Value = v
	s.storeCell(key, cell)
	return nil
}

// SetStyle replaces the style token of a cell and leaves its value untouched.
// The lock flag is preserved.
func (s *Sheet) SetStyle(row, col int, token string) error {
	if err := s.checkBounds(row, col); err != nil {
		return err
	}
	key := cellKey{row, col}
	cell := s.cells[key]
	cell.Style.Token = token
	s.storeCell(key, cell)
	return nil
}

// LockFormat flips the format-lock flag of a cell.
func (s *Sheet) LockFormat(row, col int, locked bool) error {
	if err := s.checkBounds(row, col); err != nil {
		return err
	}
	key := cellKey{row, col}
	cell := s.cells[key]
	cell.Style.Locked = locked
	s.storeCell(key, cell)
	return nil
}

// ApplyFormat sets the style token on every cell of the inclusive range.
// Values and lock flags are untouched. The whole range is bounds-checked
// before any cell changes.
func (s *Sheet) ApplyFormat(r0, c0, r1, c1 int, token string) error {
	if r0 > r1 || c0 > c1 {
		return fmt.Errorf("%w: inverted range", ErrOutOfBounds)
	}
	if err := s.checkBounds(r0, c0); err != nil {
		return err
	}
	if err := s.checkBounds(r1, c1); err != nil {
		return err
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			key := cellKey{row, col}
			cell := s.cells[key]
			cell.Style.Token = token
			s.storeCell(key, cell)
		}
	}
	return nil
}

// InsertRow shifts every cell at or below index down by one row and grows the
// sheet. index may equal Rows() to append at the bottom edge.
func (s *Sheet) InsertRow(index int) error {
	if index < 0 || index > s.rows {
		return fmt.Errorf("%w: insert row %d (sheet has %d rows)", ErrOutOfBounds, index, s.rows)
	}
	shifted := make(map[cellKey]Cell, len(s.cells))
	for key, cell := range s.cells {
		if key.row >= index {
			key.row++
		}
		shifted[key] = cell
	}
	s.cells = shifted
	s.rows++
	return nil
}

// InsertCol shifts every cell at or right of index right by one column.
func (s *Sheet) InsertCol(index int) error {
	if index < 0 || index > s.cols {
		return fmt.Errorf("%w: insert col %d (sheet has %d cols)", ErrOutOfBounds, index, s.cols)
	}
	shifted := make(map[cellKey]Cell, len(s.cells))
	for key, cell := range s.cells {
		if key.col >= index {
			key.col++
		}
		shifted[key] = cell
	}
	s.cells = shifted
	if len(s.policies) > 0 {
		policies := make(map[int]ValueKind, len(s.policies))
		for col, kind := range s.policies {
			if col >= index {
				col++
			}
			policies[col] = kind
		}
		s.policies = policies
	}
	s.cols++
	return nil
}

// DeleteRow removes the row at index, shifting later rows up. Deleting a row
// holding non-empty cells fails with ErrNotEmpty unless force is set; the
// check happens before any mutation.
func (s *Sheet) DeleteRow(index int, force bool) error {
	if index < 0 || index >= s.rows {
		return fmt.Errorf("%w: delete row %d (sheet has %d rows)", ErrOutOfBounds, index, s.rows)
	}
	if !force {
		for key, cell := range s.cells {
			if key.row == index && !cell.Value.IsEmpty() {
				return fmt.Errorf("%w: row %d", ErrNotEmpty, index)
			}
		}
	}
	shifted := make(map[cellKey]Cell, len(s.cells))
	for key, cell := range s.cells {
		if key.row == index {
			continue
		}
		if key.row > index {
			key.row--
		}
		shifted[key] = cell
	}
	s.cells = shifted
	s.rows--
	return nil
}

// DeleteCol is the column counterpart of DeleteRow.
func (s *Sheet) DeleteCol(index int, force bool) error {
	if index < 0 || index >= s.cols {
		return fmt.Errorf("%w: delete col %d (sheet has %d cols)", ErrOutOfBounds, index, s.cols)
	}
	if !force {
		for key, cell := range s.cells {
			if key.col == index && !cell.Value.IsEmpty() {
				return fmt.Errorf("%w: col %d", ErrNotEmpty, index)
			}
		}
	}
	shifted := make(map[cellKey]Cell, len(s.cells))
	for key, cell := range s.cells {
		if key.col == index {
			continue
		}
		if key.col > index {
			key.col--
		}
		shifted[key] = cell
	}
	s.cells = shifted
	if len(s.policies) > 0 {
		policies := make(map[int]ValueKind, len(s.policies))
		for col, kind := range s.policies {
			if col == index {
				continue
			}
			if col > index {
				col--
			}
			policies[col] = kind
		}
		s.policies = policies
	}
	s.cols--
	return nil
}

// SetColumnPolicy declares that every value written to col must be of the
// given kind. Policies are advisory metadata enforced by the validator, not
// by the grid itself.
func (s *Sheet) SetColumnPolicy(col int, kind ValueKind) error {
	if col < 0 || col >= s.cols {
		return fmt.Errorf("%w: policy col %d (sheet has %d cols)", ErrOutOfBounds, col, s.cols)
	}
	if s.policies == nil {
		s.policies = make(map[int]ValueKind)
	}
	s.policies[col] = kind
	return nil
}

func (s *Sheet) ColumnPolicy(col int) (ValueKind, bool) {
	kind, ok := s.policies[col]
	return kind, ok
}

// EachCell visits every stored cell. Iteration order is unspecified.
func (s *Sheet) EachCell(fn func(row, col int, cell Cell)) {
	for key, cell := range s.cells {
		fn(key.row, key.col, cell)
	}
}

func (s *Sheet) storeCell(key cellKey, cell Cell) {
	if cell.Value.IsEmpty() && cell.Style == (Style{}) {
		delete(s.cells, key)
		return
	}
	s.cells[key] = cell
}

// Workbook is an ordered collection of named sheets.
type Workbook struct {
	order  []string
	sheets map[string]*Sheet
}

func New() *Workbook {
	return &Workbook{sheets: make(map[string]*Sheet)}
}

// NewWithSheet returns a workbook holding one default-sized sheet, matching
// what a freshly created document looks like.
func NewWithSheet(name string) *Workbook {
	wb := New()
	_, _ = wb.AddSheet(name, DefaultRows, DefaultCols)
	return wb
}

func (w *Workbook) AddSheet(name string, rows, cols int) (*Sheet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty sheet name", ErrSheetNotFound)
	}
	if _, ok := w.sheets[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetExists, name)
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	sheet := &Sheet{name: name, rows: rows, cols: cols, cells: make(map[cellKey]Cell)}
	w.sheets[name] = sheet
	w.order = append(w.order, name)
	return sheet, nil
}

func (w *Workbook) Sheet(name string) (*Sheet, error) {
	sheet, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return sheet, nil
}

func (w *Workbook) HasSheet(name string) bool {
	_, ok := w.sheets[name]
	return ok
}

// SheetNames returns sheet names in creation order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.order))
	copy(names, w.order)
	return names
}
