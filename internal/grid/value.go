package grid

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the cell value union.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBoolean
	KindFormula
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the cell value kinds. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind    ValueKind
	Number  float64
	Text    string
	Bool    bool
	Formula string
}

func Empty() Value {
	return Value{Kind: KindEmpty}
}

func Number(n float64) Value {
	return Value{Kind: KindNumber, Number: n}
}

func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

func Boolean(b bool) Value {
	return Value{Kind: KindBoolean, Bool: b}
}

func Formula(expr string) Value {
	return Value{Kind: KindFormula, Formula: expr}
}

func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// Display renders the value the way it would appear in a cell.
func (v Value) Display() string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindText:
		return v.Text
	case KindBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindFormula:
		return v.Formula
	default:
		return fmt.Sprintf("<%d>", v.Kind)
	}
}

func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Number == other.Number
	case KindText:
		return v.Text == other.Text
	case KindBoolean:
		return v.Bool == other.Bool
	case KindFormula:
		return v.Formula == other.Formula
	default:
		return true
	}
}
