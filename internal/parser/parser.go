// Package parser turns raw model-response text into typed operations. It is a
// pure text function: it never consults document state, so syntax errors are
// caught here and semantic (bounds, type) errors are left to the validator.
//
// The grammar is one instruction per line, each naming a vocabulary action:
//
//	SetCell <sheet> <ref> = <literal>
//	SetRange <sheet> <range> = <literal>
//	InsertRow <sheet> <index>
//	InsertColumn <sheet> <index>
//	DeleteRow <sheet> <index> [force]
//	DeleteColumn <sheet> <index> [force]
//	ApplyFormat <sheet> <range> <style>
//	AddSheet <name> [<rows> <cols>]
//
// Keywords are case-insensitive. Literals: numbers, true/false, leading "="
// for formulas, optional double quotes for text; anything else is text.
// Blank lines and code-fence markers are skipped. Every other line that does
// not map to exactly one operation is collected as a ParseError rather than
// aborting the batch.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/ops"
)

// ParseError records one line the parser could not map to an operation.
type ParseError struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s (%q)", e.Line, e.Reason, e.Raw)
}

// Parse scans text line by line and returns the operations in source order
// plus the lines it could not understand. Order is preserved because later
// operations may depend on the effects of earlier ones.
func Parse(text string) ([]ops.Operation, []ParseError) {
	var parsed []ops.Operation
	var errs []ParseError
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "```") || strings.HasPrefix(line, "#") {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			errs = append(errs, ParseError{Line: i + 1, Raw: line, Reason: err.Error()})
			continue
		}
		parsed = append(parsed, op)
	}
	return parsed, errs
}

func parseLine(line string) (ops.Operation, error) {
	fields := strings.Fields(line)
	keyword := strings.ToLower(fields[0])
	args := fields[1:]
	switch keyword {
	case "setcell":
		return parseSetCell(line)
	case "setrange":
		return parseSetRange(line)
	case "insertrow":
		return parseStructural(args, func(sheet string, index int) ops.Operation {
			return ops.InsertRow{SheetName: sheet, Index: index}
		})
	case "insertcolumn", "insertcol":
		return parseStructural(args, func(sheet string, index int) ops.Operation {
			return ops.InsertColumn{SheetName: sheet, Index: index}
		})
	case "deleterow":
		return parseDelete(args, func(sheet string, index int, force bool) ops.Operation {
			return ops.DeleteRow{SheetName: sheet, Index: index, Force: force}
		})
	case "deletecolumn", "deletecol":
		return parseDelete(args, func(sheet string, index int, force bool) ops.Operation {
			return ops.DeleteColumn{SheetName: sheet, Index: index, Force: force}
		})
	case "applyformat":
		return parseApplyFormat(args)
	case "addsheet":
		return parseAddSheet(args)
	default:
		return nil, fmt.Errorf("unrecognized instruction %q", fields[0])
	}
}

// literalAfterEquals splits "… = <literal>" on the first standalone "=",
// keeping formula literals (which themselves start with "=") intact.
func literalAfterEquals(line string) (head []string, literal string, err error) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return nil, "", fmt.Errorf("missing \"=\"")
	}
	head = strings.Fields(line[:idx])
	literal = strings.TrimSpace(line[idx+1:])
	return head, literal, nil
}

func parseSetCell(line string) (ops.Operation, error) {
	head, literal, err := literalAfterEquals(line)
	if err != nil {
		return nil, err
	}
	// head is [keyword, sheet, ref]
	if len(head) != 3 {
		return nil, fmt.Errorf("expected: SetCell <sheet> <ref> = <literal>")
	}
	row, col, err := ops.ParseRef(head[2])
	if err != nil {
		return nil, err
	}
	return ops.SetCell{SheetName: head[1], Row: row, Col: col, Value: parseLiteral(literal)}, nil
}

func parseSetRange(line string) (ops.Operation, error) {
	head, literal, err := literalAfterEquals(line)
	if err != nil {
		return nil, err
	}
	if len(head) != 3 {
		return nil, fmt.Errorf("expected: SetRange <sheet> <range> = <literal>")
	}
	r0, c0, r1, c1, err := ops.ParseRange(head[2])
	if err != nil {
		return nil, err
	}
	return ops.SetRange{SheetName: head[1], R0: r0, C0: c0, R1: r1, C1: c1, Value: parseLiteral(literal)}, nil
}

func parseStructural(args []string, build func(sheet string, index int) ops.Operation) (ops.Operation, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expected: <sheet> <index>")
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return nil, err
	}
	return build(args[0], index), nil
}

func parseDelete(args []string, build func(sheet string, index int, force bool) ops.Operation) (ops.Operation, error) {
	force := false
	if len(args) == 3 && strings.EqualFold(args[2], "force") {
		force = true
		args = args[:2]
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("expected: <sheet> <index> [force]")
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return nil, err
	}
	return build(args[0], index, force), nil
}

func parseApplyFormat(args []string) (ops.Operation, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("expected: ApplyFormat <sheet> <range> <style>")
	}
	r0, c0, r1, c1, err := ops.ParseRange(args[1])
	if err != nil {
		return nil, err
	}
	return ops.ApplyFormat{SheetName: args[0], R0: r0, C0: c0, R1: r1, C1: c1, StyleToken: args[2]}, nil
}

func parseAddSheet(args []string) (ops.Operation, error) {
	switch len(args) {
	case 1:
		return ops.AddSheet{Name: args[0]}, nil
	case 3:
		rows, err := parseIndex(args[1])
		if err != nil {
			return nil, err
		}
		cols, err := parseIndex(args[2])
		if err != nil {
			return nil, err
		}
		if rows == 0 || cols == 0 {
			return nil, fmt.Errorf("sheet dimensions must be positive")
		}
		return ops.AddSheet{Name: args[0], Rows: rows, Cols: cols}, nil
	default:
		return nil, fmt.Errorf("expected: AddSheet <name> [<rows> <cols>]")
	}
}

// parseIndex enforces the syntactic rule that indices are non-negative
// integers. Whether the index is in bounds is the validator's business.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q is not an integer", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("index %d is negative", n)
	}
	return n, nil
}

func parseLiteral(literal string) grid.Value {
	if literal == "" {
		return grid.Empty()
	}
	if strings.HasPrefix(literal, "=") {
		return grid.Formula(literal)
	}
	if len(literal) >= 2 && strings.HasPrefix(literal, `"`) && strings.HasSuffix(literal, `"`) {
		return grid.Text(literal[1 : len(literal)-1])
	}
	if n, err := strconv.ParseFloat(literal, 64); err == nil {
		return grid.Number(n)
	}
	switch strings.ToLower(literal) {
	case "true":
		return grid.Boolean(true)
	case "false":
		return grid.Boolean(false)
	}
	return grid.Text(literal)
}
