package ops

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseRef converts an A1-style reference to 0-based (row, col).
func ParseRef(ref string) (row, col int, err error) {
	c, r, err := excelize.CellNameToCoordinates(strings.TrimSpace(ref))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return r - 1, c - 1, nil
}

// ParseRange converts an A1-style range ("A1:B3") to 0-based inclusive
// corners, normalized so r0<=r1 and c0<=c1. A single reference is accepted as
// a one-cell range.
func ParseRange(rng string) (r0, c0, r1, c1 int, err error) {
	rng = strings.TrimSpace(rng)
	first, second, found := strings.Cut(rng, ":")
	if !found {
		second = first
	}
	r0, c0, err = ParseRef(first)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q", rng)
	}
	r1, c1, err = ParseRef(second)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q", rng)
	}
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	return r0, c0, r1, c1, nil
}

// FormatRef renders 0-based (row, col) as an A1-style reference.
func FormatRef(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row, col)
	}
	return name
}

// FormatRange renders 0-based inclusive corners as an A1-style range.
func FormatRange(r0, c0, r1, c1 int) string {
	if r0 == r1 && c0 == c1 {
		return FormatRef(r0, c0)
	}
	return FormatRef(r0, c0) + ":" + FormatRef(r1, c1)
}
