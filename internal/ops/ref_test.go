package ops

import "testing"

func TestParseRef(t *testing.T) {
	cases := []struct {
		ref      string
		row, col int
	}{
		{"A1", 0, 0},
		{"B3", 2, 1},
		{"Z999", 998, 25},
		{"AA10", 9, 26},
		{" c2 ", 1, 2},
	}
	for _, tc := range cases {
		row, col, err := ParseRef(tc.ref)
		if err != nil {
			t.Fatalf("ParseRef(%q): %v", tc.ref, err)
		}
		if row != tc.row || col != tc.col {
			t.Fatalf("ParseRef(%q) = (%d,%d), want (%d,%d)", tc.ref, row, col, tc.row, tc.col)
		}
	}
	for _, bad := range []string{"", "1A", "A0", "A-1", "hello"} {
		if _, _, err := ParseRef(bad); err == nil {
			t.Fatalf("ParseRef(%q): expected error", bad)
		}
	}
}

func TestParseRangeNormalizes(t *testing.T) {
	r0, c0, r1, c1, err := ParseRange("C5:A2")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if r0 != 1 || c0 != 0 || r1 != 4 || c1 != 2 {
		t.Fatalf("ParseRange(C5:A2) = (%d,%d,%d,%d)", r0, c0, r1, c1)
	}
	r0, c0, r1, c1, err = ParseRange("B2")
	if err != nil {
		t.Fatalf("single-cell range: %v", err)
	}
	if r0 != 1 || c0 != 1 || r1 != 1 || c1 != 1 {
		t.Fatalf("ParseRange(B2) = (%d,%d,%d,%d)", r0, c0, r1, c1)
	}
}

func TestFormatRefRoundTrip(t *testing.T) {
	for _, ref := range []string{"A1", "B7", "AA100"} {
		row, col, err := ParseRef(ref)
		if err != nil {
			t.Fatalf("ParseRef(%q): %v", ref, err)
		}
		if got := FormatRef(row, col); got != ref {
			t.Fatalf("FormatRef(ParseRef(%q)) = %q", ref, got)
		}
	}
	if got := FormatRange(0, 0, 2, 1); got != "A1:B3" {
		t.Fatalf("FormatRange = %q, want A1:B3", got)
	}
	if got := FormatRange(1, 1, 1, 1); got != "B2" {
		t.Fatalf("single-cell FormatRange = %q, want B2", got)
	}
}
