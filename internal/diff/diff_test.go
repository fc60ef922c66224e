package diff

import (
	"strings"
	"testing"
)

func TestLinesClassifiesChanges(t *testing.T) {
	before := "alpha\nbeta\ngamma\n"
	after := "alpha\nBETA\ngamma\n"
	lines := Lines(before, after)
	var added, removed, context int
	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			added++
			if line.Text != "BETA" {
				t.Fatalf("unexpected added line %q", line.Text)
			}
		case LineRemoved:
			removed++
			if line.Text != "beta" {
				t.Fatalf("unexpected removed line %q", line.Text)
			}
		case LineContext:
			context++
		}
	}
	if added != 1 || removed != 1 || context != 2 {
		t.Fatalf("added=%d removed=%d context=%d", added, removed, context)
	}
}

func TestUnifiedMarksGutter(t *testing.T) {
	out := Unified("old\n", "new\n")
	if !strings.Contains(out, "- old") || !strings.Contains(out, "+ new") {
		t.Fatalf("unexpected unified output:\n%s", out)
	}
}

func TestLinesEqualInput(t *testing.T) {
	lines := Lines("same\n", "same\n")
	for _, line := range lines {
		if line.Type != LineContext {
			t.Fatalf("equal input produced %s line", line.Type)
		}
	}
}
