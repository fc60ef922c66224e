// Package diff renders line-level diffs of cell text for change reports.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type Line struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Lines diffs two multi-line strings at line granularity.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text})
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text})
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text})
			}
		}
	}
	return lines
}

// Unified renders a compact +/- view of the change, suitable for terminal
// output. Context lines keep a leading two-space gutter.
func Unified(before, after string) string {
	var b strings.Builder
	for _, line := range Lines(before, after) {
		switch line.Type {
		case LineAdded:
			b.WriteString("+ ")
		case LineRemoved:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
