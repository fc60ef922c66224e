package exec

import (
	"fmt"
	"strings"

	"gridwright/engine/internal/diff"
	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/ops"
)

// Render produces the user-facing account of one instruction cycle. Every
// applied, failed, rejected, and unparsed line is enumerated; a rejected
// operation is never silently dropped.
func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Applied %d operation(s)", r.AppliedCount())
	if failed := r.FailedCount(); failed > 0 {
		fmt.Fprintf(&b, ", %d failed", failed)
	}
	if len(r.Rejections) > 0 {
		fmt.Fprintf(&b, ", %d rejected", len(r.Rejections))
	}
	if len(r.ParseErrors) > 0 {
		fmt.Fprintf(&b, ", %d unparsed line(s)", len(r.ParseErrors))
	}
	b.WriteString(".\n")

	for _, change := range r.Changes {
		if change.Applied {
			fmt.Fprintf(&b, "  ok   %s\n", change.Op)
			renderCellChanges(&b, change)
			continue
		}
		fmt.Fprintf(&b, "  fail %s: %s\n", change.Op, change.Err)
	}
	for _, rej := range r.Rejections {
		fmt.Fprintf(&b, "  rej  %s: %s", rej.Op, rej.Reason)
		if rej.Detail != "" {
			fmt.Fprintf(&b, " (%s)", rej.Detail)
		}
		b.WriteByte('\n')
	}
	for _, pe := range r.ParseErrors {
		fmt.Fprintf(&b, "  ??   line %d %q: %s\n", pe.Line, pe.Raw, pe.Reason)
	}
	return b.String()
}

func renderCellChanges(b *strings.Builder, change Change) {
	before := make(map[[2]int]grid.Cell, len(change.Before))
	for _, snap := range change.Before {
		before[[2]int{snap.Row, snap.Col}] = snap.Cell
	}
	for _, snap := range change.After {
		old := before[[2]int{snap.Row, snap.Col}]
		if old.Value.Equal(snap.Cell.Value) {
			continue
		}
		ref := ops.FormatRef(snap.Row, snap.Col)
		oldText := old.Value.Display()
		newText := snap.Cell.Value.Display()
		if strings.Contains(oldText, "\n") || strings.Contains(newText, "\n") {
			fmt.Fprintf(b, "       %s:\n%s", ref, indent(diff.Unified(oldText+"\n", newText+"\n"), "       "))
			continue
		}
		fmt.Fprintf(b, "       %s: %q -> %q\n", ref, oldText, newText)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
