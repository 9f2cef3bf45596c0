package tui

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/yosssi/gohtml"
)

// PrettyDocument indents serialized markup for display.
func PrettyDocument(markup string) string {
	return gohtml.Format(markup)
}

// DiffDocuments returns a line diff of two documents after pretty-printing.
// Removed lines start with "-", added lines with "+", unchanged ones with a space.
// Identical documents yield "".
func DiffDocuments(before, after string) string {
	a, b := PrettyDocument(before), PrettyDocument(after)
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	ra, rb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ra, rb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteString("\n")
			}
		}
	}
	return out.String()
}
