// Package diff builds unified patches between two revisions of a draft.
package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/pmezard/go-difflib/difflib"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

// File is the difference between two revisions of one document.
type File struct {
	OldName      string
	NewName      string
	Fragments    []*gitdiff.TextFragment
	AddedLines   int
	DeletedLines int
}

// Name returns the display name for the file.
func (f *File) Name() string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// Changed reports whether the revisions differ.
func (f *File) Changed() bool {
	return f != nil && len(f.Fragments) > 0
}

// Revise compares before and after line by line and returns the changes as
// text fragments with ContextLines of context.
func Revise(name, before, after string) *File {
	f := &File{OldName: name, NewName: name}
	if before == after {
		return f
	}
	a, b := splitLines(before), splitLines(after)

	m := difflib.NewMatcher(a, b)
	for _, group := range m.GetGroupedOpCodes(ContextLines) {
		if frag := fragment(f, a, b, group); frag != nil {
			f.Fragments = append(f.Fragments, frag)
		}
	}
	return f
}

// fragment converts one group of opcodes into a text fragment and counts its
// changes into f. It returns nil for a group without changes.
func fragment(f *File, a, b []string, group []difflib.OpCode) *gitdiff.TextFragment {
	frag := &gitdiff.TextFragment{}
	for _, op := range group {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				frag.Lines = append(frag.Lines, gitdiff.Line{Op: gitdiff.OpContext, Line: line})
			}
			n := int64(op.I2 - op.I1)
			frag.OldLines += n
			frag.NewLines += n
			if frag.LinesAdded == 0 && frag.LinesDeleted == 0 {
				frag.LeadingContext += n
			}
		case 'd', 'r', 'i':
			for _, line := range a[op.I1:op.I2] {
				frag.Lines = append(frag.Lines, gitdiff.Line{Op: gitdiff.OpDelete, Line: line})
			}
			for _, line := range b[op.J1:op.J2] {
				frag.Lines = append(frag.Lines, gitdiff.Line{Op: gitdiff.OpAdd, Line: line})
			}
			frag.OldLines += int64(op.I2 - op.I1)
			frag.NewLines += int64(op.J2 - op.J1)
			frag.LinesDeleted += int64(op.I2 - op.I1)
			frag.LinesAdded += int64(op.J2 - op.J1)
		}
	}
	if frag.LinesAdded == 0 && frag.LinesDeleted == 0 {
		return nil
	}
	f.AddedLines += int(frag.LinesAdded)
	f.DeletedLines += int(frag.LinesDeleted)

	for i := len(frag.Lines) - 1; i >= 0 && frag.Lines[i].Op == gitdiff.OpContext; i-- {
		frag.TrailingContext++
	}

	// Unified diff positions are 1-based; an empty side points at the line
	// before it.
	first := group[0]
	frag.OldPosition = int64(first.I1 + 1)
	if frag.OldLines == 0 {
		frag.OldPosition = int64(first.I1)
	}
	frag.NewPosition = int64(first.J1 + 1)
	if frag.NewLines == 0 {
		frag.NewPosition = int64(first.J1)
	}
	return frag
}

// FormatPatch renders f as a unified diff. It returns "" when nothing
// changed.
func FormatPatch(f *File) string {
	if !f.Changed() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", f.OldName, f.NewName)
	fmt.Fprintf(&b, "--- a/%s\n", f.OldName)
	fmt.Fprintf(&b, "+++ b/%s\n", f.NewName)

	for _, frag := range f.Fragments {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@",
			frag.OldPosition, frag.OldLines,
			frag.NewPosition, frag.NewLines)
		if frag.Comment != "" {
			b.WriteString(" " + frag.Comment)
		}
		b.WriteString("\n")

		for _, line := range frag.Lines {
			switch line.Op {
			case gitdiff.OpContext:
				b.WriteString(" " + line.Line)
			case gitdiff.OpDelete:
				b.WriteString("-" + line.Line)
			case gitdiff.OpAdd:
				b.WriteString("+" + line.Line)
			}
			if !strings.HasSuffix(line.Line, "\n") {
				b.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

// Stats returns the number of added and deleted lines.
func (f *File) Stats() (added, deleted int) {
	return f.AddedLines, f.DeletedLines
}

// splitLines splits s after each "\n", keeping the terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
