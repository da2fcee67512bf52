package tui

import (
	"fmt"
	"strings"

	"github.com/sprite-ai/quill/internal/diff"
	"github.com/sprite-ai/quill/internal/model"
	"github.com/sprite-ai/quill/internal/suggest"
)

// Result holds the outcome of an interactive writing session.
type Result struct {
	Name        string
	Initial     string
	Final       string
	Accepted    []model.Record
	Rejected    []model.Record
	Corrections []suggest.Revision
}

func (r *Result) accept(rec model.Record) { r.Accepted = append(r.Accepted, rec) }

func (r *Result) reject(rec model.Record) { r.Rejected = append(r.Rejected, rec) }

// Changed reports whether the draft differs from where the session started.
func (r *Result) Changed() bool {
	return r.Initial != r.Final
}

// Revision returns the line diff between the initial and final draft.
func (r *Result) Revision() *diff.File {
	return diff.Revise(r.Name, r.Initial, r.Final)
}

// Patch returns a unified diff of the whole session, or "" when the draft is
// unchanged.
func (r *Result) Patch() string {
	if !r.Changed() {
		return ""
	}
	return diff.FormatPatch(r.Revision())
}

// Summary describes the session in a few lines.
func (r *Result) Summary() string {
	var b strings.Builder

	applied := 0
	for _, c := range r.Corrections {
		applied += len(c.Applied)
	}
	fmt.Fprintf(&b, "accepted %d, rejected %d suggestion(s); applied %d correction(s)\n",
		len(r.Accepted), len(r.Rejected), applied)

	if !r.Changed() {
		b.WriteString("draft unchanged\n")
		return b.String()
	}
	added, deleted := r.Revision().Stats()
	fmt.Fprintf(&b, "draft revised: +%d -%d line(s)\n", added, deleted)

	if len(r.Accepted) > 0 {
		b.WriteString("\nAccepted:\n")
		for _, rec := range r.Accepted {
			fmt.Fprintf(&b, "  - %s\n", rec.Text)
		}
	}
	return b.String()
}
