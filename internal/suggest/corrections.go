package suggest

import (
	"strings"

	"github.com/sprite-ai/quill/internal/model"
)

// Revision is the outcome of applying detected corrections to a text.
type Revision struct {
	Before  string
	After   string
	Applied []model.Correction
	Skipped []model.Correction
}

// Changed reports whether any correction was applied.
func (r Revision) Changed() bool { return r.Before != r.After }

// ApplyCorrections replaces the first occurrence of each correction's
// original text, in report order. Corrections whose original no longer
// appears (or is empty) are skipped.
func ApplyCorrections(text string, corrections []model.Correction) Revision {
	rev := Revision{Before: text, After: text}
	for _, c := range corrections {
		if c.Original == "" || !strings.Contains(rev.After, c.Original) {
			rev.Skipped = append(rev.Skipped, c)
			continue
		}
		rev.After = strings.Replace(rev.After, c.Original, c.Corrected, 1)
		rev.Applied = append(rev.Applied, c)
	}
	return rev
}
