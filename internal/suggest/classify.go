// Package suggest turns completed generation output into suggestion records
// and holds them for the accept/reject workflow.
package suggest

import (
	"regexp"
	"strings"
)

// LineKind is the classification of one trimmed output line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineOrdinal
	LineExplanation
	LineText
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineOrdinal:
		return "ordinal"
	case LineExplanation:
		return "explanation"
	case LineText:
		return "text"
	default:
		return "unknown"
	}
}

// Line is a classified output line.
type Line struct {
	Kind LineKind
	// Prefix is the matched ordinal ("1. ") for LineOrdinal.
	Prefix string
	// Rest is the trimmed remainder after the ordinal or explanation marker,
	// or the whole trimmed line for LineText.
	Rest string
}

var ordinalPattern = regexp.MustCompile(`^\d+\. ?`)

var explanationMarkers = []string{"설명:", "설명 :"}

// Classify decides which grammar rule applies to a line. The line is trimmed
// before matching.
func Classify(raw string) Line {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Line{Kind: LineBlank}
	}

	if prefix := ordinalPattern.FindString(line); prefix != "" {
		return Line{
			Kind:   LineOrdinal,
			Prefix: prefix,
			Rest:   strings.TrimSpace(line[len(prefix):]),
		}
	}

	for _, marker := range explanationMarkers {
		if strings.HasPrefix(line, marker) {
			return Line{
				Kind: LineExplanation,
				Rest: strings.TrimSpace(line[len(marker):]),
			}
		}
	}

	return Line{Kind: LineText, Rest: line}
}
