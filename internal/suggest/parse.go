package suggest

import (
	"strings"

	"github.com/sprite-ai/quill/internal/model"
)

// Parse converts a completed buffer into records using the grammar for mode.
func Parse(mode model.Mode, text string) []model.Record {
	if mode == model.ModeBatch {
		return ParseBatch(text)
	}
	return ParseRealtime(text)
}

// ParseRealtime applies the single-sentence grammar: one record per
// non-blank line, numeric ordinal prefixes stripped, no merging.
func ParseRealtime(text string) []model.Record {
	var records []model.Record
	for i, raw := range splitLines(text) {
		line := Classify(raw)
		switch line.Kind {
		case LineBlank:
			continue
		case LineOrdinal:
			if line.Rest == "" {
				continue
			}
			records = append(records, model.Record{ID: i, Text: line.Rest})
		default:
			records = append(records, model.Record{ID: i, Text: strings.TrimSpace(raw)})
		}
	}
	return records
}

// ParseBatch applies the numbered grammar. Ordinal lines open a record,
// explanation lines annotate the open record, and other lines continue
// whichever field the open record is currently filling.
func ParseBatch(text string) []model.Record {
	var (
		records []model.Record
		pending *model.Record
	)

	emit := func(r *model.Record) {
		if r == nil || r.Text == "" {
			return
		}
		records = append(records, *r)
	}

	for i, raw := range splitLines(text) {
		line := Classify(raw)
		switch line.Kind {
		case LineBlank:
			continue

		case LineOrdinal:
			emit(pending)
			pending = &model.Record{ID: i, Ordinal: line.Prefix, Text: line.Rest}

		case LineExplanation:
			if pending != nil {
				pending.Explanation = line.Rest
				continue
			}
			emit(&model.Record{ID: i, Text: strings.TrimSpace(raw)})

		case LineText:
			switch {
			case pending == nil:
				emit(&model.Record{ID: i, Text: line.Rest})
			case pending.Explanation != "":
				pending.Explanation = joinSpace(pending.Explanation, line.Rest)
			default:
				pending.Text = joinSpace(pending.Text, line.Rest)
			}
		}
	}
	emit(pending)

	return records
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func joinSpace(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
