package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/sprite-ai/quill/internal/backend"
)

// BatchMarkdown lays out a batch result as a markdown document.
func BatchMarkdown(res *backend.BatchResult) string {
	var b strings.Builder
	section := func(title, body string) {
		body = strings.TrimSpace(body)
		if body == "" {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, body)
	}
	section("제안", res.Suggestions)
	section("질문", res.Questions)
	section("교정", res.Corrections)
	if b.Len() == 0 {
		return "_결과가 없습니다._\n"
	}
	return b.String()
}

// ReportMarkdown lays out an error report as a markdown document.
func ReportMarkdown(report *backend.ErrorReport) string {
	var b strings.Builder
	b.WriteString("## 맞춤법 검사\n\n")
	if report.Summary != "" {
		b.WriteString(report.Summary + "\n\n")
	}
	if len(report.Errors) == 0 {
		return b.String()
	}
	b.WriteString("| 원문 | 교정 | 유형 | 이유 |\n|---|---|---|---|\n")
	for _, c := range report.Errors {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escapeCell(c.Original), escapeCell(c.Corrected), escapeCell(c.Type), escapeCell(c.Reason))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderMarkdown renders md for a terminal of the given width. It falls back
// to the raw markdown when rendering fails.
func RenderMarkdown(md string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
