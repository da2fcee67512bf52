package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/quill/internal/diff"
	"github.com/sprite-ai/quill/internal/model"
	"github.com/sprite-ai/quill/internal/stream"
	"github.com/sprite-ai/quill/internal/suggest"
)

// listPane shows one mode's suggestions, or the raw stream text while the
// records are not yet parsed.
type listPane struct {
	title   string
	store   *suggest.Store
	session *stream.Session
	focused bool
	cursor  int
}

func newListPane(title string, store *suggest.Store) *listPane {
	return &listPane{title: title, store: store}
}

// Focus implements Focusable.
func (p *listPane) Focus() tea.Cmd {
	p.focused = true
	return nil
}

// Blur implements Focusable.
func (p *listPane) Blur() { p.focused = false }

// attach points the pane at a freshly started session.
func (p *listPane) attach(s *stream.Session) {
	p.session = s
	p.store.ReplaceAll(nil)
	p.store.Bind(s)
	p.cursor = 0
}

func (p *listPane) move(delta int) {
	p.cursor += delta
	p.clamp()
}

func (p *listPane) clamp() {
	if p.cursor >= p.store.Len() {
		p.cursor = p.store.Len() - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *listPane) selected() (model.Record, bool) {
	recs := p.store.Records()
	if p.cursor < 0 || p.cursor >= len(recs) {
		return model.Record{}, false
	}
	return recs[p.cursor], true
}

func (p *listPane) render(width, height int) string {
	innerWidth := max(width-4, 10) // borders + padding
	innerHeight := max(height-2, 1)

	var b strings.Builder
	b.WriteString(paneTitleStyle.Render(p.title))
	if meta := p.meta(); meta != "" {
		b.WriteString(" " + paneMetaStyle.Render(meta))
	}
	b.WriteByte('\n')

	if p.store.Len() > 0 {
		for i, r := range p.store.Records() {
			b.WriteString(renderRecord(r, i == p.cursor && p.focused, innerWidth))
			b.WriteByte('\n')
		}
	} else if buf := p.store.Buffer(); buf != "" {
		style := bufferStyle
		if p.session != nil && p.session.Status() == stream.Errored {
			style = errorTextStyle
		}
		b.WriteString(style.Width(innerWidth).Render(buf))
	} else {
		b.WriteString(paneMetaStyle.Render("제안이 없습니다."))
	}

	style := paneStyle
	if p.focused {
		style = paneFocusedStyle
	}
	content := clipLines(strings.TrimRight(b.String(), "\n"), innerHeight)
	return style.Width(width - 2).Height(innerHeight).Render(content)
}

func (p *listPane) meta() string {
	if p.session == nil {
		return ""
	}
	s := p.session
	switch s.Status() {
	case stream.Connecting:
		return "연결 중"
	case stream.Streaming:
		return fmt.Sprintf("수신 중 %d", s.Fragments())
	case stream.Completed:
		return fmt.Sprintf("%d개", p.store.Len())
	default:
		return s.Status().String()
	}
}

func renderRecord(r model.Record, selected bool, width int) string {
	var b strings.Builder
	if r.Ordinal != "" {
		b.WriteString(ordinalStyle.Render(strings.TrimSpace(r.Ordinal)) + " ")
	}
	style := recordStyle
	if selected {
		style = recordSelectedStyle
	}
	b.WriteString(style.Render(r.Text))
	if r.Explanation != "" {
		b.WriteString("\n   " + explanationStyle.Width(max(width-3, 10)).Render(r.Explanation))
	}
	return b.String()
}

func (m Model) renderEditor(width int) string {
	style := paneStyle
	if m.focus.Current() == Focusable(m.input) {
		style = paneFocusedStyle
	}
	header := paneTitleStyle.Render("초안") + " " + paneMetaStyle.Render("어조 "+string(m.tone))
	return style.Width(width - 2).Render(header + "\n" + m.input.View())
}

func (m Model) renderNotes(width, height int) string {
	innerHeight := max(height-2, 1)
	var b strings.Builder

	if m.report != nil && len(m.report.Errors) > 0 {
		b.WriteString(paneTitleStyle.Render("맞춤법 검사") + "\n")
		for _, c := range m.report.Errors {
			fmt.Fprintf(&b, "%s → %s %s\n",
				correctionOriginalStyle.Render(c.Original),
				correctionFixedStyle.Render(c.Corrected),
				correctionReasonStyle.Render(c.Reason))
		}
		if len(m.preview) > 0 {
			b.WriteByte('\n')
			for _, hl := range m.preview {
				b.WriteString(renderHighlighted(hl) + "\n")
			}
		}
	} else if m.notes != "" {
		b.WriteString(m.notes)
	} else {
		b.WriteString(paneMetaStyle.Render("ctrl+s 제안 · ctrl+e 맞춤법 검사"))
	}

	content := clipLines(strings.TrimRight(b.String(), "\n"), innerHeight)
	return paneStyle.Width(width - 2).Height(innerHeight).Render(content)
}

// renderHighlighted renders a patch line with its syntax colors.
func renderHighlighted(hl diff.HighlightedLine) string {
	var b strings.Builder
	for _, tok := range hl.Tokens {
		if tok.Color != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
		} else {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	left := " " + m.status
	if m.pending != "" {
		left = " " + statusBusyStyle.Render(m.pending+" 요청 중...")
	}

	sessionState := "대기"
	if s := m.manager.Active(); s != nil {
		sessionState = s.Status().String()
	}
	right := fmt.Sprintf("%s  %s  %s ", sessionState, m.tone, statusKeyStyle.Render("? help"))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(helpHeaderStyle.Render("quill 단축키"))
	b.WriteString("\n\n")

	for _, kb := range []struct{ key, desc string }{
		{keys.Realtime.Help().Key, keys.Realtime.Help().Desc},
		{keys.Batch.Help().Key, keys.Batch.Help().Desc},
		{keys.Suggest.Help().Key, keys.Suggest.Help().Desc},
		{keys.Detect.Help().Key, keys.Detect.Help().Desc},
		{keys.Tone.Help().Key, keys.Tone.Help().Desc},
		{keys.Cancel.Help().Key, keys.Cancel.Help().Desc},
		{keys.NextFocus.Help().Key, keys.NextFocus.Help().Desc},
		{keys.PrevFocus.Help().Key, keys.PrevFocus.Help().Desc},
		{lkeys.Release.Help().Key, lkeys.Release.Help().Desc},
		{"enter", "accept first real-time suggestion (list focused)"},
		{"esc", "clear real-time suggestions (list focused)"},
		{lkeys.Up.Help().Key + " " + lkeys.Down.Help().Key, "select"},
		{lkeys.Accept.Help().Key, lkeys.Accept.Help().Desc},
		{lkeys.Reject.Help().Key, lkeys.Reject.Help().Desc},
		{lkeys.Apply.Help().Key, lkeys.Apply.Help().Desc},
		{lkeys.Help.Help().Key, lkeys.Help.Help().Desc},
		{lkeys.Quit.Help().Key + " / " + keys.Quit.Help().Key, "quit"},
	} {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(14).Render(kb.key),
			kb.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// clipLines keeps the last n lines of s so streaming text stays in view.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
