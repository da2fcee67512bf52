// Package tui implements the Bubble Tea writing interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/diff"
	"github.com/sprite-ai/quill/internal/model"
	"github.com/sprite-ai/quill/internal/stream"
	"github.com/sprite-ai/quill/internal/suggest"
)

// Backend is the synchronous part of the writing backend.
type Backend interface {
	BatchSuggest(ctx context.Context, p model.Payload) (*backend.BatchResult, error)
	DetectErrors(ctx context.Context, p model.Payload) (*backend.ErrorReport, error)
}

// Options configures a Model.
type Options struct {
	Manager   *stream.Manager
	Backend   Backend
	Endpoints map[model.Mode]string
	Tone      model.Tone
	Draft     string
	Name      string // document name used in patches
	Logger    *zap.Logger
}

type streamEventMsg struct{ ev stream.Event }

type batchResultMsg struct {
	res *backend.BatchResult
	err error
}

type reportMsg struct {
	report *backend.ErrorReport
	err    error
}

// Model is the top-level Bubble Tea model for quill.
type Model struct {
	manager   *stream.Manager
	backend   Backend
	endpoints map[model.Mode]string
	log       *zap.Logger

	draft    *suggest.Draft
	input    *textarea.Model
	realtime *listPane
	batch    *listPane
	focus    *FocusRing
	dispatch *Dispatcher

	tone    model.Tone
	notes   string // rendered batch suggest result
	report  *backend.ErrorReport
	preview []diff.HighlightedLine
	status  string
	pending string // synchronous call in flight

	width    int
	height   int
	showHelp bool

	result *Result
}

// New creates a model for opts.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tone == "" {
		opts.Tone = model.ToneAuto
	}
	if opts.Name == "" {
		opts.Name = "draft.txt"
	}

	draft := suggest.NewDraft(opts.Draft)

	ta := textarea.New()
	ta.Placeholder = "여기에 글을 쓰세요..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(opts.Draft)

	m := Model{
		manager:   opts.Manager,
		backend:   opts.Backend,
		endpoints: opts.Endpoints,
		log:       opts.Logger.Named("tui"),
		draft:     draft,
		input:     &ta,
		realtime:  newListPane("실시간 제안", suggest.NewStore(model.ModeRealtime, draft)),
		batch:     newListPane("스트리밍 제안", suggest.NewStore(model.ModeBatch, draft)),
		tone:      opts.Tone,
		result:    &Result{Name: opts.Name, Initial: opts.Draft},
	}
	m.focus = NewFocusRing(m.input, m.realtime, m.batch)
	m.dispatch = NewDispatcher(m.focus, m.input, m.realtime.store)
	m.dispatch.OnAccept(m.result.accept)
	return m
}

// Result returns the outcome collected so far.
func (m Model) Result() *Result {
	m.result.Final = m.draft.Text()
	return m.result
}

func (m Model) pane(mode model.Mode) *listPane {
	if mode == model.ModeBatch {
		return m.batch
	}
	return m.realtime
}

func waitForEvent(events <-chan stream.Event) tea.Cmd {
	return func() tea.Msg {
		return streamEventMsg{ev: <-events}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForEvent(m.manager.Events()))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(m.leftWidth()-4, 10))
		m.input.SetHeight(max(m.height/2-4, 3))
		return m, nil

	case streamEventMsg:
		if s, ok := m.manager.Deliver(msg.ev); ok {
			m.sessionChanged(s)
		}
		return m, waitForEvent(m.manager.Events())

	case batchResultMsg:
		m.pending = ""
		if msg.err != nil {
			m.requestFailed("제안 요청 실패", msg.err)
			return m, nil
		}
		m.notes = RenderMarkdown(BatchMarkdown(msg.res), m.leftWidth()-4)
		m.status = "제안을 받았습니다."
		return m, nil

	case reportMsg:
		m.pending = ""
		if msg.err != nil {
			m.requestFailed("맞춤법 검사 실패", msg.err)
			return m, nil
		}
		m.setReport(msg.report)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus.Current() == Focusable(m.input) {
		return m.updateInput(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.NextFocus):
		return m, m.focus.Next()
	case key.Matches(msg, keys.PrevFocus):
		return m, m.focus.Prev()
	case key.Matches(msg, keys.Realtime):
		m.startStream(model.ModeRealtime)
		return m, nil
	case key.Matches(msg, keys.Batch):
		m.startStream(model.ModeBatch)
		return m, nil
	case key.Matches(msg, keys.Suggest):
		cmd := m.requestBatch()
		return m, cmd
	case key.Matches(msg, keys.Detect):
		cmd := m.requestReport()
		return m, cmd
	case key.Matches(msg, keys.Tone):
		m.tone = m.tone.Next()
		m.status = "어조: " + string(m.tone)
		return m, nil
	case key.Matches(msg, keys.Cancel):
		m.manager.Cancel()
		m.status = "스트림을 중지했습니다."
		return m, nil
	}

	if m.dispatch.Handle(msg) {
		m.syncInput()
		m.realtime.clamp()
		return m, nil
	}

	if m.focus.Current() == Focusable(m.input) {
		if key.Matches(msg, lkeys.Release) {
			cmd, _ := m.focus.Set(m.realtime)
			return m, cmd
		}
		return m.updateInput(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p, _ := m.focus.Current().(*listPane)
	switch {
	case key.Matches(msg, lkeys.Quit):
		return m.quit()
	case key.Matches(msg, lkeys.Help):
		m.showHelp = !m.showHelp
	case p == nil:
	case key.Matches(msg, lkeys.Up):
		p.move(-1)
	case key.Matches(msg, lkeys.Down):
		p.move(1)
	case key.Matches(msg, lkeys.Accept):
		if r, ok := p.selected(); ok {
			p.store.Accept(r)
			m.result.accept(r)
			m.syncInput()
		}
	case key.Matches(msg, lkeys.Reject):
		if r, ok := p.selected(); ok && p.store.Reject(r.ID) {
			m.result.reject(r)
			p.clamp()
		}
	case key.Matches(msg, lkeys.Apply):
		m.applyCorrections()
	}
	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	ta, cmd := m.input.Update(msg)
	*m.input = ta
	m.draft.Set(m.input.Value())
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.manager.Close()
	m.result.Final = m.draft.Text()
	return m, tea.Quit
}

// syncInput shows the draft in the editor after a programmatic change.
func (m Model) syncInput() {
	if m.input.Value() != m.draft.Text() {
		m.input.SetValue(m.draft.Text())
	}
}

func (m *Model) payload() (model.Payload, bool) {
	text := m.draft.Text()
	if strings.TrimSpace(text) == "" {
		m.status = "먼저 글을 입력하세요."
		return model.Payload{}, false
	}
	return model.Payload{Message: text, Tone: m.tone}, true
}

func (m *Model) startStream(mode model.Mode) {
	p, ok := m.payload()
	if !ok {
		return
	}
	pane := m.pane(mode)
	s := m.manager.Start(m.endpoints[mode], p)
	pane.attach(s)
	store := pane.store
	s.OnComplete(func(s *stream.Session) {
		store.Publish(s)
	})
	m.status = fmt.Sprintf("%s 요청 중...", pane.title)
	m.log.Debug("stream requested", zap.Stringer("mode", mode), zap.String("session", s.ID()))
}

func (m *Model) sessionChanged(s *stream.Session) {
	pane := m.realtime
	if m.batch.session == s {
		pane = m.batch
	}
	switch s.Status() {
	case stream.Completed:
		pane.clamp()
		m.status = fmt.Sprintf("%s %d개 (%.1fs)", pane.title, pane.store.Len(), s.Elapsed().Seconds())
	case stream.Errored:
		m.status = fmt.Sprintf("%s 실패: %v", pane.title, s.Err())
	}
}

func (m *Model) requestBatch() tea.Cmd {
	p, ok := m.payload()
	if !ok {
		return nil
	}
	m.pending = "제안"
	b := m.backend
	return func() tea.Msg {
		res, err := b.BatchSuggest(context.Background(), p)
		return batchResultMsg{res: res, err: err}
	}
}

func (m *Model) requestReport() tea.Cmd {
	p, ok := m.payload()
	if !ok {
		return nil
	}
	m.pending = "맞춤법 검사"
	b := m.backend
	return func() tea.Msg {
		report, err := b.DetectErrors(context.Background(), p)
		return reportMsg{report: report, err: err}
	}
}

// requestFailed replaces the notes panel with the failure, dropping any
// earlier result so stale corrections cannot be applied.
func (m *Model) requestFailed(what string, err error) {
	m.report = nil
	m.preview = nil
	m.notes = errorTextStyle.Render(stream.RequestFailedText) + "\n" + paneMetaStyle.Render(err.Error())
	m.status = what + ": " + err.Error()
	m.log.Warn("backend request failed", zap.String("request", what), zap.Error(err))
}

func (m *Model) setReport(report *backend.ErrorReport) {
	m.report = report
	m.preview = nil
	if len(report.Errors) == 0 {
		m.status = report.Summary
		return
	}
	rev := suggest.ApplyCorrections(m.draft.Text(), report.Errors)
	if rev.Changed() {
		m.preview = diff.HighlightPatch(diff.FormatPatch(diff.Revise(m.result.Name, rev.Before, rev.After)))
	}
	m.status = fmt.Sprintf("%s  p: 교정 적용", report.Summary)
}

func (m *Model) applyCorrections() {
	if m.report == nil || len(m.report.Errors) == 0 {
		m.status = "적용할 교정이 없습니다."
		return
	}
	rev := suggest.ApplyCorrections(m.draft.Text(), m.report.Errors)
	m.report = nil
	m.preview = nil
	if !rev.Changed() {
		m.status = "교정할 부분을 찾지 못했습니다."
		return
	}
	m.draft.Set(rev.After)
	m.syncInput()
	m.result.Corrections = append(m.result.Corrections, rev)
	m.status = fmt.Sprintf("교정 %d개 적용", len(rev.Applied))
}

// Run starts the TUI and returns the writing session's outcome.
func Run(opts Options) (*Result, error) {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	opts.Manager.Close()
	return m.Result(), err
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	leftWidth := m.leftWidth()
	rightWidth := m.width - leftWidth - 1
	bodyHeight := m.height - 1

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderEditor(leftWidth),
		m.renderNotes(leftWidth, bodyHeight-lipgloss.Height(m.renderEditor(leftWidth))),
	)
	paneHeight := bodyHeight / 2
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.realtime.render(rightWidth, paneHeight),
		m.batch.render(rightWidth, bodyHeight-paneHeight),
	)

	main := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) leftWidth() int {
	if m.width == 0 {
		return 60
	}
	return m.width * 3 / 5
}
