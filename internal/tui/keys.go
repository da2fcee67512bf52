package tui

import "github.com/charmbracelet/bubbles/key"

// globalKeys work regardless of focus.
type globalKeys struct {
	Quit      key.Binding
	NextFocus key.Binding
	PrevFocus key.Binding
	Realtime  key.Binding
	Batch     key.Binding
	Suggest   key.Binding
	Detect    key.Binding
	Tone      key.Binding
	Cancel    key.Binding
}

// listKeys work only while a suggestion list has focus.
type listKeys struct {
	Up      key.Binding
	Down    key.Binding
	Accept  key.Binding
	Reject  key.Binding
	Apply   key.Binding
	Help    key.Binding
	Quit    key.Binding
	Release key.Binding
}

var keys = globalKeys{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	NextFocus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next pane"),
	),
	PrevFocus: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "prev pane"),
	),
	Realtime: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "real-time suggestions"),
	),
	Batch: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("ctrl+b", "streamed suggestions"),
	),
	Suggest: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "suggest + questions"),
	),
	Detect: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "check spelling"),
	),
	Tone: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "cycle tone"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "stop stream"),
	),
}

var lkeys = listKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Accept: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "accept selected"),
	),
	Reject: key.NewBinding(
		key.WithKeys("d", "x"),
		key.WithHelp("d/x", "reject selected"),
	),
	Apply: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "apply corrections"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Release: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "leave editor"),
	),
}
