package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/quill/internal/model"
	"github.com/sprite-ai/quill/internal/suggest"
)

// Focusable is an element the focus ring can move between.
type Focusable interface {
	Focus() tea.Cmd
	Blur()
}

// FocusRing cycles keyboard focus through a fixed set of elements.
type FocusRing struct {
	elems []Focusable
	idx   int
}

// NewFocusRing focuses the first element.
func NewFocusRing(elems ...Focusable) *FocusRing {
	r := &FocusRing{elems: elems}
	if len(elems) > 0 {
		elems[0].Focus()
	}
	return r
}

// Current returns the focused element, or nil for an empty ring.
func (r *FocusRing) Current() Focusable {
	if len(r.elems) == 0 {
		return nil
	}
	return r.elems[r.idx]
}

// Next moves focus forward, wrapping at the end.
func (r *FocusRing) Next() tea.Cmd {
	return r.move(1)
}

// Prev moves focus backward, wrapping at the start.
func (r *FocusRing) Prev() tea.Cmd {
	return r.move(-1)
}

// Set focuses f. It reports false when f is not in the ring.
func (r *FocusRing) Set(f Focusable) (tea.Cmd, bool) {
	for i, e := range r.elems {
		if e == f {
			return r.focus(i), true
		}
	}
	return nil, false
}

func (r *FocusRing) move(delta int) tea.Cmd {
	if len(r.elems) == 0 {
		return nil
	}
	return r.focus((r.idx + delta + len(r.elems)) % len(r.elems))
}

func (r *FocusRing) focus(i int) tea.Cmd {
	if i == r.idx {
		return nil
	}
	r.elems[r.idx].Blur()
	r.idx = i
	return r.elems[i].Focus()
}

// Dispatcher handles the real-time shortcuts. It is active only while focus
// is away from the primary input, so Enter and Escape keep their editing
// meaning inside it.
type Dispatcher struct {
	focus *FocusRing
	input Focusable
	store *suggest.Store

	onAccept func(model.Record)
}

// NewDispatcher creates a dispatcher acting on the real-time store.
func NewDispatcher(focus *FocusRing, input Focusable, store *suggest.Store) *Dispatcher {
	return &Dispatcher{focus: focus, input: input, store: store}
}

// OnAccept registers fn to observe records accepted through Enter.
func (d *Dispatcher) OnAccept(fn func(model.Record)) { d.onAccept = fn }

// Handle reports whether msg was consumed.
//
// Enter without modifiers accepts the first real-time suggestion. Escape
// clears the real-time suggestions and buffer, even mid-stream.
func (d *Dispatcher) Handle(msg tea.KeyMsg) bool {
	if d.focus.Current() == d.input {
		return false
	}
	switch {
	case msg.Type == tea.KeyEnter && !msg.Alt:
		if r, ok := d.store.AcceptFirst(); ok && d.onAccept != nil {
			d.onAccept(r)
		}
		return true
	case msg.Type == tea.KeyEscape:
		d.store.Clear()
		return true
	}
	return false
}
