package suggest

import (
	"strings"

	"github.com/sprite-ai/quill/internal/model"
)

// Draft is the user's working text. Accepted suggestions are merged into it
// and its content is the message of the next request.
type Draft struct {
	text string
}

// NewDraft returns a draft holding text.
func NewDraft(text string) *Draft {
	return &Draft{text: text}
}

// Text returns the current draft.
func (d *Draft) Text() string { return d.text }

// Set replaces the draft, e.g. after the user edits it.
func (d *Draft) Set(text string) { d.text = text }

// Append merges s into the draft: an empty or whitespace-only draft is
// replaced outright, anything else gets a single space and then s.
func (d *Draft) Append(s string) {
	if strings.TrimSpace(d.text) == "" {
		d.text = s
		return
	}
	d.text = d.text + " " + s
}

// BufferSource is anything whose accumulated text a store displays,
// normally a *stream.Session.
type BufferSource interface {
	Buffer() string
}

// Store holds the current suggestion list for one mode.
type Store struct {
	mode    model.Mode
	draft   *Draft
	records []model.Record

	src  BufferSource
	mark int // offset into src.Buffer() where the visible buffer starts
}

// NewStore creates an empty store whose accepts write into draft.
func NewStore(mode model.Mode, draft *Draft) *Store {
	return &Store{mode: mode, draft: draft}
}

// Draft returns the shared draft.
func (s *Store) Draft() *Draft { return s.draft }

// Records returns a copy of the current records in parse order.
func (s *Store) Records() []model.Record {
	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Get returns the record with the given id.
func (s *Store) Get(id int) (model.Record, bool) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Record{}, false
}

// Accept merges r's text into the draft. The record stays in the store.
func (s *Store) Accept(r model.Record) {
	s.draft.Append(r.Text)
}

// AcceptFirst accepts the record at index 0, if any.
func (s *Store) AcceptFirst() (model.Record, bool) {
	if len(s.records) == 0 {
		return model.Record{}, false
	}
	r := s.records[0]
	s.Accept(r)
	return r, true
}

// Reject removes the record with the given id. It reports whether a record
// was removed.
func (s *Store) Reject(id int) bool {
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceAll swaps in a new record list, discarding the old one.
func (s *Store) ReplaceAll(records []model.Record) {
	next := make([]model.Record, len(records))
	copy(next, records)
	s.records = next
}

// Bind makes src the governing buffer. Rebinding the same source keeps the
// current mark.
func (s *Store) Bind(src BufferSource) {
	if s.src == src {
		return
	}
	s.src = src
	s.mark = 0
}

// Buffer returns the visible part of the governing buffer.
func (s *Store) Buffer() string {
	if s.src == nil {
		return ""
	}
	buf := s.src.Buffer()
	if s.mark > len(buf) {
		return ""
	}
	return buf[s.mark:]
}

// Clear empties the records and the visible buffer. A session that is still
// streaming keeps appending, and only text arriving after the clear shows.
func (s *Store) Clear() {
	s.records = nil
	if s.src != nil {
		s.mark = len(s.src.Buffer())
	}
}

// Publish binds src and replaces the records with a parse of its visible
// buffer.
func (s *Store) Publish(src BufferSource) []model.Record {
	s.Bind(src)
	s.ReplaceAll(Parse(s.mode, s.Buffer()))
	return s.Records()
}
