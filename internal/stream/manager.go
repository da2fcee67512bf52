package stream

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/model"
)

const eventBuffer = 64

// Manager owns the single active session slot. Starting a session cancels
// the previous one first; there is no queueing.
//
// Start, Cancel, Deliver and Close must be called from one goroutine. Pump
// goroutines only produce Events on the channel returned by Events.
type Manager struct {
	transport Transport
	events    chan Event
	active    *Session
	log       *zap.Logger
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	log *zap.Logger
}

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *managerOptions) { o.log = l }
}

// NewManager creates a manager that opens channels through t.
func NewManager(t Transport, opts ...Option) *Manager {
	o := managerOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{
		transport: t,
		events:    make(chan Event, eventBuffer),
		log:       o.log.Named("stream"),
	}
}

// Events returns the channel pump goroutines publish on.
func (m *Manager) Events() <-chan Event { return m.events }

// Active returns the most recently started session, which may be terminal.
func (m *Manager) Active() *Session { return m.active }

// Start cancels any held session, waits for its transport to be released,
// and then opens a new session against endpoint.
func (m *Manager) Start(endpoint string, p model.Payload) *Session {
	m.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	s := newSession(endpoint, m.log)
	s.link = newLink(cancel)
	m.active = s

	s.log.Debug("stream starting", zap.String("tone", string(p.Tone)))
	go m.pump(ctx, s.id, endpoint, p, s.link)
	return s
}

// Cancel closes the held session without starting a replacement.
func (m *Manager) Cancel() {
	if m.active == nil {
		return
	}
	m.active.cancel()
}

// Close cancels the held session.
func (m *Manager) Close() {
	m.Cancel()
}

// Deliver applies ev to the active session. Events from any other session,
// or arriving after the active one went terminal, are discarded and Deliver
// returns (nil, false).
func (m *Manager) Deliver(ev Event) (*Session, bool) {
	s := m.active
	if s == nil || s.id != ev.SessionID || s.status.Terminal() {
		m.log.Debug("discarding stale stream event", zap.String("session", ev.SessionID))
		return nil, false
	}
	return s, s.apply(ev)
}

func (m *Manager) pump(ctx context.Context, id, endpoint string, p model.Payload, l *link) {
	defer close(l.done)

	conn, err := m.transport.Open(ctx, endpoint, p)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		var reqErr *backend.RequestError
		if !errors.As(err, &reqErr) {
			err = &TransportError{Endpoint: endpoint, Err: err}
		}
		m.emit(ctx, Event{SessionID: id, Err: err})
		return
	}
	if !l.attach(conn) {
		return
	}

	for {
		frag, err := conn.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			m.emit(ctx, Event{SessionID: id, Err: &TransportError{Endpoint: endpoint, Err: err}})
			return
		}
		if !m.emit(ctx, Event{SessionID: id, Fragment: frag}) {
			return
		}
		if frag == Sentinel {
			return
		}
	}
}

func (m *Manager) emit(ctx context.Context, ev Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Drain delivers events until the active session is terminal or ctx ends.
// It is the event loop for callers without their own, such as the CLI.
func (m *Manager) Drain(ctx context.Context, onEvent func(*Session, Event)) error {
	for {
		s := m.active
		if s == nil || s.status.Terminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			m.Cancel()
			return ctx.Err()
		case ev := <-m.events:
			if sess, ok := m.Deliver(ev); ok && onEvent != nil {
				onEvent(sess, ev)
			}
		}
	}
}
