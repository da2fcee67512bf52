package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/backend"
)

// Status is the lifecycle state of a session.
type Status int

const (
	Idle Status = iota
	Connecting
	Streaming
	Completed
	Errored
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Errored:
		return "errored"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further fragments can be applied.
func (s Status) Terminal() bool {
	return s == Completed || s == Errored || s == Cancelled
}

// ErrorMarker is appended to the buffer when the transport fails.
const ErrorMarker = "\n[ERROR] 연결이 끊어졌습니다."

// RequestFailedText replaces the buffer content when the priming request fails.
const RequestFailedText = "서버 요청 중 오류가 발생했습니다."

// Session is one push connection and the text it has produced so far.
// All methods must be called from the goroutine that owns the Manager.
type Session struct {
	id      string
	started time.Time

	status    Status
	buf       strings.Builder
	fragments int
	err       error

	onComplete func(*Session)
	link       *link
	log        *zap.Logger
}

func newSession(endpoint string, log *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		started: time.Now(),
		status:  Connecting,
		log:     log.With(zap.String("session", id), zap.String("endpoint", endpoint)),
	}
}

// ID returns the session's unique identity.
func (s *Session) ID() string { return s.id }

// Status returns the current lifecycle state.
func (s *Session) Status() Status { return s.status }

// Buffer returns every fragment received so far, concatenated.
func (s *Session) Buffer() string { return s.buf.String() }

// Fragments returns the number of fragments appended.
func (s *Session) Fragments() int { return s.fragments }

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration { return time.Since(s.started) }

// Err returns the failure that ended the session, if any.
func (s *Session) Err() error { return s.err }

// OnComplete registers fn to run synchronously when the session reaches
// Completed.
func (s *Session) OnComplete(fn func(*Session)) { s.onComplete = fn }

// apply folds one event into the session. It reports whether the session
// changed.
func (s *Session) apply(ev Event) bool {
	if s.status.Terminal() {
		return false
	}

	if ev.Err != nil {
		s.fail(ev.Err)
		return true
	}

	if ev.Fragment == Sentinel {
		s.status = Completed
		s.release()
		s.log.Debug("stream completed", zap.Int("fragments", s.fragments), zap.Int("bytes", s.buf.Len()))
		if s.onComplete != nil {
			s.onComplete(s)
		}
		return true
	}

	s.buf.WriteString(ev.Fragment)
	s.fragments++
	s.status = Streaming

	if strings.HasPrefix(ev.Fragment, RemoteErrorPrefix) {
		s.err = errors.New(strings.TrimSpace(strings.TrimPrefix(ev.Fragment, RemoteErrorPrefix)))
		s.status = Errored
		s.release()
		s.log.Warn("backend reported generation error", zap.Error(s.err))
	}
	return true
}

func (s *Session) fail(err error) {
	s.err = err
	var reqErr *backend.RequestError
	if errors.As(err, &reqErr) {
		s.buf.Reset()
		s.buf.WriteString(RequestFailedText)
	} else {
		s.buf.WriteString(ErrorMarker)
	}
	s.status = Errored
	s.release()
	s.log.Warn("stream failed", zap.Error(err))
}

// cancel forces the session into Cancelled and releases its transport.
func (s *Session) cancel() {
	if !s.status.Terminal() {
		s.status = Cancelled
		s.log.Debug("stream cancelled", zap.Int("fragments", s.fragments))
	}
	s.release()
}

func (s *Session) release() {
	if s.link != nil {
		s.link.close()
	}
}

// link ties a session to its pump goroutine and the connection the pump
// opened. The connection may still be dialing when the owner closes it.
type link struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	conn   Conn
	closed bool
}

func newLink(cancel context.CancelFunc) *link {
	return &link{cancel: cancel, done: make(chan struct{})}
}

// attach hands the opened connection to the link. It reports false, after
// closing conn, when the link was already closed.
func (l *link) attach(conn Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		conn.Close()
		return false
	}
	l.conn = conn
	return true
}

// close cancels the pump, closes the connection and waits for the pump to
// exit. Safe to call more than once.
func (l *link) close() {
	l.cancel()
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		if l.conn != nil {
			l.conn.Close()
		}
	}
	l.mu.Unlock()
	<-l.done
}
