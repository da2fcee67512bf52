// Package api implements a local stand-in for the writing backend. It speaks
// the same HTTP, SSE and WebSocket contract quill consumes and produces
// deterministic output, for offline development (quill serve) and tests.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/model"
)

// Server is the stand-in backend.
type Server struct {
	addr   string
	mux    *http.ServeMux
	server *http.Server
	log    *zap.Logger
	gen    Generator

	delay     time.Duration
	dropAfter int

	mu     sync.Mutex
	primed *model.Payload
	starts int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l.Named("api") }
}

// WithGenerator replaces the default echo generator.
func WithGenerator(g Generator) Option {
	return func(s *Server) { s.gen = g }
}

// WithFragmentDelay pauses between pushed fragments.
func WithFragmentDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithDropAfter makes push channels close abruptly after n fragments,
// before the sentinel. Zero disables.
func WithDropAfter(n int) Option {
	return func(s *Server) { s.dropAfter = n }
}

// New creates a new API server.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr: addr,
		log:  zap.NewNop(),
		gen:  EchoGenerator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.mux,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /start_generation", s.handleStart)
	s.mux.HandleFunc("GET /stream_cursor", s.sseHandler(model.ModeRealtime))
	s.mux.HandleFunc("GET /stream_suggestions", s.sseHandler(model.ModeBatch))
	s.mux.HandleFunc("GET /ws/stream_cursor", s.wsHandler(model.ModeRealtime))
	s.mux.HandleFunc("GET /ws/stream_suggestions", s.wsHandler(model.ModeBatch))
	s.mux.HandleFunc("POST /suggest", s.handleSuggest)
	s.mux.HandleFunc("POST /detect_errors", s.handleDetectErrors)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log.Info("stand-in backend listening", zap.String("addr", s.addr))
	return s.server.ListenAndServe()
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Starts returns how many start-generation calls were received.
func (s *Server) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.log.Warn("json encode error", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
