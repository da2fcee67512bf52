package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/model"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Start generation ---

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	p, ok := s.readPayload(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	s.primed = &p
	s.starts++
	s.mu.Unlock()

	s.log.Debug("generation primed", zap.String("tone", string(p.Tone)), zap.Int("chars", len(p.Message)))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// --- Batch suggest ---

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	p, ok := s.readPayload(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.gen.Suggest(p))
}

// --- Error detection ---

func (s *Server) handleDetectErrors(w http.ResponseWriter, r *http.Request) {
	var p model.Payload
	if err := readJSON(r, &p); err != nil {
		// Error detection reports failures in-band.
		s.writeJSON(w, http.StatusOK, map[string]string{"error": "invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(p.Message) == "" {
		s.writeJSON(w, http.StatusOK, map[string]string{"error": "message is required"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.gen.Detect(p))
}

func (s *Server) readPayload(w http.ResponseWriter, r *http.Request) (model.Payload, bool) {
	var p model.Payload
	if err := readJSON(r, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return p, false
	}
	if strings.TrimSpace(p.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return p, false
	}
	return p, true
}
