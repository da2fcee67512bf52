package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/model"
)

// Sentinel marks the end of a push channel.
const Sentinel = "[DONE]"

// notPrimed is pushed when a channel opens with no prior start-generation.
const notPrimed = "[ERROR] 생성이 시작되지 않았습니다."

// sseHandler pushes the generated fragments for mode as text/event-stream.
func (s *Server) sseHandler(mode model.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		s.push(r.Context().Done(), mode, func(fragment string) error {
			if err := writeEvent(w, fragment); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
	}
}

// writeEvent frames one fragment as an SSE event. Embedded newlines become
// separate data lines, which readers join back with "\n".
func writeEvent(w http.ResponseWriter, fragment string) error {
	var b strings.Builder
	for _, line := range strings.Split(fragment, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := fmt.Fprint(w, b.String())
	return err
}

// push generates the fragments for the primed payload and hands them to
// send, ending with the sentinel. It returns true only when the sentinel
// was sent.
func (s *Server) push(stop <-chan struct{}, mode model.Mode, send func(string) error) bool {
	s.mu.Lock()
	primed := s.primed
	s.mu.Unlock()

	if primed == nil {
		send(notPrimed)
		return false
	}

	log := s.log.With(zap.Stringer("mode", mode))
	fragments := s.gen.Stream(mode, *primed)
	for i, fragment := range fragments {
		if s.dropAfter > 0 && i >= s.dropAfter {
			log.Debug("dropping channel", zap.Int("sent", i))
			return false
		}
		if s.delay > 0 {
			select {
			case <-stop:
				return false
			case <-time.After(s.delay):
			}
		}
		select {
		case <-stop:
			return false
		default:
		}
		if err := send(fragment); err != nil {
			log.Debug("push aborted", zap.Error(err))
			return false
		}
	}
	if err := send(Sentinel); err != nil {
		return false
	}
	log.Debug("push complete", zap.Int("fragments", len(fragments)))
	return true
}
