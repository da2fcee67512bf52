package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // local stand-in; every origin is a dev client
	},
}

const wsWriteWait = 5 * time.Second

// wsHandler pushes the generated fragments for mode as WebSocket text
// messages, one fragment per message.
func (s *Server) wsHandler(mode model.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("websocket upgrade", zap.Error(err))
			return
		}
		defer conn.Close()

		// Reader goroutine: notices the client closing so pushes stop early.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						s.log.Debug("websocket read", zap.Error(err))
					}
					return
				}
			}
		}()

		complete := s.push(gone, mode, func(fragment string) error {
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			return conn.WriteMessage(websocket.TextMessage, []byte(fragment))
		})
		if !complete {
			return
		}

		// Leave closing to the client; it owns the session lifetime.
		select {
		case <-gone:
		case <-r.Context().Done():
		}
	}
}
