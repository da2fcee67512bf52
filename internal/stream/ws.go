package stream

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sprite-ai/quill/internal/model"
)

// closeGrace bounds the close frame write. Close runs on the owner's
// goroutine, so a peer that stopped reading must not hold it up.
const closeGrace = 100 * time.Millisecond

// WSTransport opens push channels as WebSocket connections; each text
// message is one fragment.
type WSTransport struct {
	baseURL string
	primer  Primer
	dialer  *websocket.Dialer
}

// NewWSTransport creates a WebSocket transport for the backend at baseURL.
// http(s) base URLs are rewritten to ws(s).
func NewWSTransport(baseURL string, primer Primer) *WSTransport {
	return &WSTransport{
		baseURL: toWS(baseURL),
		primer:  primer,
		dialer:  websocket.DefaultDialer,
	}
}

// Open primes the backend and dials the channel.
func (t *WSTransport) Open(ctx context.Context, endpoint string, p model.Payload) (Conn, error) {
	if t.primer != nil {
		if err := t.primer.StartGeneration(ctx, p); err != nil {
			return nil, err
		}
	}

	conn, resp, err := t.dialer.DialContext(ctx, toWS(joinURL(t.baseURL, endpoint)), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Recv() (string, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind == websocket.TextMessage {
			return string(data), nil
		}
	}
}

// Close sends a close frame and drops the connection. The frame is best
// effort: a peer that already went away cannot take it, so only the error
// from closing the socket is reported.
func (c *wsConn) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeGrace))
	return c.conn.Close()
}

func toWS(u string) string {
	switch {
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	default:
		return u
	}
}
