// Package stream manages push connections to the generation backend: one
// cancelable session at a time, fragments accumulated in arrival order.
package stream

import (
	"context"
	"fmt"
	"strings"

	"github.com/sprite-ai/quill/internal/model"
)

// Sentinel marks normal termination of a push channel.
const Sentinel = "[DONE]"

// RemoteErrorPrefix starts fragments the backend sends when generation fails.
const RemoteErrorPrefix = "[ERROR]"

// Transport opens push channels. Implementations prime the backend with the
// payload before opening the channel at endpoint.
type Transport interface {
	Open(ctx context.Context, endpoint string, p model.Payload) (Conn, error)
}

// Conn is one open push channel.
type Conn interface {
	// Recv blocks until the next fragment arrives. It returns an error once
	// the channel fails or is closed.
	Recv() (string, error)
	Close() error
}

// Primer issues the start-generation call that precedes a push channel.
type Primer interface {
	StartGeneration(ctx context.Context, p model.Payload) error
}

// Event is produced by a session's pump goroutine and applied by the owner
// through Manager.Deliver.
type Event struct {
	SessionID string
	Fragment  string
	Err       error
}

// TransportError reports a push channel that failed to open or dropped.
type TransportError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("stream %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

// joinURL concatenates a base URL and an endpoint path.
func joinURL(base, endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") ||
		strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
		return endpoint
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
