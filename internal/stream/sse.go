package stream

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sprite-ai/quill/internal/model"
)

// MaxEventSize bounds a single SSE line. Longer lines fail the stream with
// bufio.ErrTooLong.
const MaxEventSize = 64 * 1024

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	scanner *bufio.Scanner
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxEventSize)
	return &SSEReader{scanner: sc}
}

// ReadEvent returns the data of the next event. Multiple data lines are
// joined with "\n". Exactly one space after "data:" is dropped so fragments
// that begin with whitespace keep it. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, error) {
	var data [][]byte
	seen := false

	for s.scanner.Scan() {
		line := bytes.TrimRight(s.scanner.Bytes(), "\r")

		if len(line) == 0 {
			if seen {
				return string(bytes.Join(data, []byte("\n"))), nil
			}
			continue
		}

		// Ignore other fields (event:, id:, retry:, comments starting with :)
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		value := line[len("data:"):]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}
		// The scanner reuses its buffer on the next Scan.
		data = append(data, bytes.Clone(value))
		seen = true
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading event: %w", err)
	}
	if seen {
		return string(bytes.Join(data, []byte("\n"))), nil
	}
	return "", io.EOF
}

// SSETransport opens push channels as text/event-stream responses.
type SSETransport struct {
	baseURL string
	primer  Primer
	client  *http.Client
}

// NewSSETransport creates a transport for the backend at baseURL. primer may
// be nil when the backend needs no start-generation call.
func NewSSETransport(baseURL string, primer Primer) *SSETransport {
	return &SSETransport{
		baseURL: baseURL,
		primer:  primer,
		// No timeout: a stream lives until it completes or is cancelled.
		client: &http.Client{},
	}
}

// Open primes the backend and issues the streaming GET.
func (t *SSETransport) Open(ctx context.Context, endpoint string, p model.Payload) (Conn, error) {
	if t.primer != nil {
		if err := t.primer.StartGeneration(ctx, p); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(t.baseURL, endpoint), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return &sseConn{body: resp.Body, reader: NewSSEReader(resp.Body)}, nil
}

type sseConn struct {
	body   io.ReadCloser
	reader *SSEReader
}

func (c *sseConn) Recv() (string, error) { return c.reader.ReadEvent() }

func (c *sseConn) Close() error { return c.body.Close() }
