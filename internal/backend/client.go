// Package backend is the HTTP client for the writing backend's synchronous
// calls: start-generation priming, batch suggestions and error detection.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/sprite-ai/quill/internal/model"
)

// ErrEmptyMessage is wrapped in the RequestError returned, before any
// request is made, when the message is blank.
var ErrEmptyMessage = errors.New("message is empty")

// RequestError reports a failed synchronous call.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error { return e.Err }

// Paths are the backend routes for the synchronous calls.
type Paths struct {
	Start        string
	Suggest      string
	DetectErrors string
	Health       string
}

// DefaultPaths returns the routes the reference backend serves.
func DefaultPaths() Paths {
	return Paths{
		Start:        "/start_generation",
		Suggest:      "/suggest",
		DetectErrors: "/detect_errors",
		Health:       "/health",
	}
}

// BatchResult is the batch suggest response. Each section is free text.
type BatchResult struct {
	Suggestions string `json:"suggestions,omitempty"`
	Questions   string `json:"questions,omitempty"`
	Corrections string `json:"corrections,omitempty"`
}

// ErrorReport is the error detection response.
type ErrorReport struct {
	Errors  []model.Correction `json:"errors"`
	Summary string             `json:"summary,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Client calls the backend. Batch and error-detection results are cached
// per (tone, message) for the configured TTL.
type Client struct {
	baseURL string
	paths   Paths
	http    *http.Client
	log     *zap.Logger

	batchCache  *ttlcache.Cache[string, *BatchResult]
	reportCache *ttlcache.Cache[string, *ErrorReport]
}

// Option configures a Client.
type Option func(*Client)

// WithPaths overrides the backend routes.
func WithPaths(p Paths) Option {
	return func(c *Client) { c.paths = p }
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l.Named("backend") }
}

// New creates a client for the backend at baseURL. A zero cacheTTL disables
// caching.
func New(baseURL string, timeout, cacheTTL time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   DefaultPaths(),
		http:    &http.Client{Timeout: timeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cacheTTL > 0 {
		c.batchCache = ttlcache.New[string, *BatchResult](
			ttlcache.WithTTL[string, *BatchResult](cacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *BatchResult](),
		)
		c.reportCache = ttlcache.New[string, *ErrorReport](
			ttlcache.WithTTL[string, *ErrorReport](cacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *ErrorReport](),
		)
		go c.batchCache.Start()
		go c.reportCache.Start()
	}
	return c
}

// Close stops the cache expiration loops.
func (c *Client) Close() {
	if c.batchCache != nil {
		c.batchCache.Stop()
		c.reportCache.Stop()
	}
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks the backend's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.paths.Health, nil)
	if err != nil {
		return &RequestError{Op: "health", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Op: "health", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &RequestError{Op: "health", Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// StartGeneration primes server-side generation state for the next push
// channel. The response body is ignored.
func (c *Client) StartGeneration(ctx context.Context, p model.Payload) error {
	if strings.TrimSpace(p.Message) == "" {
		return &RequestError{Op: "start generation", Err: ErrEmptyMessage}
	}
	return c.post(ctx, "start generation", c.paths.Start, p, nil)
}

// BatchSuggest requests suggestions, questions and corrections in one call.
func (c *Client) BatchSuggest(ctx context.Context, p model.Payload) (*BatchResult, error) {
	if strings.TrimSpace(p.Message) == "" {
		return nil, &RequestError{Op: "batch suggest", Err: ErrEmptyMessage}
	}
	key := cacheKey(p)
	if c.batchCache != nil {
		if item := c.batchCache.Get(key); item != nil {
			c.log.Debug("batch suggest cache hit")
			return item.Value(), nil
		}
	}

	var out BatchResult
	if err := c.post(ctx, "batch suggest", c.paths.Suggest, p, &out); err != nil {
		return nil, err
	}
	if c.batchCache != nil {
		c.batchCache.Set(key, &out, ttlcache.DefaultTTL)
	}
	return &out, nil
}

// DetectErrors asks the backend for spelling and grammar corrections.
// A response carrying {"error": ...} is returned as a *RequestError.
func (c *Client) DetectErrors(ctx context.Context, p model.Payload) (*ErrorReport, error) {
	if strings.TrimSpace(p.Message) == "" {
		return nil, &RequestError{Op: "error detection", Err: ErrEmptyMessage}
	}
	key := cacheKey(p)
	if c.reportCache != nil {
		if item := c.reportCache.Get(key); item != nil {
			c.log.Debug("error detection cache hit")
			return item.Value(), nil
		}
	}

	var out ErrorReport
	if err := c.post(ctx, "error detection", c.paths.DetectErrors, p, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, &RequestError{Op: "error detection", Message: out.Error}
	}
	if c.reportCache != nil {
		c.reportCache.Set(key, &out, ttlcache.DefaultTTL)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	c.log.Debug("request done",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a failed response, falling back
// to the raw body.
func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

func cacheKey(p model.Payload) string {
	return string(p.Tone) + "\x00" + p.Message
}
