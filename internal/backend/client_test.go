package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/quill/internal/api"
	"github.com/sprite-ai/quill/internal/backend"
	"github.com/sprite-ai/quill/internal/model"
)

// counting wraps a handler and counts requests per path.
type counting struct {
	next  http.Handler
	calls map[string]*atomic.Int32
}

func (c *counting) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if n, ok := c.calls[r.URL.Path]; ok {
		n.Add(1)
	}
	c.next.ServeHTTP(w, r)
}

func newClient(t *testing.T, ttl time.Duration) (*backend.Client, *counting) {
	t.Helper()
	h := &counting{
		next: api.New(":0").Handler(),
		calls: map[string]*atomic.Int32{
			"/suggest":       new(atomic.Int32),
			"/detect_errors": new(atomic.Int32),
		},
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	c := backend.New(ts.URL+"/", 5*time.Second, ttl)
	t.Cleanup(c.Close)
	return c, h
}

func TestPing(t *testing.T) {
	c, _ := newClient(t, 0)
	require.NoError(t, c.Ping(context.Background()))
}

func TestBaseURLTrimmed(t *testing.T) {
	c := backend.New("http://localhost:8000/", time.Second, 0)
	defer c.Close()
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestStartGeneration(t *testing.T) {
	c, _ := newClient(t, 0)
	require.NoError(t, c.StartGeneration(context.Background(), model.Payload{Message: "글", Tone: model.ToneAuto}))
}

func TestEmptyMessageRejectedLocally(t *testing.T) {
	c, h := newClient(t, 0)
	ctx := context.Background()
	blank := model.Payload{Message: " \n\t"}

	err := c.StartGeneration(ctx, blank)
	assert.ErrorIs(t, err, backend.ErrEmptyMessage)

	_, err = c.BatchSuggest(ctx, blank)
	assert.ErrorIs(t, err, backend.ErrEmptyMessage)

	_, err = c.DetectErrors(ctx, blank)
	assert.ErrorIs(t, err, backend.ErrEmptyMessage)
	var re *backend.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "error detection", re.Op)

	assert.Zero(t, h.calls["/suggest"].Load())
	assert.Zero(t, h.calls["/detect_errors"].Load())
}

func TestBatchSuggest(t *testing.T) {
	c, _ := newClient(t, 0)

	res, err := c.BatchSuggest(context.Background(), model.Payload{Message: "바다가 보였다.", Tone: model.ToneNarrative})
	require.NoError(t, err)
	assert.Contains(t, res.Suggestions, "바다가 보였다")
	assert.NotEmpty(t, res.Questions)
	assert.NotEmpty(t, res.Corrections)
}

func TestBatchSuggestCached(t *testing.T) {
	c, h := newClient(t, time.Minute)
	ctx := context.Background()
	p := model.Payload{Message: "바다가 보였다.", Tone: model.ToneNarrative}

	first, err := c.BatchSuggest(ctx, p)
	require.NoError(t, err)
	second, err := c.BatchSuggest(ctx, p)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), h.calls["/suggest"].Load())

	// A different tone is a different key.
	_, err = c.BatchSuggest(ctx, model.Payload{Message: p.Message, Tone: model.ToneLogical})
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.calls["/suggest"].Load())
}

func TestBatchSuggestUncached(t *testing.T) {
	c, h := newClient(t, 0)
	ctx := context.Background()
	p := model.Payload{Message: "바다"}

	for range 3 {
		_, err := c.BatchSuggest(ctx, p)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), h.calls["/suggest"].Load())
}

func TestDetectErrors(t *testing.T) {
	c, h := newClient(t, time.Minute)
	ctx := context.Background()
	p := model.Payload{Message: "숙제는 다 됬다."}

	report, err := c.DetectErrors(ctx, p)
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "됬", report.Errors[0].Original)
	assert.Equal(t, "됐", report.Errors[0].Corrected)
	assert.NotEmpty(t, report.Summary)

	_, err = c.DetectErrors(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.calls["/detect_errors"].Load())
}

func TestDetectErrorsInBandError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "model unavailable"}`))
	}))
	defer ts.Close()

	c := backend.New(ts.URL, time.Second, time.Minute)
	defer c.Close()

	_, err := c.DetectErrors(context.Background(), model.Payload{Message: "글"})
	var re *backend.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "model unavailable", re.Message)
	assert.Equal(t, "error detection: model unavailable", err.Error())
}

func TestStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := backend.New(ts.URL, time.Second, 0)
	defer c.Close()

	_, err := c.BatchSuggest(context.Background(), model.Payload{Message: "글"})
	var re *backend.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusServiceUnavailable, re.Status)
	assert.Equal(t, "overloaded", re.Message)

	assert.Error(t, c.Ping(context.Background()))
}

func TestUnreachableBackend(t *testing.T) {
	c := backend.New("http://127.0.0.1:1", time.Second, 0)
	defer c.Close()

	err := c.StartGeneration(context.Background(), model.Payload{Message: "글"})
	var re *backend.RequestError
	require.ErrorAs(t, err, &re)
	assert.NotNil(t, re.Err)
	assert.False(t, errors.Is(err, backend.ErrEmptyMessage))
}

func TestCustomPaths(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/start", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	paths := backend.DefaultPaths()
	paths.Start = "/v2/start"
	c := backend.New(ts.URL, time.Second, 0, backend.WithPaths(paths))
	defer c.Close()

	require.NoError(t, c.StartGeneration(context.Background(), model.Payload{Message: "글"}))
}
