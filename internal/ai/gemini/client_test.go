package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light11014/Moodmate-Backend/internal/model"
)

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}}},
		},
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	t.Helper()
	c, err := New(Options{APIKey: "test-key", Model: "gemini-test", BaseURL: srv.URL, MaxRetries: retries, BaseBackoff: time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Options{}, zerolog.Nop())
	require.Error(t, err)
}

func TestGenerateFeedback_SendsPromptAndParsesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.Len(t, req.Contents, 1) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		prompt := req.Contents[0].Parts[0].Text
		assert.Contains(t, prompt, "honestly")
		assert.Contains(t, prompt, "went hiking")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(textResponse("  Sounds like a great day.  "))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	out, err := c.GenerateFeedback(context.Background(), "went hiking", model.StyleHonest)
	require.NoError(t, err)
	assert.Equal(t, "Sounds like a great day.", out)
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(textResponse("summary text"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	out, err := c.GenerateSummary(context.Background(), "diary")
	require.NoError(t, err)
	assert.Equal(t, "summary text", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerate_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 3)
	_, err := c.AnalyzeGrowthPattern(context.Background(), "combined")
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "API key not valid", se.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerate_EmptyCandidatesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	_, err := c.GenerateRecommendations(context.Background(), "combined")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no candidates"))
}

func TestGenerate_HonorsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.AnalyzeEmotionalPattern(ctx, "combined")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHealthPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"models/gemini-test"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	require.NoError(t, c.HealthPing(context.Background()))

	c.model = "missing"
	require.Error(t, c.HealthPing(context.Background()))
}
