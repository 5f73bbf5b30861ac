package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "test-key")
	c.interval = 5 * time.Millisecond
	c.timeout = 250 * time.Millisecond
	return c
}

// statusServer replies with the scripted statuses in order, repeating the
// last one once the script is exhausted.
func statusServer(t *testing.T, calls *int32, script ...statusResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		idx := int(n) - 1
		if idx >= len(script) {
			idx = len(script) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(script[idx])
	}))
}

func ready(sample string) statusResponse {
	var s statusResponse
	s.Status = "Ready"
	s.Result.Sample = sample
	return s
}

func TestWaitForResultDirectURL(t *testing.T) {
	var calls int32
	srv := statusServer(t, &calls, ready("https://cdn.example.com/other.png"))
	defer srv.Close()

	c := newTestClient(srv.URL)

	for _, jobID := range []string{
		"https://cdn.example.com/direct.png",
		"http://cdn.example.com/direct.png",
	} {
		outcome := c.WaitForResult(context.Background(), jobID)
		assert.True(t, outcome.Success)
		assert.Equal(t, jobID, outcome.ImageURL)
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "direct URLs must not hit the network")
}

func TestWaitForResultPendingThenReady(t *testing.T) {
	var calls int32
	srv := statusServer(t, &calls,
		statusResponse{Status: "Pending"},
		statusResponse{Status: "Pending"},
		ready("https://cdn.example.com/room.png"),
	)
	defer srv.Close()

	c := newTestClient(srv.URL)
	start := time.Now()
	outcome := c.WaitForResult(context.Background(), "job-123")
	elapsed := time.Since(start)

	require.True(t, outcome.Success)
	assert.Equal(t, "https://cdn.example.com/room.png", outcome.ImageURL)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, elapsed, 2*c.interval, "expected two delay intervals")
}

func TestWaitForResultImmediateError(t *testing.T) {
	var calls int32
	srv := statusServer(t, &calls, statusResponse{Status: "Error"})
	defer srv.Close()

	outcome := newTestClient(srv.URL).WaitForResult(context.Background(), "job-err")
	assert.False(t, outcome.Success)
	assert.Equal(t, "generation failed", outcome.Reason)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "terminal status must not be retried")
}

func TestWaitForResultModerated(t *testing.T) {
	for _, status := range []string{"Request Moderated", "Content Moderated"} {
		var calls int32
		srv := statusServer(t, &calls, statusResponse{Status: status})

		outcome := newTestClient(srv.URL).WaitForResult(context.Background(), "job-mod")
		srv.Close()

		assert.False(t, outcome.Success)
		assert.Equal(t, "content was moderated", outcome.Reason)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	}
}

func TestWaitForResultTaskNotFound(t *testing.T) {
	var calls int32
	srv := statusServer(t, &calls, statusResponse{Status: "Task not found"})
	defer srv.Close()

	outcome := newTestClient(srv.URL).WaitForResult(context.Background(), "job-gone")
	assert.False(t, outcome.Success)
	assert.Equal(t, "task not found", outcome.Reason)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWaitForResultReadyWithoutURL(t *testing.T) {
	var calls int32
	srv := statusServer(t, &calls, statusResponse{Status: "Ready"})
	defer srv.Close()

	outcome := newTestClient(srv.URL).WaitForResult(context.Background(), "job-empty")
	assert.False(t, outcome.Success)
	assert.Equal(t, "ready but no URL provided", outcome.Reason)
}

func TestWaitForResultTimeout(t *testing.T) {
	var calls int32
	srv := statusServer(t, &calls, statusResponse{Status: "Pending"})
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.timeout = 25 * time.Millisecond

	outcome := c.WaitForResult(context.Background(), "job-slow")
	assert.False(t, outcome.Success)
	assert.Equal(t, "timeout", outcome.Reason)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestWaitForResultUnknownStatusRetries(t *testing.T) {
	var calls int32
	srv := statusServer(t, &calls,
		statusResponse{Status: "Queued"},
		ready("https://cdn.example.com/late.png"),
	)
	defer srv.Close()

	outcome := newTestClient(srv.URL).WaitForResult(context.Background(), "job-odd")
	require.True(t, outcome.Success)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestWaitForResultTransportErrorIsTransient(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ready("https://cdn.example.com/retry.png"))
	}))
	defer srv.Close()

	outcome := newTestClient(srv.URL).WaitForResult(context.Background(), "job-flaky")
	require.True(t, outcome.Success)
	assert.Equal(t, "https://cdn.example.com/retry.png", outcome.ImageURL)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-key"))

		var req GenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "scandinavian bedroom", req.Prompt)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(submitResponse{ID: "job-42"})
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL).Submit(context.Background(), GenerationRequest{Prompt: "scandinavian bedroom"})
	require.NoError(t, err)
	assert.Equal(t, "job-42", id)
}

func TestSubmitMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Submit(context.Background(), GenerationRequest{Prompt: "sofa"})
	assert.Error(t, err)
}
