package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizsolver/internal/quiz"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   []quiz.Identity
	urls    []string
	block   chan struct{}
	summary quiz.SessionSummary
}

func (f *fakeRunner) Run(ctx context.Context, startURL string, id quiz.Identity) quiz.SessionSummary {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.urls = append(f.urls, startURL)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}
	return f.summary
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var configured = quiz.Identity{Email: "me@example.com", Secret: "s3cret"}

func newTestServer(t *testing.T, runner Runner) (*Server, *httptest.Server) {
	t.Helper()
	s := New(runner, configured, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSolveStartsSession(t *testing.T) {
	runner := &fakeRunner{}
	s, srv := newTestServer(t, runner)

	resp, body := post(t, srv.URL+"/solve", `{"email":"me@example.com","secret":"s3cret","url":"https://quiz.test/1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Quiz solving started", body["message"])
	assert.Equal(t, map[string]any{"url": "https://quiz.test/1", "email": "me@example.com"}, body["details"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.Equal(t, 1, runner.count())
	assert.Equal(t, configured, runner.calls[0])
}

func TestSolveReturnsBeforeSessionEnds(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s, srv := newTestServer(t, runner)

	resp, _ := post(t, srv.URL+"/solve", `{"email":"me@example.com","secret":"s3cret","url":"https://quiz.test/1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	close(runner.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestShutdownCancelsStuckSessions(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s, srv := newTestServer(t, runner)

	post(t, srv.URL+"/solve", `{"email":"me@example.com","secret":"s3cret","url":"https://quiz.test/1"}`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Shutdown(ctx), context.DeadlineExceeded)
}

func TestSolveRejectsBadSecret(t *testing.T) {
	runner := &fakeRunner{}
	_, srv := newTestServer(t, runner)

	resp, body := post(t, srv.URL+"/solve", `{"email":"me@example.com","secret":"nope","url":"https://quiz.test/1"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid secret", body["detail"])
	assert.Zero(t, runner.count())
}

func TestSolveRejectsMalformedJSON(t *testing.T) {
	_, srv := newTestServer(t, &fakeRunner{})

	resp, body := post(t, srv.URL+"/solve", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON payload", body["detail"])
}

func TestSolveRejectsMissingFields(t *testing.T) {
	_, srv := newTestServer(t, &fakeRunner{})

	resp, body := post(t, srv.URL+"/solve-sync", `{"email":"me@example.com","secret":"s3cret"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing fields: url", body["detail"])
}

func TestSolveAllowsEmailMismatch(t *testing.T) {
	runner := &fakeRunner{}
	s, srv := newTestServer(t, runner)

	resp, _ := post(t, srv.URL+"/solve", `{"email":"other@example.com","secret":"s3cret","url":"https://quiz.test/1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, "other@example.com", runner.calls[0].Email)
}

func TestSolveSync(t *testing.T) {
	runner := &fakeRunner{summary: quiz.SessionSummary{
		SessionID:      "abc",
		Success:        true,
		ElapsedSeconds: 2.5,
		History: []quiz.StepResult{{
			URL:          "https://quiz.test/1",
			Kind:         quiz.KindDataAnalysis,
			Answer:       quiz.Int(42),
			Correct:      quiz.VerdictCorrect,
			AttemptCount: 1,
			Elapsed:      1500 * time.Millisecond,
		}},
	}}
	_, srv := newTestServer(t, runner)

	resp, body := post(t, srv.URL+"/solve-sync", `{"email":"me@example.com","secret":"s3cret","url":"https://quiz.test/1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Quiz solving completed", body["message"])

	details := body["details"].(map[string]any)
	assert.Equal(t, "abc", details["session_id"])
	assert.Equal(t, float64(1), details["correct"])
	history := details["history"].([]any)
	require.Len(t, history, 1)
	step := history[0].(map[string]any)
	assert.Equal(t, float64(42), step["answer"])
	assert.Equal(t, "true", step["correct"])
	assert.Equal(t, "data_analysis", step["kind"])
	assert.Equal(t, float64(1500), step["elapsed_ms"])
}

func TestSolveSyncFailure(t *testing.T) {
	runner := &fakeRunner{summary: quiz.SessionSummary{Success: false, Error: "renderer failed"}}
	_, srv := newTestServer(t, runner)

	_, body := post(t, srv.URL+"/solve-sync", `{"email":"me@example.com","secret":"s3cret","url":"https://quiz.test/1"}`)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Quiz solving failed", body["message"])
	details := body["details"].(map[string]any)
	assert.Equal(t, []any{}, details["history"])
}

func TestHealthAndRoot(t *testing.T) {
	_, srv := newTestServer(t, &fakeRunner{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var root map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&root))
	assert.Contains(t, root["endpoints"], "/solve")

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSolveRequiresPost(t *testing.T) {
	_, srv := newTestServer(t, &fakeRunner{})

	resp, err := http.Get(srv.URL + "/solve")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
