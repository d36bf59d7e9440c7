package submit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizsolver/internal/quiz"
)

var identity = quiz.Identity{Email: "me@example.com", Secret: "s3cret"}

func quietManager(opts ...Option) *Manager {
	base := []Option{
		WithBackoff(time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(append(base, opts...)...)
}

func TestSubmitPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"correct": true, "url": null, "reason": null}`))
	}))
	defer srv.Close()

	res := quietManager().Submit(context.Background(), srv.URL+"/submit", "https://quiz/q1", quiz.Int(60), identity)

	assert.Equal(t, map[string]any{
		"email":  "me@example.com",
		"secret": "s3cret",
		"url":    "https://quiz/q1",
		"answer": float64(60),
	}, got)
	assert.Equal(t, quiz.VerdictCorrect, res.Correct)
	assert.Equal(t, "", res.NextURL)
	assert.Equal(t, 1, res.AttemptCount)
	assert.Empty(t, res.ErrorDetail)
	assert.Equal(t, "https://quiz/q1", res.URL)
}

func TestSubmitRetryThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"correct": true, "url": "next"}`))
	}))
	defer srv.Close()

	res := quietManager().Submit(context.Background(), srv.URL, "q", quiz.Text("x"), identity)

	assert.Equal(t, quiz.VerdictCorrect, res.Correct)
	assert.Equal(t, "next", res.NextURL)
	assert.Equal(t, 3, res.AttemptCount)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmitExhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := quietManager(WithAttempts(3)).Submit(context.Background(), srv.URL, "q", quiz.Int(1), identity)

	assert.Equal(t, quiz.VerdictIncorrect, res.Correct)
	assert.Equal(t, 3, res.AttemptCount)
	assert.Equal(t, ExhaustedDetail, res.ErrorDetail)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSubmitFixedBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	start := time.Now()
	res := quietManager(WithBackoff(50*time.Millisecond)).Submit(context.Background(), srv.URL, "q", quiz.Int(1), identity)
	elapsed := time.Since(start)

	assert.Equal(t, 3, res.AttemptCount)
	// Two waits between three attempts, none after the last.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 150*time.Millisecond+time.Second)
}

func TestSubmitWrongAnswerIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"correct": false, "reason": "Off by one"}`))
	}))
	defer srv.Close()

	res := quietManager().Submit(context.Background(), srv.URL, "q", quiz.Int(41), identity)
	assert.Equal(t, quiz.VerdictIncorrect, res.Correct)
	assert.Equal(t, "Off by one", res.Reason)
	assert.Equal(t, 1, res.AttemptCount)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmitMalformedVerdictIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Write([]byte(`<html>oops</html>`))
		case 2:
			w.Write([]byte(`{"correct": "yes"}`))
		default:
			w.Write([]byte(`{"correct": true}`))
		}
	}))
	defer srv.Close()

	res := quietManager().Submit(context.Background(), srv.URL, "q", quiz.Int(1), identity)
	assert.Equal(t, quiz.VerdictCorrect, res.Correct)
	assert.Equal(t, 3, res.AttemptCount)
}

func TestSubmitPerAttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		w.Write([]byte(`{"correct": true}`))
	}))
	defer srv.Close()

	res := quietManager(WithTimeout(30*time.Millisecond)).Submit(context.Background(), srv.URL, "q", quiz.Int(1), identity)
	assert.Equal(t, quiz.VerdictCorrect, res.Correct)
	assert.Equal(t, 2, res.AttemptCount)
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	res := quietManager().Submit(context.Background(), addr, "q", quiz.Int(1), identity)
	assert.Equal(t, quiz.VerdictIncorrect, res.Correct)
	assert.Equal(t, 3, res.AttemptCount)
	assert.Equal(t, ExhaustedDetail, res.ErrorDetail)
}

func TestSubmitCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	m := quietManager(WithBackoff(time.Hour))
	time.AfterFunc(20*time.Millisecond, cancel)

	res := m.Submit(ctx, srv.URL, "q", quiz.Int(1), identity)
	assert.Equal(t, quiz.VerdictIncorrect, res.Correct)
	assert.Equal(t, 1, res.AttemptCount)
	assert.Contains(t, res.ErrorDetail, "cancelled")
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict([]byte(`{"correct": true, "url": " https://next ", "reason": null, "extra": 1}`))
	require.NoError(t, err)
	assert.True(t, v.Correct)
	assert.Equal(t, "https://next", v.NextURL())
	assert.Equal(t, "", v.ReasonText())

	v, err = ParseVerdict([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, v.Correct)

	for _, bad := range []string{`[]`, `"ok"`, `{"correct": 1}`, `{"url": 5}`, `not json`} {
		_, err := ParseVerdict([]byte(bad))
		assert.True(t, errors.Is(err, ErrBadVerdict), bad)
	}
}

func TestNewDefaults(t *testing.T) {
	m := New(WithAttempts(0), WithTimeout(0))
	assert.Equal(t, DefaultAttempts, m.Attempts())
	assert.Equal(t, DefaultTimeout, m.timeout)
	assert.Equal(t, DefaultBackoff, m.backoff)
}
