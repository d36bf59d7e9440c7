// Package submit posts answers to a quiz's scoring endpoint and retries
// transient failures with a fixed backoff.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abhisek/quizsolver/internal/quiz"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = 1 * time.Second
	DefaultTimeout  = 30 * time.Second

	// ExhaustedDetail is the error detail of a step whose submission
	// never got a 200.
	ExhaustedDetail = "submission failed after retries"

	maxVerdictBytes = 1 << 20
)

// Payload is the JSON body posted to the scoring endpoint.
type Payload struct {
	Email  string      `json:"email"`
	Secret string      `json:"secret"`
	URL    string      `json:"url"`
	Answer quiz.Answer `json:"answer"`
}

// Manager submits answers.
type Manager struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithAttempts sets the maximum number of tries. Values below 1 are ignored.
func WithAttempts(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.attempts = n
		}
	}
}

// WithBackoff sets the constant wait between tries.
func WithBackoff(d time.Duration) Option {
	return func(m *Manager) { m.backoff = d }
}

// WithTimeout bounds each try.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates a Manager: 3 attempts, 1s backoff, 30s per attempt.
func New(opts ...Option) *Manager {
	m := &Manager{
		client:   &http.Client{},
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attempts returns the configured attempt cap.
func (m *Manager) Attempts() int { return m.attempts }

// Submit posts answer for quizURL to submitURL. The first 200 response
// with a well-formed verdict ends the loop; anything else is retried
// until the attempts run out. Submit never returns an error: failures are
// reported in the StepResult.
func (m *Manager) Submit(ctx context.Context, submitURL, quizURL string, answer quiz.Answer, id quiz.Identity) quiz.StepResult {
	res := quiz.StepResult{URL: quizURL, Answer: answer}

	body, err := json.Marshal(Payload{Email: id.Email, Secret: id.Secret, URL: quizURL, Answer: answer})
	if err != nil {
		res.Correct = quiz.VerdictIncorrect
		res.ErrorDetail = fmt.Sprintf("encode submission: %v", err)
		return res
	}

	for attempt := 1; attempt <= m.attempts; attempt++ {
		res.AttemptCount = attempt

		v, err := m.post(ctx, submitURL, body)
		if err == nil {
			res.Correct = quiz.VerdictOf(v.Correct)
			res.NextURL = v.NextURL()
			res.Reason = v.ReasonText()
			m.logger.Info("answer submitted",
				"url", quizURL, "attempt", attempt, "correct", v.Correct, "next", res.NextURL)
			return res
		}
		m.logger.Warn("submit attempt failed",
			"url", quizURL, "attempt", attempt, "of", m.attempts, "err", err)

		if attempt == m.attempts {
			break
		}
		select {
		case <-ctx.Done():
			res.Correct = quiz.VerdictIncorrect
			res.ErrorDetail = fmt.Sprintf("submission cancelled: %v", ctx.Err())
			return res
		case <-time.After(m.backoff):
		}
	}

	res.Correct = quiz.VerdictIncorrect
	res.ErrorDetail = ExhaustedDetail
	return res
}

func (m *Manager) post(ctx context.Context, submitURL string, body []byte) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxVerdictBytes))
	if err != nil {
		return Verdict{}, fmt.Errorf("read verdict: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	return ParseVerdict(raw)
}
