package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/quizsolver/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "12", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "Paris"},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "12" {
		t.Fatalf("expected '12', got %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "Paris" {
		t.Fatalf("expected 'Paris', got %q", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_Fallback(t *testing.T) {
	mock := NewMockProvider()
	mock.Fallback = "42"
	for range 3 {
		resp, err := mock.Generate(context.Background(), Request{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Text != "42" {
			t.Fatalf("expected fallback '42', got %q", resp.Text)
		}
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "ok"})

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	last, ok := mock.LastCall()
	if !ok {
		t.Fatal("expected a recorded call")
	}
	if last.System != "sys" || last.Messages[0].Content != "hello" {
		t.Fatalf("unexpected recorded request: %+v", last)
	}
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeRecorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	mock := NewMockProvider(MockResponse{Text: "42", Usage: Usage{InputTokens: 7, OutputTokens: 2}})
	p := WithLogging(mock, ProviderMock, rec, discardLogger())

	ctx := WithSession(WithPurpose(context.Background(), "answer"), "sess-1")
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "q"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Purpose != "answer" || ev.SessionID != "sess-1" {
		t.Fatalf("unexpected labels: %+v", ev)
	}
	if !ev.Success || ev.ResponseBody != "42" || ev.InputTokens != 7 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.RequestBody != "[system]\nsys\n\n[user]\nq\n\n" {
		t.Fatalf("unexpected request body: %q", ev.RequestBody)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	rec := &fakeRecorder{}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, ProviderMock, rec, discardLogger())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(rec.events) != 1 || rec.events[0].Success || rec.events[0].ErrorMessage == "" {
		t.Fatalf("expected a failed event, got %+v", rec.events)
	}
	if rec.events[0].Purpose != "unknown" {
		t.Fatalf("expected default purpose, got %q", rec.events[0].Purpose)
	}
}

func TestLoggingProvider_RecorderErrorIgnored(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Text: "ok"})
	p := WithLogging(mock, ProviderMock, rec, discardLogger())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("journal failure leaked into the call: %v", err)
	}
}

func TestLoggingProvider_NilRecorder(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), ProviderMock, nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestTimeoutProvider(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	inner := NewMockProvider()
	if WithTimeout(inner, 0) != Provider(inner) {
		t.Fatal("expected non-positive timeout to return the provider unchanged")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"openai without key", func(c *Config) {}, true},
		{"openai with key", func(c *Config) { c.OpenAI.APIKey = "k" }, false},
		{"anthropic without key", func(c *Config) { c.Provider = ProviderAnthropic }, true},
		{"gemini with key", func(c *Config) { c.Provider = ProviderGemini; c.Gemini.APIKey = "k" }, false},
		{"openrouter without key", func(c *Config) { c.Provider = ProviderOpenRouter }, true},
		{"mock needs nothing", func(c *Config) { c.Provider = ProviderMock }, false},
		{"unknown provider", func(c *Config) { c.Provider = "llama" }, true},
		{"zero attempts", func(c *Config) { c.Provider = ProviderMock; c.Retry.MaxAttempts = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZSOLVER_LLM_PROVIDER", ProviderAnthropic)
	t.Setenv("ANTHROPIC_API_KEY", "vendor")
	t.Setenv("QUIZSOLVER_ANTHROPIC_API_KEY", "override")
	t.Setenv("QUIZSOLVER_LLM_ATTEMPTS", "5")
	t.Setenv("QUIZSOLVER_LLM_TIMEOUT", "15s")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderAnthropic {
		t.Fatalf("expected anthropic, got %q", cfg.Provider)
	}
	if cfg.Anthropic.APIKey != "override" {
		t.Fatalf("expected QUIZSOLVER_ key to win, got %q", cfg.Anthropic.APIKey)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Timeout != 15*time.Second {
		t.Fatalf("unexpected retry/timeout: %+v %s", cfg.Retry, cfg.Timeout)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock provider, got %q", p.ModelID())
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 0); got != 0.15 {
		t.Fatalf("expected 0.15, got %v", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}
