package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/quizsolver/internal/store"
)

// LoggingProvider records every model call to the structured log and, when
// a recorder is set, to the run journal.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder store.LLMRecorder
	logger   *slog.Logger
}

// WithLogging wraps a Provider with call logging.
func WithLogging(p Provider, providerName string, recorder store.LLMRecorder, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, provider: providerName, recorder: recorder, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)
	data := store.LLMRequestEventData{
		SessionID:   SessionFrom(ctx),
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = resp.Text
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.logger.Warn("llm call failed",
			"purpose", purpose, "model", data.Model, "latency", latency, "err", err)
	} else {
		l.logger.Debug("llm call",
			"purpose", purpose, "model", data.Model, "latency", latency,
			"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}

	// A journal failure never fails the model call.
	if l.recorder != nil {
		if logErr := l.recorder.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.Warn("failed to journal LLM request", "err", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable transcript of the request.
func serializeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
