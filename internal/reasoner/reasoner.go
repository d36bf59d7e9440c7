// Package reasoner asks the language model to answer a quiz question and
// turns its free-text reply into a typed answer.
package reasoner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/quizsolver/internal/llm"
)

const (
	DefaultSystemPrompt = "You are a helpful assistant that solves data-related quiz questions accurately."
	DefaultInstruction  = "Provide a clear, direct answer. If it's a number, provide only the number. If it's text, provide the text. Be precise and accurate."

	temperature = 0.1
	maxTokens   = 2000

	// maxContextBytes keeps attached data within a sensible prompt size.
	maxContextBytes = 48 * 1024
)

// Reasoner answers questions through an llm.Provider.
type Reasoner struct {
	provider    llm.Provider
	system      string
	instruction string
	logger      *slog.Logger
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithSystemPrompt overrides the system prompt. Empty keeps the default.
func WithSystemPrompt(s string) Option {
	return func(r *Reasoner) {
		if s != "" {
			r.system = s
		}
	}
}

// WithInstruction overrides the closing answer instruction. Empty keeps the default.
func WithInstruction(s string) Option {
	return func(r *Reasoner) {
		if s != "" {
			r.instruction = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reasoner) { r.logger = l }
}

// New creates a Reasoner on top of p.
func New(p llm.Provider, opts ...Option) *Reasoner {
	r := &Reasoner{
		provider:    p,
		system:      DefaultSystemPrompt,
		instruction: DefaultInstruction,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ask sends question, with data as optional context, and returns the
// model's trimmed reply.
func (r *Reasoner) Ask(ctx context.Context, question, data string) (string, error) {
	resp, err := r.provider.Generate(ctx, llm.Request{
		System:      r.system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: BuildPrompt(question, data, r.instruction)}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("ask model: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	r.logger.Debug("model answered", "purpose", llm.PurposeFrom(ctx), "reply", preview(text, 100))
	return text, nil
}

// BuildPrompt lays out the user message: question, optional data block,
// closing instruction.
func BuildPrompt(question, data, instruction string) string {
	var b strings.Builder
	b.WriteString("Solve the following quiz question:\n\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	if data != "" {
		if len(data) > maxContextBytes {
			data = truncate(data, maxContextBytes) + "\n[TRUNCATED]"
		}
		b.WriteString("Data:\n")
		b.WriteString(data)
		b.WriteString("\n\n")
	}
	b.WriteString(instruction)
	return b.String()
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return truncate(s, n) + "..."
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
