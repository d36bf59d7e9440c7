// Package session runs a quiz chain: render a page, classify it, produce an
// answer, submit it, follow the next URL, until the chain ends or the time
// budget runs out.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizsolver/internal/llm"
	"github.com/abhisek/quizsolver/internal/quiz"
	"github.com/abhisek/quizsolver/internal/render"
	"github.com/abhisek/quizsolver/internal/store"
)

// DefaultMaxDuration is the session time budget.
const DefaultMaxDuration = 180 * time.Second

// NoSubmitTargetDetail is the error detail of a page naming no submit URL.
const NoSubmitTargetDetail = "no submit target"

var (
	// ErrRenderer wraps failures to start the browser or render a page.
	ErrRenderer = errors.New("renderer failed")
	// ErrAnswer wraps a failure to produce any answer.
	ErrAnswer = errors.New("answer failed")
)

// Classifier derives question info from a rendered page.
type Classifier interface {
	Classify(text, html string) quiz.QuestionInfo
}

// Producer answers a classified question.
type Producer interface {
	Produce(ctx context.Context, info quiz.QuestionInfo) (quiz.Answer, error)
}

// Submitter posts an answer and reports the verdict.
type Submitter interface {
	Submit(ctx context.Context, submitURL, quizURL string, answer quiz.Answer, id quiz.Identity) quiz.StepResult
}

// Orchestrator runs sessions. It holds no per-session state, so one
// Orchestrator may run many sessions concurrently.
type Orchestrator struct {
	renderer    render.Renderer
	classifier  Classifier
	producer    Producer
	submitter   Submitter
	journal     store.EventRepo
	observer    Observer
	maxDuration time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxDuration sets the session budget. Non-positive values are ignored.
func WithMaxDuration(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.maxDuration = d
		}
	}
}

// WithJournal records sessions and steps in repo.
func WithJournal(repo store.EventRepo) Option {
	return func(o *Orchestrator) { o.journal = repo }
}

// WithObserver sets a default observer for every session.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator.
func New(r render.Renderer, c Classifier, p Producer, s Submitter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		renderer:    r,
		classifier:  c,
		producer:    p,
		submitter:   s,
		maxDuration: DefaultMaxDuration,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run solves the chain starting at startURL.
func (o *Orchestrator) Run(ctx context.Context, startURL string, id quiz.Identity) quiz.SessionSummary {
	return o.RunObserved(ctx, startURL, id, o.observer)
}

// RunObserved is Run with a per-session observer in place of the default.
func (o *Orchestrator) RunObserved(ctx context.Context, startURL string, id quiz.Identity, observe Observer) quiz.SessionSummary {
	state := NewSessionState(uuid.NewString(), startURL, o.now(), o.maxDuration)
	ctx = llm.WithSession(ctx, state.SessionID)
	logger := o.logger.With("session", state.SessionID)
	emit := func(ev Event) {
		if observe != nil {
			ev.SessionID = state.SessionID
			ev.Time = o.now()
			observe(ev)
		}
	}

	logger.Info("session started", "url", startURL, "budget", o.maxDuration)
	o.journalStart(ctx, state, id)

	o.loop(ctx, state, id, logger, emit)

	sum := BuildSummary(state, o.now())
	logger.Info("session finished",
		"success", sum.Success, "steps", len(sum.History), "correct", sum.CorrectCount(),
		"elapsed", fmt.Sprintf("%.1fs", sum.ElapsedSeconds))
	o.journalEnd(ctx, sum)
	emit(Event{Kind: EventSessionFinished, Index: len(sum.History), Summary: &sum})
	return sum
}

func (o *Orchestrator) loop(ctx context.Context, state *SessionState, id quiz.Identity, logger *slog.Logger, emit func(Event)) {
	browser, err := o.renderer.Start(ctx)
	if err != nil {
		state.Fail(fmt.Errorf("%w: start: %w", ErrRenderer, err))
		return
	}
	defer func() {
		if err := browser.Close(); err != nil {
			logger.Warn("close browser", "error", err)
		}
	}()
	state.Phase = PhaseActive

	for state.CurrentURL != "" {
		if state.Expired(o.now()) {
			logger.Warn("time budget exhausted", "completed", len(state.History), "pending", state.CurrentURL)
			break
		}
		if err := ctx.Err(); err != nil {
			state.Fail(fmt.Errorf("session cancelled: %w", err))
			return
		}

		index := len(state.History)
		url := state.CurrentURL
		emit(Event{Kind: EventStepStarted, Index: index, URL: url})

		step, err := o.step(ctx, browser, url, id)
		state.Visited[url] = true
		o.journalStep(ctx, state.SessionID, index, step)
		emit(Event{Kind: EventStepFinished, Index: index, URL: url, Step: &step})

		if err != nil {
			state.History = append(state.History, step)
			logger.Error("step failed", "url", url, "error", err)
			state.Fail(err)
			return
		}
		if state.Record(step) {
			logger.Warn("next url already visited", "url", step.NextURL)
		}
	}
	state.Phase = PhaseDone
}

// step solves one page. A non-nil error is unrecoverable for the session;
// the returned StepResult then describes the failure.
func (o *Orchestrator) step(ctx context.Context, browser render.Browser, url string, id quiz.Identity) (quiz.StepResult, error) {
	start := o.now()
	failed := func(res quiz.StepResult, err error) (quiz.StepResult, error) {
		res.URL = url
		res.Correct = quiz.VerdictIncorrect
		res.ErrorDetail = err.Error()
		res.Elapsed = o.now().Sub(start)
		return res, err
	}

	page, err := browser.Render(ctx, url)
	if err != nil {
		return failed(quiz.StepResult{}, fmt.Errorf("%w: %w", ErrRenderer, err))
	}
	if page.Partial {
		o.logger.Warn("page load timed out, using partial content", "url", url)
	}

	info := o.classifier.Classify(page.Text, page.HTML)
	o.logger.Debug("classified page", "url", url, "kind", info.Kind,
		"candidates", len(info.CandidateDataURLs), "submit", info.SubmitURL)

	answer, err := o.producer.Produce(ctx, info)
	if err != nil {
		return failed(quiz.StepResult{Kind: info.Kind}, fmt.Errorf("%w: %w", ErrAnswer, err))
	}

	if info.SubmitURL == "" {
		o.logger.Warn("page names no submit url", "url", url)
		return quiz.StepResult{
			URL:         url,
			Kind:        info.Kind,
			Answer:      answer,
			Correct:     quiz.VerdictUnknown,
			ErrorDetail: NoSubmitTargetDetail,
			Elapsed:     o.now().Sub(start),
		}, nil
	}

	res := o.submitter.Submit(ctx, info.SubmitURL, url, answer, id)
	res.URL = url
	res.Kind = info.Kind
	res.Answer = answer
	res.Elapsed = o.now().Sub(start)
	return res, nil
}
