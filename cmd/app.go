package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizsolver/internal/classify"
	"github.com/abhisek/quizsolver/internal/config"
	"github.com/abhisek/quizsolver/internal/fetch"
	"github.com/abhisek/quizsolver/internal/llm"
	"github.com/abhisek/quizsolver/internal/reasoner"
	"github.com/abhisek/quizsolver/internal/render"
	"github.com/abhisek/quizsolver/internal/session"
	"github.com/abhisek/quizsolver/internal/solver"
	"github.com/abhisek/quizsolver/internal/store"
	"github.com/abhisek/quizsolver/internal/submit"
)

// cfg is loaded and validated by loadConfig before serve and solve run.
var cfg config.Config

// loadConfig reads and validates the environment once, failing fast on
// missing credentials or bad settings.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		c.DBPath = p
	}
	cfg = c
	return nil
}

// app is everything a command needs to run sessions.
type app struct {
	orchestrator *session.Orchestrator
	store        *store.Store
	logger       *slog.Logger
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// newApp wires the solver from cfg. The journal is optional: if it cannot
// be opened the solver still runs, unrecorded.
func newApp(ctx context.Context) (*app, error) {
	logger := cfg.NewLogger(os.Stderr)
	a := &app{logger: logger}

	var journal store.EventRepo
	dbPath := cfg.DBPath
	var err error
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
	} else {
		err = store.EnsureDir(dbPath)
	}
	if err == nil {
		a.store, err = store.Open(dbPath)
	}
	if err != nil {
		logger.Warn("journal unavailable, runs will not be recorded", "error", err)
	} else {
		journal = a.store.EventRepo()
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, journal, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("LLM provider: %w", err)
	}

	r := reasoner.New(provider,
		reasoner.WithSystemPrompt(cfg.SystemPrompt),
		reasoner.WithInstruction(cfg.UserPrompt),
		reasoner.WithLogger(logger),
	)
	producer := solver.New(r, fetch.New(fetch.WithTimeout(cfg.StepTimeout)), solver.WithLogger(logger))
	submitter := submit.New(
		submit.WithAttempts(cfg.SubmitAttempts),
		submit.WithBackoff(cfg.SubmitBackoff),
		submit.WithTimeout(cfg.StepTimeout),
		submit.WithLogger(logger),
	)

	opts := []session.Option{
		session.WithMaxDuration(cfg.MaxDuration),
		session.WithLogger(logger),
	}
	if journal != nil {
		opts = append(opts, session.WithJournal(journal))
	}
	a.orchestrator = session.New(newRenderer(), classify.New(), producer, submitter, opts...)
	return a, nil
}

func newRenderer() render.Renderer {
	opts := []render.Option{
		render.WithTimeout(cfg.RenderTimeout),
		render.WithSettle(cfg.RenderSettle),
	}
	if cfg.Renderer == config.RendererHTTP {
		return render.NewHTTPRenderer(opts...)
	}
	return render.NewChromeRenderer(opts...)
}
