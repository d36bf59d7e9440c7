// Package config assembles the process-wide settings from the environment.
// The resulting Config is validated once at start-up and passed by value to
// every component; nothing reads the environment after that.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/quizsolver/internal/llm"
	"github.com/abhisek/quizsolver/internal/quiz"
)

// Renderer backends.
const (
	RendererChrome = "chrome"
	RendererHTTP   = "http"
)

// MaxPromptLen caps SYSTEM_PROMPT and USER_PROMPT.
const MaxPromptLen = 100

// Config holds every setting the solver reads from its environment.
type Config struct {
	Email  string
	Secret string

	// SystemPrompt replaces the default reasoner system prompt when set.
	SystemPrompt string
	// UserPrompt replaces the closing answer instruction when set.
	UserPrompt string

	Host string
	Port int

	MaxDuration    time.Duration
	StepTimeout    time.Duration
	SubmitAttempts int
	SubmitBackoff  time.Duration

	Renderer      string
	RenderTimeout time.Duration
	RenderSettle  time.Duration

	// DBPath is the journal location; empty means the default data dir.
	DBPath   string
	LogLevel slog.Level

	LLM llm.Config
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		MaxDuration:    180 * time.Second,
		StepTimeout:    30 * time.Second,
		SubmitAttempts: 3,
		SubmitBackoff:  1 * time.Second,
		Renderer:       RendererChrome,
		RenderTimeout:  30 * time.Second,
		RenderSettle:   2 * time.Second,
		LogLevel:       slog.LevelInfo,
		LLM:            llm.DefaultConfig(),
	}
}

// FromEnv loads a .env file from the working directory if one exists and
// then reads the process environment. Variables already set in the
// environment win over the file. Malformed numbers and durations are
// reported rather than silently ignored.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	cfg.LLM = llm.ConfigFromEnv()

	cfg.Email = os.Getenv("EMAIL")
	cfg.Secret = os.Getenv("SECRET")
	cfg.SystemPrompt = os.Getenv("SYSTEM_PROMPT")
	cfg.UserPrompt = os.Getenv("USER_PROMPT")
	cfg.DBPath = os.Getenv("QUIZSOLVER_DB")
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("QUIZSOLVER_RENDERER"); v != "" {
		cfg.Renderer = strings.ToLower(v)
	}

	var errs []error
	errs = append(errs,
		intVar(&cfg.Port, "PORT"),
		intVar(&cfg.SubmitAttempts, "QUIZSOLVER_SUBMIT_ATTEMPTS"),
		durationVar(&cfg.MaxDuration, "QUIZSOLVER_MAX_DURATION"),
		durationVar(&cfg.StepTimeout, "QUIZSOLVER_STEP_TIMEOUT"),
		durationVar(&cfg.SubmitBackoff, "QUIZSOLVER_SUBMIT_BACKOFF"),
		durationVar(&cfg.RenderTimeout, "QUIZSOLVER_RENDER_TIMEOUT"),
		durationVar(&cfg.RenderSettle, "QUIZSOLVER_RENDER_SETTLE"),
	)
	if v := os.Getenv("QUIZSOLVER_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("QUIZSOLVER_LOG_LEVEL: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// intVar parses an integer variable into dst when it is set.
func intVar(dst *int, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

// durationVar accepts Go durations ("90s") or bare seconds ("90").
func durationVar(dst *time.Duration, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

// Validate reports every problem that would make a session fail to start.
func (c Config) Validate() error {
	var errs []error
	if c.Email == "" {
		errs = append(errs, errors.New("EMAIL is required"))
	}
	if c.Secret == "" {
		errs = append(errs, errors.New("SECRET is required"))
	}
	if len(c.SystemPrompt) > MaxPromptLen {
		errs = append(errs, fmt.Errorf("SYSTEM_PROMPT must be %d characters or less", MaxPromptLen))
	}
	if len(c.UserPrompt) > MaxPromptLen {
		errs = append(errs, fmt.Errorf("USER_PROMPT must be %d characters or less", MaxPromptLen))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.MaxDuration <= 0 {
		errs = append(errs, errors.New("QUIZSOLVER_MAX_DURATION must be positive"))
	}
	if c.StepTimeout <= 0 {
		errs = append(errs, errors.New("QUIZSOLVER_STEP_TIMEOUT must be positive"))
	}
	if c.SubmitAttempts < 1 {
		errs = append(errs, errors.New("QUIZSOLVER_SUBMIT_ATTEMPTS must be at least 1"))
	}
	if c.SubmitBackoff < 0 {
		errs = append(errs, errors.New("QUIZSOLVER_SUBMIT_BACKOFF must not be negative"))
	}
	switch c.Renderer {
	case RendererChrome, RendererHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown renderer %q (want %s or %s)", c.Renderer, RendererChrome, RendererHTTP))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Identity returns the credentials forwarded on every submission.
func (c Config) Identity() quiz.Identity {
	return quiz.Identity{Email: c.Email, Secret: c.Secret}
}

// Addr returns the listen address for the HTTP front door.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewLogger returns a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
