// Package server is the HTTP front door: it checks the caller's secret and
// starts quiz sessions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/abhisek/quizsolver/internal/quiz"
)

const (
	serviceName    = "LLM Analysis Quiz Solver"
	serviceVersion = "1.0.0"

	// maxBodyBytes bounds a solve request body.
	maxBodyBytes = 64 * 1024
)

// Runner runs one quiz session to completion.
type Runner interface {
	Run(ctx context.Context, startURL string, id quiz.Identity) quiz.SessionSummary
}

// SolveRequest is the body of POST /solve and POST /solve-sync.
type SolveRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// Response is the body of every solve reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Server serves the solve endpoints.
type Server struct {
	runner   Runner
	identity quiz.Identity
	logger   *slog.Logger

	// base outlives individual requests; async sessions run under it.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server that accepts requests carrying id's secret.
func New(runner Runner, id quiz.Identity, opts ...Option) *Server {
	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		runner:   runner,
		identity: id,
		logger:   slog.Default(),
		base:     base,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /solve", s.handleSolve)
	mux.HandleFunc("POST /solve-sync", s.handleSolveSync)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	return mux
}

// Shutdown waits for background sessions to finish. When ctx ends first
// the sessions are cancelled and ctx's error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.logger.Info("quiz request", "url", req.URL, "email", req.Email)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runner.Run(s.base, req.URL, quiz.Identity{Email: req.Email, Secret: req.Secret})
	}()

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Quiz solving started",
		Details: map[string]string{"url": req.URL, "email": req.Email},
	})
}

func (s *Server) handleSolveSync(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.logger.Info("synchronous quiz request", "url", req.URL, "email", req.Email)

	sum := s.runner.Run(r.Context(), req.URL, quiz.Identity{Email: req.Email, Secret: req.Secret})
	msg := "Quiz solving completed"
	if !sum.Success {
		msg = "Quiz solving failed"
	}
	writeJSON(w, http.StatusOK, Response{
		Success: sum.Success,
		Message: msg,
		Details: NewSummaryJSON(sum),
	})
}

// decode reads and authorizes a solve request, writing the error reply
// itself when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (SolveRequest, bool) {
	var req SolveRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("invalid solve request", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid JSON payload"})
		return req, false
	}
	req.Email = strings.TrimSpace(req.Email)
	req.URL = strings.TrimSpace(req.URL)
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return req, false
	}
	if req.Secret != s.identity.Secret {
		s.logger.Warn("invalid secret", "email", req.Email)
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: "Invalid secret"})
		return req, false
	}
	if req.Email != s.identity.Email {
		s.logger.Warn("email mismatch", "got", req.Email, "configured", s.identity.Email)
	}
	return req, true
}

func (r SolveRequest) validate() error {
	var missing []string
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.Secret == "" {
		missing = append(missing, "secret")
	}
	if r.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return errors.New("missing fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"version": serviceVersion,
		"endpoints": map[string]string{
			"/solve":      "POST - Start solving a quiz (async)",
			"/solve-sync": "POST - Solve a quiz and wait for result",
			"/health":     "GET - Health check",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
