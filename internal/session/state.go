package session

import (
	"time"

	"github.com/abhisek/quizsolver/internal/quiz"
)

// SessionPhase is where a run currently is.
type SessionPhase int

const (
	PhaseStarting SessionPhase = iota // Acquiring the browser
	PhaseActive                       // Solving pages
	PhaseDone                         // Stopped normally: no next URL, deadline, or no submit target
	PhaseFailed                       // Stopped by an unrecoverable error
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseActive:
		return "active"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// SessionState tracks one run. It is owned by a single goroutine.
type SessionState struct {
	// SessionID is the UUID for this session.
	SessionID string

	// StartURL is the first quiz page.
	StartURL string

	// CurrentURL is the page about to be solved; empty once the chain ends.
	CurrentURL string

	// StartTime is when the session began.
	StartTime time.Time

	// Deadline is StartTime plus the session budget.
	Deadline time.Time

	// History holds every finished step in order.
	History []quiz.StepResult

	// Visited records every URL already rendered.
	Visited map[string]bool

	Phase SessionPhase

	// Err is the unrecoverable failure, if any.
	Err error
}

// NewSessionState creates the state for a run starting at startURL.
func NewSessionState(sessionID, startURL string, start time.Time, budget time.Duration) *SessionState {
	return &SessionState{
		SessionID:  sessionID,
		StartURL:   startURL,
		CurrentURL: startURL,
		StartTime:  start,
		Deadline:   start.Add(budget),
		Visited:    make(map[string]bool),
		Phase:      PhaseStarting,
	}
}

// Expired reports whether now is past the deadline. Reaching the deadline
// exactly still leaves time for one more page.
func (s *SessionState) Expired(now time.Time) bool {
	return now.After(s.Deadline)
}

// Record appends a finished step and moves CurrentURL to its successor.
// A successor that was already visited ends the chain; revisit reports that.
func (s *SessionState) Record(step quiz.StepResult) (revisit bool) {
	s.History = append(s.History, step)
	s.CurrentURL = step.NextURL
	if s.CurrentURL != "" && s.Visited[s.CurrentURL] {
		s.CurrentURL = ""
		return true
	}
	return false
}

// Fail marks the run as failed.
func (s *SessionState) Fail(err error) {
	s.Phase = PhaseFailed
	s.Err = err
	s.CurrentURL = ""
}
