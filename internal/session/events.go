package session

import (
	"time"

	"github.com/abhisek/quizsolver/internal/quiz"
)

// EventKind identifies a progress event.
type EventKind int

const (
	EventStepStarted EventKind = iota
	EventStepFinished
	EventSessionFinished
)

// Event reports progress of a running session. Step is set on
// EventStepFinished, Summary on EventSessionFinished.
type Event struct {
	Kind      EventKind
	SessionID string
	Index     int
	URL       string
	Time      time.Time
	Step      *quiz.StepResult
	Summary   *quiz.SessionSummary
}

// Observer receives events synchronously on the session goroutine and must
// not block.
type Observer func(Event)
