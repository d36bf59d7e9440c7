package session

import (
	"time"

	"github.com/abhisek/quizsolver/internal/quiz"
)

// BuildSummary creates the caller-facing summary from the session state.
// Only an unrecoverable failure makes a session unsuccessful; wrong
// answers and running out of time do not.
func BuildSummary(state *SessionState, now time.Time) quiz.SessionSummary {
	sum := quiz.SessionSummary{
		SessionID:      state.SessionID,
		Success:        state.Phase != PhaseFailed,
		History:        state.History,
		ElapsedSeconds: now.Sub(state.StartTime).Seconds(),
	}
	if sum.History == nil {
		sum.History = []quiz.StepResult{}
	}
	if state.Err != nil {
		sum.Error = state.Err.Error()
	}
	return sum
}
