package session

import (
	"context"
	"encoding/json"

	"github.com/abhisek/quizsolver/internal/quiz"
	"github.com/abhisek/quizsolver/internal/store"
)

// Journal writes are best effort and outlive a cancelled session context,
// so a stopped run still gets its end row.

func (o *Orchestrator) journalStart(ctx context.Context, state *SessionState, id quiz.Identity) {
	if o.journal == nil {
		return
	}
	err := o.journal.AppendSessionStart(context.WithoutCancel(ctx), store.SessionStartData{
		SessionID: state.SessionID,
		StartURL:  state.StartURL,
		Email:     id.Email,
	})
	if err != nil {
		o.logger.Warn("journal session start", "error", err)
	}
}

func (o *Orchestrator) journalStep(ctx context.Context, sessionID string, index int, step quiz.StepResult) {
	if o.journal == nil {
		return
	}
	answer := ""
	if !step.Answer.IsZero() {
		if b, err := json.Marshal(step.Answer); err == nil {
			answer = string(b)
		}
	}
	err := o.journal.AppendStep(context.WithoutCancel(ctx), store.StepEventData{
		SessionID:   sessionID,
		StepIndex:   index,
		URL:         step.URL,
		Kind:        string(step.Kind),
		Answer:      answer,
		Verdict:     string(step.Correct),
		NextURL:     step.NextURL,
		Reason:      step.Reason,
		Attempts:    step.AttemptCount,
		ErrorDetail: step.ErrorDetail,
		ElapsedMs:   step.Elapsed.Milliseconds(),
	})
	if err != nil {
		o.logger.Warn("journal step", "error", err)
	}
}

func (o *Orchestrator) journalEnd(ctx context.Context, sum quiz.SessionSummary) {
	if o.journal == nil {
		return
	}
	err := o.journal.AppendSessionEnd(context.WithoutCancel(ctx), store.SessionEndData{
		SessionID:    sum.SessionID,
		Success:      sum.Success,
		Steps:        len(sum.History),
		CorrectSteps: sum.CorrectCount(),
		ElapsedMs:    int64(sum.ElapsedSeconds * 1000),
		Error:        sum.Error,
	})
	if err != nil {
		o.logger.Warn("journal session end", "error", err)
	}
}
