package server

import "github.com/abhisek/quizsolver/internal/quiz"

// SummaryJSON is the wire form of a finished session.
type SummaryJSON struct {
	SessionID      string     `json:"session_id"`
	Success        bool       `json:"success"`
	ElapsedSeconds float64    `json:"elapsed_seconds"`
	Correct        int        `json:"correct"`
	History        []StepJSON `json:"history"`
	Error          string     `json:"error,omitempty"`
}

// StepJSON is the wire form of one step.
type StepJSON struct {
	URL          string      `json:"url"`
	Kind         quiz.Kind   `json:"kind,omitempty"`
	Answer       quiz.Answer `json:"answer"`
	Correct      string      `json:"correct"`
	NextURL      string      `json:"next_url,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	AttemptCount int         `json:"attempt_count"`
	ErrorDetail  string      `json:"error_detail,omitempty"`
	ElapsedMs    int64       `json:"elapsed_ms"`
}

// NewSummaryJSON converts a summary for the wire.
func NewSummaryJSON(sum quiz.SessionSummary) SummaryJSON {
	out := SummaryJSON{
		SessionID:      sum.SessionID,
		Success:        sum.Success,
		ElapsedSeconds: sum.ElapsedSeconds,
		Correct:        sum.CorrectCount(),
		History:        make([]StepJSON, 0, len(sum.History)),
		Error:          sum.Error,
	}
	for _, st := range sum.History {
		out.History = append(out.History, StepJSON{
			URL:          st.URL,
			Kind:         st.Kind,
			Answer:       st.Answer,
			Correct:      string(st.Correct),
			NextURL:      st.NextURL,
			Reason:       st.Reason,
			AttemptCount: st.AttemptCount,
			ErrorDetail:  st.ErrorDetail,
			ElapsedMs:    st.Elapsed.Milliseconds(),
		})
	}
	return out
}
