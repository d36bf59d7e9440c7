package quiz

import "time"

// Kind is the closed classification of a quiz question. It selects the
// answer-production strategy.
type Kind string

const (
	KindFileDownload  Kind = "file_download"
	KindAPIFetch      Kind = "api_fetch"
	KindPDFAnalysis   Kind = "pdf_analysis"
	KindDataAnalysis  Kind = "data_analysis"
	KindVisualization Kind = "visualization"
	KindGeneral       Kind = "general"
)

// AllKinds lists every Kind in declaration order.
var AllKinds = []Kind{
	KindFileDownload,
	KindAPIFetch,
	KindPDFAnalysis,
	KindDataAnalysis,
	KindVisualization,
	KindGeneral,
}

// Identity is the caller's declared email and shared secret. Both are
// forwarded unchanged on every submission.
type Identity struct {
	Email  string
	Secret string
}

// QuestionInfo is everything derived from one rendered quiz page.
// It is never mutated after Classify builds it.
type QuestionInfo struct {
	RawText string
	RawHTML string
	Kind    Kind

	// CandidateDataURLs holds every URL found in RawText in order of
	// appearance. Duplicates are kept.
	CandidateDataURLs []string

	// SubmitURL is empty when the page names no submission endpoint.
	SubmitURL string
}

// Verdict is the tri-state outcome reported for a step.
type Verdict string

const (
	VerdictCorrect   Verdict = "true"
	VerdictIncorrect Verdict = "false"
	VerdictUnknown   Verdict = "unknown"
)

// VerdictOf maps a scoring endpoint's boolean into a Verdict.
func VerdictOf(correct bool) Verdict {
	if correct {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// StepResult is the outcome of one quiz page.
type StepResult struct {
	URL          string
	Kind         Kind
	Answer       Answer
	Correct      Verdict
	NextURL      string
	Reason       string
	AttemptCount int
	ErrorDetail  string
	Elapsed      time.Duration
}

// Terminal reports whether the session must stop after this step.
func (s StepResult) Terminal() bool {
	return s.NextURL == ""
}

// SessionSummary is what a finished session returns to its caller.
type SessionSummary struct {
	SessionID      string
	Success        bool
	History        []StepResult
	ElapsedSeconds float64
	Error          string
}

// CorrectCount returns how many steps the scoring endpoint accepted.
func (s SessionSummary) CorrectCount() int {
	n := 0
	for _, st := range s.History {
		if st.Correct == VerdictCorrect {
			n++
		}
	}
	return n
}
