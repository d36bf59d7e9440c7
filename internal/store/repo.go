package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // exact match when set
	Purpose   string    // exact match when set (LLM events only)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	SessionID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStat aggregates token usage for one purpose.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// SessionStartData marks the beginning of a quiz session.
type SessionStartData struct {
	SessionID string
	StartURL  string
	Email     string
}

// SessionEndData closes a quiz session.
type SessionEndData struct {
	SessionID    string
	Success      bool
	Steps        int
	CorrectSteps int
	ElapsedMs    int64
	Error        string
}

// SessionRecord folds the start and end events of one session. Ended is
// false while the session is still running or if it never finished.
type SessionRecord struct {
	SessionID    string
	StartURL     string
	Email        string
	StartedAt    time.Time
	Ended        bool
	EndedAt      time.Time
	Success      bool
	Steps        int
	CorrectSteps int
	ElapsedMs    int64
	Error        string
}

// StepEventData captures one solved page. Answer holds the JSON encoding
// of the submitted value; Verdict is "true", "false" or "unknown".
type StepEventData struct {
	SessionID   string
	StepIndex   int
	URL         string
	Kind        string
	Answer      string
	Verdict     string
	NextURL     string
	Reason      string
	Attempts    int
	ErrorDetail string
	ElapsedMs   int64
}

// StepEventRecord is a stored step event.
type StepEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	StepEventData
}

// LLMRecorder is the slice of the journal the model decorators need.
type LLMRecorder interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventRepo provides append and query access to the run journal.
type EventRepo interface {
	LLMRecorder

	// AppendSessionStart records that a session began.
	AppendSessionStart(ctx context.Context, data SessionStartData) error

	// AppendSessionEnd records the outcome of a session.
	AppendSessionEnd(ctx context.Context, data SessionEndData) error

	// AppendStep records one step of a session.
	AppendStep(ctx context.Context, data StepEventData) error

	// ListSessions returns sessions, newest first.
	ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)

	// StepsForSession returns the steps of a session in order.
	StepsForSession(ctx context.Context, sessionID string) ([]StepEventRecord, error)

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
