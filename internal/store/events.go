package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builder over the shared
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var builder = entsql.Dialect(dialect.SQLite)

// insert appends one row stamped with the next sequence and the current time.
func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, llmEventsTable,
		[]string{"session_id", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body"},
		[]any{data.SessionID, data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody},
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionStart(ctx context.Context, data SessionStartData) error {
	err := r.insert(ctx, sessionEventsTable,
		[]string{"session_id", "action", "start_url", "email"},
		[]any{data.SessionID, actionStart, data.StartURL, data.Email},
	)
	if err != nil {
		return fmt.Errorf("save session start: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEnd(ctx context.Context, data SessionEndData) error {
	err := r.insert(ctx, sessionEventsTable,
		[]string{"session_id", "action", "success", "steps", "correct_steps", "elapsed_ms", "error_message"},
		[]any{data.SessionID, actionEnd, data.Success, data.Steps, data.CorrectSteps, data.ElapsedMs, data.Error},
	)
	if err != nil {
		return fmt.Errorf("save session end: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendStep(ctx context.Context, data StepEventData) error {
	err := r.insert(ctx, stepEventsTable,
		[]string{"session_id", "step_index", "url", "kind", "answer", "verdict", "next_url",
			"reason", "attempts", "error_detail", "elapsed_ms"},
		[]any{data.SessionID, data.StepIndex, data.URL, data.Kind, data.Answer, data.Verdict, data.NextURL,
			data.Reason, data.Attempts, data.ErrorDetail, data.ElapsedMs},
	)
	if err != nil {
		return fmt.Errorf("save step event: %w", err)
	}
	return nil
}

// applyOpts adds the filters of opts to a selector over a journal table.
func applyOpts(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	return sel
}
