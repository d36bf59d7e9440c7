package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	actionStart = "start"
	actionEnd   = "end"
)

func (r *eventRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	sel := builder.Select("session_id", "action", "timestamp", "start_url", "email", "success",
		"steps", "correct_steps", "elapsed_ms", "error_message").
		From(builder.Table(sessionEventsTable)).
		OrderBy("sequence")
	query, args := applyOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*SessionRecord)
	var order []string
	for rows.Next() {
		var (
			e      SessionRecord
			action string
		)
		if err := rows.Scan(&e.SessionID, &action, &e.StartedAt, &e.StartURL, &e.Email, &e.Success,
			&e.Steps, &e.CorrectSteps, &e.ElapsedMs, &e.Error); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}

		rec, ok := byID[e.SessionID]
		if !ok {
			rec = &SessionRecord{SessionID: e.SessionID}
			byID[e.SessionID] = rec
			order = append(order, e.SessionID)
		}
		switch action {
		case actionStart:
			rec.StartURL = e.StartURL
			rec.Email = e.Email
			rec.StartedAt = e.StartedAt
		case actionEnd:
			rec.Ended = true
			rec.EndedAt = e.StartedAt
			rec.Success = e.Success
			rec.Steps = e.Steps
			rec.CorrectSteps = e.CorrectSteps
			rec.ElapsedMs = e.ElapsedMs
			rec.Error = e.Error
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	out := make([]SessionRecord, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		out = append(out, *byID[order[i]])
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (r *eventRepo) StepsForSession(ctx context.Context, sessionID string) ([]StepEventRecord, error) {
	query, args := builder.Select("id", "sequence", "timestamp", "session_id", "step_index", "url", "kind",
		"answer", "verdict", "next_url", "reason", "attempts", "error_detail", "elapsed_ms").
		From(builder.Table(stepEventsTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var out []StepEventRecord
	for rows.Next() {
		var s StepEventRecord
		if err := rows.Scan(&s.ID, &s.Sequence, &s.Timestamp, &s.SessionID, &s.StepIndex, &s.URL, &s.Kind,
			&s.Answer, &s.Verdict, &s.NextURL, &s.Reason, &s.Attempts, &s.ErrorDetail, &s.ElapsedMs); err != nil {
			return nil, fmt.Errorf("scan step event: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return out, nil
}
