package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{sessionEventsTable, stepEventsTable, llmEventsTable, "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestReopenKeepsJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.EventRepo().AppendSessionStart(ctx, SessionStartData{SessionID: "a"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EventRepo().AppendSessionStart(ctx, SessionStartData{SessionID: "b"}))

	sessions, err := s.EventRepo().ListSessions(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].SessionID)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	require.NoError(t, err)

	// The store's own counter shares the row; nothing has been appended yet.
	for i := range 5 {
		seq, err := sc.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendSessionStart(ctx, SessionStartData{
		SessionID: "s1", StartURL: "https://quiz.example/q1", Email: "me@example.com",
	}))
	require.NoError(t, repo.AppendStep(ctx, StepEventData{
		SessionID: "s1", StepIndex: 0, URL: "https://quiz.example/q1", Kind: "data_analysis",
		Answer: "60", Verdict: "true", NextURL: "https://quiz.example/q2", Attempts: 1, ElapsedMs: 1200,
	}))
	require.NoError(t, repo.AppendStep(ctx, StepEventData{
		SessionID: "s1", StepIndex: 1, URL: "https://quiz.example/q2", Kind: "general",
		Answer: `"Paris"`, Verdict: "false", Attempts: 1,
	}))
	require.NoError(t, repo.AppendSessionEnd(ctx, SessionEndData{
		SessionID: "s1", Success: true, Steps: 2, CorrectSteps: 1, ElapsedMs: 4000,
	}))

	// A second, unfinished session.
	require.NoError(t, repo.AppendSessionStart(ctx, SessionStartData{SessionID: "s2", StartURL: "https://quiz.example/other"}))

	sessions, err := repo.ListSessions(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "s2", sessions[0].SessionID, "newest first")
	assert.False(t, sessions[0].Ended)

	s1 := sessions[1]
	assert.True(t, s1.Ended)
	assert.True(t, s1.Success)
	assert.Equal(t, "https://quiz.example/q1", s1.StartURL)
	assert.Equal(t, "me@example.com", s1.Email)
	assert.Equal(t, 2, s1.Steps)
	assert.Equal(t, 1, s1.CorrectSteps)
	assert.False(t, s1.StartedAt.IsZero())
	assert.False(t, s1.EndedAt.Before(s1.StartedAt))

	limited, err := repo.ListSessions(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "s2", limited[0].SessionID)

	steps, err := repo.StepsForSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, 0, steps[0].StepIndex)
	assert.Equal(t, "60", steps[0].Answer)
	assert.Equal(t, "https://quiz.example/q2", steps[0].NextURL)
	assert.Equal(t, `"Paris"`, steps[1].Answer)
	assert.Less(t, steps[0].Sequence, steps[1].Sequence)

	none, err := repo.StepsForSession(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{SessionID: "s1", Provider: "openai", Model: "gpt-4o-mini", Purpose: "answer", InputTokens: 100, OutputTokens: 5, LatencyMs: 300, Success: true, RequestBody: "req", ResponseBody: "42"},
		{SessionID: "s1", Provider: "openai", Model: "gpt-4o-mini", Purpose: "table-analysis", InputTokens: 200, OutputTokens: 10, LatencyMs: 500, Success: true},
		{SessionID: "s2", Provider: "openai", Model: "gpt-4o", Purpose: "answer", InputTokens: 50, OutputTokens: 3, LatencyMs: 100, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "boom", all[0].ErrorMessage, "newest first")

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	answers, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "answer"})
	require.NoError(t, err)
	assert.Len(t, answers, 2)

	bySession, err := repo.QueryLLMEvents(ctx, QueryOpts{SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, bySession, 2)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: all[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, all[0].ID, after[0].ID)

	got, err := repo.GetLLMEvent(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "req", got.RequestBody)
	assert.Equal(t, "42", got.ResponseBody)
	assert.True(t, got.Success)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "answer", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 150, byPurpose[0].InputTokens)
	assert.Equal(t, int64(200), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gpt-4o", byModel[0].Model)
	assert.Equal(t, 1, byModel[0].Calls)
	assert.Equal(t, 2, byModel[1].Calls)
	assert.Equal(t, 15, byModel[1].OutputTokens)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZSOLVER_DB", filepath.Join(dir, "custom", "q.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom", "q.db"), p)
	assert.DirExists(t, filepath.Join(dir, "custom"))

	t.Setenv("QUIZSOLVER_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quizsolver", "quizsolver.db"), p)
}
