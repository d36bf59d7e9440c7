package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswer_MarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   string
	}{
		{"int", Int(42), `42`},
		{"negative float", Float(-3.5), `-3.5`},
		{"whole float", Float(60), `60`},
		{"bool", Bool(true), `true`},
		{"text", Text("Paris"), `"Paris"`},
		{"none", Answer{}, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.answer)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestAnswer_UnmarshalKeepsIntegerness(t *testing.T) {
	var a Answer
	require.NoError(t, json.Unmarshal([]byte(`7`), &a))
	assert.Equal(t, AnswerInt, a.Type())

	require.NoError(t, json.Unmarshal([]byte(`7.25`), &a))
	assert.Equal(t, AnswerFloat, a.Type())
	n, ok := a.Number()
	require.True(t, ok)
	assert.InDelta(t, 7.25, n, 1e-9)

	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &a))
}

func TestAnswer_EmbeddedInPayload(t *testing.T) {
	payload := struct {
		URL    string `json:"url"`
		Answer Answer `json:"answer"`
	}{URL: "https://q/1", Answer: Text("ok")}

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://q/1","answer":"ok"}`, string(b))
}

func TestSessionSummary_CorrectCount(t *testing.T) {
	s := SessionSummary{History: []StepResult{
		{Correct: VerdictCorrect},
		{Correct: VerdictIncorrect},
		{Correct: VerdictUnknown},
		{Correct: VerdictOf(true)},
	}}
	assert.Equal(t, 2, s.CorrectCount())
}
