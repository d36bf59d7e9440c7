package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizsolver/internal/quiz"
)

func TestKindOf_Priority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want quiz.Kind
	}{
		{"download only", "Please DOWNLOAD the archive", quiz.KindFileDownload},
		{"file", "Open the attached file", quiz.KindFileDownload},
		{"api beats pdf", "Call the API and compare with the pdf", quiz.KindAPIFetch},
		{"endpoint", "Query the endpoint for the score", quiz.KindAPIFetch},
		{"download beats api", "Download the api dump", quiz.KindFileDownload},
		{"sum", "What is the sum of the values?", quiz.KindDataAnalysis},
		{"table", "Look at the table below", quiz.KindDataAnalysis},
		{"chart", "Draw a chart of sales", quiz.KindVisualization},
		{"pdf", "Read the pdf and report the title", quiz.KindPDFAnalysis},
		{"nothing", "Who wrote Hamlet?", quiz.KindGeneral},
		{"substring counts", "Name the capital of France", quiz.KindAPIFetch},
		{"empty", "", quiz.KindGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.text, DefaultRules()))
		})
	}
}

func TestClassify_ExtractsURLsInOrder(t *testing.T) {
	text := `Get https://a.example/x.csv then (https://b.example/api/v1) and "https://a.example/x.csv"`
	info := New().Classify(text, "")

	assert.Equal(t, []string{
		"https://a.example/x.csv",
		"https://b.example/api/v1",
		"https://a.example/x.csv",
	}, info.CandidateDataURLs)
	assert.Empty(t, info.SubmitURL)
}

func TestClassify_SubmitURLFromHTMLOnly(t *testing.T) {
	text := "Post your answer to https://text.example/submit"
	html := `<form action="https://quiz.example/api/submit?id=3"></form><a href="https://quiz.example/submit2">`

	info := New().Classify(text, html)
	assert.Equal(t, "https://quiz.example/api/submit?id=3", info.SubmitURL)

	info = New().Classify(text, "<p>no target</p>")
	assert.Empty(t, info.SubmitURL)
}

func TestClassify_Idempotent(t *testing.T) {
	c := New()
	text := "Download https://x/data.csv and sum it"
	html := `<span>https://x/submit</span>`

	first := c.Classify(text, html)
	second := c.Classify(text, html)
	assert.Equal(t, first, second)
}

func TestClassify_ZeroValueUsesDefaultRules(t *testing.T) {
	var c Classifier
	info := c.Classify("plot the data", "")
	assert.Equal(t, quiz.KindVisualization, info.Kind)
}

func TestClassify_CustomRules(t *testing.T) {
	c := New(Rule{Kind: quiz.KindPDFAnalysis, Keywords: []string{"pdf"}})
	assert.Equal(t, quiz.KindPDFAnalysis, c.Classify("download the pdf", "").Kind)
	assert.Equal(t, quiz.KindGeneral, c.Classify("download it", "").Kind)
}
