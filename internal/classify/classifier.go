// Package classify turns a rendered quiz page into a quiz.QuestionInfo.
//
// Classification never fails: a page with no recognizable keywords is
// KindGeneral, and missing URLs simply leave the corresponding fields empty.
package classify

import (
	"regexp"
	"strings"

	"github.com/abhisek/quizsolver/internal/quiz"
)

// URL-shaped token. Greedy; stops at whitespace, angle brackets, quotes and
// a closing parenthesis. Trailing sentence punctuation such as "." is kept,
// so "see https://x/a.csv." yields "https://x/a.csv.".
const urlTokenPattern = `https?://[^\s<>"'\)]+`

var (
	urlToken = regexp.MustCompile(urlTokenPattern)

	// submitToken matches a URL whose path contains "/submit". It is only
	// applied to the page HTML, never to the visible text.
	submitToken = regexp.MustCompile(`https?://[^\s<>"'\)]+/submit[^\s<>"'\)]*`)
)

// Rule maps a set of keywords onto a Kind. A rule matches when any keyword
// occurs in the lower-cased question text.
type Rule struct {
	Kind     quiz.Kind
	Keywords []string
}

// Matches reports whether any of the rule's keywords occurs in lower.
func (r Rule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DefaultRules returns the keyword rules in priority order. The first
// matching rule wins, so a page mentioning both "api" and "pdf" is api_fetch.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: quiz.KindFileDownload, Keywords: []string{"download", "file"}},
		{Kind: quiz.KindAPIFetch, Keywords: []string{"api", "endpoint"}},
		{Kind: quiz.KindDataAnalysis, Keywords: []string{"sum", "calculate", "table"}},
		{Kind: quiz.KindVisualization, Keywords: []string{"visualize", "chart", "plot"}},
		{Kind: quiz.KindPDFAnalysis, Keywords: []string{"pdf"}},
	}
}

// Classifier is stateless; the zero value uses DefaultRules.
type Classifier struct {
	rules []Rule
}

// New returns a Classifier evaluating rules in the given order. With no
// rules it falls back to DefaultRules.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify builds the QuestionInfo for one page.
func (c *Classifier) Classify(text, html string) quiz.QuestionInfo {
	rules := c.rules
	if rules == nil {
		rules = DefaultRules()
	}
	return quiz.QuestionInfo{
		RawText:           text,
		RawHTML:           html,
		Kind:              KindOf(text, rules),
		CandidateDataURLs: ExtractURLs(text),
		SubmitURL:         ExtractSubmitURL(html),
	}
}

// KindOf returns the kind of the first rule matching text, or KindGeneral.
func KindOf(text string, rules []Rule) quiz.Kind {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.Matches(lower) {
			return r.Kind
		}
	}
	return quiz.KindGeneral
}

// ExtractURLs returns every URL token in text, in order, duplicates kept.
func ExtractURLs(text string) []string {
	return urlToken.FindAllString(text, -1)
}

// ExtractSubmitURL returns the first ".../submit..." URL in html, or "".
func ExtractSubmitURL(html string) string {
	return submitToken.FindString(html)
}
