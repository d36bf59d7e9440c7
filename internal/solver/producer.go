// Package solver produces a candidate answer for a classified quiz page.
//
// Every kind has a strategy. A kind-specific strategy that fails for any
// reason, including a panic in a parser, is downgraded to the general
// strategy, so the only error Produce returns is the Reasoner's own.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/abhisek/quizsolver/internal/dataparse"
	"github.com/abhisek/quizsolver/internal/fetch"
	"github.com/abhisek/quizsolver/internal/llm"
	"github.com/abhisek/quizsolver/internal/quiz"
	"github.com/abhisek/quizsolver/internal/reasoner"
)

// ErrNotApplicable reports that a strategy found nothing to work on, such as
// a file question with no file URL.
var ErrNotApplicable = errors.New("strategy not applicable")

// Purposes attached to Reasoner calls so the journal can tell them apart.
const (
	PurposeGeneral = "answer-general"
	PurposePDF     = "answer-pdf"
	PurposeJSON    = "answer-json"
	PurposeAPI     = "answer-api"
	PurposeTable   = "answer-table"
)

// fileExtensions in the order each candidate URL is checked against.
var fileExtensions = []string{".pdf", ".csv", ".json", ".xlsx", ".xls"}

var (
	// strictFileURL is the second-chance scan of the raw question text.
	strictFileURL = regexp.MustCompile(`(?i)https?://[^\s<>"'\)]+\.(pdf|csv|json|xlsx|xls)[^\s<>"'\)]*`)

	// quotedColumn captures the first double-quoted phrase of a question.
	quotedColumn = regexp.MustCompile(`"([^"]+)"`)
)

// Asker is the Reasoner as seen by the producer.
type Asker interface {
	Ask(ctx context.Context, question, data string) (string, error)
}

// Fetcher is the download side of the fetch package.
type Fetcher interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
	FetchAPI(ctx context.Context, req fetch.APIRequest) (fetch.APIResult, error)
}

// Strategy turns a question into an answer.
type Strategy func(ctx context.Context, info quiz.QuestionInfo) (quiz.Answer, error)

// Producer dispatches on the question kind.
type Producer struct {
	asker      Asker
	fetcher    Fetcher
	strategies map[quiz.Kind]Strategy
	logger     *slog.Logger
}

// Option configures a Producer.
type Option func(*Producer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Producer) { p.logger = l }
}

// WithStrategy replaces the strategy for one kind.
func WithStrategy(kind quiz.Kind, s Strategy) Option {
	return func(p *Producer) { p.strategies[kind] = s }
}

// New wires the default strategies onto a Reasoner and a Fetcher.
func New(asker Asker, fetcher Fetcher, opts ...Option) *Producer {
	p := &Producer{
		asker:   asker,
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	p.strategies = map[quiz.Kind]Strategy{
		quiz.KindFileDownload:  p.solveFile,
		quiz.KindPDFAnalysis:   p.solveFile,
		quiz.KindAPIFetch:      p.solveAPI,
		quiz.KindDataAnalysis:  p.solveDataAnalysis,
		quiz.KindVisualization: p.solveGeneral,
		quiz.KindGeneral:       p.solveGeneral,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Produce answers info. It errors only when the general strategy fails.
func (p *Producer) Produce(ctx context.Context, info quiz.QuestionInfo) (quiz.Answer, error) {
	strategy, ok := p.strategies[info.Kind]
	if ok && info.Kind != quiz.KindGeneral {
		ans, err := p.run(ctx, strategy, info)
		if err == nil {
			return ans, nil
		}
		p.logger.Warn("falling back to general", "kind", info.Kind, "error", err)
	}
	return p.run(ctx, p.general(), info)
}

func (p *Producer) general() Strategy {
	if s, ok := p.strategies[quiz.KindGeneral]; ok {
		return s
	}
	return p.solveGeneral
}

func (p *Producer) run(ctx context.Context, s Strategy, info quiz.QuestionInfo) (ans quiz.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panic: %v", r)
		}
	}()
	return s(ctx, info)
}

func (p *Producer) solveGeneral(ctx context.Context, info quiz.QuestionInfo) (quiz.Answer, error) {
	return p.ask(llm.WithPurpose(ctx, PurposeGeneral), info.RawText, "")
}

func (p *Producer) ask(ctx context.Context, question, data string) (quiz.Answer, error) {
	reply, err := p.asker.Ask(ctx, question, data)
	if err != nil {
		return quiz.Answer{}, err
	}
	return reasoner.Coerce(reply), nil
}

func (p *Producer) solveFile(ctx context.Context, info quiz.QuestionInfo) (quiz.Answer, error) {
	fileURL, ext := PickFileURL(info.CandidateDataURLs, info.RawText)
	if fileURL == "" {
		return quiz.Answer{}, fmt.Errorf("no file url: %w", ErrNotApplicable)
	}
	kind, err := dataparse.KindFromExtension(ext)
	if err != nil {
		return quiz.Answer{}, err
	}

	data, err := p.fetcher.Download(ctx, fileURL)
	if err != nil {
		return quiz.Answer{}, err
	}
	p.logger.Debug("downloaded file", "url", fileURL, "bytes", len(data))

	switch kind {
	case dataparse.KindPDF:
		doc, err := dataparse.ParsePDF(data)
		if err != nil {
			return quiz.Answer{}, err
		}
		return p.ask(llm.WithPurpose(ctx, PurposePDF), info.RawText, pdfContext(doc))
	case dataparse.KindCSV:
		t, err := dataparse.ParseCSV(data)
		if err != nil {
			return quiz.Answer{}, err
		}
		return p.analyze(ctx, t, info.RawText)
	case dataparse.KindXLSX:
		t, err := dataparse.ParseXLSX(data)
		if err != nil {
			return quiz.Answer{}, err
		}
		return p.analyze(ctx, t, info.RawText)
	default:
		v, err := dataparse.ParseJSON(data)
		if err != nil {
			return quiz.Answer{}, err
		}
		indented, err := dataparse.Indent(v)
		if err != nil {
			return quiz.Answer{}, err
		}
		return p.ask(llm.WithPurpose(ctx, PurposeJSON), info.RawText, indented)
	}
}

func pdfContext(doc *dataparse.PDFDocument) string {
	if len(doc.Tables) == 0 {
		return doc.Text
	}
	var b strings.Builder
	b.WriteString(doc.Text)
	for _, pt := range doc.Tables {
		fmt.Fprintf(&b, "\n\n--- Table (page %d) ---\n%s", pt.Page, pt.Table.String())
	}
	return b.String()
}

// PickFileURL returns the first candidate whose path ends in a known data
// extension, with the extension. When no candidate qualifies, text is scanned
// with a stricter URL-plus-extension pattern. Both are empty when nothing
// matches.
func PickFileURL(candidates []string, text string) (string, string) {
	for _, c := range candidates {
		if ext := fileExtension(c); ext != "" {
			return c, ext
		}
	}
	if m := strictFileURL.FindStringSubmatch(text); m != nil {
		return m[0], "." + strings.ToLower(m[1])
	}
	return "", ""
}

func fileExtension(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, ext := range fileExtensions {
		if strings.HasSuffix(path, ext) {
			return ext
		}
	}
	return ""
}

func (p *Producer) solveAPI(ctx context.Context, info quiz.QuestionInfo) (quiz.Answer, error) {
	apiURL := PickAPIURL(info.CandidateDataURLs)
	if apiURL == "" {
		return quiz.Answer{}, fmt.Errorf("no api url: %w", ErrNotApplicable)
	}
	res, err := p.fetcher.FetchAPI(ctx, fetch.APIRequest{URL: apiURL})
	if err != nil {
		return quiz.Answer{}, err
	}
	return p.ask(llm.WithPurpose(ctx, PurposeAPI), info.RawText, res.String())
}

// PickAPIURL returns the first candidate mentioning "api" or "endpoint".
func PickAPIURL(candidates []string) string {
	for _, c := range candidates {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "api") || strings.Contains(lower, "endpoint") {
			return c
		}
	}
	return ""
}

func (p *Producer) solveDataAnalysis(ctx context.Context, info quiz.QuestionInfo) (quiz.Answer, error) {
	tables, err := dataparse.ExtractHTMLTables(info.RawHTML)
	if err != nil {
		return quiz.Answer{}, err
	}
	if len(tables) == 0 {
		return quiz.Answer{}, fmt.Errorf("no html tables: %w", ErrNotApplicable)
	}
	return p.analyze(ctx, dataparse.Concat(tables...), info.RawText)
}

// analyze answers a table question deterministically when the question names
// an aggregation, and through the Reasoner otherwise.
func (p *Producer) analyze(ctx context.Context, t *dataparse.Table, question string) (quiz.Answer, error) {
	plan, ok := PlanAggregation(question, t)
	if ok {
		ans, err := dataparse.Aggregate(t, plan.Op, plan.Column)
		if err == nil {
			p.logger.Debug("aggregated table", "op", plan.Op, "column", plan.Column, "answer", ans.String())
			return ans, nil
		}
		p.logger.Warn("aggregation failed", "op", plan.Op, "column", plan.Column, "error", err)
	}
	return p.ask(llm.WithPurpose(ctx, PurposeTable), question, t.Summary(5))
}

// Plan is a deterministic aggregation read off a question. An empty Column
// means the whole table.
type Plan struct {
	Op     dataparse.Op
	Column string
}

// aggregationKeywords in priority order.
var aggregationKeywords = []struct {
	word string
	op   dataparse.Op
}{
	{"sum", dataparse.OpSum},
	{"mean", dataparse.OpMean},
	{"average", dataparse.OpMean},
	{"count", dataparse.OpCount},
	{"max", dataparse.OpMax},
}

// PlanAggregation looks for an aggregation keyword in question and pairs it
// with the first quoted phrase when t has a column by that name.
func PlanAggregation(question string, t *dataparse.Table) (Plan, bool) {
	lower := strings.ToLower(question)
	var plan Plan
	found := false
	for _, kw := range aggregationKeywords {
		if strings.Contains(lower, kw.word) {
			plan.Op = kw.op
			found = true
			break
		}
	}
	if !found {
		return Plan{}, false
	}
	if m := quotedColumn.FindStringSubmatch(question); m != nil && t.HasColumn(m[1]) {
		plan.Column = m[1]
	}
	return plan, true
}
