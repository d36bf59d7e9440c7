package submit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrBadVerdict is returned when a 200 response body is not a verdict.
var ErrBadVerdict = errors.New("malformed verdict")

const verdictSchemaURL = "schema://verdict.json"

// verdictSchema describes the scoring endpoint's reply. Every field is
// optional; unknown fields are allowed.
const verdictSchema = `{
	"type": "object",
	"properties": {
		"correct": {"type": "boolean"},
		"url":     {"type": ["string", "null"]},
		"reason":  {"type": ["string", "null"]}
	}
}`

var compiledVerdict = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(verdictSchema))
	if err != nil {
		return nil, fmt.Errorf("parse verdict schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(verdictSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add verdict schema: %w", err)
	}
	return c.Compile(verdictSchemaURL)
})

// Verdict is the decoded reply. A missing "correct" reads as false.
type Verdict struct {
	Correct bool    `json:"correct"`
	URL     *string `json:"url"`
	Reason  *string `json:"reason"`
}

// NextURL returns the continuation URL, or "".
func (v Verdict) NextURL() string {
	if v.URL == nil {
		return ""
	}
	return strings.TrimSpace(*v.URL)
}

// ReasonText returns the reason, or "".
func (v Verdict) ReasonText() string {
	if v.Reason == nil {
		return ""
	}
	return *v.Reason
}

// ParseVerdict validates body against the verdict schema and decodes it.
func ParseVerdict(body []byte) (Verdict, error) {
	sch, err := compiledVerdict()
	if err != nil {
		return Verdict{}, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrBadVerdict, err)
	}
	if err := sch.Validate(inst); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrBadVerdict, err)
	}

	var v Verdict
	if err := json.Unmarshal(body, &v); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrBadVerdict, err)
	}
	return v, nil
}
