package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerType tags which variant an Answer holds.
type AnswerType string

const (
	AnswerNone  AnswerType = ""
	AnswerInt   AnswerType = "int"
	AnswerFloat AnswerType = "float"
	AnswerBool  AnswerType = "bool"
	AnswerText  AnswerType = "text"
)

// Answer is a closed sum of number, boolean, and text. The zero value is
// AnswerNone and encodes as JSON null.
type Answer struct {
	typ AnswerType
	i   int64
	f   float64
	b   bool
	s   string
}

func Int(n int64) Answer     { return Answer{typ: AnswerInt, i: n} }
func Float(f float64) Answer { return Answer{typ: AnswerFloat, f: f} }
func Bool(b bool) Answer     { return Answer{typ: AnswerBool, b: b} }
func Text(s string) Answer   { return Answer{typ: AnswerText, s: s} }

func (a Answer) Type() AnswerType { return a.typ }
func (a Answer) IsZero() bool     { return a.typ == AnswerNone }

// Number returns the numeric value for int and float answers.
func (a Answer) Number() (float64, bool) {
	switch a.typ {
	case AnswerInt:
		return float64(a.i), true
	case AnswerFloat:
		return a.f, true
	}
	return 0, false
}

// Value returns the Go value carried by the answer, or nil.
func (a Answer) Value() any {
	switch a.typ {
	case AnswerInt:
		return a.i
	case AnswerFloat:
		return a.f
	case AnswerBool:
		return a.b
	case AnswerText:
		return a.s
	}
	return nil
}

func (a Answer) String() string {
	switch a.typ {
	case AnswerInt:
		return strconv.FormatInt(a.i, 10)
	case AnswerFloat:
		return strconv.FormatFloat(a.f, 'f', -1, 64)
	case AnswerBool:
		return strconv.FormatBool(a.b)
	case AnswerText:
		return a.s
	}
	return "<none>"
}

func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*a = Answer{}
	case bool:
		*a = Bool(t)
	case string:
		*a = Text(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			*a = Int(n)
			return nil
		}
		f, err := t.Float64()
		if err != nil {
			return fmt.Errorf("answer number %q: %w", t, err)
		}
		*a = Float(f)
	default:
		return fmt.Errorf("unsupported answer JSON %s", data)
	}
	return nil
}
