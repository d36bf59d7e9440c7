package reasoner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/quizsolver/internal/quiz"
)

// numberToken matches an optional minus, digits, and an optional fraction.
// Only the first match counts; surrounding words are discarded, so
// "42 items" becomes 42 and "v2 is better" becomes 2.
var numberToken = regexp.MustCompile(`-?\d+\.?\d*`)

// Coerce converts a model reply into a typed answer: the first number in
// the text if there is one, otherwise the trimmed text. A token with a
// decimal point is a float; integers too large for int64 become floats.
func Coerce(text string) quiz.Answer {
	if tok := numberToken.FindString(text); tok != "" {
		if !strings.Contains(tok, ".") {
			if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
				return quiz.Int(n)
			}
		}
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return quiz.Float(f)
		}
	}
	return quiz.Text(strings.TrimSpace(text))
}
