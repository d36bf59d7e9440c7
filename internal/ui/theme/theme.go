// Package theme holds the terminal palette and styles shared by the CLI
// reports and the live session view.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizsolver/internal/quiz"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Warning   = lipgloss.Color("#EAB308") // Amber
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Unknown = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	Spinner = lipgloss.NewStyle().
		Foreground(Accent)
)

// VerdictMark renders a one-character verdict marker.
func VerdictMark(v quiz.Verdict) string {
	switch v {
	case quiz.VerdictCorrect:
		return Correct.Render("✓")
	case quiz.VerdictIncorrect:
		return Incorrect.Render("✗")
	}
	return Unknown.Render("?")
}

// OutcomeText renders a session outcome word.
func OutcomeText(success bool) string {
	if success {
		return Correct.Render("success")
	}
	return Incorrect.Render("failed")
}
