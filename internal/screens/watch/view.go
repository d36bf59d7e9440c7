package watch

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizsolver/internal/quiz"
	"github.com/abhisek/quizsolver/internal/ui/components"
	"github.com/abhisek/quizsolver/internal/ui/layout"
	"github.com/abhisek/quizsolver/internal/ui/theme"
)

func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	var b strings.Builder

	status := fmt.Sprintf("%d solved", len(m.steps))
	b.WriteString(layout.RenderHeader(m.startURL, status, m.width))
	b.WriteString("\n")

	for i, st := range m.steps {
		b.WriteString(renderStep(i, st))
		b.WriteString("\n")
	}

	if m.current != "" {
		fmt.Fprintf(&b, " %s %s %s\n",
			m.spin.View(), theme.Label.Render(fmt.Sprintf("#%d", m.index+1)), theme.Body.Render(m.current))
	}

	b.WriteString("\n")
	b.WriteString(m.budgetBar())
	b.WriteString("\n")

	if m.summary != nil {
		fmt.Fprintf(&b, "\n %s  %d/%d correct in %.1fs\n",
			theme.OutcomeText(m.summary.Success), m.summary.CorrectCount(), len(m.summary.History),
			m.summary.ElapsedSeconds)
		if m.summary.Error != "" {
			b.WriteString(" " + theme.Incorrect.Render(m.summary.Error) + "\n")
		}
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(layout.RenderFooter([]layout.KeyHint{{Key: "q", Description: "Stop"}}))
	return b.String()
}

func renderStep(i int, st quiz.StepResult) string {
	line := fmt.Sprintf(" %s %s %s %s",
		theme.VerdictMark(st.Correct),
		theme.Label.Render(fmt.Sprintf("#%d", i+1)),
		theme.Body.Render(st.URL),
		theme.Label.Render(fmt.Sprintf("[%s] answer=%s attempts=%d", st.Kind, st.Answer, st.AttemptCount)),
	)
	switch {
	case st.ErrorDetail != "":
		line += "\n     " + theme.Incorrect.Render(st.ErrorDetail)
	case st.Reason != "":
		line += "\n     " + theme.Hint.Render(st.Reason)
	}
	return line
}

func (m Model) budgetBar() string {
	elapsed := m.now.Sub(m.started)
	if m.summary != nil {
		elapsed = time.Duration(m.summary.ElapsedSeconds * float64(time.Second))
	}
	remaining := max(m.budget-elapsed, 0)

	bar := components.NewProgressBar("Time", 0, m.width-2)
	if m.budget > 0 {
		bar.Percent = float64(elapsed) / float64(m.budget)
	}
	bar.Suffix = fmt.Sprintf("%d:%02d left", int(remaining.Minutes()), int(remaining.Seconds())%60)
	return " " + bar.View()
}
