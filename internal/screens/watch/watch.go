// Package watch is the live terminal view of a running quiz session.
package watch

import (
	"context"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizsolver/internal/quiz"
	"github.com/abhisek/quizsolver/internal/session"
	"github.com/abhisek/quizsolver/internal/ui/theme"
)

// Model tracks one session as its events arrive.
type Model struct {
	startURL string
	budget   time.Duration
	started  time.Time
	now      time.Time

	current string
	index   int
	steps   []quiz.StepResult
	summary *quiz.SessionSummary

	spin   spinner.Model
	cancel context.CancelFunc
	width  int
}

// New creates a Model for a session starting at startURL. cancel, when
// set, is called if the user quits before the session ends.
func New(startURL string, budget time.Duration, cancel context.CancelFunc) Model {
	now := time.Now()
	return Model{
		startURL: startURL,
		budget:   budget,
		started:  now,
		now:      now,
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Spinner)),
		cancel:   cancel,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case timerTickMsg:
		m.now = time.Time(msg)
		if m.summary != nil {
			return m, nil
		}
		return m, tickCmd()

	case spinner.TickMsg:
		if m.summary != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionEventMsg:
		return m.handleEvent(session.Event(msg))
	}
	return m, nil
}

func (m Model) handleEvent(ev session.Event) (tea.Model, tea.Cmd) {
	if !ev.Time.IsZero() {
		m.now = ev.Time
	}
	switch ev.Kind {
	case session.EventStepStarted:
		m.current = ev.URL
		m.index = ev.Index
	case session.EventStepFinished:
		m.current = ""
		if ev.Step != nil {
			m.steps = append(m.steps, *ev.Step)
		}
	case session.EventSessionFinished:
		m.current = ""
		m.summary = ev.Summary
		return m, tea.Quit
	}
	return m, nil
}

// Summary returns the final summary once the session has finished.
func (m Model) Summary() (quiz.SessionSummary, bool) {
	if m.summary == nil {
		return quiz.SessionSummary{}, false
	}
	return *m.summary, true
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

// RunFunc runs a session, reporting progress to observe.
type RunFunc func(ctx context.Context, observe session.Observer) quiz.SessionSummary

// Run shows the live view while run executes, and returns its summary.
// Quitting the view cancels the session and waits for it to stop.
func Run(ctx context.Context, startURL string, budget time.Duration, run RunFunc) (quiz.SessionSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(startURL, budget, cancel))

	done := make(chan quiz.SessionSummary, 1)
	go func() {
		done <- run(ctx, func(ev session.Event) {
			p.Send(sessionEventMsg(ev))
		})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return quiz.SessionSummary{}, err
	}
	return <-done, nil
}
