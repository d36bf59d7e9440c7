package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizsolver/internal/quiz"
	"github.com/abhisek/quizsolver/internal/store"
	"github.com/abhisek/quizsolver/internal/ui/theme"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded quiz sessions",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		runs, err := s.EventRepo().ListSessions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No sessions recorded.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-8s  %-7s  %-8s  %s\n",
			"Session", "Started", "Outcome", "Steps", "Elapsed", "URL")
		fmt.Println(strings.Repeat("─", 110))
		for _, r := range runs {
			fmt.Printf("%-36s  %-19s  %-8s  %-7s  %-8s  %s\n",
				r.SessionID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				outcome(r),
				fmt.Sprintf("%d/%d", r.CorrectSteps, r.Steps),
				(time.Duration(r.ElapsedMs) * time.Millisecond).Round(100*time.Millisecond),
				truncate(r.StartURL, 60),
			)
		}
		return nil
	},
}

func outcome(r store.SessionRecord) string {
	switch {
	case !r.Ended:
		return "running"
	case r.Success:
		return "ok"
	}
	return "failed"
}

var runsViewCmd = &cobra.Command{
	Use:   "view <session-id>",
	Short: "Show every step of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		repo := s.EventRepo()
		steps, err := repo.StepsForSession(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("query steps: %w", err)
		}
		runs, err := repo.ListSessions(cmd.Context(), store.QueryOpts{SessionID: args[0]})
		if err != nil {
			return fmt.Errorf("query session: %w", err)
		}
		if len(runs) == 0 && len(steps) == 0 {
			return fmt.Errorf("session %s not found", args[0])
		}

		if len(runs) > 0 {
			r := runs[0]
			fmt.Printf("Session:   %s\n", r.SessionID)
			fmt.Printf("Started:   %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("URL:       %s\n", r.StartURL)
			fmt.Printf("Email:     %s\n", r.Email)
			fmt.Printf("Outcome:   %s (%d/%d correct)\n", outcome(r), r.CorrectSteps, r.Steps)
			if r.Error != "" {
				fmt.Printf("Error:     %s\n", r.Error)
			}
			fmt.Println()
		}

		sep := strings.Repeat("─", 60)
		for _, st := range steps {
			fmt.Println(sep)
			fmt.Printf("%s Step %d  %s\n", theme.VerdictMark(quiz.Verdict(st.Verdict)), st.StepIndex+1, st.URL)
			fmt.Printf("  Kind:      %s\n", st.Kind)
			fmt.Printf("  Answer:    %s\n", st.Answer)
			fmt.Printf("  Attempts:  %d\n", st.Attempts)
			fmt.Printf("  Elapsed:   %dms\n", st.ElapsedMs)
			if st.NextURL != "" {
				fmt.Printf("  Next:      %s\n", st.NextURL)
			}
			if st.Reason != "" {
				fmt.Printf("  Reason:    %s\n", st.Reason)
			}
			if st.ErrorDetail != "" {
				fmt.Printf("  Error:     %s\n", st.ErrorDetail)
			}
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsViewCmd)
}
