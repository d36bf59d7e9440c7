package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizsolver/internal/quiz"
	"github.com/abhisek/quizsolver/internal/screens/watch"
	"github.com/abhisek/quizsolver/internal/session"
	"github.com/abhisek/quizsolver/internal/ui/theme"
)

var solveCmd = &cobra.Command{
	Use:     "solve <url>",
	Short:   "Solve a quiz chain from the terminal",
	Args:    cobra.ExactArgs(1),
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		startURL := args[0]
		live, _ := cmd.Flags().GetBool("watch")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var sum quiz.SessionSummary
		if live {
			sum, err = watch.Run(ctx, startURL, cfg.MaxDuration, func(ctx context.Context, observe session.Observer) quiz.SessionSummary {
				return a.orchestrator.RunObserved(ctx, startURL, cfg.Identity(), observe)
			})
			if err != nil {
				return fmt.Errorf("live view: %w", err)
			}
		} else {
			sum = a.orchestrator.Run(ctx, startURL, cfg.Identity())
		}

		printSummary(sum)
		if !sum.Success {
			return fmt.Errorf("session failed: %s", sum.Error)
		}
		return nil
	},
}

func printSummary(sum quiz.SessionSummary) {
	fmt.Println()
	fmt.Printf("%s %s\n", theme.Title.Render("Session"), theme.Label.Render(sum.SessionID))
	fmt.Println(strings.Repeat("─", 72))
	for i, st := range sum.History {
		fmt.Printf("%s %2d  %-12s  %s\n", theme.VerdictMark(st.Correct), i+1, st.Kind, st.URL)
		fmt.Printf("        answer=%s  attempts=%d  %s\n", st.Answer, st.AttemptCount, st.Elapsed.Round(time.Millisecond))
		if st.ErrorDetail != "" {
			fmt.Printf("        %s\n", theme.Incorrect.Render(st.ErrorDetail))
		} else if st.Reason != "" {
			fmt.Printf("        %s\n", theme.Hint.Render(st.Reason))
		}
	}
	fmt.Println(strings.Repeat("─", 72))
	fmt.Printf("%s  %d/%d correct in %.1fs\n",
		theme.OutcomeText(sum.Success), sum.CorrectCount(), len(sum.History), sum.ElapsedSeconds)
}

func init() {
	solveCmd.Flags().BoolP("watch", "w", false, "Show live progress while solving")
}
