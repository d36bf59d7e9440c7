package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizsolver/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizsolver",
	Short: "Solve chained quiz pages with an LLM",
	Long: "quizsolver renders a quiz page, works out the answer (downloading and analysing\n" +
		"any linked data), submits it, and follows the chain until it ends or time runs out.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite journal file (overrides QUIZSOLVER_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZSOLVER_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the journal the command points at.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
