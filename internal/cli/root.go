// Package cli implements the Questline command-line interface using
// Cobra. Subcommands operate on the local store directly; serve exposes
// the same engine over HTTP.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "questline",
	Short: "Questline — gamified learning progression engine",
	Long: `Questline tracks a learner's progress through a curriculum:
XP and levels, daily streaks, boss quests, badges, quizzes, and a
spaced-repetition review queue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// learnerFlag selects which learner CLI commands act on. The default
// matches the identity unauthenticated API requests resolve to.
var learnerFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&learnerFlag, "learner", "local", "External learner id to act as")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
