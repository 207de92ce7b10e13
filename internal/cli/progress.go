package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/questline-app/questline/internal/app/progression"
)

func init() {
	rootCmd.AddCommand(progressCmd)
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the learner's state and curriculum progress",
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	prog := progression.NewService(db)
	learner, err := currentLearner(prog)
	if err != nil {
		return err
	}

	state, err := prog.GetState(learner.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	summary, err := prog.GetProgress(learner.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s  (level %d)\n", state.Username, state.Level)
	fmt.Printf("  XP:      %d / %d to next level\n", state.XP, state.XPForNextLevel)
	fmt.Printf("  Gold:    %d\n", state.Gold)
	fmt.Printf("  Hearts:  %d   Focus: %d\n", state.Hearts, state.FocusPoints)
	fmt.Printf("  Streak:  %d (best %d, freezes %d)\n", state.Streak, state.BestStreak, state.StreakFreezeCount)
	if state.ActiveQuest != nil {
		fmt.Printf("  Quest:   %s (%d/%d HP remaining)\n",
			state.ActiveQuest.Name, state.ActiveQuest.CurrentHP, state.ActiveQuest.BossHP)
	}
	fmt.Printf("  Tasks:   %d / %d completed (%.0f%%), %d badges\n",
		summary.CompletedTasks, summary.TotalTasks, summary.Percent, summary.BadgeCount)
	return nil
}
