package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/app/srs"
)

func init() {
	reviewCmd.AddCommand(reviewStatsCmd)
	rootCmd.AddCommand(reviewCmd)
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show today's due review questions",
	RunE:  runReview,
}

var reviewStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review queue totals",
	RunE:  runReviewStats,
}

func runReview(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	scheduler, err := srs.NewScheduler(db, srs.DefaultIntervals)
	if err != nil {
		return err
	}
	learner, err := currentLearner(progression.NewService(db))
	if err != nil {
		return err
	}

	batch, err := scheduler.DailyReview(learner.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(batch.Items) == 0 {
		fmt.Println("Nothing due. Come back tomorrow.")
		return nil
	}

	fmt.Printf("%d due (showing %d), finish for %d bonus XP\n\n",
		batch.DueCount, len(batch.Items), batch.BonusXP)
	for i, item := range batch.Items {
		fmt.Printf("%2d. [%s] %s\n", i+1, item.Question.Type, item.Question.Text)
	}
	return nil
}

func runReviewStats(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	scheduler, err := srs.NewScheduler(db, srs.DefaultIntervals)
	if err != nil {
		return err
	}
	learner, err := currentLearner(progression.NewService(db))
	if err != nil {
		return err
	}

	stats, err := scheduler.GetStats(learner.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("Review queue: %d total, %d mastered, %d due now\n",
		stats.Total, stats.Mastered, stats.DueNow)
	return nil
}
