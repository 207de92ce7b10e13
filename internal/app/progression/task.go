package progression

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/metrics"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// Boss damage scales off a fixed base by task difficulty.
const questDamageBase = 10

// CompletionResult reports what a task completion changed.
type CompletionResult struct {
	AlreadyCompleted bool     `json:"already_completed"`
	XPGained         int64    `json:"xp_gained"`
	GoldGained       int64    `json:"gold_gained"`
	LeveledUp        bool     `json:"leveled_up"`
	NewLevel         int      `json:"new_level"`
	NewStreak        int      `json:"new_streak"`
	QuestCompleted   bool     `json:"quest_completed"`
	BadgesAwarded    []string `json:"badges_awarded,omitempty"`
}

// CompleteTask runs the full completion flow as one transaction: record
// the completion, reward XP and gold, advance the streak, damage the
// active quest, and grant any milestone badges. Completing an
// already-completed task is an idempotent no-op reported via
// AlreadyCompleted, never an error.
func (p *Service) CompleteTask(learnerID, taskID string, now time.Time) (CompletionResult, error) {
	var res CompletionResult
	err := p.db.Transact(func(s *sqlite.Store) error {
		var err error
		res, err = CompleteTaskTx(s, learnerID, taskID, now)
		return err
	})
	if err == nil && !res.AlreadyCompleted {
		metrics.TasksCompleted.Inc()
		if res.LeveledUp {
			metrics.LevelUps.Inc()
		}
		if res.QuestCompleted {
			metrics.QuestsCompleted.Inc()
		}
	}
	return res, err
}

// CompleteTaskTx is the transaction body of CompleteTask, exposed so the
// quiz scorer can fold a linked-task completion into its own transaction.
func CompleteTaskTx(s *sqlite.Store, learnerID, taskID string, now time.Time) (CompletionResult, error) {
	learner, err := s.GetLearner(learnerID)
	if err != nil {
		return CompletionResult{}, err
	}
	task, err := s.GetTask(taskID)
	if err != nil {
		return CompletionResult{}, err
	}

	// Re-completion is rewarded exactly once.
	completion, exists, err := s.GetCompletion(learner.ID, task.ID)
	if err != nil {
		return CompletionResult{}, err
	}
	if exists && completion.Completed {
		return CompletionResult{
			AlreadyCompleted: true,
			NewLevel:         learner.Level,
			NewStreak:        learner.Streak,
		}, nil
	}

	if exists {
		if err := s.SetCompletionState(completion.ID, true, now); err != nil {
			return CompletionResult{}, err
		}
	} else {
		err := s.InsertCompletion(domain.TaskCompletion{
			ID:          uuid.NewString(),
			LearnerID:   learner.ID,
			TaskID:      task.ID,
			Completed:   true,
			CompletedAt: now,
		})
		if err != nil {
			return CompletionResult{}, err
		}
	}

	// Base reward, scaled by difficulty; gold trails XP at a tenth.
	xpGained := ScaledReward(task.XPReward, task.Difficulty)
	goldGained := xpGained / 10

	newStreak, lastActivity := NextStreak(learner.LastActivityAt, learner.Streak, now)

	res := CompletionResult{NewStreak: newStreak}

	// Boss damage against the single active quest, if any.
	questOutcome, err := applyQuestDamage(s, learner.ID, task.Difficulty, now)
	if err != nil {
		return CompletionResult{}, err
	}
	xpGained += questOutcome.BonusXP
	res.QuestCompleted = questOutcome.Completed
	if questOutcome.BadgeAwarded != "" {
		res.BadgesAwarded = append(res.BadgesAwarded, questOutcome.BadgeAwarded)
	}

	// Streak milestone badge.
	if badgeID, ok := StreakBadges[newStreak]; ok {
		grant, err := awardBadge(s, learner.ID, badgeID, now)
		if err != nil {
			return CompletionResult{}, err
		}
		if grant.Awarded {
			xpGained += grant.XPBonus
			goldGained += grant.GoldBonus
			res.BadgesAwarded = append(res.BadgesAwarded, badgeID)
		}
	}

	// Lifetime task-count achievement. The count already includes the
	// completion recorded above.
	completedCount, err := s.CountCompletedTasks(learner.ID)
	if err != nil {
		return CompletionResult{}, err
	}
	if achievementID, ok := TaskCountAchievements[completedCount]; ok {
		grant, err := awardAchievement(s, learner.ID, achievementID, now)
		if err != nil {
			return CompletionResult{}, err
		}
		if grant.Awarded {
			xpGained += grant.XPBonus
			goldGained += grant.GoldBonus
		}
	}

	oldLevel := learner.Level
	learner.XP += xpGained
	learner.Level = LevelFromXP(learner.XP)
	learner.Gold += goldGained
	learner.Streak = newStreak
	if newStreak > learner.BestStreak {
		learner.BestStreak = newStreak
	}
	learner.LastActivityAt = lastActivity
	if err := s.SaveLearner(learner); err != nil {
		return CompletionResult{}, fmt.Errorf("complete task: %w", err)
	}

	res.XPGained = xpGained
	res.GoldGained = goldGained
	res.NewLevel = learner.Level
	res.LeveledUp = learner.Level > oldLevel
	return res, nil
}

// UncompleteResult reports a reversed completion.
type UncompleteResult struct {
	Success      bool  `json:"success"`
	XPDeducted   int64 `json:"xp_deducted"`
	GoldDeducted int64 `json:"gold_deducted"`
	NewXP        int64 `json:"new_xp"`
	NewGold      int64 `json:"new_gold"`
	NewLevel     int   `json:"new_level"`
}

// UncompleteTask reverses a completion: the record flips back, and the
// same reward formula used at completion time is recomputed and deducted,
// clamping XP and gold at zero with the level re-derived.
//
// Known limitation, kept deliberately: quest damage, quest completion,
// and badge grants from the original completion are NOT reversed. Undoing
// them would resurrect finished boss encounters; until product says
// otherwise the reversal stays one-way.
func (p *Service) UncompleteTask(learnerID, taskID string) (UncompleteResult, error) {
	var res UncompleteResult
	err := p.db.Transact(func(s *sqlite.Store) error {
		learner, err := s.GetLearner(learnerID)
		if err != nil {
			return err
		}
		task, err := s.GetTask(taskID)
		if err != nil {
			return err
		}

		completion, exists, err := s.GetCompletion(learner.ID, task.ID)
		if err != nil {
			return err
		}
		if !exists || !completion.Completed {
			// Nothing to reverse — a successful no-op, not an error.
			res = UncompleteResult{Success: false, NewXP: learner.XP, NewGold: learner.Gold, NewLevel: learner.Level}
			return nil
		}

		if err := s.SetCompletionState(completion.ID, false, time.Time{}); err != nil {
			return err
		}

		xpDeducted := ScaledReward(task.XPReward, task.Difficulty)
		goldDeducted := xpDeducted / 10

		learner.XP -= xpDeducted
		if learner.XP < 0 {
			learner.XP = 0
		}
		learner.Gold -= goldDeducted
		if learner.Gold < 0 {
			learner.Gold = 0
		}
		learner.Level = LevelFromXP(learner.XP)
		if err := s.SaveLearner(learner); err != nil {
			return fmt.Errorf("uncomplete task: %w", err)
		}

		res = UncompleteResult{
			Success:      true,
			XPDeducted:   xpDeducted,
			GoldDeducted: goldDeducted,
			NewXP:        learner.XP,
			NewGold:      learner.Gold,
			NewLevel:     learner.Level,
		}
		return nil
	})
	if err == nil && res.Success {
		metrics.TasksUncompleted.Inc()
	}
	return res, err
}
