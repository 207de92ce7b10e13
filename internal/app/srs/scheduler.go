// Package srs schedules spaced-repetition reviews. Each incorrectly
// answered quiz question becomes a review item that climbs a fixed
// interval ladder on success and falls back to the start on failure,
// until it is mastered and leaves the rotation.
package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/metrics"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

const (
	// MasterySuccessCount is how many correct answers retire an item,
	// provided it has also reached the top of the interval ladder.
	MasterySuccessCount = 3

	// MaxDailyReviews caps one daily batch.
	MaxDailyReviews = 10

	// XPPerCorrect is the reward for one correct review.
	XPPerCorrect = 10

	// XPMasteryBonus is paid once, when an item is mastered.
	XPMasteryBonus = 100

	// Finishing a batch of dailyBonusThreshold or more due items pays a
	// flat dailyBonusXP; smaller batches preview XPPerCorrect per item.
	dailyBonusThreshold = 5
	dailyBonusXP        = 50
)

// DefaultIntervals is the review ladder, in days.
var DefaultIntervals = []int{1, 3, 7, 14}

// Scheduler owns the review queue.
type Scheduler struct {
	db        *sqlite.DB
	intervals []int
}

// NewScheduler builds a scheduler over the given interval ladder, which
// must be non-empty and strictly ascending. Pass DefaultIntervals unless
// a deployment tunes its own.
func NewScheduler(db *sqlite.DB, intervals []int) (*Scheduler, error) {
	if len(intervals) == 0 {
		return nil, errors.New("srs: intervals must not be empty")
	}
	for i, d := range intervals {
		if d <= 0 {
			return nil, errors.New("srs: intervals must be positive")
		}
		if i > 0 && d <= intervals[i-1] {
			return nil, errors.New("srs: intervals must be strictly ascending")
		}
	}
	return &Scheduler{db: db, intervals: intervals}, nil
}

func (sc *Scheduler) dueAfter(now time.Time, intervalIndex int) time.Time {
	return now.Add(time.Duration(sc.intervals[intervalIndex]) * 24 * time.Hour)
}

// ReviewOutcome reports one graded review.
type ReviewOutcome struct {
	Correct   bool      `json:"correct"`
	Mastered  bool      `json:"mastered"`
	XPGained  int64     `json:"xp_gained"`
	NextDueAt time.Time `json:"next_due_at"`
	NewLevel  int       `json:"new_level"`
	LeveledUp bool      `json:"leveled_up"`
}

// SubmitReview applies one answer to a review item. Correct answers climb
// the interval ladder and earn XP; incorrect answers reset the item to
// the bottom. Submitting against another learner's item fails with
// ErrAccessDenied.
func (sc *Scheduler) SubmitReview(learnerID, reviewID string, correct bool, now time.Time) (ReviewOutcome, error) {
	var outcome ReviewOutcome
	err := sc.db.Transact(func(s *sqlite.Store) error {
		item, err := s.GetReview(reviewID)
		if err != nil {
			return err
		}
		if item.LearnerID != learnerID {
			return domain.ErrAccessDenied
		}
		learner, err := s.GetLearner(learnerID)
		if err != nil {
			return err
		}

		outcome = ReviewOutcome{Correct: correct}
		top := len(sc.intervals) - 1
		if correct {
			if item.IntervalIndex < top {
				item.IntervalIndex++
			}
			item.SuccessCount++
			outcome.XPGained = XPPerCorrect
			if !item.Mastered && item.SuccessCount >= MasterySuccessCount && item.IntervalIndex == top {
				// Mastery pays the flat bonus instead of the per-answer award.
				item.Mastered = true
				outcome.Mastered = true
				outcome.XPGained = XPMasteryBonus
			}
		} else {
			item.IntervalIndex = 0
			item.SuccessCount = 0
		}
		item.DueAt = sc.dueAfter(now, item.IntervalIndex)
		item.LastReviewedAt = now
		if err := s.SaveReview(item); err != nil {
			return err
		}
		outcome.NextDueAt = item.DueAt

		oldLevel := learner.Level
		learner.XP += outcome.XPGained
		learner.Level = progression.LevelFromXP(learner.XP)
		if err := s.SaveLearner(learner); err != nil {
			return err
		}
		outcome.NewLevel = learner.Level
		outcome.LeveledUp = learner.Level > oldLevel
		return nil
	})
	if err == nil {
		if outcome.Correct {
			metrics.Reviews.WithLabelValues("correct").Inc()
		} else {
			metrics.Reviews.WithLabelValues("incorrect").Inc()
		}
		if outcome.Mastered {
			metrics.ReviewsMastered.Inc()
		}
	}
	return outcome, err
}

// DailyItem pairs a due review with its question for presentation.
type DailyItem struct {
	ReviewID string          `json:"review_id"`
	Question domain.Question `json:"question"`
}

// DailyBatch is the day's review session.
type DailyBatch struct {
	Items    []DailyItem `json:"items"`
	DueCount int         `json:"due_count"`
	BonusXP  int64       `json:"bonus_xp"`
}

// DailyReview assembles up to MaxDailyReviews due items, oldest first.
// Items whose question has been removed from the catalog are skipped.
func (sc *Scheduler) DailyReview(learnerID string, now time.Time) (DailyBatch, error) {
	var batch DailyBatch
	err := sc.db.Transact(func(s *sqlite.Store) error {
		if _, err := s.GetLearner(learnerID); err != nil {
			return err
		}
		due, err := s.DueReviews(learnerID, now, MaxDailyReviews)
		if err != nil {
			return err
		}
		dueCount, err := s.CountDueReviews(learnerID, now)
		if err != nil {
			return err
		}
		batch.DueCount = dueCount
		for _, item := range due {
			q, err := s.GetQuestion(item.QuestionID)
			if errors.Is(err, domain.ErrQuestionNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			batch.Items = append(batch.Items, DailyItem{ReviewID: item.ID, Question: q})
		}
		if dueCount >= dailyBonusThreshold {
			batch.BonusXP = dailyBonusXP
		} else {
			batch.BonusXP = int64(dueCount) * XPPerCorrect
		}
		return nil
	})
	return batch, err
}

// FirstDue returns the due time of a freshly enqueued item: now plus
// the bottom rung of the interval ladder.
func (sc *Scheduler) FirstDue(now time.Time) time.Time {
	return sc.dueAfter(now, 0)
}

// AddToReview enqueues a question for review, due after the first
// interval. If the learner already has an item for the question it
// resets to the bottom of the ladder instead of duplicating.
func (sc *Scheduler) AddToReview(learnerID, questionID string, now time.Time) error {
	return sc.db.Transact(func(s *sqlite.Store) error {
		if _, err := s.GetLearner(learnerID); err != nil {
			return err
		}
		return EnqueueTx(s, learnerID, questionID, sc.FirstDue(now))
	})
}

// EnqueueTx is the transaction body of AddToReview, exposed so the quiz
// scorer can enqueue missed questions inside its own transaction. Both
// the reset and the fresh-insert branch land at the given due time.
func EnqueueTx(s *sqlite.Store, learnerID, questionID string, dueAt time.Time) error {
	if _, err := s.GetQuestion(questionID); err != nil {
		return err
	}
	item, exists, err := s.GetReviewByQuestion(learnerID, questionID)
	if err != nil {
		return err
	}
	if exists {
		item.IntervalIndex = 0
		item.SuccessCount = 0
		item.Mastered = false
		item.DueAt = dueAt
		return s.SaveReview(item)
	}
	return s.InsertReview(domain.ReviewItem{
		ID:         uuid.NewString(),
		LearnerID:  learnerID,
		QuestionID: questionID,
		DueAt:      dueAt,
	})
}

// Stats summarizes a learner's review queue.
type Stats struct {
	Total    int `json:"total"`
	Mastered int `json:"mastered"`
	DueNow   int `json:"due_now"`
}

// GetStats reports queue totals for a learner.
func (sc *Scheduler) GetStats(learnerID string, now time.Time) (Stats, error) {
	var stats Stats
	err := sc.db.Transact(func(s *sqlite.Store) error {
		if _, err := s.GetLearner(learnerID); err != nil {
			return err
		}
		total, mastered, err := s.ReviewCounts(learnerID)
		if err != nil {
			return err
		}
		dueNow, err := s.CountDueReviews(learnerID, now)
		if err != nil {
			return err
		}
		stats = Stats{Total: total, Mastered: mastered, DueNow: dueNow}
		return nil
	})
	return stats, err
}
