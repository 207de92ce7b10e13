// Package quiz grades quiz submissions. Grading is server-side and
// per-question; incorrect answers feed the spaced-repetition queue, and
// passing a quiz linked to a catalog task completes that task with the
// full completion flow.
package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/app/srs"
	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/metrics"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// PassingScore is the correct-answer ratio that passes a quiz. The
// comparison is inclusive, so 8 of 10 passes.
const PassingScore = 0.8

// xpPerCorrect is the direct reward for standalone quizzes; linked
// quizzes reward through their task instead.
const xpPerCorrect = 10

// Scorer grades submissions against the question catalog. The scheduler
// supplies the due time for enqueued misses, so quiz enqueues land on
// the same interval ladder as direct ones.
type Scorer struct {
	db      *sqlite.DB
	reviews *srs.Scheduler
}

func NewScorer(db *sqlite.DB, reviews *srs.Scheduler) *Scorer {
	return &Scorer{db: db, reviews: reviews}
}

// Grade checks one answer against its question. The answer kind must
// match the question type; any mismatch or unknown kind is incorrect,
// never an error.
func Grade(q domain.Question, a domain.Answer) bool {
	switch a.Kind {
	case domain.AnswerMultipleChoice:
		return q.Type == domain.QuestionMCQ && a.SelectedIndex == q.CorrectIndex
	case domain.AnswerCodeCorrection:
		return q.Type == domain.QuestionCodeCorrection && a.SelectedIndex == q.CorrectIndex
	case domain.AnswerCodingExercise:
		return q.Type == domain.QuestionCoding && a.AllTestsPassed
	default:
		return false
	}
}

// SubmitResult reports one graded quiz attempt.
type SubmitResult struct {
	Score          int      `json:"score"`
	TotalQuestions int      `json:"total_questions"`
	Passed         bool     `json:"passed"`
	XPGained       int64    `json:"xp_gained"`
	AddedToReview  []string `json:"added_to_review,omitempty"`

	// TaskCompletion is set when the quiz is linked to a task and the
	// attempt passed.
	TaskCompletion *progression.CompletionResult `json:"task_completion,omitempty"`
}

// SubmitQuiz grades a full attempt in one transaction. Every catalog
// question of the quiz counts toward the total; unanswered questions are
// incorrect. Incorrect questions are enqueued for review. Reaching
// PassingScore on a linked quiz runs the linked task's completion flow,
// which is where the reward comes from; a repeat pass is absorbed by the
// completion flow's idempotence.
func (sc *Scorer) SubmitQuiz(learnerID, quizID string, answers []domain.Answer, now time.Time) (SubmitResult, error) {
	var res SubmitResult
	err := sc.db.Transact(func(s *sqlite.Store) error {
		learner, err := s.GetLearner(learnerID)
		if err != nil {
			return err
		}
		quiz, err := s.GetQuiz(quizID)
		if err != nil {
			return err
		}
		questions, err := s.ListQuestionsByQuiz(quiz.ID)
		if err != nil {
			return err
		}

		byQuestion := make(map[string]domain.Answer, len(answers))
		for _, a := range answers {
			byQuestion[a.QuestionID] = a
		}

		res = SubmitResult{TotalQuestions: len(questions)}
		for _, q := range questions {
			if Grade(q, byQuestion[q.ID]) {
				res.Score++
				continue
			}
			if err := srs.EnqueueTx(s, learner.ID, q.ID, sc.reviews.FirstDue(now)); err != nil {
				return err
			}
			res.AddedToReview = append(res.AddedToReview, q.ID)
		}

		err = s.InsertQuizResult(domain.QuizResult{
			ID:             uuid.NewString(),
			LearnerID:      learner.ID,
			QuizID:         quiz.ID,
			Score:          res.Score,
			TotalQuestions: res.TotalQuestions,
			CompletedAt:    now,
		})
		if err != nil {
			return err
		}

		res.Passed = res.TotalQuestions > 0 &&
			float64(res.Score)/float64(res.TotalQuestions) >= PassingScore

		if res.Passed && quiz.LinkedTaskID != "" {
			completion, err := progression.CompleteTaskTx(s, learner.ID, quiz.LinkedTaskID, now)
			if err != nil {
				return err
			}
			res.TaskCompletion = &completion
			res.XPGained = completion.XPGained
			return nil
		}

		// Standalone quizzes pay per correct answer. Every attempt that
		// does not run the completion flow still counts as activity for
		// the day.
		if quiz.LinkedTaskID == "" {
			res.XPGained = int64(res.Score) * xpPerCorrect
			learner.XP += res.XPGained
			learner.Level = progression.LevelFromXP(learner.XP)
		}
		learner.LastActivityAt = now
		return s.SaveLearner(learner)
	})
	if err == nil {
		metrics.Quizzes.Inc()
	}
	return res, err
}

// Questions lists a quiz's questions with the answer keys stripped, for
// presentation to the learner.
func (sc *Scorer) Questions(quizID string) (domain.Quiz, []domain.Question, error) {
	var (
		quiz      domain.Quiz
		questions []domain.Question
	)
	err := sc.db.Transact(func(s *sqlite.Store) error {
		var err error
		quiz, err = s.GetQuiz(quizID)
		if err != nil {
			return err
		}
		questions, err = s.ListQuestionsByQuiz(quizID)
		return err
	})
	if err != nil {
		return domain.Quiz{}, nil, err
	}
	for i := range questions {
		questions[i].CorrectIndex = 0
	}
	return quiz, questions, nil
}
