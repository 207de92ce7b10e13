package quiz

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/app/srs"
	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

func testScorer(t *testing.T) (*Scorer, *progression.Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	scheduler, err := srs.NewScheduler(db, srs.DefaultIntervals)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return NewScorer(db, scheduler), progression.NewService(db), db
}

func TestGrade(t *testing.T) {
	mcq := domain.Question{ID: "q1", Type: domain.QuestionMCQ, CorrectIndex: 2}
	correction := domain.Question{ID: "q2", Type: domain.QuestionCodeCorrection, CorrectIndex: 1}
	coding := domain.Question{ID: "q3", Type: domain.QuestionCoding}

	tests := []struct {
		name     string
		question domain.Question
		answer   domain.Answer
		want     bool
	}{
		{"mcq right", mcq, domain.Answer{Kind: domain.AnswerMultipleChoice, SelectedIndex: 2}, true},
		{"mcq wrong", mcq, domain.Answer{Kind: domain.AnswerMultipleChoice, SelectedIndex: 0}, false},
		{"correction right", correction, domain.Answer{Kind: domain.AnswerCodeCorrection, SelectedIndex: 1}, true},
		{"coding pass", coding, domain.Answer{Kind: domain.AnswerCodingExercise, AllTestsPassed: true}, true},
		{"coding fail", coding, domain.Answer{Kind: domain.AnswerCodingExercise, AllTestsPassed: false}, false},
		// Kind/type mismatches never error, they just score zero.
		{"kind mismatch", mcq, domain.Answer{Kind: domain.AnswerCodingExercise, AllTestsPassed: true}, false},
		{"mismatch with matching index", coding, domain.Answer{Kind: domain.AnswerMultipleChoice, SelectedIndex: 0}, false},
		{"unknown kind", mcq, domain.Answer{Kind: "telepathy", SelectedIndex: 2}, false},
		{"zero answer", mcq, domain.Answer{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Grade(tt.question, tt.answer); got != tt.want {
				t.Errorf("Grade() = %v, want %v", got, tt.want)
			}
		})
	}
}

// seedQuiz creates a quiz with n MCQ questions (correct index always 0),
// optionally linked to a task.
func seedQuiz(t *testing.T, db *sqlite.DB, quizID, linkedTaskID string, n int) []string {
	t.Helper()
	if linkedTaskID != "" {
		if err := db.InsertCourse(domain.Course{ID: "c1", Title: "Go", IsActive: true}); err != nil {
			t.Fatal(err)
		}
		if err := db.InsertWeek(domain.Week{ID: "w1", CourseID: "c1", Title: "Week 1", WeekNumber: 1}); err != nil {
			t.Fatal(err)
		}
		err := db.InsertTask(domain.Task{
			ID: linkedTaskID, WeekID: "w1", Title: "Quiz task",
			TaskType: "quiz", Difficulty: "normal", XPReward: 100,
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := db.InsertQuiz(domain.Quiz{ID: quizID, WeekID: "w1", Title: "Quiz", LinkedTaskID: linkedTaskID}); err != nil {
			t.Fatal(err)
		}
	} else {
		if err := db.InsertQuiz(domain.Quiz{ID: quizID, Title: "Quiz"}); err != nil {
			t.Fatal(err)
		}
	}

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("%s-q%02d", quizID, i)
		err := db.InsertQuestion(domain.Question{
			ID: ids[i], QuizID: quizID, Type: domain.QuestionMCQ,
			Text: "?", Options: []string{"right", "wrong"}, CorrectIndex: 0,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return ids
}

func answers(ids []string, correct int) []domain.Answer {
	out := make([]domain.Answer, len(ids))
	for i, id := range ids {
		selected := 1 // wrong
		if i < correct {
			selected = 0
		}
		out[i] = domain.Answer{QuestionID: id, Kind: domain.AnswerMultipleChoice, SelectedIndex: selected}
	}
	return out
}

func TestSubmitQuiz_PassCompletesLinkedTask(t *testing.T) {
	sc, prog, db := testScorer(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	ids := seedQuiz(t, db, "quiz1", "task1", 10)

	now := time.UnixMilli(0).UTC()
	// 8 of 10 is exactly the passing threshold.
	res, err := sc.SubmitQuiz(l.ID, "quiz1", answers(ids, 8), now)
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if res.Score != 8 || res.TotalQuestions != 10 {
		t.Errorf("score = %d/%d, want 8/10", res.Score, res.TotalQuestions)
	}
	if !res.Passed {
		t.Fatal("8/10 did not pass")
	}
	if res.TaskCompletion == nil || res.TaskCompletion.AlreadyCompleted {
		t.Fatalf("TaskCompletion = %+v, want a fresh completion", res.TaskCompletion)
	}
	if res.XPGained != 100 {
		t.Errorf("XPGained = %d, want the task's full 100", res.XPGained)
	}
	// The two misses are queued for review.
	if len(res.AddedToReview) != 2 {
		t.Errorf("AddedToReview = %v, want the 2 missed questions", res.AddedToReview)
	}

	learner, _ := db.GetLearner(l.ID)
	if learner.XP != 100 {
		t.Errorf("learner XP = %d, want 100", learner.XP)
	}
}

func TestSubmitQuiz_RepeatPassRewardsOnce(t *testing.T) {
	sc, prog, db := testScorer(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	ids := seedQuiz(t, db, "quiz1", "task1", 10)

	now := time.UnixMilli(0).UTC()
	if _, err := sc.SubmitQuiz(l.ID, "quiz1", answers(ids, 10), now); err != nil {
		t.Fatal(err)
	}
	res, err := sc.SubmitQuiz(l.ID, "quiz1", answers(ids, 10), now)
	if err != nil {
		t.Fatal(err)
	}
	if res.TaskCompletion == nil || !res.TaskCompletion.AlreadyCompleted {
		t.Errorf("repeat pass TaskCompletion = %+v, want AlreadyCompleted", res.TaskCompletion)
	}

	learner, _ := db.GetLearner(l.ID)
	if learner.XP != 100 {
		t.Errorf("learner XP = %d after two passes, want rewarded once", learner.XP)
	}

	results, err := db.ListQuizResults(l.ID)
	if err != nil || len(results) != 2 {
		t.Errorf("quiz results = %d (%v), want both attempts recorded", len(results), err)
	}
}

func TestSubmitQuiz_FailBelowThreshold(t *testing.T) {
	sc, prog, db := testScorer(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	ids := seedQuiz(t, db, "quiz1", "task1", 10)

	now := time.UnixMilli(0).UTC()
	res, err := sc.SubmitQuiz(l.ID, "quiz1", answers(ids, 7), now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed || res.TaskCompletion != nil {
		t.Errorf("7/10 passed = %v completion = %+v, want a fail", res.Passed, res.TaskCompletion)
	}
	if len(res.AddedToReview) != 3 {
		t.Errorf("AddedToReview = %v, want 3 missed questions", res.AddedToReview)
	}

	// Enqueued misses start at the bottom of the interval ladder.
	wantDue := now.Add(time.Duration(srs.DefaultIntervals[0]) * 24 * time.Hour)
	item, ok, err := db.GetReviewByQuestion(l.ID, res.AddedToReview[0])
	if err != nil || !ok {
		t.Fatalf("review for missed question: ok=%v err=%v", ok, err)
	}
	if item.IntervalIndex != 0 || !item.DueAt.Equal(wantDue) {
		t.Errorf("enqueued item = %+v, want index 0 due %v", item, wantDue)
	}

	learner, _ := db.GetLearner(l.ID)
	if learner.XP != 0 {
		t.Errorf("learner XP = %d after failing a linked quiz, want 0", learner.XP)
	}
	if !learner.LastActivityAt.Equal(now) {
		t.Errorf("LastActivityAt = %v, want stamped even on a fail", learner.LastActivityAt)
	}
}

func TestSubmitQuiz_StandaloneAwardsPerCorrect(t *testing.T) {
	sc, prog, db := testScorer(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	ids := seedQuiz(t, db, "quiz1", "", 4)

	now := time.UnixMilli(0).UTC()
	res, err := sc.SubmitQuiz(l.ID, "quiz1", answers(ids, 3), now)
	if err != nil {
		t.Fatal(err)
	}
	if res.XPGained != 30 {
		t.Errorf("XPGained = %d, want 3 * 10", res.XPGained)
	}
	learner, _ := db.GetLearner(l.ID)
	if learner.XP != 30 {
		t.Errorf("learner XP = %d, want 30", learner.XP)
	}
	if !learner.LastActivityAt.Equal(now) {
		t.Errorf("LastActivityAt = %v, want stamped %v", learner.LastActivityAt, now)
	}
}

func TestSubmitQuiz_UnansweredCountsIncorrect(t *testing.T) {
	sc, prog, db := testScorer(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	ids := seedQuiz(t, db, "quiz1", "", 3)

	// Answer only the first question.
	res, err := sc.SubmitQuiz(l.ID, "quiz1", answers(ids[:1], 1), time.UnixMilli(0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 1 || res.TotalQuestions != 3 {
		t.Errorf("score = %d/%d, want 1/3", res.Score, res.TotalQuestions)
	}
	if len(res.AddedToReview) != 2 {
		t.Errorf("AddedToReview = %v, want the 2 unanswered questions", res.AddedToReview)
	}
}

func TestSubmitQuiz_UnknownQuiz(t *testing.T) {
	sc, prog, _ := testScorer(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	_, err := sc.SubmitQuiz(l.ID, "missing", nil, time.Now().UTC())
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Errorf("err = %v, want ErrQuizNotFound", err)
	}
}

func TestQuestions_StripsAnswerKey(t *testing.T) {
	sc, _, db := testScorer(t)
	if err := db.InsertQuiz(domain.Quiz{ID: "quiz1", Title: "Quiz"}); err != nil {
		t.Fatal(err)
	}
	err := db.InsertQuestion(domain.Question{
		ID: "q1", QuizID: "quiz1", Type: domain.QuestionMCQ,
		Text: "?", Options: []string{"a", "b", "c"}, CorrectIndex: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, questions, err := sc.Questions("quiz1")
	if err != nil {
		t.Fatal(err)
	}
	if len(questions) != 1 || questions[0].CorrectIndex != 0 {
		t.Errorf("questions = %+v, want answer key zeroed", questions)
	}
}
