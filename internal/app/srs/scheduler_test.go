package srs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

func testScheduler(t *testing.T) (*Scheduler, *progression.Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sc, err := NewScheduler(db, DefaultIntervals)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sc, progression.NewService(db), db
}

func seedQuestion(t *testing.T, db *sqlite.DB, id string) {
	t.Helper()
	err := db.InsertQuestion(domain.Question{
		ID: id, QuizID: "quiz1", Type: domain.QuestionMCQ,
		Text: "?", Options: []string{"a", "b"}, CorrectIndex: 0,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNewScheduler_ValidatesIntervals(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for _, bad := range [][]int{nil, {}, {3, 1}, {1, 1}, {0, 3}, {-1}} {
		if _, err := NewScheduler(db, bad); err == nil {
			t.Errorf("NewScheduler(%v) accepted invalid intervals", bad)
		}
	}
	if _, err := NewScheduler(db, []int{2, 5, 9}); err != nil {
		t.Errorf("NewScheduler rejected valid intervals: %v", err)
	}
}

func TestSubmitReview_CorrectAdvancesLadder(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	seedQuestion(t, db, "q1")

	now := time.UnixMilli(0).UTC()
	if err := sc.AddToReview(l.ID, "q1", now); err != nil {
		t.Fatal(err)
	}
	item, _, err := db.GetReviewByQuestion(l.ID, "q1")
	if err != nil {
		t.Fatal(err)
	}

	outcome, err := sc.SubmitReview(l.ID, item.ID, true, now)
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if outcome.XPGained != XPPerCorrect {
		t.Errorf("XPGained = %d, want %d", outcome.XPGained, XPPerCorrect)
	}
	// One success climbs to the 3-day rung.
	wantDue := now.Add(3 * 24 * time.Hour)
	if !outcome.NextDueAt.Equal(wantDue) {
		t.Errorf("NextDueAt = %v, want %v", outcome.NextDueAt, wantDue)
	}

	got, _, _ := db.GetReviewByQuestion(l.ID, "q1")
	if got.IntervalIndex != 1 || got.SuccessCount != 1 || got.Mastered {
		t.Errorf("item = %+v, want index 1, 1 success, not mastered", got)
	}
}

func TestSubmitReview_IncorrectResets(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	seedQuestion(t, db, "q1")

	now := time.UnixMilli(0).UTC()
	sc.AddToReview(l.ID, "q1", now)
	item, _, _ := db.GetReviewByQuestion(l.ID, "q1")

	// Climb twice, then fail.
	sc.SubmitReview(l.ID, item.ID, true, now)
	sc.SubmitReview(l.ID, item.ID, true, now)
	outcome, err := sc.SubmitReview(l.ID, item.ID, false, now)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.XPGained != 0 {
		t.Errorf("incorrect answer gained %d XP, want 0", outcome.XPGained)
	}
	wantDue := now.Add(1 * 24 * time.Hour)
	if !outcome.NextDueAt.Equal(wantDue) {
		t.Errorf("NextDueAt = %v, want back to the 1-day rung (%v)", outcome.NextDueAt, wantDue)
	}

	got, _, _ := db.GetReviewByQuestion(l.ID, "q1")
	if got.IntervalIndex != 0 || got.SuccessCount != 0 {
		t.Errorf("item = %+v, want full reset", got)
	}
}

func TestSubmitReview_Mastery(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	seedQuestion(t, db, "q1")

	now := time.UnixMilli(0).UTC()
	sc.AddToReview(l.ID, "q1", now)
	item, _, _ := db.GetReviewByQuestion(l.ID, "q1")

	// Three successes put the item at the top rung with the mastery
	// count met.
	var outcome ReviewOutcome
	var err error
	for i := 0; i < MasterySuccessCount; i++ {
		outcome, err = sc.SubmitReview(l.ID, item.ID, true, now)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !outcome.Mastered {
		t.Fatal("not mastered after reaching the top rung with 3 successes")
	}
	if outcome.XPGained != XPMasteryBonus {
		t.Errorf("mastery XPGained = %d, want flat %d", outcome.XPGained, XPMasteryBonus)
	}
	learner, _ := db.GetLearner(l.ID)
	if learner.XP != 2*XPPerCorrect+XPMasteryBonus {
		t.Errorf("learner XP = %d, want %d", learner.XP, 2*XPPerCorrect+XPMasteryBonus)
	}

	// Mastered items leave the due rotation.
	due, err := db.DueReviews(l.ID, now.Add(365*24*time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("mastered item still due: %+v", due)
	}
}

func TestSubmitReview_MasteryNeedsTopRung(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	seedQuestion(t, db, "q1")

	now := time.UnixMilli(0).UTC()
	sc.AddToReview(l.ID, "q1", now)
	item, _, _ := db.GetReviewByQuestion(l.ID, "q1")

	// Two successes, a failure, then three more successes: the count
	// restarts, so mastery needs the full three at the top.
	sc.SubmitReview(l.ID, item.ID, true, now)
	sc.SubmitReview(l.ID, item.ID, true, now)
	sc.SubmitReview(l.ID, item.ID, false, now)
	sc.SubmitReview(l.ID, item.ID, true, now)
	sc.SubmitReview(l.ID, item.ID, true, now)
	outcome, err := sc.SubmitReview(l.ID, item.ID, true, now)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Mastered {
		t.Error("three fresh successes after a reset should master")
	}
}

func TestSubmitReview_Ownership(t *testing.T) {
	sc, prog, db := testScheduler(t)
	owner, _ := prog.EnsureLearner("ext-owner", "owner")
	other, _ := prog.EnsureLearner("ext-other", "other")
	seedQuestion(t, db, "q1")

	now := time.UnixMilli(0).UTC()
	sc.AddToReview(owner.ID, "q1", now)
	item, _, _ := db.GetReviewByQuestion(owner.ID, "q1")

	if _, err := sc.SubmitReview(other.ID, item.ID, true, now); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("cross-learner submit err = %v, want ErrAccessDenied", err)
	}
	if _, err := sc.SubmitReview(owner.ID, "missing", true, now); !errors.Is(err, domain.ErrReviewNotFound) {
		t.Errorf("unknown review err = %v, want ErrReviewNotFound", err)
	}
}

func TestAddToReview_ResetsExisting(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	seedQuestion(t, db, "q1")

	now := time.UnixMilli(0).UTC()
	sc.AddToReview(l.ID, "q1", now)
	item, _, _ := db.GetReviewByQuestion(l.ID, "q1")
	sc.SubmitReview(l.ID, item.ID, true, now)

	// Re-adding (missed in a quiz again) drops it back to the bottom
	// of the ladder, due after the first interval, without duplicating.
	later := now.Add(12 * time.Hour)
	if err := sc.AddToReview(l.ID, "q1", later); err != nil {
		t.Fatal(err)
	}
	wantDue := later.Add(time.Duration(DefaultIntervals[0]) * 24 * time.Hour)
	got, _, _ := db.GetReviewByQuestion(l.ID, "q1")
	if got.IntervalIndex != 0 || got.SuccessCount != 0 || !got.DueAt.Equal(wantDue) {
		t.Errorf("item after re-add = %+v, want reset and due %v", got, wantDue)
	}

	total, _, err := db.ReviewCounts(l.ID)
	if err != nil || total != 1 {
		t.Errorf("total items = %d (%v), want 1", total, err)
	}
}

func TestAddToReview_UnknownQuestion(t *testing.T) {
	sc, prog, _ := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")
	err := sc.AddToReview(l.ID, "missing", time.Now().UTC())
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestDailyReview_CapAndOrder(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")

	base := time.UnixMilli(0).UTC()
	for i := 0; i < 13; i++ {
		id := fmt.Sprintf("q%02d", i)
		seedQuestion(t, db, id)
		// Stagger due times so the order is observable.
		if err := sc.AddToReview(l.ID, id, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	// A day later the whole staggered set has come due.
	now := base.Add(25 * time.Hour)
	batch, err := sc.DailyReview(l.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Items) != MaxDailyReviews {
		t.Fatalf("batch size = %d, want capped at %d", len(batch.Items), MaxDailyReviews)
	}
	if batch.DueCount != 13 {
		t.Errorf("DueCount = %d, want 13", batch.DueCount)
	}
	if batch.Items[0].Question.ID != "q00" {
		t.Errorf("first item = %s, want oldest due (q00)", batch.Items[0].Question.ID)
	}
	if batch.BonusXP != 50 {
		t.Errorf("BonusXP = %d, want flat 50 for a big batch", batch.BonusXP)
	}
}

func TestDailyReview_SmallBatchBonus(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")

	now := time.UnixMilli(0).UTC()
	for i := 0; i < 2; i++ {
		id := fmt.Sprintf("q%d", i)
		seedQuestion(t, db, id)
		sc.AddToReview(l.ID, id, now)
	}

	batch, err := sc.DailyReview(l.ID, now.Add(25*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if batch.BonusXP != 2*XPPerCorrect {
		t.Errorf("BonusXP = %d, want %d for 2 due items", batch.BonusXP, 2*XPPerCorrect)
	}
}

func TestGetStats(t *testing.T) {
	sc, prog, db := testScheduler(t)
	l, _ := prog.EnsureLearner("ext-1", "tester")

	now := time.UnixMilli(0).UTC()
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("q%d", i)
		seedQuestion(t, db, id)
		sc.AddToReview(l.ID, id, now)
	}
	// Master one of them.
	item, _, _ := db.GetReviewByQuestion(l.ID, "q0")
	for i := 0; i < MasterySuccessCount; i++ {
		if _, err := sc.SubmitReview(l.ID, item.ID, true, now); err != nil {
			t.Fatal(err)
		}
	}

	// Before the first interval elapses nothing is due; a day later the
	// two unmastered items are.
	stats, err := sc.GetStats(l.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.Mastered != 1 || stats.DueNow != 0 {
		t.Errorf("stats = %+v, want 3 total, 1 mastered, 0 due yet", stats)
	}
	stats, err = sc.GetStats(l.ID, now.Add(25*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if stats.DueNow != 2 {
		t.Errorf("DueNow = %d a day later, want 2", stats.DueNow)
	}
}
