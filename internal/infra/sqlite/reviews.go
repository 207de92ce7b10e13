package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/questline-app/questline/internal/domain"
)

// ─── Review Items ───────────────────────────────────────────────────────────

const reviewColumns = `id, learner_id, question_id, interval_index,
	success_count, due_at, mastered, last_reviewed_at`

// GetReview retrieves a review item by id.
// Returns domain.ErrReviewNotFound if no row exists.
func (s *Store) GetReview(id string) (domain.ReviewItem, error) {
	row := s.e.QueryRow(`SELECT `+reviewColumns+` FROM review_items WHERE id = ?`, id)
	return scanReview(row)
}

// GetReviewByQuestion retrieves the review item for a (learner, question)
// pair. The ok flag is false when none exists.
func (s *Store) GetReviewByQuestion(learnerID, questionID string) (domain.ReviewItem, bool, error) {
	row := s.e.QueryRow(
		`SELECT `+reviewColumns+` FROM review_items WHERE learner_id = ? AND question_id = ?`,
		learnerID, questionID,
	)
	r, err := scanReview(row)
	if errors.Is(err, domain.ErrReviewNotFound) {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	return r, true, nil
}

// InsertReview creates a review item. The UNIQUE(learner, question) index
// rejects a second item for the same pair.
func (s *Store) InsertReview(r domain.ReviewItem) error {
	_, err := s.e.Exec(
		`INSERT INTO review_items (`+reviewColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.LearnerID, r.QuestionID, r.IntervalIndex,
		r.SuccessCount, ms(r.DueAt), r.Mastered, nullableMS(r.LastReviewedAt),
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// SaveReview writes back the scheduling state of a review item.
func (s *Store) SaveReview(r domain.ReviewItem) error {
	_, err := s.e.Exec(
		`UPDATE review_items SET interval_index = ?, success_count = ?,
			due_at = ?, mastered = ?, last_reviewed_at = ?
		 WHERE id = ?`,
		r.IntervalIndex, r.SuccessCount, ms(r.DueAt), r.Mastered,
		nullableMS(r.LastReviewedAt), r.ID,
	)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

// DueReviews returns up to limit non-mastered items due at or before now,
// oldest due date first.
func (s *Store) DueReviews(learnerID string, now time.Time, limit int) ([]domain.ReviewItem, error) {
	rows, err := s.e.Query(
		`SELECT `+reviewColumns+` FROM review_items
		 WHERE learner_id = ? AND mastered = 0 AND due_at <= ?
		 ORDER BY due_at ASC LIMIT ?`,
		learnerID, ms(now), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ReviewItem
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// CountDueReviews returns how many non-mastered items are due.
func (s *Store) CountDueReviews(learnerID string, now time.Time) (int, error) {
	var n int
	err := s.e.QueryRow(
		`SELECT COUNT(*) FROM review_items
		 WHERE learner_id = ? AND mastered = 0 AND due_at <= ?`,
		learnerID, ms(now),
	).Scan(&n)
	return n, err
}

// ReviewCounts returns total and mastered card counts for a learner.
func (s *Store) ReviewCounts(learnerID string) (total, mastered int, err error) {
	err = s.e.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(mastered), 0) FROM review_items WHERE learner_id = ?`,
		learnerID,
	).Scan(&total, &mastered)
	return total, mastered, err
}

func scanReview(sc rowScanner) (domain.ReviewItem, error) {
	var r domain.ReviewItem
	var dueAt int64
	var lastAt sql.NullInt64
	err := sc.Scan(
		&r.ID, &r.LearnerID, &r.QuestionID, &r.IntervalIndex,
		&r.SuccessCount, &dueAt, &r.Mastered, &lastAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r, domain.ErrReviewNotFound
	}
	if err != nil {
		return r, fmt.Errorf("scan review: %w", err)
	}
	r.DueAt = msTime(dueAt)
	r.LastReviewedAt = timeOrZero(lastAt)
	return r, nil
}

// ─── Quiz Results ───────────────────────────────────────────────────────────

// InsertQuizResult appends an immutable quiz attempt record.
func (s *Store) InsertQuizResult(r domain.QuizResult) error {
	_, err := s.e.Exec(
		`INSERT INTO quiz_results (id, learner_id, quiz_id, score, total_questions, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.LearnerID, r.QuizID, r.Score, r.TotalQuestions, ms(r.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// ListQuizResults returns a learner's attempts, newest first.
func (s *Store) ListQuizResults(learnerID string) ([]domain.QuizResult, error) {
	rows, err := s.e.Query(
		`SELECT id, learner_id, quiz_id, score, total_questions, completed_at
		 FROM quiz_results WHERE learner_id = ? ORDER BY completed_at DESC`,
		learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.QuizResult
	for rows.Next() {
		var r domain.QuizResult
		var completedAt int64
		if err := rows.Scan(&r.ID, &r.LearnerID, &r.QuizID, &r.Score, &r.TotalQuestions, &completedAt); err != nil {
			return nil, err
		}
		r.CompletedAt = msTime(completedAt)
		results = append(results, r)
	}
	return results, rows.Err()
}
