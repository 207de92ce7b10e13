package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/questline-app/questline/internal/domain"
)

// ─── Learners ───────────────────────────────────────────────────────────────

const learnerColumns = `id, external_id, username, xp, level, gold, hearts,
	focus_points, focus_refreshed_at, streak, best_streak,
	streak_freeze_count, last_activity_at`

// InsertLearner creates a new learner row.
func (s *Store) InsertLearner(l domain.Learner) error {
	_, err := s.e.Exec(
		`INSERT INTO learners (`+learnerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ExternalID, l.Username, l.XP, l.Level, l.Gold, l.Hearts,
		l.FocusPoints, nullableMS(l.FocusRefreshedAt), l.Streak, l.BestStreak,
		l.StreakFreezeCount, nullableMS(l.LastActivityAt),
	)
	if err != nil {
		return fmt.Errorf("insert learner: %w", err)
	}
	return nil
}

// GetLearner retrieves a learner by internal id.
// Returns domain.ErrLearnerNotFound if no row exists.
func (s *Store) GetLearner(id string) (domain.Learner, error) {
	row := s.e.QueryRow(`SELECT `+learnerColumns+` FROM learners WHERE id = ?`, id)
	return scanLearner(row)
}

// GetLearnerByExternalID retrieves a learner by identity-provider subject.
func (s *Store) GetLearnerByExternalID(externalID string) (domain.Learner, error) {
	row := s.e.QueryRow(`SELECT `+learnerColumns+` FROM learners WHERE external_id = ?`, externalID)
	return scanLearner(row)
}

// SaveLearner writes back every mutable field of the aggregate.
// Callers must have re-derived Level from XP before saving.
func (s *Store) SaveLearner(l domain.Learner) error {
	res, err := s.e.Exec(
		`UPDATE learners SET username = ?, xp = ?, level = ?, gold = ?,
			hearts = ?, focus_points = ?, focus_refreshed_at = ?, streak = ?,
			best_streak = ?, streak_freeze_count = ?, last_activity_at = ?
		 WHERE id = ?`,
		l.Username, l.XP, l.Level, l.Gold, l.Hearts, l.FocusPoints,
		nullableMS(l.FocusRefreshedAt), l.Streak, l.BestStreak,
		l.StreakFreezeCount, nullableMS(l.LastActivityAt), l.ID,
	)
	if err != nil {
		return fmt.Errorf("save learner: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrLearnerNotFound
	}
	return nil
}

// TopLearnersByXP returns up to limit learners, highest XP first.
func (s *Store) TopLearnersByXP(limit int) ([]domain.Learner, error) {
	rows, err := s.e.Query(
		`SELECT `+learnerColumns+` FROM learners ORDER BY xp DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var learners []domain.Learner
	for rows.Next() {
		l, err := scanLearnerRows(rows)
		if err != nil {
			return nil, err
		}
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLearnerFrom(sc rowScanner) (domain.Learner, error) {
	var l domain.Learner
	var focusAt, lastAt sql.NullInt64
	err := sc.Scan(
		&l.ID, &l.ExternalID, &l.Username, &l.XP, &l.Level, &l.Gold,
		&l.Hearts, &l.FocusPoints, &focusAt, &l.Streak, &l.BestStreak,
		&l.StreakFreezeCount, &lastAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return l, domain.ErrLearnerNotFound
	}
	if err != nil {
		return l, fmt.Errorf("scan learner: %w", err)
	}
	l.FocusRefreshedAt = timeOrZero(focusAt)
	l.LastActivityAt = timeOrZero(lastAt)
	return l, nil
}

func scanLearner(row *sql.Row) (domain.Learner, error)       { return scanLearnerFrom(row) }
func scanLearnerRows(rows *sql.Rows) (domain.Learner, error) { return scanLearnerFrom(rows) }
