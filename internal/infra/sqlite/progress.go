package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/questline-app/questline/internal/domain"
)

// ─── Task Completions ───────────────────────────────────────────────────────

// GetCompletion retrieves the completion record for a (learner, task)
// pair. The ok flag is false when no record exists yet.
func (s *Store) GetCompletion(learnerID, taskID string) (domain.TaskCompletion, bool, error) {
	var c domain.TaskCompletion
	var completedAt sql.NullInt64
	err := s.e.QueryRow(
		`SELECT id, learner_id, task_id, completed, completed_at
		 FROM task_completions WHERE learner_id = ? AND task_id = ?`,
		learnerID, taskID,
	).Scan(&c.ID, &c.LearnerID, &c.TaskID, &c.Completed, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, false, nil
	}
	if err != nil {
		return c, false, fmt.Errorf("get completion: %w", err)
	}
	c.CompletedAt = timeOrZero(completedAt)
	return c, true, nil
}

// InsertCompletion creates a completion record. The UNIQUE(learner, task)
// index rejects a second record for the same pair.
func (s *Store) InsertCompletion(c domain.TaskCompletion) error {
	_, err := s.e.Exec(
		`INSERT INTO task_completions (id, learner_id, task_id, completed, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.LearnerID, c.TaskID, c.Completed, nullableMS(c.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

// SetCompletionState flips the completed flag; a zero time clears the
// completion timestamp.
func (s *Store) SetCompletionState(id string, completed bool, at time.Time) error {
	_, err := s.e.Exec(
		`UPDATE task_completions SET completed = ?, completed_at = ? WHERE id = ?`,
		completed, nullableMS(at), id,
	)
	if err != nil {
		return fmt.Errorf("set completion state: %w", err)
	}
	return nil
}

// CountCompletedTasks returns how many tasks a learner has completed.
func (s *Store) CountCompletedTasks(learnerID string) (int, error) {
	var n int
	err := s.e.QueryRow(
		`SELECT COUNT(*) FROM task_completions WHERE learner_id = ? AND completed = 1`,
		learnerID,
	).Scan(&n)
	return n, err
}

// ListCompletedTasks returns a learner's completed records.
func (s *Store) ListCompletedTasks(learnerID string) ([]domain.TaskCompletion, error) {
	rows, err := s.e.Query(
		`SELECT id, learner_id, task_id, completed, completed_at
		 FROM task_completions WHERE learner_id = ? AND completed = 1`,
		learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []domain.TaskCompletion
	for rows.Next() {
		var c domain.TaskCompletion
		var completedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.LearnerID, &c.TaskID, &c.Completed, &completedAt); err != nil {
			return nil, err
		}
		c.CompletedAt = timeOrZero(completedAt)
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// ─── Quest Progress ─────────────────────────────────────────────────────────

// ActiveQuestProgress returns the learner's single active encounter, if
// any. The ok flag is false when no quest is active.
func (s *Store) ActiveQuestProgress(learnerID string) (domain.QuestProgress, bool, error) {
	var p domain.QuestProgress
	var startedAt int64
	err := s.e.QueryRow(
		`SELECT id, learner_id, quest_id, boss_hp_remaining, started_at
		 FROM quest_progress WHERE learner_id = ? AND completed_at IS NULL`,
		learnerID,
	).Scan(&p.ID, &p.LearnerID, &p.QuestID, &p.BossHPRemaining, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, false, nil
	}
	if err != nil {
		return p, false, fmt.Errorf("active quest progress: %w", err)
	}
	p.StartedAt = msTime(startedAt)
	return p, true, nil
}

// InsertQuestProgress starts an encounter. The partial unique index on
// (learner_id) WHERE completed_at IS NULL rejects a second active quest.
func (s *Store) InsertQuestProgress(p domain.QuestProgress) error {
	_, err := s.e.Exec(
		`INSERT INTO quest_progress (id, learner_id, quest_id, boss_hp_remaining, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.LearnerID, p.QuestID, p.BossHPRemaining, ms(p.StartedAt), nullableMS(p.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert quest progress: %w", err)
	}
	return nil
}

// SetQuestHP persists the decremented boss HP of an active encounter.
func (s *Store) SetQuestHP(id string, hpRemaining int64) error {
	_, err := s.e.Exec(
		`UPDATE quest_progress SET boss_hp_remaining = ? WHERE id = ?`,
		hpRemaining, id,
	)
	return err
}

// CompleteQuestProgress clamps HP at zero and stamps the completion time.
func (s *Store) CompleteQuestProgress(id string, at time.Time) error {
	_, err := s.e.Exec(
		`UPDATE quest_progress SET boss_hp_remaining = 0, completed_at = ? WHERE id = ?`,
		ms(at), id,
	)
	return err
}

// ─── Badge & Achievement Grants ─────────────────────────────────────────────
// Grants are idempotent: INSERT OR IGNORE against the pair primary key.
// The returned flag is true only for a fresh grant.

// GrantBadge records a badge as earned. Returns false if already held.
func (s *Store) GrantBadge(learnerID, badgeID string, at time.Time) (bool, error) {
	res, err := s.e.Exec(
		`INSERT OR IGNORE INTO badge_grants (learner_id, badge_id, earned_at) VALUES (?, ?, ?)`,
		learnerID, badgeID, ms(at),
	)
	if err != nil {
		return false, fmt.Errorf("grant badge: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// HasBadge checks whether a learner holds a badge.
func (s *Store) HasBadge(learnerID, badgeID string) (bool, error) {
	var n int
	err := s.e.QueryRow(
		`SELECT COUNT(*) FROM badge_grants WHERE learner_id = ? AND badge_id = ?`,
		learnerID, badgeID,
	).Scan(&n)
	return n > 0, err
}

// ListBadgeGrants returns a learner's badges, newest first.
func (s *Store) ListBadgeGrants(learnerID string) ([]domain.BadgeGrant, error) {
	rows, err := s.e.Query(
		`SELECT learner_id, badge_id, earned_at FROM badge_grants
		 WHERE learner_id = ? ORDER BY earned_at DESC`,
		learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.BadgeGrant
	for rows.Next() {
		var g domain.BadgeGrant
		var earnedAt int64
		if err := rows.Scan(&g.LearnerID, &g.BadgeID, &earnedAt); err != nil {
			return nil, err
		}
		g.EarnedAt = msTime(earnedAt)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// GrantAchievement records an achievement as earned. Returns false if
// already held.
func (s *Store) GrantAchievement(learnerID, achievementID string, at time.Time) (bool, error) {
	res, err := s.e.Exec(
		`INSERT OR IGNORE INTO achievement_grants (learner_id, achievement_id, earned_at) VALUES (?, ?, ?)`,
		learnerID, achievementID, ms(at),
	)
	if err != nil {
		return false, fmt.Errorf("grant achievement: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
