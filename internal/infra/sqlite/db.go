// Package sqlite provides SQLite-based persistent storage for Questline.
// Uses WAL mode for concurrent reads and crash-safe writes.
//
// Every orchestrating operation of the engine runs inside a single
// transaction (DB.Transact); the Store type exposes the same typed query
// methods over either the root connection or an open transaction, so
// services never see database/sql directly.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store carries the typed query methods. It is valid over the root
// connection (reads, single-statement writes) or a transaction handed out
// by DB.Transact.
type Store struct {
	e execer
}

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
	Store
}

// Open creates or opens the SQLite database at dir/questline.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "questline.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer; serializing through one connection also
	// serializes racing operations against the same learner, giving the
	// last-committed-wins-with-full-recomputation semantics the engine
	// assumes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db, Store: Store{e: db}}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Transact runs fn inside one transaction. The whole operation commits or
// none of it does; a partial failure never leaves the learner aggregate
// and its related records mutually inconsistent.
func (d *DB) Transact(fn func(s *Store) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&Store{e: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Learner aggregate
		`CREATE TABLE IF NOT EXISTS learners (
			id                  TEXT PRIMARY KEY,
			external_id         TEXT NOT NULL UNIQUE,
			username            TEXT NOT NULL,
			xp                  INTEGER NOT NULL DEFAULT 0,
			level               INTEGER NOT NULL DEFAULT 1,
			gold                INTEGER NOT NULL DEFAULT 0,
			hearts              INTEGER NOT NULL DEFAULT 5,
			focus_points        INTEGER NOT NULL DEFAULT 5,
			focus_refreshed_at  INTEGER,
			streak              INTEGER NOT NULL DEFAULT 0,
			best_streak         INTEGER NOT NULL DEFAULT 0,
			streak_freeze_count INTEGER NOT NULL DEFAULT 0,
			last_activity_at    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_learners_xp ON learners(xp)`,

		// Curriculum catalog (written only by the importer)
		`CREATE TABLE IF NOT EXISTS courses (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			sequence_order INTEGER NOT NULL DEFAULT 0,
			is_active      BOOLEAN NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS weeks (
			id          TEXT PRIMARY KEY,
			course_id   TEXT NOT NULL REFERENCES courses(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			week_number INTEGER NOT NULL,
			is_locked   BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weeks_course ON weeks(course_id)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id                  TEXT PRIMARY KEY,
			week_id             TEXT NOT NULL REFERENCES weeks(id),
			title               TEXT NOT NULL,
			description         TEXT NOT NULL DEFAULT '',
			task_type           TEXT NOT NULL,
			difficulty          TEXT NOT NULL,
			xp_reward           INTEGER NOT NULL,
			estimated_minutes   INTEGER NOT NULL DEFAULT 0,
			required_for_streak BOOLEAN NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_week ON tasks(week_id)`,

		// Task completions: one row per (learner, task)
		`CREATE TABLE IF NOT EXISTS task_completions (
			id           TEXT PRIMARY KEY,
			learner_id   TEXT NOT NULL REFERENCES learners(id),
			task_id      TEXT NOT NULL REFERENCES tasks(id),
			completed    BOOLEAN NOT NULL DEFAULT 0,
			completed_at INTEGER,
			UNIQUE(learner_id, task_id)
		)`,

		// Quests
		`CREATE TABLE IF NOT EXISTS quests (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			boss_hp         INTEGER NOT NULL,
			reward_xp_bonus INTEGER NOT NULL DEFAULT 0,
			reward_badge_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS quest_progress (
			id                TEXT PRIMARY KEY,
			learner_id        TEXT NOT NULL REFERENCES learners(id),
			quest_id          TEXT NOT NULL REFERENCES quests(id),
			boss_hp_remaining INTEGER NOT NULL,
			started_at        INTEGER NOT NULL,
			completed_at      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quest_progress_learner ON quest_progress(learner_id)`,
		// Single-active-quest invariant, enforced in the schema itself
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_quest_progress_active
			ON quest_progress(learner_id) WHERE completed_at IS NULL`,

		// Badges, achievements, and their grants
		`CREATE TABLE IF NOT EXISTS badges (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			xp_value    INTEGER NOT NULL DEFAULT 0,
			difficulty  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS badge_grants (
			learner_id TEXT NOT NULL REFERENCES learners(id),
			badge_id   TEXT NOT NULL REFERENCES badges(id),
			earned_at  INTEGER NOT NULL,
			PRIMARY KEY (learner_id, badge_id)
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			xp_value    INTEGER NOT NULL DEFAULT 0,
			difficulty  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS achievement_grants (
			learner_id     TEXT NOT NULL REFERENCES learners(id),
			achievement_id TEXT NOT NULL REFERENCES achievements(id),
			earned_at      INTEGER NOT NULL,
			PRIMARY KEY (learner_id, achievement_id)
		)`,

		// Quizzes, their questions, and attempt results
		`CREATE TABLE IF NOT EXISTS quizzes (
			id             TEXT PRIMARY KEY,
			week_id        TEXT NOT NULL DEFAULT '',
			title          TEXT NOT NULL,
			linked_task_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id            TEXT PRIMARY KEY,
			quiz_id       TEXT NOT NULL,
			question_type TEXT NOT NULL,
			text          TEXT NOT NULL,
			code          TEXT NOT NULL DEFAULT '',
			options       TEXT NOT NULL DEFAULT '[]',
			correct_index INTEGER NOT NULL DEFAULT 0,
			starter_code  TEXT NOT NULL DEFAULT '',
			difficulty    TEXT NOT NULL DEFAULT '',
			topic_tag     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id)`,
		`CREATE TABLE IF NOT EXISTS quiz_results (
			id              TEXT PRIMARY KEY,
			learner_id      TEXT NOT NULL REFERENCES learners(id),
			quiz_id         TEXT NOT NULL,
			score           INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			completed_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_results_learner ON quiz_results(learner_id)`,

		// Spaced-repetition review queue
		`CREATE TABLE IF NOT EXISTS review_items (
			id               TEXT PRIMARY KEY,
			learner_id       TEXT NOT NULL REFERENCES learners(id),
			question_id      TEXT NOT NULL REFERENCES questions(id),
			interval_index   INTEGER NOT NULL DEFAULT 0,
			success_count    INTEGER NOT NULL DEFAULT 0,
			due_at           INTEGER NOT NULL,
			mastered         BOOLEAN NOT NULL DEFAULT 0,
			last_reviewed_at INTEGER,
			UNIQUE(learner_id, question_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_items_due ON review_items(learner_id, due_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// ─── Timestamp Helpers ──────────────────────────────────────────────────────
// Timestamps are stored as Unix milliseconds; the streak day arithmetic in
// the progression package works on the same unit.

func ms(t time.Time) int64 { return t.UnixMilli() }

func msTime(v int64) time.Time { return time.UnixMilli(v).UTC() }

// nullableMS maps the zero time to NULL.
func nullableMS(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

// timeOrZero maps NULL back to the zero time.
func timeOrZero(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return msTime(v.Int64)
}
