package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/questline-app/questline/internal/domain"
)

// ─── Curriculum Catalog ─────────────────────────────────────────────────────
// Catalog rows are inserted by the importer and read-only afterwards.

// InsertCourse creates a course.
func (s *Store) InsertCourse(c domain.Course) error {
	_, err := s.e.Exec(
		`INSERT INTO courses (id, title, description, sequence_order, is_active)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.SequenceOrder, c.IsActive,
	)
	return err
}

// InsertWeek creates a week.
func (s *Store) InsertWeek(w domain.Week) error {
	_, err := s.e.Exec(
		`INSERT INTO weeks (id, course_id, title, description, week_number, is_locked)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.CourseID, w.Title, w.Description, w.WeekNumber, w.IsLocked,
	)
	return err
}

// InsertTask creates a task.
func (s *Store) InsertTask(t domain.Task) error {
	_, err := s.e.Exec(
		`INSERT INTO tasks (id, week_id, title, description, task_type,
			difficulty, xp_reward, estimated_minutes, required_for_streak)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WeekID, t.Title, t.Description, t.TaskType,
		t.Difficulty, t.XPReward, t.EstimatedMinutes, t.RequiredForStreak,
	)
	return err
}

// GetTask retrieves a task by id.
// Returns domain.ErrTaskNotFound if no row exists.
func (s *Store) GetTask(id string) (domain.Task, error) {
	var t domain.Task
	err := s.e.QueryRow(
		`SELECT id, week_id, title, description, task_type, difficulty,
			xp_reward, estimated_minutes, required_for_streak
		 FROM tasks WHERE id = ?`, id,
	).Scan(
		&t.ID, &t.WeekID, &t.Title, &t.Description, &t.TaskType,
		&t.Difficulty, &t.XPReward, &t.EstimatedMinutes, &t.RequiredForStreak,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return t, domain.ErrTaskNotFound
	}
	if err != nil {
		return t, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasksByWeek returns the tasks of one week.
func (s *Store) ListTasksByWeek(weekID string) ([]domain.Task, error) {
	rows, err := s.e.Query(
		`SELECT id, week_id, title, description, task_type, difficulty,
			xp_reward, estimated_minutes, required_for_streak
		 FROM tasks WHERE week_id = ?`, weekID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.WeekID, &t.Title, &t.Description, &t.TaskType,
			&t.Difficulty, &t.XPReward, &t.EstimatedMinutes, &t.RequiredForStreak,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CountTasks returns the total number of catalog tasks.
func (s *Store) CountTasks() (int, error) {
	var n int
	err := s.e.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

// ─── Quests ─────────────────────────────────────────────────────────────────

// InsertQuest creates a quest.
func (s *Store) InsertQuest(q domain.Quest) error {
	_, err := s.e.Exec(
		`INSERT INTO quests (id, name, description, boss_hp, reward_xp_bonus, reward_badge_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.Name, q.Description, q.BossHP, q.RewardXPBonus, q.RewardBadgeID,
	)
	return err
}

// GetQuest retrieves a quest by id.
func (s *Store) GetQuest(id string) (domain.Quest, error) {
	var q domain.Quest
	err := s.e.QueryRow(
		`SELECT id, name, description, boss_hp, reward_xp_bonus, reward_badge_id
		 FROM quests WHERE id = ?`, id,
	).Scan(&q.ID, &q.Name, &q.Description, &q.BossHP, &q.RewardXPBonus, &q.RewardBadgeID)
	if errors.Is(err, sql.ErrNoRows) {
		return q, domain.ErrQuestNotFound
	}
	if err != nil {
		return q, fmt.Errorf("get quest: %w", err)
	}
	return q, nil
}

// ─── Badges & Achievements ──────────────────────────────────────────────────

// InsertBadge creates a badge catalog entry.
func (s *Store) InsertBadge(b domain.Badge) error {
	_, err := s.e.Exec(
		`INSERT INTO badges (id, name, description, xp_value, difficulty)
		 VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.XPValue, b.Difficulty,
	)
	return err
}

// GetBadge retrieves a badge by business id. Absent badges are not an
// error condition for awarding; callers check the ok flag.
func (s *Store) GetBadge(id string) (domain.Badge, bool, error) {
	var b domain.Badge
	err := s.e.QueryRow(
		`SELECT id, name, description, xp_value, difficulty FROM badges WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Description, &b.XPValue, &b.Difficulty)
	if errors.Is(err, sql.ErrNoRows) {
		return b, false, nil
	}
	if err != nil {
		return b, false, fmt.Errorf("get badge: %w", err)
	}
	return b, true, nil
}

// InsertAchievement creates an achievement catalog entry.
func (s *Store) InsertAchievement(a domain.Achievement) error {
	_, err := s.e.Exec(
		`INSERT INTO achievements (id, name, description, xp_value, difficulty)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Description, a.XPValue, a.Difficulty,
	)
	return err
}

// GetAchievement retrieves an achievement by business id.
func (s *Store) GetAchievement(id string) (domain.Achievement, bool, error) {
	var a domain.Achievement
	err := s.e.QueryRow(
		`SELECT id, name, description, xp_value, difficulty FROM achievements WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Description, &a.XPValue, &a.Difficulty)
	if errors.Is(err, sql.ErrNoRows) {
		return a, false, nil
	}
	if err != nil {
		return a, false, fmt.Errorf("get achievement: %w", err)
	}
	return a, true, nil
}

// ─── Quizzes & Questions ────────────────────────────────────────────────────

// InsertQuiz creates a quiz.
func (s *Store) InsertQuiz(q domain.Quiz) error {
	_, err := s.e.Exec(
		`INSERT INTO quizzes (id, week_id, title, linked_task_id)
		 VALUES (?, ?, ?, ?)`,
		q.ID, q.WeekID, q.Title, q.LinkedTaskID,
	)
	return err
}

// GetQuiz retrieves a quiz by id.
func (s *Store) GetQuiz(id string) (domain.Quiz, error) {
	var q domain.Quiz
	err := s.e.QueryRow(
		`SELECT id, week_id, title, linked_task_id FROM quizzes WHERE id = ?`, id,
	).Scan(&q.ID, &q.WeekID, &q.Title, &q.LinkedTaskID)
	if errors.Is(err, sql.ErrNoRows) {
		return q, domain.ErrQuizNotFound
	}
	if err != nil {
		return q, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

// InsertQuestion creates a quiz question. Options are stored as JSON.
func (s *Store) InsertQuestion(q domain.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	_, err = s.e.Exec(
		`INSERT INTO questions (id, quiz_id, question_type, text, code, options,
			correct_index, starter_code, difficulty, topic_tag)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.QuizID, string(q.Type), q.Text, q.Code, string(opts),
		q.CorrectIndex, q.StarterCode, q.Difficulty, q.TopicTag,
	)
	return err
}

// GetQuestion retrieves a question by id.
func (s *Store) GetQuestion(id string) (domain.Question, error) {
	row := s.e.QueryRow(
		`SELECT id, quiz_id, question_type, text, code, options,
			correct_index, starter_code, difficulty, topic_tag
		 FROM questions WHERE id = ?`, id,
	)
	return scanQuestion(row)
}

// ListQuestionsByQuiz returns every question of one quiz.
func (s *Store) ListQuestionsByQuiz(quizID string) ([]domain.Question, error) {
	rows, err := s.e.Query(
		`SELECT id, quiz_id, question_type, text, code, options,
			correct_index, starter_code, difficulty, topic_tag
		 FROM questions WHERE quiz_id = ?`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func scanQuestion(sc rowScanner) (domain.Question, error) {
	var q domain.Question
	var qtype, opts string
	err := sc.Scan(
		&q.ID, &q.QuizID, &qtype, &q.Text, &q.Code, &opts,
		&q.CorrectIndex, &q.StarterCode, &q.Difficulty, &q.TopicTag,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return q, domain.ErrQuestionNotFound
	}
	if err != nil {
		return q, fmt.Errorf("scan question: %w", err)
	}
	q.Type = domain.QuestionType(qtype)
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return q, fmt.Errorf("decode options: %w", err)
	}
	return q, nil
}
