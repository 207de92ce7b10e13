package domain

import "time"

// ─── Curriculum Catalog ─────────────────────────────────────────────────────
// Catalog records are read-only from the engine's perspective. They are
// written only by the importer.

// Course groups weeks into a curriculum.
type Course struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	SequenceOrder int    `json:"sequence_order"`
	IsActive      bool   `json:"is_active"`
}

// Week is one content unit inside a course.
type Week struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	WeekNumber  int    `json:"week_number"`
	IsLocked    bool   `json:"is_locked"`
}

// Task is a completable curriculum item.
type Task struct {
	ID                string `json:"id"`
	WeekID            string `json:"week_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	TaskType          string `json:"task_type"` // "video", "exercise", "project", "quiz"
	Difficulty        string `json:"difficulty"`
	XPReward          int64  `json:"xp_reward"`
	EstimatedMinutes  int    `json:"estimated_minutes"`
	RequiredForStreak bool   `json:"required_for_streak"`
}

// TaskCompletion records whether a learner has completed a task.
// At most one row exists per (learner, task) pair.
type TaskCompletion struct {
	ID          string    `json:"id"`
	LearnerID   string    `json:"learner_id"`
	TaskID      string    `json:"task_id"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at"` // zero when not completed
}

// ─── Quests ─────────────────────────────────────────────────────────────────

// Quest is a boss encounter defined in the catalog.
type Quest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	BossHP        int64  `json:"boss_hp"`
	RewardXPBonus int64  `json:"reward_xp_bonus"`
	RewardBadgeID string `json:"reward_badge_id"` // "" = no badge reward
}

// QuestProgress tracks a learner's encounter with one quest.
// Invariant: at most one row per learner has a zero CompletedAt.
type QuestProgress struct {
	ID              string    `json:"id"`
	LearnerID       string    `json:"learner_id"`
	QuestID         string    `json:"quest_id"`
	BossHPRemaining int64     `json:"boss_hp_remaining"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"` // zero while active
}

// Active reports whether the encounter is still in progress.
func (p QuestProgress) Active() bool { return p.CompletedAt.IsZero() }

// ─── Badges & Achievements ──────────────────────────────────────────────────

// Badge is a catalog entry keyed by a business identifier ("b-streak-7").
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPValue     int64  `json:"xp_value"`
	Difficulty  string `json:"difficulty"`
}

// BadgeGrant marks a badge as earned. Unique per (learner, badge).
type BadgeGrant struct {
	LearnerID string    `json:"learner_id"`
	BadgeID   string    `json:"badge_id"`
	EarnedAt  time.Time `json:"earned_at"`
}

// Achievement mirrors Badge but is awarded for lifetime milestones
// (task counts) rather than event rewards.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPValue     int64  `json:"xp_value"`
	Difficulty  string `json:"difficulty"`
}

// AchievementGrant marks an achievement as earned. Unique per pair.
type AchievementGrant struct {
	LearnerID     string    `json:"learner_id"`
	AchievementID string    `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// ─── Shop ───────────────────────────────────────────────────────────────────

// ItemEffect names what a shop purchase does to the learner aggregate.
type ItemEffect string

const (
	EffectStreakFreeze ItemEffect = "streak_freeze"
	EffectFocusRefill  ItemEffect = "focus_refill"
	EffectHeartRefill  ItemEffect = "heart_refill"
)

// ShopItem is a fixed catalog entry. Price is gold.
type ShopItem struct {
	ID          string     `json:"item_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Effect      ItemEffect `json:"effect"`
}
