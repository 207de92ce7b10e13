// Package domain holds the record types and sentinel errors of the
// Questline progression engine. Records here are plain data; every rule
// that mutates them lives in internal/app.
package domain

import "time"

// Caps on learner resources. Hearts and focus points are independent
// pools with independent caps.
const (
	HeartsCap = 5
	FocusCap  = 5
)

// Learner is the aggregate mutated by every orchestrating operation.
// Level is always derived from XP via the level curve and is persisted
// only as a denormalized read optimization; writers must recompute it
// from the just-read XP value, never trust the stored one.
type Learner struct {
	ID                string    `json:"id"`
	ExternalID        string    `json:"external_id"` // identity-provider subject
	Username          string    `json:"username"`
	XP                int64     `json:"xp"`
	Level             int       `json:"level"`
	Gold              int64     `json:"gold"`
	Hearts            int       `json:"hearts"`
	FocusPoints       int       `json:"focus_points"`
	FocusRefreshedAt  time.Time `json:"focus_refreshed_at"` // zero = never refreshed
	Streak            int       `json:"streak"`
	BestStreak        int       `json:"best_streak"`
	StreakFreezeCount int       `json:"streak_freeze_count"`
	LastActivityAt    time.Time `json:"last_activity_at"` // zero = no activity yet
}

// NewLearner returns a learner with starting resources.
func NewLearner(id, externalID, username string) Learner {
	return Learner{
		ID:          id,
		ExternalID:  externalID,
		Username:    username,
		XP:          0,
		Level:       1,
		Gold:        0,
		Hearts:      HeartsCap,
		FocusPoints: FocusCap,
		Streak:      0,
		BestStreak:  0,
	}
}
