package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The API layer maps
// them to HTTP status codes with errors.Is; idempotent no-ops (completing a
// completed task, re-granting a badge, re-adding a review item) are NOT
// errors and report "no new effect" in their results instead.

var (
	// Identity
	ErrUnauthorized = errors.New("no authenticated learner identity")

	// Reference resolution
	ErrLearnerNotFound  = errors.New("learner not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrQuestNotFound    = errors.New("quest not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrReviewNotFound   = errors.New("review item not found")
	ErrItemNotFound     = errors.New("shop item not found")
	ErrInvalidReference = errors.New("supplied identifier is unusable")

	// Ownership — the resource exists but belongs to another learner.
	// Distinct from not-found so callers can tell a bad id from a
	// cross-learner access attempt.
	ErrAccessDenied = errors.New("resource belongs to another learner")

	// Preconditions
	ErrHeartsFull         = errors.New("hearts already full")
	ErrQuestAlreadyActive = errors.New("a quest encounter is already active")
	ErrNoStreakFreeze     = errors.New("no streak freezes available")

	// Economy
	ErrInsufficientGold = errors.New("not enough gold")
)
