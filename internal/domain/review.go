package domain

import "time"

// ─── Quizzes, Questions & Answers ───────────────────────────────────────────

// Quiz is a graded set of questions. A quiz may be linked to a catalog
// task; passing the quiz completes that task.
type Quiz struct {
	ID           string `json:"id"`
	WeekID       string `json:"week_id"`
	Title        string `json:"title"`
	LinkedTaskID string `json:"linked_task_id"` // "" when standalone
}

// QuestionType tags how a question is answered and graded.
type QuestionType string

const (
	QuestionMCQ            QuestionType = "mcq"
	QuestionCodeCorrection QuestionType = "code-correction"
	QuestionCoding         QuestionType = "coding"
)

// Question is a catalog entry belonging to a quiz.
type Question struct {
	ID           string       `json:"id"`
	QuizID       string       `json:"quiz_id"`
	Type         QuestionType `json:"question_type"`
	Text         string       `json:"text"`
	Code         string       `json:"code"`    // "" when not a code question
	Options      []string     `json:"options"` // nil for coding exercises
	CorrectIndex int          `json:"correct_index"`
	StarterCode  string       `json:"starter_code"`
	Difficulty   string       `json:"difficulty"`
	TopicTag     string       `json:"topic_tag"`
}

// AnswerKind tags the shape of a submitted answer payload.
type AnswerKind string

const (
	AnswerMultipleChoice AnswerKind = "multiple_choice"
	AnswerCodeCorrection AnswerKind = "code_correction"
	AnswerCodingExercise AnswerKind = "coding_exercise"
)

// Answer is the closed union of answer payloads. Exactly one of the
// payload fields is meaningful, selected by Kind; grading treats any
// kind/question-type mismatch as incorrect rather than guessing.
type Answer struct {
	QuestionID     string     `json:"question_id"`
	Kind           AnswerKind `json:"kind"`
	SelectedIndex  int        `json:"selected_index"`   // multiple_choice, code_correction
	AllTestsPassed bool       `json:"all_tests_passed"` // coding_exercise
}

// ─── Review Queue ───────────────────────────────────────────────────────────

// ReviewItem is one learner's spaced-repetition state for one question.
// Unique per (learner, question); never deleted, only reset.
type ReviewItem struct {
	ID             string    `json:"id"`
	LearnerID      string    `json:"learner_id"`
	QuestionID     string    `json:"question_id"`
	IntervalIndex  int       `json:"interval_index"`
	SuccessCount   int       `json:"success_count"`
	DueAt          time.Time `json:"due_at"`
	Mastered       bool      `json:"mastered"`
	LastReviewedAt time.Time `json:"last_reviewed_at"` // zero = never reviewed
}

// QuizResult is an append-only record of one quiz attempt.
type QuizResult struct {
	ID             string    `json:"id"`
	LearnerID      string    `json:"learner_id"`
	QuizID         string    `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}
