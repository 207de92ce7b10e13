package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const sampleDoc = `{
	"courses": [{
		"ref": "course-go",
		"title": "Go Fundamentals",
		"sequence_order": 1,
		"weeks": [{
			"ref": "week-1",
			"title": "Basics",
			"week_number": 1,
			"tasks": [
				{"ref": "task-hello", "title": "Hello World", "task_type": "exercise", "difficulty": "easy", "xp_reward": 100, "required_for_streak": true},
				{"ref": "task-types", "title": "Types", "task_type": "quiz", "difficulty": "normal", "xp_reward": 100}
			]
		}]
	}],
	"badges": [{"id": "b-boss", "name": "Boss Slayer", "xp_value": 40}],
	"achievements": [{"id": "a-first-task", "name": "First Steps", "xp_value": 30}],
	"quests": [{"ref": "quest-1", "name": "The Gauntlet", "boss_hp": 30, "reward_xp_bonus": 200, "reward_badge_id": "b-boss"}],
	"quizzes": [{
		"ref": "quiz-types",
		"week": "week-1",
		"title": "Types Quiz",
		"linked_task": "task-types",
		"questions": [
			{"question_type": "mcq", "text": "?", "options": ["a", "b"], "correct_index": 0},
			{"question_type": "coding", "text": "write it", "starter_code": "func f() {}"}
		]
	}]
}`

func TestImport(t *testing.T) {
	db := testDB(t)

	res, err := Import(db, strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	want := Result{Courses: 1, Weeks: 1, Tasks: 2, Quests: 1, Badges: 1, Achievements: 1, Quizzes: 1, Questions: 2}
	if res != want {
		t.Errorf("Result = %+v, want %+v", res, want)
	}

	// Refs got fresh ids; cross-references resolve to the same row.
	total, err := db.CountTasks()
	if err != nil || total != 2 {
		t.Fatalf("CountTasks = %d (%v)", total, err)
	}
}

func TestImport_RemapIsolatesDocuments(t *testing.T) {
	db := testDB(t)

	if _, err := Import(db, strings.NewReader(sampleDoc)); err != nil {
		t.Fatal(err)
	}
	// A second import of a similar document must mint fresh ids for the
	// same refs rather than colliding. Badges collide because they keep
	// their business ids, so the second document uses different ones.
	second := strings.NewReplacer(
		`"b-boss"`, `"b-boss-2"`,
		`"a-first-task"`, `"a-tenth-task"`,
	).Replace(sampleDoc)
	if _, err := Import(db, strings.NewReader(second)); err != nil {
		t.Fatalf("second import: %v", err)
	}

	total, _ := db.CountTasks()
	if total != 4 {
		t.Errorf("CountTasks = %d after two imports, want 4", total)
	}
}

func TestImport_UnknownLinkedTask(t *testing.T) {
	db := testDB(t)
	doc := `{
		"quizzes": [{"ref": "quiz-1", "title": "Quiz", "linked_task": "task-never-defined", "questions": []}]
	}`
	_, err := Import(db, strings.NewReader(doc))
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Errorf("err = %v, want ErrInvalidReference", err)
	}
}

func TestImport_UnknownQuestBadge(t *testing.T) {
	db := testDB(t)
	doc := `{
		"quests": [{"ref": "quest-1", "name": "Q", "boss_hp": 10, "reward_badge_id": "b-missing"}]
	}`
	_, err := Import(db, strings.NewReader(doc))
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Errorf("err = %v, want ErrInvalidReference", err)
	}
}

func TestImport_DuplicateRef(t *testing.T) {
	db := testDB(t)
	doc := `{
		"courses": [
			{"ref": "c", "title": "One", "weeks": []},
			{"ref": "c", "title": "Two", "weeks": []}
		]
	}`
	_, err := Import(db, strings.NewReader(doc))
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Errorf("err = %v, want ErrInvalidReference for duplicate ref", err)
	}
}

func TestImport_AtomicOnFailure(t *testing.T) {
	db := testDB(t)
	// The catalog half is valid, the quest half is not: nothing lands.
	doc := `{
		"courses": [{
			"ref": "course-go", "title": "Go",
			"weeks": [{"ref": "w1", "title": "W1", "week_number": 1,
				"tasks": [{"ref": "t1", "title": "T1", "task_type": "exercise", "difficulty": "easy", "xp_reward": 50}]}]
		}],
		"quests": [{"ref": "q1", "name": "Q", "boss_hp": 10, "reward_badge_id": "b-missing"}]
	}`
	if _, err := Import(db, strings.NewReader(doc)); err == nil {
		t.Fatal("import with a bad quest succeeded")
	}
	total, _ := db.CountTasks()
	if total != 0 {
		t.Errorf("CountTasks = %d after failed import, want rollback to 0", total)
	}
}

func TestImport_MalformedJSON(t *testing.T) {
	db := testDB(t)
	if _, err := Import(db, strings.NewReader(`{"courses": [`)); err == nil {
		t.Error("malformed document accepted")
	}
}
