// Package importer loads a curriculum catalog from a JSON document.
// Documents carry author-side refs; the importer assigns fresh ids and
// resolves every cross-reference through a per-import remap table, so the
// same document can be imported into different databases without
// colliding.
package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// Document is the import file format. Badges and achievements use stable
// business ids (the progression engine looks them up by name); everything
// else uses document-local refs.
type Document struct {
	Courses      []CourseDoc      `json:"courses"`
	Quests       []QuestDoc       `json:"quests"`
	Badges       []BadgeDoc       `json:"badges"`
	Achievements []AchievementDoc `json:"achievements"`
	Quizzes      []QuizDoc        `json:"quizzes"`
}

type CourseDoc struct {
	Ref           string    `json:"ref"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	SequenceOrder int       `json:"sequence_order"`
	Weeks         []WeekDoc `json:"weeks"`
}

type WeekDoc struct {
	Ref         string    `json:"ref"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	WeekNumber  int       `json:"week_number"`
	IsLocked    bool      `json:"is_locked"`
	Tasks       []TaskDoc `json:"tasks"`
}

type TaskDoc struct {
	Ref               string `json:"ref"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	TaskType          string `json:"task_type"`
	Difficulty        string `json:"difficulty"`
	XPReward          int64  `json:"xp_reward"`
	EstimatedMinutes  int    `json:"estimated_minutes"`
	RequiredForStreak bool   `json:"required_for_streak"`
}

type QuestDoc struct {
	Ref           string `json:"ref"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	BossHP        int64  `json:"boss_hp"`
	RewardXPBonus int64  `json:"reward_xp_bonus"`
	RewardBadgeID string `json:"reward_badge_id"`
}

type BadgeDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPValue     int64  `json:"xp_value"`
	Difficulty  string `json:"difficulty"`
}

type AchievementDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPValue     int64  `json:"xp_value"`
	Difficulty  string `json:"difficulty"`
}

type QuizDoc struct {
	Ref        string        `json:"ref"`
	Week       string        `json:"week"`
	Title      string        `json:"title"`
	LinkedTask string        `json:"linked_task"`
	Questions  []QuestionDoc `json:"questions"`
}

type QuestionDoc struct {
	Type         string   `json:"question_type"`
	Text         string   `json:"text"`
	Code         string   `json:"code"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	StarterCode  string   `json:"starter_code"`
	Difficulty   string   `json:"difficulty"`
	TopicTag     string   `json:"topic_tag"`
}

// Result reports what an import wrote.
type Result struct {
	Courses      int `json:"courses"`
	Weeks        int `json:"weeks"`
	Tasks        int `json:"tasks"`
	Quests       int `json:"quests"`
	Badges       int `json:"badges"`
	Achievements int `json:"achievements"`
	Quizzes      int `json:"quizzes"`
	Questions    int `json:"questions"`
}

// remap translates document refs to assigned database ids. One table per
// import; refs from one document can never leak into another.
type remap map[string]string

// assign mints an id for a new ref. Reusing a ref within one document is
// an authoring error.
func (m remap) assign(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty ref", domain.ErrInvalidReference)
	}
	if _, dup := m[ref]; dup {
		return "", fmt.Errorf("%w: duplicate ref %q", domain.ErrInvalidReference, ref)
	}
	id := uuid.NewString()
	m[ref] = id
	return id, nil
}

// resolve looks up a previously assigned ref.
func (m remap) resolve(ref string) (string, error) {
	id, ok := m[ref]
	if !ok {
		return "", fmt.Errorf("%w: unknown ref %q", domain.ErrInvalidReference, ref)
	}
	return id, nil
}

// Import reads a JSON document and writes the whole catalog in one
// transaction: either the entire document lands or none of it does.
func Import(db *sqlite.DB, r io.Reader) (Result, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("decode document: %w", err)
	}

	var res Result
	err := db.Transact(func(s *sqlite.Store) error {
		refs := remap{}

		for _, c := range doc.Courses {
			courseID, err := refs.assign(c.Ref)
			if err != nil {
				return err
			}
			err = s.InsertCourse(domain.Course{
				ID:            courseID,
				Title:         c.Title,
				Description:   c.Description,
				SequenceOrder: c.SequenceOrder,
				IsActive:      true,
			})
			if err != nil {
				return fmt.Errorf("course %q: %w", c.Ref, err)
			}
			res.Courses++

			for _, w := range c.Weeks {
				weekID, err := refs.assign(w.Ref)
				if err != nil {
					return err
				}
				err = s.InsertWeek(domain.Week{
					ID:          weekID,
					CourseID:    courseID,
					Title:       w.Title,
					Description: w.Description,
					WeekNumber:  w.WeekNumber,
					IsLocked:    w.IsLocked,
				})
				if err != nil {
					return fmt.Errorf("week %q: %w", w.Ref, err)
				}
				res.Weeks++

				for _, t := range w.Tasks {
					taskID, err := refs.assign(t.Ref)
					if err != nil {
						return err
					}
					err = s.InsertTask(domain.Task{
						ID:                taskID,
						WeekID:            weekID,
						Title:             t.Title,
						Description:       t.Description,
						TaskType:          t.TaskType,
						Difficulty:        t.Difficulty,
						XPReward:          t.XPReward,
						EstimatedMinutes:  t.EstimatedMinutes,
						RequiredForStreak: t.RequiredForStreak,
					})
					if err != nil {
						return fmt.Errorf("task %q: %w", t.Ref, err)
					}
					res.Tasks++
				}
			}
		}

		// Badges before quests: quests reference badges by business id.
		for _, b := range doc.Badges {
			if b.ID == "" {
				return fmt.Errorf("%w: badge without id", domain.ErrInvalidReference)
			}
			err := s.InsertBadge(domain.Badge{
				ID:          b.ID,
				Name:        b.Name,
				Description: b.Description,
				XPValue:     b.XPValue,
				Difficulty:  b.Difficulty,
			})
			if err != nil {
				return fmt.Errorf("badge %q: %w", b.ID, err)
			}
			res.Badges++
		}

		for _, a := range doc.Achievements {
			if a.ID == "" {
				return fmt.Errorf("%w: achievement without id", domain.ErrInvalidReference)
			}
			err := s.InsertAchievement(domain.Achievement{
				ID:          a.ID,
				Name:        a.Name,
				Description: a.Description,
				XPValue:     a.XPValue,
				Difficulty:  a.Difficulty,
			})
			if err != nil {
				return fmt.Errorf("achievement %q: %w", a.ID, err)
			}
			res.Achievements++
		}

		for _, q := range doc.Quests {
			questID, err := refs.assign(q.Ref)
			if err != nil {
				return err
			}
			if q.RewardBadgeID != "" {
				if _, ok, err := s.GetBadge(q.RewardBadgeID); err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("%w: quest %q references unknown badge %q",
						domain.ErrInvalidReference, q.Ref, q.RewardBadgeID)
				}
			}
			err = s.InsertQuest(domain.Quest{
				ID:            questID,
				Name:          q.Name,
				Description:   q.Description,
				BossHP:        q.BossHP,
				RewardXPBonus: q.RewardXPBonus,
				RewardBadgeID: q.RewardBadgeID,
			})
			if err != nil {
				return fmt.Errorf("quest %q: %w", q.Ref, err)
			}
			res.Quests++
		}

		for _, q := range doc.Quizzes {
			quizID, err := refs.assign(q.Ref)
			if err != nil {
				return err
			}
			weekID := ""
			if q.Week != "" {
				weekID, err = refs.resolve(q.Week)
				if err != nil {
					return fmt.Errorf("quiz %q week: %w", q.Ref, err)
				}
			}
			linkedTaskID := ""
			if q.LinkedTask != "" {
				linkedTaskID, err = refs.resolve(q.LinkedTask)
				if err != nil {
					return fmt.Errorf("quiz %q linked task: %w", q.Ref, err)
				}
			}
			err = s.InsertQuiz(domain.Quiz{
				ID:           quizID,
				WeekID:       weekID,
				Title:        q.Title,
				LinkedTaskID: linkedTaskID,
			})
			if err != nil {
				return fmt.Errorf("quiz %q: %w", q.Ref, err)
			}
			res.Quizzes++

			for i, qq := range q.Questions {
				err := s.InsertQuestion(domain.Question{
					ID:           uuid.NewString(),
					QuizID:       quizID,
					Type:         domain.QuestionType(qq.Type),
					Text:         qq.Text,
					Code:         qq.Code,
					Options:      qq.Options,
					CorrectIndex: qq.CorrectIndex,
					StarterCode:  qq.StarterCode,
					Difficulty:   qq.Difficulty,
					TopicTag:     qq.TopicTag,
				})
				if err != nil {
					return fmt.Errorf("quiz %q question %d: %w", q.Ref, i, err)
				}
				res.Questions++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
