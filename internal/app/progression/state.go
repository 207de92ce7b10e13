package progression

import (
	"sort"
	"time"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// State is the learner snapshot the client renders its HUD from.
type State struct {
	LearnerID         string       `json:"learner_id"`
	Username          string       `json:"username"`
	Level             int          `json:"level"`
	XP                int64        `json:"xp"`
	XPForNextLevel    int64        `json:"xp_for_next_level"`
	Gold              int64        `json:"gold"`
	Hearts            int          `json:"hearts"`
	FocusPoints       int          `json:"focus_points"`
	Streak            int          `json:"streak"`
	BestStreak        int          `json:"best_streak"`
	StreakFreezeCount int          `json:"streak_freeze_count"`
	ActiveQuest       *QuestStatus `json:"active_quest,omitempty"`
}

// GetState returns the learner's current state. Focus points refresh to
// the cap on the first read of each UTC day; this is the one read path
// that writes.
func (p *Service) GetState(learnerID string, now time.Time) (State, error) {
	var state State
	err := p.db.Transact(func(s *sqlite.Store) error {
		learner, err := s.GetLearner(learnerID)
		if err != nil {
			return err
		}
		if dayIndex(now) > dayIndex(learner.FocusRefreshedAt) {
			learner.FocusPoints = domain.FocusCap
			learner.FocusRefreshedAt = now
			if err := s.SaveLearner(learner); err != nil {
				return err
			}
		}
		state = State{
			LearnerID:         learner.ID,
			Username:          learner.Username,
			Level:             learner.Level,
			XP:                learner.XP,
			XPForNextLevel:    XPForLevel(learner.Level),
			Gold:              learner.Gold,
			Hearts:            learner.Hearts,
			FocusPoints:       learner.FocusPoints,
			Streak:            learner.Streak,
			BestStreak:        learner.BestStreak,
			StreakFreezeCount: learner.StreakFreezeCount,
		}
		progress, active, err := s.ActiveQuestProgress(learner.ID)
		if err != nil || !active {
			return err
		}
		quest, err := s.GetQuest(progress.QuestID)
		if err != nil {
			return err
		}
		state.ActiveQuest = &QuestStatus{
			QuestID:   quest.ID,
			Name:      quest.Name,
			BossHP:    quest.BossHP,
			CurrentHP: progress.BossHPRemaining,
		}
		return nil
	})
	return state, err
}

// ProgressSummary aggregates catalog completion for a learner.
type ProgressSummary struct {
	CompletedTasks int     `json:"completed_tasks"`
	TotalTasks     int     `json:"total_tasks"`
	Percent        float64 `json:"percent"`
	BadgeCount     int     `json:"badge_count"`
}

// GetProgress reports how much of the catalog the learner has finished.
func (p *Service) GetProgress(learnerID string) (ProgressSummary, error) {
	var summary ProgressSummary
	err := p.db.Transact(func(s *sqlite.Store) error {
		if _, err := s.GetLearner(learnerID); err != nil {
			return err
		}
		completed, err := s.CountCompletedTasks(learnerID)
		if err != nil {
			return err
		}
		total, err := s.CountTasks()
		if err != nil {
			return err
		}
		badges, err := s.ListBadgeGrants(learnerID)
		if err != nil {
			return err
		}
		summary = ProgressSummary{
			CompletedTasks: completed,
			TotalTasks:     total,
			BadgeCount:     len(badges),
		}
		if total > 0 {
			summary.Percent = float64(completed) / float64(total) * 100
		}
		return nil
	})
	return summary, err
}

// TaskStatus pairs a catalog task with the learner's completion state.
type TaskStatus struct {
	domain.Task
	Completed bool `json:"completed"`
}

// WeekTasks lists one week's tasks with the learner's completion state.
// An unknown week is an empty list.
func (p *Service) WeekTasks(learnerID, weekID string) ([]TaskStatus, error) {
	var statuses []TaskStatus
	err := p.db.Transact(func(s *sqlite.Store) error {
		if _, err := s.GetLearner(learnerID); err != nil {
			return err
		}
		tasks, err := s.ListTasksByWeek(weekID)
		if err != nil {
			return err
		}
		done, err := s.ListCompletedTasks(learnerID)
		if err != nil {
			return err
		}
		completed := make(map[string]bool, len(done))
		for _, c := range done {
			completed[c.TaskID] = true
		}
		statuses = make([]TaskStatus, len(tasks))
		for i, t := range tasks {
			statuses[i] = TaskStatus{Task: t, Completed: completed[t.ID]}
		}
		return nil
	})
	return statuses, err
}

// CalendarDay is one day of activity on the heatmap.
type CalendarDay struct {
	Date      string `json:"date"` // YYYY-MM-DD, UTC
	Count     int    `json:"count"`
	Intensity int    `json:"intensity"` // 0..4
}

// GetCalendar buckets completions into UTC days for the activity heatmap.
// Intensity grows one step per two completions, capped at 4.
func (p *Service) GetCalendar(learnerID string) ([]CalendarDay, error) {
	var days []CalendarDay
	err := p.db.Transact(func(s *sqlite.Store) error {
		completions, err := s.ListCompletedTasks(learnerID)
		if err != nil {
			return err
		}
		counts := make(map[string]int)
		for _, c := range completions {
			if c.CompletedAt.IsZero() {
				continue
			}
			counts[c.CompletedAt.UTC().Format("2006-01-02")]++
		}
		days = make([]CalendarDay, 0, len(counts))
		for date, count := range counts {
			intensity := (count + 1) / 2
			if intensity > 4 {
				intensity = 4
			}
			days = append(days, CalendarDay{Date: date, Count: count, Intensity: intensity})
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
		return nil
	})
	return days, err
}

// LeaderboardEntry is one public ranking row.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int64  `json:"xp"`
	Streak   int    `json:"streak"`
}

// Leaderboard ranks learners by lifetime XP, highest first.
func (p *Service) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []LeaderboardEntry
	err := p.db.Transact(func(s *sqlite.Store) error {
		learners, err := s.TopLearnersByXP(limit)
		if err != nil {
			return err
		}
		entries = make([]LeaderboardEntry, len(learners))
		for i, l := range learners {
			entries[i] = LeaderboardEntry{
				Rank:     i + 1,
				Username: l.Username,
				Level:    l.Level,
				XP:       l.XP,
				Streak:   l.Streak,
			}
		}
		return nil
	})
	return entries, err
}
