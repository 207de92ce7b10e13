package progression

import (
	"time"

	"github.com/google/uuid"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// QuestStatus describes a learner's active quest for the state payload.
type QuestStatus struct {
	QuestID   string `json:"quest_id"`
	Name      string `json:"name"`
	BossHP    int64  `json:"boss_hp"`
	CurrentHP int64  `json:"current_hp"`
}

// StartQuest begins a boss encounter at full health. Only one quest can
// be active per learner at a time.
func (p *Service) StartQuest(learnerID, questID string, now time.Time) (QuestStatus, error) {
	var status QuestStatus
	err := p.db.Transact(func(s *sqlite.Store) error {
		learner, err := s.GetLearner(learnerID)
		if err != nil {
			return err
		}
		quest, err := s.GetQuest(questID)
		if err != nil {
			return err
		}
		if _, active, err := s.ActiveQuestProgress(learner.ID); err != nil {
			return err
		} else if active {
			return domain.ErrQuestAlreadyActive
		}
		err = s.InsertQuestProgress(domain.QuestProgress{
			ID:              uuid.NewString(),
			LearnerID:       learner.ID,
			QuestID:         quest.ID,
			BossHPRemaining: quest.BossHP,
			StartedAt:       now,
		})
		if err != nil {
			return err
		}
		status = QuestStatus{
			QuestID:   quest.ID,
			Name:      quest.Name,
			BossHP:    quest.BossHP,
			CurrentHP: quest.BossHP,
		}
		return nil
	})
	return status, err
}

// ActiveQuest returns the learner's in-flight quest, if any.
func (p *Service) ActiveQuest(learnerID string) (QuestStatus, bool, error) {
	var (
		status QuestStatus
		found  bool
	)
	err := p.db.Transact(func(s *sqlite.Store) error {
		progress, active, err := s.ActiveQuestProgress(learnerID)
		if err != nil || !active {
			return err
		}
		quest, err := s.GetQuest(progress.QuestID)
		if err != nil {
			return err
		}
		status = QuestStatus{
			QuestID:   quest.ID,
			Name:      quest.Name,
			BossHP:    quest.BossHP,
			CurrentHP: progress.BossHPRemaining,
		}
		found = true
		return nil
	})
	return status, found, err
}

type questOutcome struct {
	Completed    bool
	BonusXP      int64
	BadgeAwarded string
}

// applyQuestDamage deals difficulty-scaled damage to the learner's active
// quest boss. Reaching zero HP completes the quest, pays out its bonus
// XP, and grants its badge if one is attached. No active quest is a
// silent no-op.
func applyQuestDamage(s *sqlite.Store, learnerID, difficulty string, now time.Time) (questOutcome, error) {
	progress, active, err := s.ActiveQuestProgress(learnerID)
	if err != nil || !active {
		return questOutcome{}, err
	}

	damage := ScaledReward(questDamageBase, difficulty)
	newHP := progress.BossHPRemaining - damage
	if newHP > 0 {
		return questOutcome{}, s.SetQuestHP(progress.ID, newHP)
	}

	if err := s.CompleteQuestProgress(progress.ID, now); err != nil {
		return questOutcome{}, err
	}
	quest, err := s.GetQuest(progress.QuestID)
	if err != nil {
		return questOutcome{}, err
	}
	out := questOutcome{Completed: true, BonusXP: quest.RewardXPBonus}
	if quest.RewardBadgeID != "" {
		grant, err := awardBadge(s, learnerID, quest.RewardBadgeID, now)
		if err != nil {
			return questOutcome{}, err
		}
		if grant.Awarded {
			out.BadgeAwarded = quest.RewardBadgeID
		}
	}
	return out, nil
}
