package progression

import (
	"fmt"
	"time"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// StreakBadges maps a streak length reached during a completion to the
// badge it earns.
var StreakBadges = map[int]string{
	3:  "b-streak-3",
	7:  "b-streak-7",
	14: "b-streak-14",
	30: "b-streak-30",
}

// TaskCountAchievements maps a lifetime completed-task count to the
// achievement it earns.
var TaskCountAchievements = map[int]string{
	1:   "a-first-task",
	10:  "a-ten-tasks",
	50:  "a-fifty-tasks",
	100: "a-hundred-tasks",
}

// grantOutcome reports what a badge/achievement grant attempt did.
// A repeat grant or an unknown catalog id is a no-op, not an error.
type grantOutcome struct {
	Awarded   bool
	XPBonus   int64
	GoldBonus int64
}

// awardBadge idempotently grants a badge inside the caller's transaction.
// The bonus is the badge's XP value plus a tenth of it in gold.
func awardBadge(s *sqlite.Store, learnerID, badgeID string, now time.Time) (grantOutcome, error) {
	if held, err := s.HasBadge(learnerID, badgeID); err != nil {
		return grantOutcome{}, fmt.Errorf("award badge %s: %w", badgeID, err)
	} else if held {
		return grantOutcome{}, nil
	}

	badge, ok, err := s.GetBadge(badgeID)
	if err != nil {
		return grantOutcome{}, fmt.Errorf("award badge %s: %w", badgeID, err)
	}
	if !ok {
		return grantOutcome{}, nil // badge not in catalog — nothing to grant
	}

	fresh, err := s.GrantBadge(learnerID, badge.ID, now)
	if err != nil {
		return grantOutcome{}, fmt.Errorf("award badge %s: %w", badgeID, err)
	}
	if !fresh {
		return grantOutcome{}, nil
	}

	return grantOutcome{
		Awarded:   true,
		XPBonus:   badge.XPValue,
		GoldBonus: badge.XPValue / 10,
	}, nil
}

// awardAchievement mirrors awardBadge for the achievement catalog.
func awardAchievement(s *sqlite.Store, learnerID, achievementID string, now time.Time) (grantOutcome, error) {
	achievement, ok, err := s.GetAchievement(achievementID)
	if err != nil {
		return grantOutcome{}, fmt.Errorf("award achievement %s: %w", achievementID, err)
	}
	if !ok {
		return grantOutcome{}, nil
	}

	fresh, err := s.GrantAchievement(learnerID, achievement.ID, now)
	if err != nil {
		return grantOutcome{}, fmt.Errorf("award achievement %s: %w", achievementID, err)
	}
	if !fresh {
		return grantOutcome{}, nil
	}

	return grantOutcome{
		Awarded:   true,
		XPBonus:   achievement.XPValue,
		GoldBonus: achievement.XPValue / 10,
	}, nil
}

// Badges returns a learner's earned badges, newest first.
func (p *Service) Badges(learnerID string) ([]domain.BadgeGrant, error) {
	if _, err := p.db.GetLearner(learnerID); err != nil {
		return nil, err
	}
	return p.db.ListBadgeGrants(learnerID)
}
