package progression

import (
	"time"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/metrics"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// shopItems is the fixed store catalog. Prices are gold.
var shopItems = []domain.ShopItem{
	{ID: "streak_freeze", Name: "Streak Freeze", Description: "Protects your streak for one missed day.", Price: 50, Effect: domain.EffectStreakFreeze},
	{ID: "potion_focus", Name: "Focus Potion", Description: "Restores focus points to full.", Price: 20, Effect: domain.EffectFocusRefill},
	{ID: "heart_refill", Name: "Heart Refill", Description: "Restores one heart.", Price: 100, Effect: domain.EffectHeartRefill},
}

// Catalog lists everything the shop sells.
func (p *Service) Catalog() []domain.ShopItem {
	items := make([]domain.ShopItem, len(shopItems))
	copy(items, shopItems)
	return items
}

func shopItem(itemID string) (domain.ShopItem, bool) {
	for _, it := range shopItems {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.ShopItem{}, false
}

// PurchaseResult reports a successful shop transaction.
type PurchaseResult struct {
	ItemID            string `json:"item_id"`
	GoldSpent         int64  `json:"gold_spent"`
	NewGold           int64  `json:"new_gold"`
	Hearts            int    `json:"hearts"`
	FocusPoints       int    `json:"focus_points"`
	StreakFreezeCount int    `json:"streak_freeze_count"`
}

// BuyItem debits the item's price and applies its effect atomically.
// A heart refill at full hearts fails with ErrHeartsFull before any
// gold moves.
func (p *Service) BuyItem(learnerID, itemID string) (PurchaseResult, error) {
	var res PurchaseResult
	err := p.db.Transact(func(s *sqlite.Store) error {
		item, ok := shopItem(itemID)
		if !ok {
			return domain.ErrItemNotFound
		}
		learner, err := s.GetLearner(learnerID)
		if err != nil {
			return err
		}
		if learner.Gold < item.Price {
			return domain.ErrInsufficientGold
		}
		switch item.Effect {
		case domain.EffectStreakFreeze:
			learner.StreakFreezeCount++
		case domain.EffectFocusRefill:
			learner.FocusPoints = domain.FocusCap
		case domain.EffectHeartRefill:
			if learner.Hearts >= domain.HeartsCap {
				return domain.ErrHeartsFull
			}
			learner.Hearts++
		}
		learner.Gold -= item.Price
		if err := s.SaveLearner(learner); err != nil {
			return err
		}
		res = PurchaseResult{
			ItemID:            item.ID,
			GoldSpent:         item.Price,
			NewGold:           learner.Gold,
			Hearts:            learner.Hearts,
			FocusPoints:       learner.FocusPoints,
			StreakFreezeCount: learner.StreakFreezeCount,
		}
		return nil
	})
	if err == nil {
		metrics.Purchases.WithLabelValues(itemID).Inc()
	}
	return res, err
}

// UseStreakFreeze consumes one streak freeze and stamps today as
// activity, so the streak survives the missed day.
func (p *Service) UseStreakFreeze(learnerID string, now time.Time) (int, error) {
	var remaining int
	err := p.db.Transact(func(s *sqlite.Store) error {
		learner, err := s.GetLearner(learnerID)
		if err != nil {
			return err
		}
		if learner.StreakFreezeCount <= 0 {
			return domain.ErrNoStreakFreeze
		}
		learner.StreakFreezeCount--
		learner.LastActivityAt = now
		if err := s.SaveLearner(learner); err != nil {
			return err
		}
		remaining = learner.StreakFreezeCount
		return nil
	})
	return remaining, err
}
