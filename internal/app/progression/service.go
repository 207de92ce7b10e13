package progression

import (
	"github.com/google/uuid"

	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// Service runs the progression operations against the store. Every
// mutating method executes as one transaction; derived fields (level) are
// recomputed from just-read values, never from cached state.
type Service struct {
	db *sqlite.DB
}

// NewService creates a progression service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// EnsureLearner finds or creates the learner for an identity-provider
// subject. Idempotent; an existing learner keeps all progress and only
// picks up a changed username.
func (p *Service) EnsureLearner(externalID, username string) (domain.Learner, error) {
	var learner domain.Learner
	err := p.db.Transact(func(s *sqlite.Store) error {
		existing, err := s.GetLearnerByExternalID(externalID)
		if err == nil {
			if username != "" && existing.Username != username {
				existing.Username = username
				if err := s.SaveLearner(existing); err != nil {
					return err
				}
			}
			learner = existing
			return nil
		}
		if err != domain.ErrLearnerNotFound {
			return err
		}

		if username == "" {
			username = "Anonymous"
		}
		learner = domain.NewLearner(uuid.NewString(), externalID, username)
		return s.InsertLearner(learner)
	})
	return learner, err
}
