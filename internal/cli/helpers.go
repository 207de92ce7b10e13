package cli

import (
	"fmt"

	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/daemon"
	"github.com/questline-app/questline/internal/domain"
	"github.com/questline-app/questline/internal/infra/sqlite"
)

// openStore opens the configured database. Callers must Close it.
func openStore() (*sqlite.DB, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}
	dir := cfg.Store.Dir
	if dir == "" {
		dir = daemon.Home()
	}
	return sqlite.Open(dir)
}

// currentLearner resolves the --learner flag to a learner record,
// creating it on first use.
func currentLearner(prog *progression.Service) (domain.Learner, error) {
	learner, err := prog.EnsureLearner(learnerFlag, "")
	if err != nil {
		return domain.Learner{}, fmt.Errorf("resolve learner %q: %w", learnerFlag, err)
	}
	return learner, nil
}
