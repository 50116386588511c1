package app

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/catalog"
	"github.com/Carveion/JUNKFU-V2/internal/config"
	"github.com/Carveion/JUNKFU-V2/internal/estimator"
	"github.com/Carveion/JUNKFU-V2/internal/service"
	"github.com/Carveion/JUNKFU-V2/internal/store"
)

// Core is the storage-backed part shared by the CLI and the daemon.
type Core struct {
	Clock    clockwork.Clock
	Repo     *store.SQLiteRepo
	Catalog  *catalog.Catalog
	Logbook  *service.Logbook
	Profiles *service.Profiles
}

// OpenCore opens the database and builds the services on top of it.
// Profile changes reach a running daemon through its profile watcher, so
// the services here do not drive a scheduler.
func OpenCore(ctx context.Context, cfg config.Config, log *zap.Logger, clock clockwork.Clock) (*Core, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	repo, err := store.OpenSQLite(ctx, cfg.DBPath, store.WithClock(clock))
	if err != nil {
		return nil, err
	}
	est := NewEstimator(cfg, log)
	return &Core{
		Clock:    clock,
		Repo:     repo,
		Catalog:  cat,
		Logbook:  service.NewLogbook(repo, repo, cat, est, clock, log),
		Profiles: service.NewProfiles(repo, repo, cat, est, nil, log),
	}, nil
}

func (c *Core) Close() error {
	return c.Repo.Close()
}

// NewEstimator returns the Claude estimator, or a disabled one when no API
// key is configured.
func NewEstimator(cfg config.Config, log *zap.Logger) estimator.Estimator {
	if cfg.AnthropicAPIKey == "" {
		log.Debug("estimator disabled, ANTHROPIC_API_KEY is not set")
		return estimator.Disabled{}
	}
	return estimator.NewClaude(estimator.Config{
		APIKey:  cfg.AnthropicAPIKey,
		BaseURL: cfg.AnthropicBaseURL,
		Model:   cfg.EstimatorModel,
		Timeout: cfg.EstimatorTimeout,
	}, log)
}
