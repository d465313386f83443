package cli

import (
	"fmt"

	"github.com/snapdeck/snapdeck-review-engine/internal/adapters/repository"
	"github.com/snapdeck/snapdeck-review-engine/internal/config"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/services"
)

// env bundles the wired-up services every command needs.
type env struct {
	cfg   config.Config
	store *repository.SQLiteStore
	queue *services.QueueService
	quota *services.QuotaService
	stats *services.StatsService
}

func openEnv(cfgPath string) (*env, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	store, err := repository.OpenSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	quota := services.NewQuotaService(store.Logs(), repository.StaticConfigSource{Limit: cfg.DailyNewLimit})
	queue := services.NewQueueService(store.Items(), store.States(), store.Logs(), store.Sessions(), quota, cfg.Scheduler)
	stats := services.NewStatsService(store.Logs())

	return &env{
		cfg:   cfg,
		store: store,
		queue: queue,
		quota: quota,
		stats: stats,
	}, nil
}

func (e *env) close() {
	e.store.Close()
}
