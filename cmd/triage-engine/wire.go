package main

import (
	"fmt"
	"log/slog"

	"github.com/miradorstack/mirador-triage/internal/cache"
	"github.com/miradorstack/mirador-triage/internal/config"
	"github.com/miradorstack/mirador-triage/internal/engine"
	"github.com/miradorstack/mirador-triage/internal/patterns"
	"github.com/miradorstack/mirador-triage/internal/services"
	"github.com/miradorstack/mirador-triage/internal/specialists"
)

// buildService assembles the committee, generator and cache from cfg. The returned
// closer releases the cache.
func buildService(cfg *config.Config, logger *slog.Logger) (*services.TriageService, func(), error) {
	pack, stats, err := patterns.Load(cfg.Committee.SignaturesPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load signatures: %w", err)
	}
	logger.Info("signature pack ready",
		slog.Int("loaded", stats.Loaded),
		slog.Int("skipped_invalid", stats.SkippedInvalid),
	)

	actions, err := engine.LoadActionBook(cfg.Committee.RecommendationsPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load recommendations: %w", err)
	}
	policy := engine.Policy{
		Thresholds: engine.Thresholds{
			Critical: cfg.Committee.Thresholds.Critical,
			High:     cfg.Committee.Thresholds.High,
			Medium:   cfg.Committee.Thresholds.Medium,
		},
		Scale:   cfg.Committee.Scale,
		Actions: actions,
	}
	if err := policy.Validate(); err != nil {
		return nil, nil, fmt.Errorf("committee policy: %w", err)
	}
	committee := engine.NewStandardCommittee(pack, specialists.IndicatorLists{
		Allow: cfg.Committee.Indicators.Allow,
		Deny:  cfg.Committee.Indicators.Deny,
	}, policy, logger)

	provider, err := cache.New(cache.Config{
		Enabled:  cfg.Cache.Enabled,
		Backend:  cfg.Cache.Backend,
		Capacity: cfg.Cache.Capacity,
		Redis: cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		},
	})
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", slog.Any("error", err))
		provider = cache.NoopProvider{}
	}

	svc := services.NewTriageService(
		logger,
		committee,
		engine.NewPlaybookGenerator(logger),
		provider,
		services.CacheTTLs{Ranking: cfg.Cache.RankingTTL, Playbook: cfg.Cache.PlaybookTTL},
		pack.Len(),
	)
	return svc, func() { _ = provider.Close() }, nil
}
