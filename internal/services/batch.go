package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/miradorstack/mirador-triage/internal/models"
)

// RankFunc scores one alert, in-process or remotely.
type RankFunc func(ctx context.Context, req models.FidelityRequest) (models.AlertFidelityRanking, error)

// BatchResult is the outcome for one alert of a batch.
type BatchResult struct {
	AlertID string
	Ranking models.AlertFidelityRanking
	Err     error
}

// RankBatch ranks reqs with at most limit concurrent calls. Results keep the input
// order; per-alert failures are reported in BatchResult.Err and only cancellation of
// ctx aborts the batch.
func RankBatch(ctx context.Context, rank RankFunc, reqs []models.FidelityRequest, limit int) ([]BatchResult, error) {
	if limit <= 0 {
		limit = 4
	}
	results := make([]BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranking, err := rank(gctx, req)
			results[i] = BatchResult{AlertID: req.AlertID, Ranking: ranking, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
