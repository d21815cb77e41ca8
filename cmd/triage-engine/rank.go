package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-triage/internal/api"
	"github.com/miradorstack/mirador-triage/internal/client"
	"github.com/miradorstack/mirador-triage/internal/grpc/triagev1"
	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/repo"
	"github.com/miradorstack/mirador-triage/internal/services"
)

type rankedAlert struct {
	AlertID string                         `json:"alertId"`
	Ranking *triagev1.AlertFidelityRanking `json:"ranking,omitempty"`
	Error   string                         `json:"error,omitempty"`
}

func newRankCmd(opts *rootOptions) *cobra.Command {
	var (
		file        string
		alertIDs    []string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the alerts in a document with the fidelity committee",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := repo.LoadCatalog(file)
			if err != nil {
				return err
			}
			reqs, err := selectAlerts(catalog, alertIDs)
			if err != nil {
				return err
			}

			rank, closeRanker, err := ranker(opts)
			if err != nil {
				return err
			}
			defer closeRanker()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results, err := services.RankBatch(ctx, rank, reqs, concurrency)
			if err != nil {
				return err
			}
			return writeRankings(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "alert document (YAML or JSON)")
	cmd.Flags().StringSliceVar(&alertIDs, "alert", nil, "rank only these alert ids")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum alerts ranked at once")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func selectAlerts(catalog *repo.Catalog, ids []string) ([]models.FidelityRequest, error) {
	if len(ids) == 0 {
		reqs := make([]models.FidelityRequest, 0, len(catalog.Alerts))
		for _, alert := range catalog.Alerts {
			reqs = append(reqs, alert.FidelityRequest())
		}
		return reqs, nil
	}
	reqs := make([]models.FidelityRequest, 0, len(ids))
	for _, id := range ids {
		alert, ok := catalog.Alert(id)
		if !ok {
			return nil, fmt.Errorf("alert %s not found", id)
		}
		reqs = append(reqs, alert.FidelityRequest())
	}
	return reqs, nil
}

// ranker returns the remote client when --remote is set and the in-process
// service otherwise.
func ranker(opts *rootOptions) (services.RankFunc, func(), error) {
	if opts.remote != "" {
		c, err := newRemote(opts)
		if err != nil {
			return nil, nil, err
		}
		return c.Rank, func() { _ = c.Close() }, nil
	}
	svc, closeService, err := buildService(opts.cfg, opts.logger)
	if err != nil {
		return nil, nil, err
	}
	return svc.Rank, closeService, nil
}

func newRemote(opts *rootOptions) (*client.Client, error) {
	return client.New(client.Config{
		Address: opts.cfg.Client.Address,
		Timeout: opts.cfg.Client.Timeout,
		Retries: opts.cfg.Client.Retries,
		Backoff: opts.cfg.Client.Backoff,
	}, opts.logger)
}

func writeRankings(w io.Writer, results []services.BatchResult) error {
	out := make([]rankedAlert, 0, len(results))
	for _, res := range results {
		entry := rankedAlert{AlertID: res.AlertID}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		} else {
			entry.Ranking = api.ToWireRanking(res.Ranking)
		}
		out = append(out, entry)
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
