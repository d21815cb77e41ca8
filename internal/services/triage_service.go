package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/mirador-triage/internal/api"
	"github.com/miradorstack/mirador-triage/internal/cache"
	"github.com/miradorstack/mirador-triage/internal/grpc/triagev1"
	"github.com/miradorstack/mirador-triage/internal/metrics"
	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

// Ranker scores a single alert.
type Ranker interface {
	Rank(req models.FidelityRequest) (models.AlertFidelityRanking, error)
}

// PlaybookBuilder produces a response playbook for an incident.
type PlaybookBuilder interface {
	Generate(req models.PlaybookRequest) (models.Playbook, error)
}

// CacheTTLs controls how long each result kind stays cached.
type CacheTTLs struct {
	Ranking  time.Duration
	Playbook time.Duration
}

// TriageService implements the gRPC TriageEngine service and the in-process CLI path.
type TriageService struct {
	triagev1.UnimplementedTriageEngineServer

	logger     *slog.Logger
	committee  Ranker
	playbooks  PlaybookBuilder
	cache      cache.Provider
	ttls       CacheTTLs
	latencies  *utils.LatencyTracker
	signatures int
}

// NewTriageService constructs the triage service facade. A nil cache disables caching.
func NewTriageService(logger *slog.Logger, committee Ranker, playbooks PlaybookBuilder, cacheProvider cache.Provider, ttls CacheTTLs, signatures int) *TriageService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &TriageService{
		logger:     logger,
		committee:  committee,
		playbooks:  playbooks,
		cache:      cacheProvider,
		ttls:       ttls,
		latencies:  utils.NewLatencyTracker(1024),
		signatures: signatures,
	}
}

// Latencies exposes the per-operation latency tracker.
func (s *TriageService) Latencies() *utils.LatencyTracker {
	return s.latencies
}

// Rank scores req, serving repeated requests from the cache.
func (s *TriageService) Rank(ctx context.Context, req models.FidelityRequest) (models.AlertFidelityRanking, error) {
	if err := ctx.Err(); err != nil {
		return models.AlertFidelityRanking{}, err
	}
	start := time.Now()

	key, keyErr := cache.Key("ranking", req)
	if keyErr == nil {
		var wire triagev1.AlertFidelityRanking
		if s.cacheGet(ctx, key, &wire) {
			if ranking, err := api.FromWireRanking(&wire); err == nil {
				s.observe(metrics.OperationRank, start, nil)
				return ranking, nil
			}
		}
	}

	ranking, err := s.committee.Rank(req)
	if err != nil {
		s.observe(metrics.OperationRank, start, err)
		return models.AlertFidelityRanking{}, err
	}
	metrics.ObserveRanking(ranking)
	if keyErr == nil {
		s.cacheSet(ctx, key, api.ToWireRanking(ranking), s.ttls.Ranking)
	}
	s.observe(metrics.OperationRank, start, nil)
	return ranking, nil
}

// Playbook generates the playbook for req, serving repeated requests from the cache.
func (s *TriageService) Playbook(ctx context.Context, req models.PlaybookRequest) (models.Playbook, error) {
	if err := ctx.Err(); err != nil {
		return models.Playbook{}, err
	}
	start := time.Now()

	key, keyErr := cache.Key("playbook", req)
	if keyErr == nil {
		var wire triagev1.Playbook
		if s.cacheGet(ctx, key, &wire) {
			if pb, err := api.FromWirePlaybook(&wire); err == nil {
				s.observe(metrics.OperationPlaybook, start, nil)
				return pb, nil
			}
		}
	}

	pb, err := s.playbooks.Generate(req)
	if err != nil {
		s.observe(metrics.OperationPlaybook, start, err)
		return models.Playbook{}, err
	}
	if keyErr == nil {
		s.cacheSet(ctx, key, api.ToWirePlaybook(pb), s.ttls.Playbook)
	}
	s.observe(metrics.OperationPlaybook, start, nil)
	return pb, nil
}

// RankAlert implements triagev1.TriageEngineServer.
func (s *TriageService) RankAlert(ctx context.Context, req *triagev1.RankAlertRequest) (*triagev1.AlertFidelityRanking, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	s.logger.Debug("RankAlert called", slog.String("alert_id", req.AlertID))

	domainReq, err := api.FromWireRankAlertRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	ranking, err := s.Rank(ctx, domainReq)
	if err != nil {
		return nil, s.statusFromError("rank alert", err)
	}
	return api.ToWireRanking(ranking), nil
}

// GeneratePlaybook implements triagev1.TriageEngineServer.
func (s *TriageService) GeneratePlaybook(ctx context.Context, req *triagev1.GeneratePlaybookRequest) (*triagev1.Playbook, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	s.logger.Debug("GeneratePlaybook called", slog.String("persona", req.ExpertPersona), slog.String("severity", req.Severity))

	domainReq, err := api.FromWirePlaybookRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	pb, err := s.Playbook(ctx, domainReq)
	if err != nil {
		return nil, s.statusFromError("generate playbook", err)
	}
	return api.ToWirePlaybook(pb), nil
}

// HealthCheck returns the current health state.
func (s *TriageService) HealthCheck(ctx context.Context, req *triagev1.HealthCheckRequest) (*triagev1.HealthCheckResponse, error) {
	return &triagev1.HealthCheckResponse{Status: "SERVING", Signatures: s.signatures}, nil
}

func (s *TriageService) statusFromError(op string, err error) error {
	switch {
	case utils.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(op+" failed", slog.Any("error", err))
		return status.Error(codes.Internal, op+" failed")
	}
}

func (s *TriageService) observe(operation string, start time.Time, err error) {
	duration := time.Since(start)
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
		s.latencies.Observe(operation, duration)
	case utils.IsValidation(err):
		outcome = metrics.OutcomeInvalid
	default:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveRequest(operation, duration, outcome)
}

func (s *TriageService) cacheGet(ctx context.Context, key string, out any) bool {
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("cache entry undecodable", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (s *TriageService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
		s.logger.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}
