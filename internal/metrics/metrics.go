package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/miradorstack/mirador-triage/internal/models"
)

const (
	// OutcomeSuccess labels requests that produced a result.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels requests rejected by validation.
	OutcomeInvalid = "invalid"
	// OutcomeError labels internal failures.
	OutcomeError = "error"

	OperationRank     = "rank_alert"
	OperationPlaybook = "generate_playbook"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "requests_total",
			Help:      "Total number of triage requests handled, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	requestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "triage",
			Name:      "request_seconds",
			Help:      "Triage request latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"operation"},
	)

	committeeVotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "committee_votes_total",
			Help:      "Specialist votes cast, partitioned by model and verdict.",
		},
		[]string{"model", "vote"},
	)

	rankingsBySeverity = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Name:      "rankings_total",
			Help:      "Alert rankings produced, partitioned by severity.",
		},
		[]string{"severity"},
	)
)

// Register attaches triage collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		requestsTotal,
		requestDurationSeconds,
		committeeVotesTotal,
		rankingsBySeverity,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRequest records a request duration and outcome for operation.
func ObserveRequest(operation string, duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeInvalid:
	default:
		outcome = OutcomeError
	}
	requestsTotal.WithLabelValues(operation, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	requestDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRanking records the committee votes and resulting severity of a ranking.
func ObserveRanking(ranking models.AlertFidelityRanking) {
	for _, vote := range ranking.Committee {
		committeeVotesTotal.WithLabelValues(vote.Model, string(vote.Vote)).Inc()
	}
	rankingsBySeverity.WithLabelValues(string(ranking.Severity)).Inc()
}
