package engine

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/patterns"
	"github.com/miradorstack/mirador-triage/internal/specialists"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

// Thresholds are the minimum fidelity scores for each severity above Low.
type Thresholds struct {
	Critical float64
	High     float64
	Medium   float64
}

// Policy is the immutable aggregation policy shared by every ranking.
type Policy struct {
	Thresholds Thresholds
	// Scale converts the net committee vote into score points around the midpoint.
	Scale   float64
	Actions *ActionBook
}

// DefaultPolicy returns the documented thresholds (85/60/30) and a scale of 20.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds: Thresholds{Critical: 85, High: 60, Medium: 30},
		Scale:      20,
		Actions:    DefaultActionBook(),
	}
}

// SeverityFor maps a fidelity score onto a severity.
func (p Policy) SeverityFor(score float64) models.Severity {
	switch {
	case score >= p.Thresholds.Critical:
		return models.SeverityCritical
	case score >= p.Thresholds.High:
		return models.SeverityHigh
	case score >= p.Thresholds.Medium:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Validate checks that thresholds are ordered and the scale is positive.
func (p Policy) Validate() error {
	t := p.Thresholds
	if !(t.Medium > 0 && t.Medium < t.High && t.High < t.Critical && t.Critical <= 100) {
		return fmt.Errorf("thresholds must satisfy 0 < medium < high < critical <= 100, got %v/%v/%v", t.Medium, t.High, t.Critical)
	}
	if p.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", p.Scale)
	}
	return nil
}

// Committee aggregates the specialist votes for one alert into a fidelity ranking.
type Committee struct {
	members []specialists.Specialist
	policy  Policy
	logger  *slog.Logger
}

// NewCommittee constructs a committee from explicit members. Members must be supplied in
// committee order; anything else is reported as an aggregation failure at ranking time.
func NewCommittee(members []specialists.Specialist, policy Policy, logger *slog.Logger) *Committee {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.Actions == nil {
		policy.Actions = DefaultActionBook()
	}
	return &Committee{
		members: append([]specialists.Specialist(nil), members...),
		policy:  policy,
		logger:  logger,
	}
}

// NewStandardCommittee wires the five standard specialists.
func NewStandardCommittee(pack *patterns.Pack, lists specialists.IndicatorLists, policy Policy, logger *slog.Logger) *Committee {
	return NewCommittee([]specialists.Specialist{
		specialists.NewIsolationForest(),
		specialists.NewLocalOutlierFactor(),
		specialists.NewBehavioralBaseline(),
		specialists.NewPatternMatcher(pack),
		specialists.NewLocalThreatIntel(lists),
	}, policy, logger)
}

// Policy returns the committee's aggregation policy.
func (c *Committee) Policy() Policy {
	return c.policy
}

// Rank evaluates req with every specialist and aggregates the votes.
func (c *Committee) Rank(req models.FidelityRequest) (models.AlertFidelityRanking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return models.AlertFidelityRanking{}, err
	}

	assessments := make([]specialists.Assessment, 0, len(c.members))
	for _, member := range c.members {
		assessments = append(assessments, member.Evaluate(req))
	}
	if err := checkCommittee(assessments); err != nil {
		c.logger.Error("committee produced malformed votes", slog.String("alert_id", req.AlertID), slog.Any("error", err))
		return models.AlertFidelityRanking{}, err
	}

	votes := make([]models.CommitteeVote, len(assessments))
	for i, a := range assessments {
		votes[i] = a.Vote
	}

	net := netScore(votes)
	score := math.Round(clampScore(50+c.policy.Scale*net)*10) / 10
	severity := c.policy.SeverityFor(score)

	ranking := models.AlertFidelityRanking{
		FidelityScore:     score,
		Severity:          severity,
		Reasoning:         explain(score, severity, net, assessments),
		RecommendedAction: c.policy.Actions.Recommend(severity, req),
		Committee:         votes,
	}
	c.logger.Debug("alert ranked",
		slog.String("alert_id", req.AlertID),
		slog.Float64("fidelity_score", score),
		slog.String("severity", string(severity)),
	)
	return ranking, nil
}

func checkCommittee(assessments []specialists.Assessment) error {
	if len(assessments) != len(models.CommitteeOrder) {
		return utils.NewAggregationError(fmt.Sprintf("expected %d votes, got %d", len(models.CommitteeOrder), len(assessments)), nil)
	}
	for i, a := range assessments {
		v := a.Vote
		if v.Model != models.CommitteeOrder[i] {
			return utils.NewAggregationError(fmt.Sprintf("vote %d from %q, expected %q", i+1, v.Model, models.CommitteeOrder[i]), nil)
		}
		switch v.Vote {
		case models.VerdictMalicious, models.VerdictBenign, models.VerdictUncertain:
		default:
			return utils.NewAggregationError(fmt.Sprintf("%s returned unknown verdict %q", v.Model, v.Vote), nil)
		}
		if math.IsNaN(v.Confidence) || v.Confidence < 0 || v.Confidence > 1 {
			return utils.NewAggregationError(fmt.Sprintf("%s confidence %v outside [0,1]", v.Model, v.Confidence), nil)
		}
	}
	return nil
}

func contribution(v models.CommitteeVote) float64 {
	switch v.Vote {
	case models.VerdictMalicious:
		return v.Confidence
	case models.VerdictBenign:
		return -v.Confidence
	default:
		return 0
	}
}

func netScore(votes []models.CommitteeVote) float64 {
	net := 0.0
	for _, v := range votes {
		net += contribution(v)
	}
	return net
}

func clampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// explain names the driving specialists, the majority verdict and the strongest
// dissenters.
func explain(score float64, severity models.Severity, net float64, assessments []specialists.Assessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fidelity score %.1f (%s).", score, severity)

	drivers := driversOf(net, assessments)
	switch {
	case net > 0:
		b.WriteString(" Score driven toward malicious by ")
	case net < 0:
		b.WriteString(" Score driven toward benign by ")
	default:
		b.WriteString(" Votes cancel out; strongest signal from ")
	}
	b.WriteString(describeAll(drivers))
	b.WriteString(".")

	majority, count := majorityVerdict(assessments)
	fmt.Fprintf(&b, " Majority verdict: %s (%d of %d).", majority, count, len(assessments))

	dissenters := dissentersFrom(majority, assessments)
	if len(dissenters) == 0 {
		b.WriteString(" The committee was unanimous.")
	} else {
		fmt.Fprintf(&b, " Most divergent: %s.", describeAll(dissenters))
	}
	return b.String()
}

func driversOf(net float64, assessments []specialists.Assessment) []specialists.Assessment {
	weight := func(a specialists.Assessment) float64 {
		c := contribution(a.Vote)
		switch {
		case net > 0:
			return c
		case net < 0:
			return -c
		default:
			return a.Vote.Confidence
		}
	}
	return strongest(assessments, weight)
}

// majorityVerdict breaks count ties by summed confidence, then by verdict order.
func majorityVerdict(assessments []specialists.Assessment) (models.Verdict, int) {
	order := []models.Verdict{models.VerdictMalicious, models.VerdictBenign, models.VerdictUncertain}
	counts := make(map[models.Verdict]int, len(order))
	weights := make(map[models.Verdict]float64, len(order))
	for _, a := range assessments {
		counts[a.Vote.Vote]++
		weights[a.Vote.Vote] += a.Vote.Confidence
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] || (counts[v] == counts[best] && weights[v] > weights[best]) {
			best = v
		}
	}
	return best, counts[best]
}

func dissentersFrom(majority models.Verdict, assessments []specialists.Assessment) []specialists.Assessment {
	var dissent []specialists.Assessment
	for _, a := range assessments {
		if a.Vote.Vote != majority {
			dissent = append(dissent, a)
		}
	}
	return strongest(dissent, func(a specialists.Assessment) float64 { return a.Vote.Confidence })
}

// strongest returns every assessment sharing the maximum positive weight, in committee order.
func strongest(assessments []specialists.Assessment, weight func(specialists.Assessment) float64) []specialists.Assessment {
	best := 0.0
	for _, a := range assessments {
		if w := weight(a); w > best {
			best = w
		}
	}
	if best == 0 {
		return nil
	}
	var out []specialists.Assessment
	for _, a := range assessments {
		if weight(a) == best {
			out = append(out, a)
		}
	}
	return out
}

func describeAll(assessments []specialists.Assessment) string {
	if len(assessments) == 0 {
		return "no specialist"
	}
	parts := make([]string, len(assessments))
	for i, a := range assessments {
		parts[i] = describe(a)
	}
	return strings.Join(parts, " and ")
}

func describe(a specialists.Assessment) string {
	label := fmt.Sprintf("%s (%s, %.2f", a.Vote.Model, a.Vote.Vote, a.Vote.Confidence)
	if len(a.Evidence) > 0 {
		label += ": " + strings.Join(a.Evidence, "; ")
	}
	return label + ")"
}
