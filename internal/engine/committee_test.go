package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/patterns"
	"github.com/miradorstack/mirador-triage/internal/specialists"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

type fixedSpecialist struct {
	name       string
	verdict    models.Verdict
	confidence float64
}

func (f fixedSpecialist) Name() string { return f.name }

func (f fixedSpecialist) Evaluate(models.FidelityRequest) specialists.Assessment {
	return specialists.Assessment{Vote: models.CommitteeVote{Model: f.name, Vote: f.verdict, Confidence: f.confidence}}
}

func fixedCommittee(verdicts []models.Verdict, confidences []float64) *Committee {
	members := make([]specialists.Specialist, len(verdicts))
	for i := range verdicts {
		members[i] = fixedSpecialist{name: models.CommitteeOrder[i], verdict: verdicts[i], confidence: confidences[i]}
	}
	return NewCommittee(members, DefaultPolicy(), nil)
}

func standardCommittee(t *testing.T) *Committee {
	t.Helper()
	pack, err := patterns.Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}
	return NewStandardCommittee(pack, specialists.IndicatorLists{}, DefaultPolicy(), nil)
}

func quietAlert() models.FidelityRequest {
	return models.FidelityRequest{
		AlertID:      "ALERT-005",
		Timestamp:    "2024-05-01T09:00:00Z",
		SourceSystem: "SIEM",
		EventType:    "Login",
		Description:  "User signed in",
	}
}

func wannaCryAlert() models.FidelityRequest {
	return models.FidelityRequest{
		AlertID:       "ALERT-002",
		Timestamp:     "2024-05-01T10:15:00Z",
		SourceSystem:  "EDR",
		EventType:     "Malware Detected",
		Description:   "WannaCry ransomware detected on FIN-WS-042",
		RawLogSnippet: `{"file": "C:\\Windows\\tasksche.exe", "signature": "WannaCry", "action": "blocked"}`,
	}
}

func TestCommitteeRankWannaCry(t *testing.T) {
	ranking, err := standardCommittee(t).Rank(wannaCryAlert())
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(ranking.Committee) != 5 {
		t.Fatalf("expected 5 votes, got %d", len(ranking.Committee))
	}
	for i, vote := range ranking.Committee {
		if vote.Model != models.CommitteeOrder[i] {
			t.Fatalf("vote %d from %s, expected %s", i, vote.Model, models.CommitteeOrder[i])
		}
	}
	pm := ranking.Committee[3]
	if pm.Vote != models.VerdictMalicious || pm.Confidence < 0.8 {
		t.Fatalf("expected confident PatternMatcher, got %+v", pm)
	}
	if ranking.Severity != models.SeverityHigh && ranking.Severity != models.SeverityCritical {
		t.Fatalf("expected High or Critical, got %s (score %v)", ranking.Severity, ranking.FidelityScore)
	}
	if !strings.Contains(ranking.Reasoning, "PatternMatcher") {
		t.Fatalf("reasoning should name the driver: %s", ranking.Reasoning)
	}
	if !strings.Contains(ranking.Reasoning, "Majority verdict: Uncertain (4 of 5)") {
		t.Fatalf("reasoning should state the majority: %s", ranking.Reasoning)
	}
	if ranking.RecommendedAction == "" {
		t.Fatalf("expected recommended action")
	}
}

func TestCommitteeRankQuietAlertNearMidpoint(t *testing.T) {
	ranking, err := standardCommittee(t).Rank(quietAlert())
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if ranking.FidelityScore < 40 || ranking.FidelityScore > 60 {
		t.Fatalf("expected score near 50, got %v", ranking.FidelityScore)
	}
	if ranking.Severity != models.SeverityLow && ranking.Severity != models.SeverityMedium {
		t.Fatalf("expected Low or Medium, got %s", ranking.Severity)
	}
}

func TestCommitteeRankDeterministic(t *testing.T) {
	committee := standardCommittee(t)
	first, err := committee.Rank(wannaCryAlert())
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	second, err := committee.Rank(wannaCryAlert())
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rankings differ (-first +second):\n%s", diff)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("encoded rankings differ")
	}
}

func TestCommitteeRankValidation(t *testing.T) {
	req := quietAlert()
	req.Description = "   "
	req.SourceSystem = ""
	_, err := standardCommittee(t).Rank(req)
	if !utils.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "sourceSystem") || !strings.Contains(err.Error(), "description") {
		t.Fatalf("error should name the fields: %v", err)
	}
}

func TestCommitteeRankAggregationError(t *testing.T) {
	members := []specialists.Specialist{
		fixedSpecialist{name: models.SpecialistIsolationForest, verdict: models.VerdictUncertain, confidence: 0.2},
		fixedSpecialist{name: models.SpecialistLocalOutlierFactor, verdict: models.VerdictUncertain, confidence: 0.2},
	}
	_, err := NewCommittee(members, DefaultPolicy(), nil).Rank(quietAlert())
	if !utils.IsAggregation(err) {
		t.Fatalf("expected aggregation error, got %v", err)
	}

	verdicts := []models.Verdict{models.VerdictUncertain, models.VerdictUncertain, models.VerdictUncertain, models.VerdictUncertain, models.VerdictMalicious}
	_, err = fixedCommittee(verdicts, []float64{0.1, 0.1, 0.1, 0.1, 1.4}).Rank(quietAlert())
	if !utils.IsAggregation(err) {
		t.Fatalf("expected aggregation error for out-of-range confidence, got %v", err)
	}
}

func TestCommitteeScoreMonotonic(t *testing.T) {
	confidences := []float64{0.6, 0.7, 0.8, 0.9, 0.5}
	verdicts := []models.Verdict{models.VerdictBenign, models.VerdictUncertain, models.VerdictUncertain, models.VerdictUncertain, models.VerdictUncertain}

	previous := -1.0
	for flips := 0; flips <= len(verdicts); flips++ {
		current := append([]models.Verdict(nil), verdicts...)
		for i := 0; i < flips; i++ {
			current[i] = models.VerdictMalicious
		}
		ranking, err := fixedCommittee(current, confidences).Rank(quietAlert())
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		if ranking.FidelityScore < previous {
			t.Fatalf("score decreased from %v to %v after %d flips", previous, ranking.FidelityScore, flips)
		}
		if ranking.FidelityScore < 0 || ranking.FidelityScore > 100 {
			t.Fatalf("score out of range: %v", ranking.FidelityScore)
		}
		previous = ranking.FidelityScore
	}
	if previous != 100 {
		t.Fatalf("expected saturation at 100, got %v", previous)
	}
}

func TestCommitteeBenignReasoning(t *testing.T) {
	verdicts := []models.Verdict{models.VerdictBenign, models.VerdictBenign, models.VerdictMalicious, models.VerdictUncertain, models.VerdictBenign}
	ranking, err := fixedCommittee(verdicts, []float64{0.4, 0.5, 0.3, 0.2, 0.7}).Rank(quietAlert())
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	// net = -0.4 - 0.5 + 0.3 - 0.7 = -1.3
	if ranking.FidelityScore != 24 {
		t.Fatalf("expected score 24, got %v", ranking.FidelityScore)
	}
	if ranking.Severity != models.SeverityLow {
		t.Fatalf("expected Low, got %s", ranking.Severity)
	}
	want := "Fidelity score 24.0 (Low). Score driven toward benign by LocalThreatIntel (Benign, 0.70). " +
		"Majority verdict: Benign (3 of 5). Most divergent: BehavioralBaseline (Malicious, 0.30)."
	if ranking.Reasoning != want {
		t.Fatalf("unexpected reasoning:\n got %s\nwant %s", ranking.Reasoning, want)
	}
}

func TestPolicySeverityThresholds(t *testing.T) {
	policy := DefaultPolicy()
	cases := map[float64]models.Severity{
		100:  models.SeverityCritical,
		85:   models.SeverityCritical,
		84.9: models.SeverityHigh,
		60:   models.SeverityHigh,
		59.9: models.SeverityMedium,
		30:   models.SeverityMedium,
		29.9: models.SeverityLow,
		0:    models.SeverityLow,
	}
	for score, want := range cases {
		if got := policy.SeverityFor(score); got != want {
			t.Fatalf("score %v: expected %s, got %s", score, want, got)
		}
	}
	if err := policy.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	policy.Thresholds.High = 90
	if err := policy.Validate(); err == nil {
		t.Fatalf("expected unordered thresholds to be rejected")
	}
}
