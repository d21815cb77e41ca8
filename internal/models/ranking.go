package models

// Verdict is a single specialist's judgement.
type Verdict string

const (
	VerdictMalicious Verdict = "Malicious"
	VerdictBenign    Verdict = "Benign"
	VerdictUncertain Verdict = "Uncertain"
)

// Specialist identifiers, in committee order.
const (
	SpecialistIsolationForest    = "IsolationForest"
	SpecialistLocalOutlierFactor = "LocalOutlierFactor"
	SpecialistBehavioralBaseline = "BehavioralBaseline"
	SpecialistPatternMatcher     = "PatternMatcher"
	SpecialistLocalThreatIntel   = "LocalThreatIntel"
)

// CommitteeOrder is the fixed order of votes in every ranking.
var CommitteeOrder = []string{
	SpecialistIsolationForest,
	SpecialistLocalOutlierFactor,
	SpecialistBehavioralBaseline,
	SpecialistPatternMatcher,
	SpecialistLocalThreatIntel,
}

// FidelityRequest is the committee input for one alert.
type FidelityRequest struct {
	AlertID                  string `json:"alertId" validate:"notblank"`
	Timestamp                string `json:"timestamp" validate:"notblank"`
	SourceSystem             string `json:"sourceSystem" validate:"notblank"`
	EventType                string `json:"eventType" validate:"notblank"`
	Description              string `json:"description" validate:"notblank"`
	RawLogSnippet            string `json:"rawLogSnippet"`
	AnomalyDetectionSummary  string `json:"anomalyDetectionSummary"`
	BehavioralContextSummary string `json:"behavioralContextSummary"`
}

// CommitteeVote is one specialist's vote.
type CommitteeVote struct {
	Model      string
	Vote       Verdict
	Confidence float64
}

// AlertFidelityRanking is the aggregated committee judgement.
type AlertFidelityRanking struct {
	FidelityScore     float64
	Severity          Severity
	Reasoning         string
	RecommendedAction string
	Committee         []CommitteeVote
}
