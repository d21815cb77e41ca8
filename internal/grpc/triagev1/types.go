// Package triagev1 defines the triage.v1 wire contract. Messages travel as JSON
// using the codec registered under the "json" content subtype, so the struct tags
// below are the field names clients see.
package triagev1

// RankAlertRequest carries one alert to the fidelity committee.
type RankAlertRequest struct {
	AlertID                  string `json:"alertId"`
	Timestamp                string `json:"timestamp"`
	SourceSystem             string `json:"sourceSystem"`
	EventType                string `json:"eventType"`
	Description              string `json:"description"`
	RawLogSnippet            string `json:"rawLogSnippet,omitempty"`
	AnomalyDetectionSummary  string `json:"anomalyDetectionSummary,omitempty"`
	BehavioralContextSummary string `json:"behavioralContextSummary,omitempty"`
}

// FidelityCommitteeVote is one specialist vote.
type FidelityCommitteeVote struct {
	Model      string  `json:"model"`
	Vote       string  `json:"vote"`
	Confidence float64 `json:"confidence"`
}

// AlertFidelityRanking is the committee judgement for an alert.
type AlertFidelityRanking struct {
	FidelityScore     float64                 `json:"fidelityScore"`
	Severity          string                  `json:"severity"`
	Reasoning         string                  `json:"reasoning"`
	RecommendedAction string                  `json:"recommendedAction"`
	Committee         []FidelityCommitteeVote `json:"committee"`
}

// GeneratePlaybookRequest carries one incident to the playbook generator.
type GeneratePlaybookRequest struct {
	IncidentDescription string   `json:"incidentDescription"`
	CorrelatedAlerts    []string `json:"correlatedAlerts"`
	Severity            string   `json:"severity"`
	AffectedSystems     []string `json:"affectedSystems"`
	ExpertPersona       string   `json:"expertPersona"`
}

// PlaybookStep is one ordered response action.
type PlaybookStep struct {
	StepNumber        int    `json:"stepNumber"`
	Phase             string `json:"phase,omitempty"`
	Description       string `json:"description"`
	Details           string `json:"details"`
	RemediationAction bool   `json:"remediationAction"`
}

// Playbook is a persona-driven response procedure.
type Playbook struct {
	PlaybookTitle   string         `json:"playbookTitle"`
	Severity        string         `json:"severity"`
	Steps           []PlaybookStep `json:"steps"`
	AdvisedBy       string         `json:"advisedBy"`
	ExpertReasoning string         `json:"expertReasoning"`
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct {
	Status     string `json:"status"`
	Signatures int    `json:"signatures"`
}
