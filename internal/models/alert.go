package models

import (
	"fmt"
	"strings"
	"time"
)

// Severity captures impact levels shared by alerts, rankings and playbooks.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists every severity from lowest to highest.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// ParseSeverity canonicalises a case-insensitive severity label.
func ParseSeverity(value string) (Severity, error) {
	trimmed := strings.TrimSpace(value)
	for _, sev := range Severities {
		if strings.EqualFold(trimmed, string(sev)) {
			return sev, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", value)
}

// Lower returns the lower-case spelling used on playbook requests.
func (s Severity) Lower() string {
	return strings.ToLower(string(s))
}

// Rank orders severities; unknown values rank below Low.
func (s Severity) Rank() int {
	for i, sev := range Severities {
		if sev == s {
			return i + 1
		}
	}
	return 0
}

// Alert is a single raw detection event from a source system. TimestampText keeps
// the ISO-8601 string the alert was recorded with, when it came from a document.
type Alert struct {
	ID                       string
	Timestamp                time.Time
	TimestampText            string
	SourceSystem             string
	EventType                string
	Description              string
	Severity                 Severity
	RawLogSnippet            string
	AnomalyDetectionSummary  string
	BehavioralContextSummary string
}

// FidelityRequest builds the committee input for this alert.
func (a *Alert) FidelityRequest() FidelityRequest {
	return FidelityRequest{
		AlertID:                  a.ID,
		Timestamp:                a.timestampText(),
		SourceSystem:             a.SourceSystem,
		EventType:                a.EventType,
		Description:              a.Description,
		RawLogSnippet:            a.RawLogSnippet,
		AnomalyDetectionSummary:  a.AnomalyDetectionSummary,
		BehavioralContextSummary: a.BehavioralContextSummary,
	}
}

func (a *Alert) timestampText() string {
	if a.TimestampText != "" {
		return a.TimestampText
	}
	return a.Timestamp.Format(time.RFC3339Nano)
}

// Incident groups correlated alerts believed to represent one attack.
// Alerts are shared references into the owning alert catalogue.
type Incident struct {
	ID               string
	Summary          string
	AttackChain      string
	Severity         Severity
	CorrelatedEvents []string
	Alerts           []*Alert
	AffectedSystems  []string
}

// Description joins the summary and attack chain for playbook generation.
func (i *Incident) Description() string {
	summary := strings.TrimSpace(i.Summary)
	chain := strings.TrimSpace(i.AttackChain)
	switch {
	case chain == "":
		return summary
	case summary == "":
		return chain
	default:
		return summary + ". " + chain
	}
}

// PlaybookRequest builds a generator request for the incident.
func (i *Incident) PlaybookRequest(persona Persona) PlaybookRequest {
	return PlaybookRequest{
		IncidentDescription: i.Description(),
		CorrelatedAlerts:    append([]string(nil), i.CorrelatedEvents...),
		Severity:            i.Severity.Lower(),
		AffectedSystems:     append([]string(nil), i.AffectedSystems...),
		ExpertPersona:       string(persona),
	}
}
