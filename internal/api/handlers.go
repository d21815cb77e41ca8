package api

import (
	"fmt"

	"github.com/miradorstack/mirador-triage/internal/grpc/triagev1"
	"github.com/miradorstack/mirador-triage/internal/models"
)

// FromWireRankAlertRequest maps the gRPC request into a domain FidelityRequest.
func FromWireRankAlertRequest(req *triagev1.RankAlertRequest) (models.FidelityRequest, error) {
	if req == nil {
		return models.FidelityRequest{}, fmt.Errorf("request is nil")
	}
	return models.FidelityRequest{
		AlertID:                  req.AlertID,
		Timestamp:                req.Timestamp,
		SourceSystem:             req.SourceSystem,
		EventType:                req.EventType,
		Description:              req.Description,
		RawLogSnippet:            req.RawLogSnippet,
		AnomalyDetectionSummary:  req.AnomalyDetectionSummary,
		BehavioralContextSummary: req.BehavioralContextSummary,
	}, nil
}

// ToWireRankAlertRequest is the client-side inverse of FromWireRankAlertRequest.
func ToWireRankAlertRequest(req models.FidelityRequest) *triagev1.RankAlertRequest {
	return &triagev1.RankAlertRequest{
		AlertID:                  req.AlertID,
		Timestamp:                req.Timestamp,
		SourceSystem:             req.SourceSystem,
		EventType:                req.EventType,
		Description:              req.Description,
		RawLogSnippet:            req.RawLogSnippet,
		AnomalyDetectionSummary:  req.AnomalyDetectionSummary,
		BehavioralContextSummary: req.BehavioralContextSummary,
	}
}

// ToWireRanking converts a domain ranking into the wire representation.
func ToWireRanking(res models.AlertFidelityRanking) *triagev1.AlertFidelityRanking {
	wire := &triagev1.AlertFidelityRanking{
		FidelityScore:     res.FidelityScore,
		Severity:          string(res.Severity),
		Reasoning:         res.Reasoning,
		RecommendedAction: res.RecommendedAction,
		Committee:         make([]triagev1.FidelityCommitteeVote, 0, len(res.Committee)),
	}
	for _, vote := range res.Committee {
		wire.Committee = append(wire.Committee, triagev1.FidelityCommitteeVote{
			Model:      vote.Model,
			Vote:       string(vote.Vote),
			Confidence: vote.Confidence,
		})
	}
	return wire
}

// FromWireRanking converts a wire ranking back into the domain shape.
func FromWireRanking(res *triagev1.AlertFidelityRanking) (models.AlertFidelityRanking, error) {
	if res == nil {
		return models.AlertFidelityRanking{}, fmt.Errorf("ranking is nil")
	}
	severity, err := models.ParseSeverity(res.Severity)
	if err != nil {
		return models.AlertFidelityRanking{}, fmt.Errorf("ranking severity: %w", err)
	}
	out := models.AlertFidelityRanking{
		FidelityScore:     res.FidelityScore,
		Severity:          severity,
		Reasoning:         res.Reasoning,
		RecommendedAction: res.RecommendedAction,
		Committee:         make([]models.CommitteeVote, 0, len(res.Committee)),
	}
	for _, vote := range res.Committee {
		out.Committee = append(out.Committee, models.CommitteeVote{
			Model:      vote.Model,
			Vote:       models.Verdict(vote.Vote),
			Confidence: vote.Confidence,
		})
	}
	return out, nil
}

// FromWirePlaybookRequest maps the gRPC request into a domain PlaybookRequest.
func FromWirePlaybookRequest(req *triagev1.GeneratePlaybookRequest) (models.PlaybookRequest, error) {
	if req == nil {
		return models.PlaybookRequest{}, fmt.Errorf("request is nil")
	}
	return models.PlaybookRequest{
		IncidentDescription: req.IncidentDescription,
		CorrelatedAlerts:    append([]string(nil), req.CorrelatedAlerts...),
		Severity:            req.Severity,
		AffectedSystems:     append([]string(nil), req.AffectedSystems...),
		ExpertPersona:       req.ExpertPersona,
	}, nil
}

// ToWirePlaybookRequest is the client-side inverse of FromWirePlaybookRequest.
func ToWirePlaybookRequest(req models.PlaybookRequest) *triagev1.GeneratePlaybookRequest {
	return &triagev1.GeneratePlaybookRequest{
		IncidentDescription: req.IncidentDescription,
		CorrelatedAlerts:    nonNil(req.CorrelatedAlerts),
		Severity:            req.Severity,
		AffectedSystems:     nonNil(req.AffectedSystems),
		ExpertPersona:       req.ExpertPersona,
	}
}

// ToWirePlaybook converts a domain playbook into the wire representation.
func ToWirePlaybook(pb models.Playbook) *triagev1.Playbook {
	wire := &triagev1.Playbook{
		PlaybookTitle:   pb.PlaybookTitle,
		Severity:        string(pb.Severity),
		Steps:           make([]triagev1.PlaybookStep, 0, len(pb.Steps)),
		AdvisedBy:       string(pb.AdvisedBy),
		ExpertReasoning: pb.ExpertReasoning,
	}
	for _, step := range pb.Steps {
		wire.Steps = append(wire.Steps, triagev1.PlaybookStep{
			StepNumber:        step.StepNumber,
			Phase:             string(step.Phase),
			Description:       step.Description,
			Details:           step.Details,
			RemediationAction: step.RemediationAction,
		})
	}
	return wire
}

// FromWirePlaybook converts a wire playbook back into the domain shape.
func FromWirePlaybook(pb *triagev1.Playbook) (models.Playbook, error) {
	if pb == nil {
		return models.Playbook{}, fmt.Errorf("playbook is nil")
	}
	severity, err := models.ParseSeverity(pb.Severity)
	if err != nil {
		return models.Playbook{}, fmt.Errorf("playbook severity: %w", err)
	}
	out := models.Playbook{
		PlaybookTitle:   pb.PlaybookTitle,
		Severity:        severity,
		Steps:           make([]models.PlaybookStep, 0, len(pb.Steps)),
		AdvisedBy:       models.Persona(pb.AdvisedBy),
		ExpertReasoning: pb.ExpertReasoning,
	}
	for _, step := range pb.Steps {
		out.Steps = append(out.Steps, models.PlaybookStep{
			StepNumber:        step.StepNumber,
			Phase:             models.Phase(step.Phase),
			Description:       step.Description,
			Details:           step.Details,
			RemediationAction: step.RemediationAction,
		})
	}
	return out, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}
