package engine

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

func ransomwareRequest(persona models.Persona, severity string) models.PlaybookRequest {
	return models.PlaybookRequest{
		IncidentDescription: "Ransomware outbreak on the finance file server. Encryption spread from a phishing workstation over SMB.",
		CorrelatedAlerts:    []string{"ALERT-002 WannaCry detected", "ALERT-004 Outbound traffic on port 4444"},
		Severity:            severity,
		AffectedSystems:     []string{"FIN-FS-01", "FIN-WS-042"},
		ExpertPersona:       string(persona),
	}
}

func remediationFraction(steps []models.PlaybookStep) float64 {
	count := 0
	for _, s := range steps {
		if s.RemediationAction {
			count++
		}
	}
	return float64(count) / float64(len(steps))
}

func TestGeneratePlaybookStructure(t *testing.T) {
	gen := NewPlaybookGenerator(nil)
	for _, persona := range models.Personas {
		for _, severity := range []string{"low", "Medium", "HIGH", "critical"} {
			playbook, err := gen.Generate(ransomwareRequest(persona, severity))
			if err != nil {
				t.Fatalf("%s/%s: %v", persona, severity, err)
			}
			if len(playbook.Steps) == 0 {
				t.Fatalf("%s/%s: no steps", persona, severity)
			}
			phaseIndex := 0
			seen := make(map[models.Phase]bool)
			for i, step := range playbook.Steps {
				if step.StepNumber != i+1 {
					t.Fatalf("%s/%s: step %d numbered %d", persona, severity, i, step.StepNumber)
				}
				for models.Phases[phaseIndex] != step.Phase {
					phaseIndex++
					if phaseIndex == len(models.Phases) {
						t.Fatalf("%s/%s: phase %s out of order", persona, severity, step.Phase)
					}
				}
				seen[step.Phase] = true
			}
			if len(seen) != len(models.Phases) {
				t.Fatalf("%s/%s: expected every phase, got %v", persona, severity, seen)
			}
			if playbook.AdvisedBy != persona {
				t.Fatalf("advisedBy %q, expected %q", playbook.AdvisedBy, persona)
			}
			want, _ := models.ParseSeverity(severity)
			if playbook.Severity != want {
				t.Fatalf("severity %s, expected %s", playbook.Severity, want)
			}
		}
	}
}

func TestGeneratePlaybookPersonaRemediationBias(t *testing.T) {
	gen := NewPlaybookGenerator(nil)
	for _, severity := range []string{"low", "medium", "high", "critical"} {
		chen, err := gen.Generate(ransomwareRequest(models.PersonaChen, severity))
		if err != nil {
			t.Fatalf("chen: %v", err)
		}
		okonkwo, err := gen.Generate(ransomwareRequest(models.PersonaOkonkwo, severity))
		if err != nil {
			t.Fatalf("okonkwo: %v", err)
		}
		if remediationFraction(chen.Steps) >= 0.5 {
			t.Fatalf("%s: compliance persona remediation should be a minority", severity)
		}
		if remediationFraction(chen.Steps) >= remediationFraction(okonkwo.Steps) {
			t.Fatalf("%s: expected fewer remediation steps for %s", severity, models.PersonaChen)
		}
	}
}

func TestGeneratePlaybookComplianceOrdering(t *testing.T) {
	playbook, err := NewPlaybookGenerator(nil).Generate(ransomwareRequest(models.PersonaChen, "critical"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	reasoning := strings.ToLower(playbook.ExpertReasoning)
	if !strings.Contains(reasoning, "compliance") || !strings.Contains(reasoning, "evidence preservation") {
		t.Fatalf("reasoning lacks compliance language: %s", playbook.ExpertReasoning)
	}
	for i, step := range playbook.Steps {
		if !step.RemediationAction {
			continue
		}
		if step.Phase != models.PhaseContainment && step.Phase != models.PhaseEradication {
			t.Fatalf("remediation step %d in phase %s", step.StepNumber, step.Phase)
		}
		if i == 0 || playbook.Steps[i-1].Phase != step.Phase || playbook.Steps[i-1].RemediationAction {
			t.Fatalf("remediation step %d not preceded by a non-remediation step in %s", step.StepNumber, step.Phase)
		}
	}
	escalated := false
	for _, step := range playbook.Steps {
		if strings.Contains(step.Description, "compliance officer") {
			escalated = true
		}
	}
	if !escalated {
		t.Fatalf("critical severity should add an escalation step")
	}
}

func TestGeneratePlaybookAggressiveContainment(t *testing.T) {
	low, err := NewPlaybookGenerator(nil).Generate(ransomwareRequest(models.PersonaOkonkwo, "low"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	high, err := NewPlaybookGenerator(nil).Generate(ransomwareRequest(models.PersonaOkonkwo, "high"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, playbook := range []models.Playbook{low, high} {
		for _, step := range playbook.Steps {
			if step.Phase == models.PhaseContainment {
				if !step.RemediationAction {
					t.Fatalf("first containment step should be remediation, got %q", step.Description)
				}
				break
			}
		}
	}
	if len(high.Steps) != len(low.Steps)+1 {
		t.Fatalf("high severity should add credential disablement: %d vs %d steps", len(high.Steps), len(low.Steps))
	}
	if !strings.Contains(high.Steps[0].Details, "FIN-FS-01, FIN-WS-042") {
		t.Fatalf("details should name affected systems: %s", high.Steps[0].Details)
	}
}

func TestGeneratePlaybookDeterministic(t *testing.T) {
	gen := NewPlaybookGenerator(nil)
	first, err := gen.Generate(ransomwareRequest(models.PersonaChen, "high"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := gen.Generate(ransomwareRequest(models.PersonaChen, "high"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("playbooks differ (-first +second):\n%s", diff)
	}
}

func TestGeneratePlaybookEmptyListsUseFallbacks(t *testing.T) {
	req := ransomwareRequest(models.PersonaOkonkwo, "medium")
	req.AffectedSystems = nil
	req.CorrelatedAlerts = nil
	playbook, err := NewPlaybookGenerator(nil).Generate(req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, step := range playbook.Steps {
		if strings.Contains(step.Details, "{") {
			t.Fatalf("unfilled placeholder in %q", step.Details)
		}
	}
	if !strings.Contains(playbook.Steps[0].Details, "the affected systems") {
		t.Fatalf("expected fallback system wording, got %q", playbook.Steps[0].Details)
	}
}

func TestGeneratePlaybookValidation(t *testing.T) {
	gen := NewPlaybookGenerator(nil)
	cases := map[string]func(*models.PlaybookRequest){
		"empty description": func(r *models.PlaybookRequest) { r.IncidentDescription = "" },
		"blank description": func(r *models.PlaybookRequest) { r.IncidentDescription = "  \n" },
		"unknown persona":   func(r *models.PlaybookRequest) { r.ExpertPersona = "Jane Doe" },
		"persona case":      func(r *models.PlaybookRequest) { r.ExpertPersona = "dr. sarah chen" },
		"unknown severity":  func(r *models.PlaybookRequest) { r.Severity = "severe" },
		"missing severity":  func(r *models.PlaybookRequest) { r.Severity = "" },
	}
	for name, mutate := range cases {
		req := ransomwareRequest(models.PersonaChen, "high")
		mutate(&req)
		if _, err := gen.Generate(req); !utils.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestPlaybookTitle(t *testing.T) {
	short := playbookTitle(models.SeverityHigh, "Credential stuffing against VPN.")
	if short != "High Playbook: Credential stuffing against VPN" {
		t.Fatalf("unexpected title %q", short)
	}

	a := playbookTitle(models.SeverityCritical, "Ransomware outbreak on the finance file server. Spread over SMB.")
	b := playbookTitle(models.SeverityCritical, "Ransomware outbreak on the finance file server. Spread over RDP.")
	if a == b {
		t.Fatalf("titles should differ for different descriptions: %q", a)
	}
	if !strings.HasPrefix(a, "Critical Playbook: Ransomware outbreak on the finance file server [") {
		t.Fatalf("unexpected title %q", a)
	}

	long := playbookTitle(models.SeverityLow, strings.Repeat("lateral movement observed ", 10))
	subject := strings.TrimPrefix(long, "Low Playbook: ")
	if !strings.Contains(subject, "...") || len(subject) > maxTitleSubject+20 {
		t.Fatalf("long title not truncated: %q", long)
	}
}
