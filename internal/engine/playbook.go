package engine

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"unicode"

	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

const maxTitleSubject = 60

// PlaybookGenerator builds persona-driven response playbooks.
type PlaybookGenerator struct {
	policies map[models.Persona]personaPolicy
	logger   *slog.Logger
}

// NewPlaybookGenerator constructs a generator with the built-in persona policies.
func NewPlaybookGenerator(logger *slog.Logger) *PlaybookGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybookGenerator{policies: personaPolicies, logger: logger}
}

// Generate produces the playbook for req.
func (g *PlaybookGenerator) Generate(req models.PlaybookRequest) (models.Playbook, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return models.Playbook{}, err
	}
	persona := models.Persona(req.ExpertPersona)
	policy, ok := g.policies[persona]
	if !ok {
		return models.Playbook{}, utils.NewValidationError(fmt.Sprintf("unknown persona %q", req.ExpertPersona), "expertPersona")
	}
	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		return models.Playbook{}, utils.NewValidationError(err.Error(), "severity")
	}

	description := strings.TrimSpace(req.IncidentDescription)
	fill := strings.NewReplacer(
		"{systems}", listOr(req.AffectedSystems, "the affected systems"),
		"{alerts}", listOr(req.CorrelatedAlerts, "the triggering alerts"),
		"{severity}", severity.Lower(),
		"{description}", strings.TrimRight(description, ". "),
	)

	steps := make([]models.PlaybookStep, 0, len(policy.steps))
	for _, phase := range models.Phases {
		for _, tmpl := range policy.steps {
			if tmpl.phase != phase {
				continue
			}
			if tmpl.minSeverity != "" && severity.Rank() < tmpl.minSeverity.Rank() {
				continue
			}
			steps = append(steps, models.PlaybookStep{
				StepNumber:        len(steps) + 1,
				Phase:             phase,
				Description:       tmpl.description,
				Details:           fill.Replace(tmpl.details),
				RemediationAction: tmpl.remediation,
			})
		}
	}

	playbook := models.Playbook{
		PlaybookTitle:   playbookTitle(severity, description),
		Severity:        severity,
		Steps:           steps,
		AdvisedBy:       persona,
		ExpertReasoning: fill.Replace(policy.reasoning),
	}
	g.logger.Debug("playbook generated",
		slog.String("persona", string(persona)),
		slog.String("severity", string(severity)),
		slog.Int("steps", len(steps)),
	)
	return playbook, nil
}

func listOr(values []string, fallback string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, ", ")
}

// playbookTitle prefixes the first sentence of description with the severity. Titles
// that drop any of the description carry a fingerprint of the full text.
func playbookTitle(severity models.Severity, description string) string {
	subject := firstSentence(description)
	lossy := subject != strings.TrimRight(description, ".!? ")
	if len(subject) > maxTitleSubject {
		subject = truncateWords(subject, maxTitleSubject) + "..."
		lossy = true
	}
	title := fmt.Sprintf("%s Playbook: %s", severity, subject)
	if lossy {
		h := fnv.New32a()
		_, _ = h.Write([]byte(description))
		title += fmt.Sprintf(" [%08x]", h.Sum32())
	}
	return title
}

func firstSentence(text string) string {
	for i, r := range text {
		if r == '\n' {
			return strings.TrimSpace(text[:i])
		}
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(text) || unicode.IsSpace(rune(text[i+1]))) {
			return strings.TrimSpace(text[:i])
		}
	}
	return strings.TrimSpace(text)
}

func truncateWords(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndexByte(text[:limit+1], ' ')
	if cut <= 0 {
		// single long word; cut on a rune boundary
		runes := []rune(text)
		if len(runes) > limit {
			runes = runes[:limit]
		}
		return string(runes)
	}
	return strings.TrimRight(text[:cut], " ,;:")
}
