package specialists

import (
	"fmt"
	"strings"

	"github.com/miradorstack/mirador-triage/internal/models"
)

var normCues = []string{"typically", "usually", "normally", "only", "rarely", "never", "baseline", "historically"}

var behaviourDeviationCues = []string{
	"outside",
	"unusual",
	"deviation",
	"deviates",
	"rarely",
	"never",
	"first time",
	"atypical",
	"anomalous",
	"abnormal",
	"uncharacteristic",
	"unexpected",
	"instead of",
}

// BehavioralBaseline compares the activity against the stated historical norm.
type BehavioralBaseline struct{}

// NewBehavioralBaseline constructs the baseline specialist.
func NewBehavioralBaseline() *BehavioralBaseline {
	return &BehavioralBaseline{}
}

// Name implements Specialist.
func (BehavioralBaseline) Name() string { return models.SpecialistBehavioralBaseline }

// Evaluate implements Specialist.
func (s BehavioralBaseline) Evaluate(req models.FidelityRequest) Assessment {
	summary := strings.TrimSpace(req.BehavioralContextSummary)
	if summary == "" {
		return assess(s.Name(), models.VerdictUncertain, 0.25)
	}

	if deviations := matchCues(summary, behaviourDeviationCues); len(deviations) > 0 {
		evidence := make([]string, 0, len(deviations))
		for _, cue := range deviations {
			evidence = append(evidence, fmt.Sprintf("%q", cue))
		}
		return assess(s.Name(), models.VerdictMalicious, clamp(0.55+0.15*float64(len(deviations)), 0, 0.95), evidence...)
	}
	if len(matchCues(summary, normCues)) > 0 {
		return assess(s.Name(), models.VerdictBenign, 0.5, "activity consistent with stated baseline")
	}
	return assess(s.Name(), models.VerdictUncertain, 0.3)
}
