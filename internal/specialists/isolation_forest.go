package specialists

import (
	"fmt"

	"github.com/miradorstack/mirador-triage/internal/models"
)

var outlierCues = []string{
	"unusual",
	"anomalous",
	"never",
	"high volume",
	"first time",
	"unfamiliar",
	"rare",
	"external",
	"unknown",
	"outlier",
}

// IsolationForest flags statistically extreme values and unfamiliar destinations in
// the raw log and description.
type IsolationForest struct{}

// NewIsolationForest constructs the outlier specialist.
func NewIsolationForest() *IsolationForest {
	return &IsolationForest{}
}

// Name implements Specialist.
func (IsolationForest) Name() string { return models.SpecialistIsolationForest }

// Evaluate implements Specialist.
func (s IsolationForest) Evaluate(req models.FidelityRequest) Assessment {
	text := joinFields(req.RawLogSnippet, req.Description)
	strength := 0.0
	var evidence []string

	if digits := largestMagnitude(text); digits > 0 {
		strength += clamp(0.3+0.1*float64(digits-7), 0, 0.5)
		evidence = append(evidence, fmt.Sprintf("%d-digit value", digits))
	}
	if sigmas := sigmaMagnitude(text); sigmas > 0 {
		strength += clamp(0.1*sigmas, 0, 0.4)
		evidence = append(evidence, fmt.Sprintf("%.1f standard deviations", sigmas))
	}
	for _, cue := range matchCues(text, outlierCues) {
		strength += 0.15
		evidence = append(evidence, fmt.Sprintf("%q", cue))
	}
	strength = clamp(strength, 0, 1)

	switch {
	case strength >= 0.3:
		return assess(s.Name(), models.VerdictMalicious, 0.5+0.45*strength, evidence...)
	case strength > 0:
		return assess(s.Name(), models.VerdictUncertain, strength, evidence...)
	default:
		return assess(s.Name(), models.VerdictUncertain, 0.2)
	}
}
