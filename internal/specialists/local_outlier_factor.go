package specialists

import (
	"fmt"
	"strings"

	"github.com/miradorstack/mirador-triage/internal/models"
)

var localDeviationCues = []string{
	"deviation",
	"anomalous",
	"never",
	"unusual",
	"outside",
	"spike",
	"rare",
	"first time",
	"not seen",
	"unexpected",
	"abnormal",
}

// LocalOutlierFactor judges local-context deviation from the anomaly detection summary.
type LocalOutlierFactor struct{}

// NewLocalOutlierFactor constructs the local-density specialist.
func NewLocalOutlierFactor() *LocalOutlierFactor {
	return &LocalOutlierFactor{}
}

// Name implements Specialist.
func (LocalOutlierFactor) Name() string { return models.SpecialistLocalOutlierFactor }

// Evaluate implements Specialist.
func (s LocalOutlierFactor) Evaluate(req models.FidelityRequest) Assessment {
	summary := strings.TrimSpace(req.AnomalyDetectionSummary)
	if summary == "" {
		return assess(s.Name(), models.VerdictUncertain, 0.2)
	}

	cues := matchCues(summary, localDeviationCues)
	if len(cues) == 0 {
		return assess(s.Name(), models.VerdictBenign, 0.4, "anomaly summary reports no local deviation")
	}

	evidence := make([]string, 0, len(cues)+1)
	for _, cue := range cues {
		evidence = append(evidence, fmt.Sprintf("%q", cue))
	}
	boost := 0.0
	if sigmas := sigmaMagnitude(summary); sigmas > 0 {
		boost = clamp(0.05*sigmas, 0, 0.2)
		evidence = append(evidence, fmt.Sprintf("%.1f standard deviations", sigmas))
	}
	confidence := clamp(0.6+0.1*float64(len(cues))+boost, 0, 0.95)
	return assess(s.Name(), models.VerdictMalicious, confidence, evidence...)
}
