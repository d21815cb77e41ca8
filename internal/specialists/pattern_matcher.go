package specialists

import (
	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/patterns"
)

var levelConfidence = map[string]float64{
	"critical": 0.95,
	"high":     0.85,
	"medium":   0.7,
	"low":      0.6,
}

// PatternMatcher looks for known-bad signatures in the raw log and event type. It
// never votes Benign: the absence of a signature proves nothing.
type PatternMatcher struct {
	pack *patterns.Pack
}

// NewPatternMatcher constructs the signature specialist over pack.
func NewPatternMatcher(pack *patterns.Pack) *PatternMatcher {
	return &PatternMatcher{pack: pack}
}

// Name implements Specialist.
func (PatternMatcher) Name() string { return models.SpecialistPatternMatcher }

// Evaluate implements Specialist.
func (s *PatternMatcher) Evaluate(req models.FidelityRequest) Assessment {
	matches := s.pack.Match(map[string]string{
		patterns.FieldEventType:     req.EventType,
		patterns.FieldRawLogSnippet: req.RawLogSnippet,
	})
	if len(matches) == 0 {
		return assess(s.Name(), models.VerdictUncertain, 0.2)
	}

	best := 0.0
	evidence := make([]string, 0, len(matches))
	for _, m := range matches {
		conf, ok := levelConfidence[m.Level]
		if !ok {
			conf = levelConfidence["medium"]
		}
		if conf > best {
			best = conf
		}
		evidence = append(evidence, m.Title)
	}
	confidence := clamp(best+0.02*float64(len(matches)-1), 0, 0.99)
	return assess(s.Name(), models.VerdictMalicious, confidence, evidence...)
}
