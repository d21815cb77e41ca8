// Package specialists implements the five deterministic evaluators that make up
// the fidelity committee. Each specialist reads a subset of the alert fields and
// casts one vote with a confidence in [0,1].
package specialists

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/miradorstack/mirador-triage/internal/models"
)

// Assessment is a specialist vote plus the evidence that produced it.
type Assessment struct {
	Vote     models.CommitteeVote
	Evidence []string
}

// Specialist evaluates an alert independently of the other committee members.
type Specialist interface {
	Name() string
	Evaluate(req models.FidelityRequest) Assessment
}

func assess(name string, verdict models.Verdict, confidence float64, evidence ...string) Assessment {
	return Assessment{
		Vote: models.CommitteeVote{
			Model:      name,
			Vote:       verdict,
			Confidence: round2(clamp(confidence, 0, 1)),
		},
		Evidence: evidence,
	}
}

var negations = []string{"no ", "not ", "without "}

// matchCues returns the cues present in text with at least one occurrence that is
// not directly negated ("no unusual", "not anomalous").
func matchCues(text string, cues []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, cue := range cues {
		if cueAsserted(lower, cue) {
			found = append(found, cue)
		}
	}
	return found
}

func cueAsserted(lower, cue string) bool {
	offset := 0
	for {
		idx := strings.Index(lower[offset:], cue)
		if idx < 0 {
			return false
		}
		start := offset + idx
		prefix := lower[max(0, start-8):start]
		negated := false
		for _, neg := range negations {
			if strings.HasSuffix(prefix, neg) {
				negated = true
				break
			}
		}
		if !negated {
			return true
		}
		offset = start + len(cue)
	}
}

var sigmaPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:standard deviations?|std devs?|sigma)`)

// sigmaMagnitude returns the largest "N standard deviations" figure in text.
func sigmaMagnitude(text string) float64 {
	best := 0.0
	for _, m := range sigmaPattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > best {
			best = v
		}
	}
	return best
}

// Only volume-like quantities count as magnitudes: a value under a byte/count key
// or followed by a volume unit. Bare large integers are usually timestamps or ids.
var (
	keyedVolumePattern = regexp.MustCompile(`(?i)\b[a-z_]*(?:bytes|count|size|packets|pkts|volume|records|rows|requests|events|transferred)[a-z_]*"?\s*[:=]\s*"?(\d{7,})\b`)
	unitVolumePattern  = regexp.MustCompile(`(?i)\b(\d{7,}|\d{1,3}(?:,\d{3}){2,})\s*(?:bytes|records|rows|packets|requests|events|files)\b`)
)

// largestMagnitude returns the digit count of the largest volume-like value of at
// least seven digits, or zero.
func largestMagnitude(text string) int {
	best := 0
	for _, pattern := range []*regexp.Regexp{keyedVolumePattern, unitVolumePattern} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			digits := len(strings.TrimLeft(strings.ReplaceAll(m[1], ",", ""), "0"))
			if digits > best {
				best = digits
			}
		}
	}
	if best < 7 {
		return 0
	}
	return best
}

func joinFields(values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
