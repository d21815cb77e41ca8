package specialists

import (
	"net"
	"regexp"
	"sort"
	"strings"

	"github.com/miradorstack/mirador-triage/internal/models"
)

// IndicatorLists configures the local threat intelligence allow and deny entries.
// Entries are IPv4 addresses, file hashes or domains; a domain entry also covers
// its subdomains.
type IndicatorLists struct {
	Allow []string
	Deny  []string
}

var (
	ipv4Pattern   = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	hashPattern   = regexp.MustCompile(`\b(?:[a-f0-9]{64}|[a-f0-9]{40}|[a-f0-9]{32})\b`)
	domainPattern = regexp.MustCompile(`\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,24}\b`)
)

// Extensions that look like top-level domains in file names.
var fileExtensions = map[string]struct{}{
	"exe": {}, "dll": {}, "sys": {}, "bat": {}, "cmd": {}, "ps1": {}, "vbs": {}, "js": {},
	"doc": {}, "docx": {}, "docm": {}, "xls": {}, "xlsx": {}, "xlsm": {}, "ppt": {}, "pdf": {},
	"zip": {}, "rar": {}, "tmp": {}, "log": {}, "txt": {}, "json": {}, "gen": {}, "dmp": {},
}

// LocalThreatIntel cross-references extracted indicators against local lists.
type LocalThreatIntel struct {
	allow map[string]struct{}
	deny  map[string]struct{}
}

// NewLocalThreatIntel constructs the intel specialist from indicator lists.
func NewLocalThreatIntel(lists IndicatorLists) *LocalThreatIntel {
	return &LocalThreatIntel{
		allow: indicatorSet(lists.Allow),
		deny:  indicatorSet(lists.Deny),
	}
}

func indicatorSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// Name implements Specialist.
func (LocalThreatIntel) Name() string { return models.SpecialistLocalThreatIntel }

// Evaluate implements Specialist.
func (s *LocalThreatIntel) Evaluate(req models.FidelityRequest) Assessment {
	indicators := ExtractIndicators(joinFields(
		req.SourceSystem,
		req.EventType,
		req.Description,
		req.RawLogSnippet,
		req.AnomalyDetectionSummary,
		req.BehavioralContextSummary,
	))

	var denied, allowed []string
	for _, ind := range indicators {
		switch {
		case listed(s.deny, ind):
			denied = append(denied, ind)
		case listed(s.allow, ind):
			allowed = append(allowed, ind)
		}
	}

	switch {
	case len(denied) > 0:
		confidence := clamp(0.9+0.03*float64(len(denied)-1), 0, 0.99)
		return assess(s.Name(), models.VerdictMalicious, confidence, prefixAll("deny-listed ", denied)...)
	case len(allowed) > 0:
		return assess(s.Name(), models.VerdictBenign, 0.7, prefixAll("allow-listed ", allowed)...)
	case len(indicators) > 0:
		return assess(s.Name(), models.VerdictUncertain, 0.15)
	default:
		return assess(s.Name(), models.VerdictUncertain, 0.1)
	}
}

func listed(set map[string]struct{}, indicator string) bool {
	if _, ok := set[indicator]; ok {
		return true
	}
	if net.ParseIP(indicator) != nil {
		return false
	}
	for label := strings.IndexByte(indicator, '.'); label >= 0; label = strings.IndexByte(indicator, '.') {
		indicator = indicator[label+1:]
		if !strings.Contains(indicator, ".") {
			return false
		}
		if _, ok := set[indicator]; ok {
			return true
		}
	}
	return false
}

// ExtractIndicators returns the distinct IPv4 addresses, hashes and domains in text,
// lower-cased, in order of first appearance.
func ExtractIndicators(text string) []string {
	lower := strings.ToLower(text)
	type hit struct {
		pos   int
		value string
	}
	var hits []hit
	for _, loc := range ipv4Pattern.FindAllStringIndex(lower, -1) {
		candidate := lower[loc[0]:loc[1]]
		if ip := net.ParseIP(candidate); ip != nil && ip.To4() != nil {
			hits = append(hits, hit{loc[0], candidate})
		}
	}
	for _, loc := range hashPattern.FindAllStringIndex(lower, -1) {
		hits = append(hits, hit{loc[0], lower[loc[0]:loc[1]]})
	}
	for _, loc := range domainPattern.FindAllStringIndex(lower, -1) {
		candidate := lower[loc[0]:loc[1]]
		tld := candidate[strings.LastIndexByte(candidate, '.')+1:]
		if _, ok := fileExtensions[tld]; ok {
			continue
		}
		hits = append(hits, hit{loc[0], candidate})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.value]; ok {
			continue
		}
		seen[h.value] = struct{}{}
		out = append(out, h.value)
	}
	return out
}

func prefixAll(prefix string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = prefix + v
	}
	return out
}
