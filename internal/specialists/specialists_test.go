package specialists

import (
	"testing"

	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/patterns"
)

func baseRequest() models.FidelityRequest {
	return models.FidelityRequest{
		AlertID:      "ALERT-100",
		Timestamp:    "2024-05-01T10:00:00Z",
		SourceSystem: "SIEM",
		EventType:    "Login",
		Description:  "User signed in",
	}
}

func TestIsolationForestFlagsExtremeVolume(t *testing.T) {
	req := baseRequest()
	req.Description = "High volume of outbound traffic to IP 203.0.113.55 on port 4444"
	req.RawLogSnippet = `{"dest_ip": "203.0.113.55", "dest_port": 4444, "bytes_out": 54321098}`

	got := NewIsolationForest().Evaluate(req)
	if got.Vote.Vote != models.VerdictMalicious {
		t.Fatalf("expected Malicious, got %+v", got.Vote)
	}
	if got.Vote.Confidence < 0.7 || got.Vote.Confidence > 0.8 {
		t.Fatalf("expected confidence near 0.75, got %v", got.Vote.Confidence)
	}
}

func TestIsolationForestQuietAlert(t *testing.T) {
	got := NewIsolationForest().Evaluate(baseRequest())
	if got.Vote.Vote != models.VerdictUncertain || got.Vote.Confidence != 0.2 {
		t.Fatalf("unexpected vote: %+v", got.Vote)
	}
}

func TestIsolationForestIgnoresNegatedCues(t *testing.T) {
	req := baseRequest()
	req.Description = "No unusual activity observed"
	got := NewIsolationForest().Evaluate(req)
	if got.Vote.Vote != models.VerdictUncertain || got.Vote.Confidence != 0.2 {
		t.Fatalf("negated cue should not count: %+v", got.Vote)
	}
}

func TestIsolationForestMagnitudeNeedsVolumeContext(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		desc    string
		flagged bool
	}{
		{"epoch seconds", `{"ts": 1714557600, "user": "bob", "action": "login", "status": "ok"}`, "User login", false},
		{"epoch millis", `{"timestamp": 1714557600123, "event_id": 88412093}`, "User login", false},
		{"byte key", `{"bytes_transferred": 98765432101}`, "Upload completed", true},
		{"count key", `packet_count=48000000 proto=udp`, "Flow summary", true},
		{"volume unit", ``, "Exported 12,500,000 records to a personal drive", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			req.RawLogSnippet = tc.raw
			req.Description = tc.desc
			got := NewIsolationForest().Evaluate(req)
			if tc.flagged && got.Vote.Vote != models.VerdictMalicious {
				t.Fatalf("expected Malicious, got %+v (%v)", got.Vote, got.Evidence)
			}
			if !tc.flagged && (got.Vote.Vote != models.VerdictUncertain || got.Vote.Confidence != 0.2) {
				t.Fatalf("expected Uncertain 0.2, got %+v (%v)", got.Vote, got.Evidence)
			}
		})
	}
}

func TestLocalOutlierFactor(t *testing.T) {
	lof := NewLocalOutlierFactor()

	absent := lof.Evaluate(baseRequest())
	if absent.Vote.Vote != models.VerdictUncertain || absent.Vote.Confidence > 0.3 {
		t.Fatalf("absent summary: %+v", absent.Vote)
	}

	req := baseRequest()
	req.AnomalyDetectionSummary = "Deviation from baseline: Login time is 3 standard deviations outside the user's norm."
	strong := lof.Evaluate(req)
	if strong.Vote.Vote != models.VerdictMalicious || strong.Vote.Confidence != 0.95 {
		t.Fatalf("strong deviation: %+v", strong.Vote)
	}

	req.AnomalyDetectionSummary = "Traffic within expected bounds."
	calm := lof.Evaluate(req)
	if calm.Vote.Vote != models.VerdictBenign {
		t.Fatalf("calm summary: %+v", calm.Vote)
	}
}

func TestBehavioralBaseline(t *testing.T) {
	bb := NewBehavioralBaseline()

	absent := bb.Evaluate(baseRequest())
	if absent.Vote.Vote != models.VerdictUncertain || absent.Vote.Confidence > 0.3 {
		t.Fatalf("absent context: %+v", absent.Vote)
	}

	req := baseRequest()
	req.BehavioralContextSummary = "This user in the finance department rarely uses PowerShell."
	dev := bb.Evaluate(req)
	if dev.Vote.Vote != models.VerdictMalicious || dev.Vote.Confidence != 0.7 {
		t.Fatalf("deviation: %+v", dev.Vote)
	}

	req.BehavioralContextSummary = "User typically logs in from the office network."
	norm := bb.Evaluate(req)
	if norm.Vote.Vote != models.VerdictBenign || norm.Vote.Confidence != 0.5 {
		t.Fatalf("norm without deviation: %+v", norm.Vote)
	}
}

func TestPatternMatcherWannaCry(t *testing.T) {
	pack, err := patterns.Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}
	req := baseRequest()
	req.EventType = "Malware Detected"
	req.RawLogSnippet = `{"signature": "WannaCry.gen", "action": "quarantined"}`

	got := NewPatternMatcher(pack).Evaluate(req)
	if got.Vote.Vote != models.VerdictMalicious || got.Vote.Confidence < 0.8 {
		t.Fatalf("expected confident Malicious, got %+v", got.Vote)
	}
	if len(got.Evidence) < 2 {
		t.Fatalf("expected evidence for each signature, got %v", got.Evidence)
	}
}

func TestPatternMatcherNeverBenign(t *testing.T) {
	pack, err := patterns.Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}
	got := NewPatternMatcher(pack).Evaluate(baseRequest())
	if got.Vote.Vote != models.VerdictUncertain || got.Vote.Confidence > 0.3 {
		t.Fatalf("expected low-confidence Uncertain, got %+v", got.Vote)
	}
}

func TestLocalThreatIntel(t *testing.T) {
	intel := NewLocalThreatIntel(IndicatorLists{
		Allow: []string{"10.0.0.5", "corp.example"},
		Deny:  []string{"203.0.113.55", "evil.test"},
	})

	req := baseRequest()
	req.RawLogSnippet = `{"src_ip": "10.0.0.5", "dest_ip": "203.0.113.55"}`
	denied := intel.Evaluate(req)
	if denied.Vote.Vote != models.VerdictMalicious || denied.Vote.Confidence != 0.9 {
		t.Fatalf("deny wins over allow: %+v", denied.Vote)
	}

	req.RawLogSnippet = `{"query": "cdn.evil.test"}`
	sub := intel.Evaluate(req)
	if sub.Vote.Vote != models.VerdictMalicious {
		t.Fatalf("subdomain of deny entry: %+v", sub.Vote)
	}

	req.RawLogSnippet = `{"host": "mail.corp.example"}`
	allowed := intel.Evaluate(req)
	if allowed.Vote.Vote != models.VerdictBenign || allowed.Vote.Confidence != 0.7 {
		t.Fatalf("allow-listed: %+v", allowed.Vote)
	}

	req.RawLogSnippet = `{"dest_ip": "198.51.100.7"}`
	unknown := intel.Evaluate(req)
	if unknown.Vote.Vote != models.VerdictUncertain {
		t.Fatalf("unlisted indicator: %+v", unknown.Vote)
	}
}

func TestExtractIndicatorsSkipsFileNames(t *testing.T) {
	got := ExtractIndicators(`C:\Temp\svchost.exe contacted updates.bad-cdn.net and 192.168.1.100, sha ` +
		`44d88612fea8a8f36de82e1278abb02f then 192.168.1.100 again; bogus 999.1.1.1`)
	want := []string{"updates.bad-cdn.net", "192.168.1.100", "44d88612fea8a8f36de82e1278abb02f"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
