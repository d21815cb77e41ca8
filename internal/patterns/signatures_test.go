package patterns

import (
	"os"
	"path/filepath"
	"testing"
)

func matchIDs(matches []Match) map[string]string {
	out := make(map[string]string, len(matches))
	for _, m := range matches {
		out[m.ID] = m.Level
	}
	return out
}

func TestBuiltinMatchesRansomwareFamily(t *testing.T) {
	pack, err := Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}
	if pack.Len() == 0 {
		t.Fatalf("expected builtin signatures")
	}

	matches := matchIDs(pack.Match(map[string]string{
		FieldEventType:     "Malware Detected",
		FieldRawLogSnippet: `{"file": "C:\\Temp\\svchost.exe", "signature": "WannaCry.gen", "action": "quarantined"}`,
	}))
	if matches["mt-ransomware-family"] != "critical" {
		t.Fatalf("expected ransomware signature, got %v", matches)
	}
	if _, ok := matches["mt-malware-event"]; !ok {
		t.Fatalf("expected malware event-type signature, got %v", matches)
	}
}

func TestBuiltinMatchesOfficeShellOnlyWithBothParts(t *testing.T) {
	pack, err := Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}

	both := matchIDs(pack.Match(map[string]string{
		FieldRawLogSnippet: `{"parent_process":"WINWORD.EXE", "child_process":"cmd.exe"}`,
	}))
	if _, ok := both["mt-office-shell"]; !ok {
		t.Fatalf("expected office shell signature, got %v", both)
	}

	officeOnly := matchIDs(pack.Match(map[string]string{
		FieldRawLogSnippet: `{"process":"WINWORD.EXE", "action":"open"}`,
	}))
	if _, ok := officeOnly["mt-office-shell"]; ok {
		t.Fatalf("office process alone must not match")
	}
}

func TestBuiltinNoMatchOnBenignTelemetry(t *testing.T) {
	pack, err := Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}
	cases := []struct {
		name      string
		eventType string
		raw       string
	}{
		{"iam change", "IAM Policy Change", `{"eventSource": "iam.amazonaws.com", "eventName": "AttachUserPolicy"}`},
		{"backup retry", "Service Restart", `{"job": "nightly-backup", "status": "continued after retry"}`},
		{"contingency plan", "Config Change", `{"doc": "contingency runbook", "mode": "continuous"}`},
		{"plain english", "Audit", `{"msg": "a sliver of disk left, redline on the dashboard"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches := pack.Match(map[string]string{
				FieldEventType:     tc.eventType,
				FieldRawLogSnippet: tc.raw,
			})
			if len(matches) != 0 {
				t.Fatalf("expected no matches, got %v", matches)
			}
		})
	}
}

func TestBuiltinMatchesFamilyNamesAsWords(t *testing.T) {
	pack, err := Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}
	cases := map[string]string{
		`{"detection": "Conti ransomware note found"}`:    "mt-ransomware-family",
		`{"signature": "Ransom:Win32/LockBit3.0"}`:        "mt-ransomware-family",
		`{"family": "Ryuk", "action": "blocked"}`:         "mt-ransomware-family",
		`{"signature": "Trojan:Win32/Emotet.A"}`:          "mt-loader-family",
		`{"detection": "RedLine Stealer config"}`:         "mt-loader-family",
		`{"detection": "sliver implant beacon observed"}`: "mt-c2-framework",
	}
	for raw, id := range cases {
		matches := matchIDs(pack.Match(map[string]string{FieldRawLogSnippet: raw}))
		if _, ok := matches[id]; !ok {
			t.Errorf("%s: expected %s, got %v", raw, id, matches)
		}
	}
}

func TestLoadExtendsBuiltinPack(t *testing.T) {
	dir := t.TempDir()
	rule := `title: Internal red team tool
id: custom-redteam
level: low
logsource:
  category: alert
detection:
  selection:
    rawLogSnippet|contains:
      - purplehaze
  condition: selection
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yml"), []byte(rule), 0o644); err != nil {
		t.Fatalf("write rule: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("title: [unterminated"), 0o644); err != nil {
		t.Fatalf("write rule: %v", err)
	}

	builtin, err := Builtin()
	if err != nil {
		t.Fatalf("builtin pack: %v", err)
	}
	pack, stats, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pack.Len() != builtin.Len()+1 {
		t.Fatalf("expected %d signatures, got %d", builtin.Len()+1, pack.Len())
	}
	if stats.SkippedInvalid != 1 {
		t.Fatalf("expected one invalid rule, got %+v", stats)
	}

	matches := matchIDs(pack.Match(map[string]string{FieldRawLogSnippet: "PurpleHaze beacon"}))
	if matches["custom-redteam"] != "low" {
		t.Fatalf("expected custom signature match, got %v", matches)
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
