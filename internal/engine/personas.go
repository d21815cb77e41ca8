package engine

import "github.com/miradorstack/mirador-triage/internal/models"

// stepTemplate is one candidate playbook step. Details may reference {systems},
// {alerts} and {severity}.
type stepTemplate struct {
	phase       models.Phase
	description string
	details     string
	remediation bool
	// minSeverity gates the step; empty means always included.
	minSeverity models.Severity
}

type personaPolicy struct {
	steps     []stepTemplate
	reasoning string
}

var personaPolicies = map[models.Persona]personaPolicy{
	models.PersonaChen: {
		reasoning: "My recommendation for this {severity}-severity incident is a methodical, evidence-first response: {description}. " +
			"Evidence preservation comes before any change: every affected system is imaged and logged under chain of custody so the " +
			"investigation remains defensible for compliance and audit review (SOX, GDPR, PCI-DSS). Isolation is reversible and " +
			"approved by system owners, and remediation only follows confirmed, documented findings.",
		steps: []stepTemplate{
			{
				phase:       models.PhaseDetection,
				description: "Validate and document the detection",
				details:     "Confirm {alerts} against source telemetry and record each finding with timestamps in the case file.",
			},
			{
				phase:       models.PhaseDetection,
				description: "Open a chain-of-custody record",
				details:     "Assign a case number and log every artefact collected from {systems} with collector, time and hash.",
			},
			{
				phase:       models.PhaseDetection,
				description: "Escalate to the incident commander and compliance officer",
				details:     "Brief both on the {severity}-severity incident and start tracking regulatory notification deadlines.",
				minSeverity: models.SeverityHigh,
			},
			{
				phase:       models.PhaseContainment,
				description: "Capture forensic images",
				details:     "Acquire memory and disk images of {systems} and verify image hashes before any change is made.",
			},
			{
				phase:       models.PhaseContainment,
				description: "Confirm containment scope with system owners",
				details:     "Obtain documented sign-off from the owners of {systems} on the isolation plan.",
			},
			{
				phase:       models.PhaseContainment,
				description: "Apply reversible network isolation",
				details:     "Move {systems} to a quarantine segment with reversible ACL changes; keep hosts powered on to preserve volatile state.",
				remediation: true,
			},
			{
				phase:       models.PhaseEradication,
				description: "Document indicators of compromise",
				details:     "Catalogue malicious files, accounts and network indicators tied to {alerts} in the case record.",
			},
			{
				phase:       models.PhaseEradication,
				description: "Remove confirmed malicious artefacts",
				details:     "Remove only the documented artefacts from {systems} under change control, recording each removal.",
				remediation: true,
			},
			{
				phase:       models.PhaseRecovery,
				description: "Verify system integrity",
				details:     "Compare {systems} against known-good baselines and record the verification results.",
			},
			{
				phase:       models.PhaseRecovery,
				description: "Reconnect in monitored phases",
				details:     "Return {systems} to service one at a time with heightened monitoring and owner sign-off.",
			},
			{
				phase:       models.PhasePostIncident,
				description: "Assess regulatory notification obligations",
				details:     "Review the case record with legal and compliance to determine notification duties for the {severity}-severity incident.",
			},
			{
				phase:       models.PhasePostIncident,
				description: "Hold an audited lessons-learned review",
				details:     "Produce a signed post-incident report covering timeline, evidence handling and control gaps.",
			},
		},
	},
	models.PersonaOkonkwo: {
		reasoning: "This {severity}-severity incident demands speed: {description}. Every minute of attacker dwell time widens the " +
			"blast radius, so the plan isolates hosts and blocks attacker infrastructure first, cuts off lateral movement, and " +
			"rebuilds from known-good images instead of cleaning in place. Forensics follow containment, not the other way round.",
		steps: []stepTemplate{
			{
				phase:       models.PhaseDetection,
				description: "Confirm the active threat",
				details:     "Triage {alerts} for live attacker activity on {systems}; do not wait for full scoping before containing.",
			},
			{
				phase:       models.PhaseContainment,
				description: "Isolate affected hosts",
				details:     "Cut {systems} off from the network at the switch and EDR layer immediately.",
				remediation: true,
			},
			{
				phase:       models.PhaseContainment,
				description: "Block attacker infrastructure",
				details:     "Push firewall and DNS blocks for every external address and domain referenced by {alerts}.",
				remediation: true,
			},
			{
				phase:       models.PhaseContainment,
				description: "Disable compromised credentials",
				details:     "Disable and force-reset every account that authenticated to {systems} during the incident window.",
				remediation: true,
				minSeverity: models.SeverityHigh,
			},
			{
				phase:       models.PhaseContainment,
				description: "Snapshot volatile evidence",
				details:     "Grab memory snapshots from {systems} once they are isolated.",
			},
			{
				phase:       models.PhaseEradication,
				description: "Kill malicious processes and persistence",
				details:     "Terminate attacker processes and delete scheduled tasks, services and run keys on {systems}.",
				remediation: true,
			},
			{
				phase:       models.PhaseEradication,
				description: "Reimage compromised systems",
				details:     "Wipe {systems} rather than attempting in-place cleanup.",
				remediation: true,
			},
			{
				phase:       models.PhaseRecovery,
				description: "Rebuild from golden images",
				details:     "Restore {systems} from golden images with current patches and rotated secrets.",
				remediation: true,
			},
			{
				phase:       models.PhaseRecovery,
				description: "Monitor for re-entry",
				details:     "Watch {systems} for the behaviour seen in {alerts} for at least 72 hours.",
			},
			{
				phase:       models.PhasePostIncident,
				description: "Hunt for residual footholds",
				details:     "Sweep the environment for the indicators observed in {alerts}.",
			},
			{
				phase:       models.PhasePostIncident,
				description: "Deploy new detections",
				details:     "Ship detection rules for this {severity}-severity attack pattern and block the initial access vector.",
				remediation: true,
			},
		},
	},
}
