package models

// Persona names a playbook generation policy.
type Persona string

const (
	// PersonaChen is risk-averse and compliance-focused.
	PersonaChen Persona = "Dr. Sarah Chen"
	// PersonaOkonkwo favours aggressive, rapid containment.
	PersonaOkonkwo Persona = "Marcus Okonkwo"
)

// Personas lists the recognised personas.
var Personas = []Persona{PersonaChen, PersonaOkonkwo}

// Phase is an incident response phase.
type Phase string

const (
	PhaseDetection    Phase = "detection"
	PhaseContainment  Phase = "containment"
	PhaseEradication  Phase = "eradication"
	PhaseRecovery     Phase = "recovery"
	PhasePostIncident Phase = "post-incident"
)

// Phases lists the response phases in execution order.
var Phases = []Phase{PhaseDetection, PhaseContainment, PhaseEradication, PhaseRecovery, PhasePostIncident}

// PlaybookRequest is the generator input for one incident.
type PlaybookRequest struct {
	IncidentDescription string   `json:"incidentDescription" validate:"notblank"`
	CorrelatedAlerts    []string `json:"correlatedAlerts"`
	Severity            string   `json:"severity" validate:"notblank"`
	AffectedSystems     []string `json:"affectedSystems"`
	ExpertPersona       string   `json:"expertPersona" validate:"notblank"`
}

// PlaybookStep is a single ordered response action.
type PlaybookStep struct {
	StepNumber        int
	Phase             Phase
	Description       string
	Details           string
	RemediationAction bool
}

// Playbook is an ordered, phase-structured response procedure.
type Playbook struct {
	PlaybookTitle   string
	Severity        Severity
	Steps           []PlaybookStep
	AdvisedBy       Persona
	ExpertReasoning string
}
