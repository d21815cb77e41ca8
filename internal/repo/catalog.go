// Package repo loads alert and incident documents for offline triage.
package repo

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-triage/internal/models"
	"github.com/miradorstack/mirador-triage/internal/utils"
)

// alertRecord and incidentRecord are the document shapes. JSON documents decode
// through the same YAML parser.
type alertRecord struct {
	ID                       string `yaml:"id"`
	Timestamp                string `yaml:"timestamp"`
	SourceSystem             string `yaml:"sourceSystem"`
	EventType                string `yaml:"eventType"`
	Description              string `yaml:"description"`
	Severity                 string `yaml:"severity"`
	RawLogSnippet            string `yaml:"rawLogSnippet"`
	AnomalyDetectionSummary  string `yaml:"anomalyDetectionSummary"`
	BehavioralContextSummary string `yaml:"behavioralContextSummary"`
}

type incidentRecord struct {
	ID               string   `yaml:"id"`
	Summary          string   `yaml:"summary"`
	AttackChain      string   `yaml:"attackChain"`
	Severity         string   `yaml:"severity"`
	CorrelatedEvents []string `yaml:"correlatedEvents"`
	AlertIDs         []string `yaml:"alertIds"`
	AffectedSystems  []string `yaml:"affectedSystems"`
}

type document struct {
	Alerts    []alertRecord    `yaml:"alerts"`
	Incidents []incidentRecord `yaml:"incidents"`
}

// Catalog holds the alerts and incidents of one document. Incidents share the
// catalogue's alert pointers.
type Catalog struct {
	Alerts    []*models.Alert
	Incidents []*models.Incident

	alertsByID    map[string]*models.Alert
	incidentsByID map[string]*models.Incident
}

// LoadCatalog reads a YAML or JSON document from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewAppError("load catalog", "read "+path, err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, utils.NewAppError("load catalog", path, err)
	}
	return catalog, nil
}

// ParseCatalog decodes a document and resolves incident alert references.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	catalog := &Catalog{
		alertsByID:    make(map[string]*models.Alert, len(doc.Alerts)),
		incidentsByID: make(map[string]*models.Incident, len(doc.Incidents)),
	}
	var errs []error
	for i, rec := range doc.Alerts {
		alert, err := rec.toModel()
		if err != nil {
			errs = append(errs, fmt.Errorf("alert %d (%s): %w", i+1, rec.ID, err))
			continue
		}
		if _, dup := catalog.alertsByID[alert.ID]; dup {
			errs = append(errs, fmt.Errorf("alert %d: duplicate id %s", i+1, alert.ID))
			continue
		}
		catalog.alertsByID[alert.ID] = alert
		catalog.Alerts = append(catalog.Alerts, alert)
	}
	for i, rec := range doc.Incidents {
		incident, err := rec.toModel(catalog.alertsByID)
		if err != nil {
			errs = append(errs, fmt.Errorf("incident %d (%s): %w", i+1, rec.ID, err))
			continue
		}
		if _, dup := catalog.incidentsByID[incident.ID]; dup {
			errs = append(errs, fmt.Errorf("incident %d: duplicate id %s", i+1, incident.ID))
			continue
		}
		catalog.incidentsByID[incident.ID] = incident
		catalog.Incidents = append(catalog.Incidents, incident)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return catalog, nil
}

// Alert returns the alert with id.
func (c *Catalog) Alert(id string) (*models.Alert, bool) {
	a, ok := c.alertsByID[id]
	return a, ok
}

// Incident returns the incident with id.
func (c *Catalog) Incident(id string) (*models.Incident, bool) {
	i, ok := c.incidentsByID[id]
	return i, ok
}

func (r alertRecord) toModel() (*models.Alert, error) {
	if strings.TrimSpace(r.ID) == "" {
		return nil, errors.New("id is required")
	}
	stamp := strings.TrimSpace(r.Timestamp)
	ts, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	severity, err := models.ParseSeverity(r.Severity)
	if err != nil {
		return nil, err
	}
	return &models.Alert{
		ID:                       r.ID,
		Timestamp:                ts,
		TimestampText:            stamp,
		SourceSystem:             r.SourceSystem,
		EventType:                r.EventType,
		Description:              r.Description,
		Severity:                 severity,
		RawLogSnippet:            r.RawLogSnippet,
		AnomalyDetectionSummary:  r.AnomalyDetectionSummary,
		BehavioralContextSummary: r.BehavioralContextSummary,
	}, nil
}

func (r incidentRecord) toModel(alerts map[string]*models.Alert) (*models.Incident, error) {
	if strings.TrimSpace(r.ID) == "" {
		return nil, errors.New("id is required")
	}
	severity, err := models.ParseSeverity(r.Severity)
	if err != nil {
		return nil, err
	}
	incident := &models.Incident{
		ID:               r.ID,
		Summary:          r.Summary,
		AttackChain:      r.AttackChain,
		Severity:         severity,
		CorrelatedEvents: append([]string(nil), r.CorrelatedEvents...),
		AffectedSystems:  append([]string(nil), r.AffectedSystems...),
	}
	for _, id := range r.AlertIDs {
		alert, ok := alerts[id]
		if !ok {
			return nil, fmt.Errorf("unknown alert reference %s", id)
		}
		incident.Alerts = append(incident.Alerts, alert)
	}
	return incident, nil
}
