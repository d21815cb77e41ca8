package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-triage/internal/models"
)

var defaultActions = map[models.Severity]string{
	models.SeverityCritical: "Escalate to incident response immediately and isolate the affected assets.",
	models.SeverityHigh:     "Open an investigation and contain the affected host pending analyst review.",
	models.SeverityMedium:   "Triage within the current shift and correlate with related alerts.",
	models.SeverityLow:      "Log for trend analysis; no immediate action required.",
}

// ActionBook selects the canned recommended action for a ranked alert.
type ActionBook struct {
	defaults map[models.Severity]string
	rules    []ActionRule
	logger   *slog.Logger
}

// ActionRule overrides the default action for alerts matching a severity and,
// optionally, an event type keyword.
type ActionRule struct {
	ID     string          `yaml:"id"`
	Match  ActionRuleMatch `yaml:"match"`
	Action string          `yaml:"action"`
}

// ActionRuleMatch defines the attributes a rule matches on.
type ActionRuleMatch struct {
	Severity          string   `yaml:"severity"`
	EventTypeContains []string `yaml:"event_type_contains"`
}

// ActionBookFile is the YAML root structure.
type ActionBookFile struct {
	Defaults map[string]string `yaml:"defaults"`
	Rules    []ActionRule      `yaml:"rules"`
}

// DefaultActionBook returns the built-in severity-keyed recommendations.
func DefaultActionBook() *ActionBook {
	defaults := make(map[models.Severity]string, len(defaultActions))
	for sev, action := range defaultActions {
		defaults[sev] = action
	}
	return &ActionBook{defaults: defaults, logger: slog.Default()}
}

// LoadActionBook overlays the recommendations at path onto the built-in book. An empty
// or missing path yields the built-in book.
func LoadActionBook(path string, logger *slog.Logger) (*ActionBook, error) {
	book := DefaultActionBook()
	if logger != nil {
		book.logger = logger
	}
	if path == "" {
		return book, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			book.logger.Warn("recommendation file not found, using built-in actions", slog.String("path", path))
			return book, nil
		}
		return nil, err
	}
	var file ActionBookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse recommendations: %w", err)
	}
	for label, action := range file.Defaults {
		sev, err := models.ParseSeverity(label)
		if err != nil {
			return nil, fmt.Errorf("recommendation defaults: %w", err)
		}
		if strings.TrimSpace(action) != "" {
			book.defaults[sev] = action
		}
	}
	for _, rule := range file.Rules {
		if rule.Match.Severity != "" {
			if _, err := models.ParseSeverity(rule.Match.Severity); err != nil {
				return nil, fmt.Errorf("recommendation rule %s: %w", rule.ID, err)
			}
		}
		if strings.TrimSpace(rule.Action) == "" {
			return nil, fmt.Errorf("recommendation rule %s: empty action", rule.ID)
		}
		book.rules = append(book.rules, rule)
	}
	book.logger.Info("recommendations loaded", slog.String("path", path), slog.Int("rules", len(book.rules)))
	return book, nil
}

// Recommend returns the first matching rule's action, falling back to the severity default.
func (b *ActionBook) Recommend(severity models.Severity, req models.FidelityRequest) string {
	for _, rule := range b.rules {
		if rule.Match.Severity != "" && !strings.EqualFold(rule.Match.Severity, string(severity)) {
			continue
		}
		if len(rule.Match.EventTypeContains) > 0 && !containsAny(req.EventType, rule.Match.EventTypeContains) {
			continue
		}
		return rule.Action
	}
	return b.defaults[severity]
}

func containsAny(value string, keywords []string) bool {
	lower := strings.ToLower(value)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
