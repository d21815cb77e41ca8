// Package patterns holds the Sigma signature pack used by the PatternMatcher
// specialist. A pack always carries the built-in signatures embedded in the
// binary and may be extended with an operator-supplied rule directory.
package patterns

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sigma "github.com/bradleyjkemp/sigma-go"
	sigmaevaluator "github.com/bradleyjkemp/sigma-go/evaluator"
)

//go:embed signatures/*.yml
var builtinFS embed.FS

// Field names exposed to signatures.
const (
	FieldEventType     = "eventType"
	FieldRawLogSnippet = "rawLogSnippet"
)

// Match describes a signature that fired.
type Match struct {
	ID    string
	Title string
	Level string
}

// LoadStats tracks loaded and skipped signature files.
type LoadStats struct {
	TotalFiles     int
	Loaded         int
	SkippedInvalid int
	SkippedComplex int
}

type signature struct {
	match Match
	eval  *sigmaevaluator.RuleEvaluator
}

// Pack evaluates a fixed set of compiled Sigma signatures.
type Pack struct {
	signatures []signature
	ctx        context.Context
}

// Builtin returns the embedded signature pack.
func Builtin() (*Pack, error) {
	pack := &Pack{ctx: context.Background()}
	if _, err := pack.addFS(builtinFS, "signatures"); err != nil {
		return nil, fmt.Errorf("load builtin signatures: %w", err)
	}
	return pack, nil
}

// Load returns the builtin pack extended with signatures found at path (a file or a
// directory walked recursively). Invalid or unsupported rules are skipped and counted.
// An empty path yields the builtin pack only.
func Load(path string, logger *slog.Logger) (*Pack, LoadStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pack, err := Builtin()
	if err != nil {
		return nil, LoadStats{}, err
	}
	if strings.TrimSpace(path) == "" {
		return pack, LoadStats{Loaded: pack.Len()}, nil
	}

	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("resolve signature path: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("stat signature path: %w", err)
	}

	root := resolved
	if !info.IsDir() {
		root = filepath.Dir(resolved)
	}
	stats, err := pack.addFS(os.DirFS(root), ".", func(p string) bool {
		return info.IsDir() || filepath.Join(root, p) == resolved
	})
	if err != nil {
		return nil, stats, err
	}
	stats.Loaded = pack.Len()
	logger.Info("signature pack loaded",
		slog.String("path", resolved),
		slog.Int("signatures", pack.Len()),
		slog.Int("skipped_invalid", stats.SkippedInvalid),
		slog.Int("skipped_complex", stats.SkippedComplex),
	)
	return pack, stats, nil
}

func (p *Pack) addFS(fsys fs.FS, root string, filters ...func(string) bool) (LoadStats, error) {
	var stats LoadStats
	files := make([]string, 0, 16)
	err := fs.WalkDir(fsys, root, func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isYAMLFile(name) {
			return nil
		}
		for _, keep := range filters {
			if !keep(name) {
				return nil
			}
		}
		files = append(files, name)
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk signatures: %w", err)
	}
	sort.Strings(files)

	stats.TotalFiles = len(files)
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}
		rule, err := sigma.ParseRule(raw)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}
		if !isSingleEventRule(rule) {
			stats.SkippedComplex++
			continue
		}
		p.signatures = append(p.signatures, signature{
			match: matchFromRule(rule),
			eval:  sigmaevaluator.ForRule(rule),
		})
		stats.Loaded++
	}
	return stats, nil
}

// Len returns the number of compiled signatures.
func (p *Pack) Len() int {
	if p == nil {
		return 0
	}
	return len(p.signatures)
}

// Match evaluates every signature against the given fields. Values are lower-cased
// before evaluation so signatures are written in lower case. Matches are returned in
// pack order.
func (p *Pack) Match(fields map[string]string) []Match {
	if p == nil || len(p.signatures) == 0 {
		return nil
	}
	event := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		event[k] = strings.ToLower(v)
	}

	var out []Match
	for _, sig := range p.signatures {
		res, err := sig.eval.Matches(p.ctx, event)
		if err != nil {
			continue
		}
		if res.Match {
			out = append(out, sig.match)
		}
	}
	return out
}

func matchFromRule(rule sigma.Rule) Match {
	id := strings.TrimSpace(rule.ID)
	if id == "" {
		id = strings.TrimSpace(rule.Title)
	}
	level := strings.ToLower(strings.TrimSpace(rule.Level))
	if level == "" {
		level = "medium"
	}
	return Match{ID: id, Title: strings.TrimSpace(rule.Title), Level: level}
}

func isSingleEventRule(rule sigma.Rule) bool {
	if rule.Detection.Timeframe > 0 {
		return false
	}
	for _, cond := range rule.Detection.Conditions {
		if cond.Aggregation != nil {
			return false
		}
	}
	for _, search := range rule.Detection.Searches {
		if len(search.Keywords) > 0 || len(search.EventMatchers) == 0 {
			return false
		}
	}
	return true
}

func isYAMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}
