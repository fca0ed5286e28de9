package lint

import "sort"

// Linter runs a fixed rule set over a catalog.
type Linter struct {
	cfg   *Config
	rules []Rule
}

// New creates a linter with the default rules.
func New(cfg *Config) *Linter {
	if cfg == nil {
		cfg = &Config{Format: "text"}
	}
	return &Linter{cfg: cfg, rules: DefaultRules()}
}

// DefaultRules returns every catalog rule in reporting order.
func DefaultRules() []Rule {
	return []Rule{
		&NavTargetRule{},
		&DuplicateNavPathRule{},
		&DuplicateNavLabelRule{},
		&OrphanRule{},
		&CrossrefRule{},
		&FenceRule{},
		&MissingTitleRule{},
		&DuplicateTitleRule{},
		&UIDRule{},
		&FingerprintRule{},
	}
}

// Run applies all rules and returns the collected issues, ordered by file,
// line, and rule so output is stable across runs.
func (l *Linter) Run(ctx *Context) *Result {
	result := &Result{
		Issues:     []Issue{},
		FilesTotal: ctx.Catalog.Len(),
	}
	for _, rule := range l.rules {
		for _, issue := range rule.Check(ctx) {
			if l.cfg.Quiet && issue.Severity != SeverityError {
				continue
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	sort.SliceStable(result.Issues, func(i, j int) bool {
		a, b := result.Issues[i], result.Issues[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
	return result
}
