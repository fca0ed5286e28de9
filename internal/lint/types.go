// Package lint checks the integrity of a pattern catalog: navigation,
// cross-references, code fences, and frontmatter conventions.
package lint

import (
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
)

// Severity indicates the importance level of a catalog issue.
type Severity int

const (
	// SeverityInfo marks advisory findings that fix applies silently.
	SeverityInfo Severity = iota
	// SeverityWarning marks issues that degrade the site but do not block builds.
	SeverityWarning
	// SeverityError marks issues that fail the build.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue is a single problem found in the catalog.
type Issue struct {
	// FilePath is content-relative for document issues and the manifest
	// path for navigation issues.
	FilePath    string
	Severity    Severity
	Rule        string
	Message     string
	Explanation string
	Fix         string
	// Line is 1-based, 0 for file-level issues.
	Line int
}

// Result collects the issues of one lint run.
type Result struct {
	Issues     []Issue
	FilesTotal int
}

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-level issues exist.
func (r *Result) HasErrors() bool { return r.count(SeverityError) > 0 }

// HasWarnings reports whether any warning-level issues exist.
func (r *Result) HasWarnings() bool { return r.count(SeverityWarning) > 0 }

func (r *Result) ErrorCount() int   { return r.count(SeverityError) }
func (r *Result) WarningCount() int { return r.count(SeverityWarning) }
func (r *Result) InfoCount() int    { return r.count(SeverityInfo) }

// Context hands rules everything a lint run sees: the manifest and the
// discovered documents.
type Context struct {
	ManifestPath string
	Manifest     *manifest.Manifest
	Catalog      *catalog.Catalog
}

// Rule checks one catalog property.
type Rule interface {
	// Name returns the rule identifier, e.g. "nav-target-exists".
	Name() string

	// Check inspects the catalog and returns any issues found.
	Check(ctx *Context) []Issue
}

// Config controls a lint run.
type Config struct {
	// Quiet suppresses info and warnings, only reporting errors.
	Quiet bool

	// Format selects the output format (text, json).
	Format string
}
