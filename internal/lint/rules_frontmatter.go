package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/frontmatterops"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/markdown"
)

// MissingTitleRule reports documents with neither a frontmatter title nor a
// level-one heading. Such documents fall back to filename-derived titles and
// cannot be targeted by bracketed references reliably.
type MissingTitleRule struct{}

func (r *MissingTitleRule) Name() string { return "missing-title" }

func (r *MissingTitleRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, doc := range ctx.Catalog.Documents {
		if t, ok := doc.Meta["title"].(string); ok && strings.TrimSpace(t) != "" {
			continue
		}
		if _, ok := markdown.Title(doc.Body); ok {
			continue
		}
		issues = append(issues, Issue{
			FilePath:    doc.RelPath,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     "document has no title",
			Explanation: fmt.Sprintf("The sidebar and references fall back to the filename, currently %q.", doc.Title),
			Fix:         "Add a title to the frontmatter or start the document with a level-one heading.",
		})
	}
	return issues
}

// DuplicateTitleRule reports titles claimed by more than one document.
type DuplicateTitleRule struct{}

func (r *DuplicateTitleRule) Name() string { return "duplicate-title" }

func (r *DuplicateTitleRule) Check(ctx *Context) []Issue {
	conflicts := ctx.Catalog.TitleConflicts()
	titles := make([]string, 0, len(conflicts))
	for title := range conflicts {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	var issues []Issue
	for _, title := range titles {
		paths := conflicts[title]
		for _, path := range paths[1:] {
			issues = append(issues, Issue{
				FilePath:    path,
				Severity:    SeverityWarning,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("title %q is already used by %s", title, paths[0]),
				Explanation: "Bracketed references to this title resolve to the first document in path order.",
				Fix:         "Retitle one of the documents.",
			})
		}
	}
	return issues
}

// UIDRule reports documents without a stable uid.
type UIDRule struct{}

func (r *UIDRule) Name() string { return "missing-uid" }

func (r *UIDRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, doc := range ctx.Catalog.Documents {
		if _, ok := doc.Meta[frontmatterops.UIDField]; ok {
			continue
		}
		issues = append(issues, Issue{
			FilePath:    doc.RelPath,
			Severity:    SeverityInfo,
			Rule:        r.Name(),
			Message:     "document has no uid",
			Explanation: "Without a uid the document loses its permalink when it moves.",
			Fix:         "Run: patterns fix",
		})
	}
	return issues
}

// FingerprintRule reports missing or stale content fingerprints.
type FingerprintRule struct{}

func (r *FingerprintRule) Name() string { return "stale-fingerprint" }

func (r *FingerprintRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, doc := range ctx.Catalog.Documents {
		if !doc.HadFrontmatter {
			continue
		}
		recorded, ok := doc.Meta[mdfp.FingerprintField].(string)
		if !ok || recorded == "" {
			issues = append(issues, Issue{
				FilePath: doc.RelPath,
				Severity: SeverityInfo,
				Rule:     r.Name(),
				Message:  "document has no content fingerprint",
				Fix:      "Run: patterns fix",
			})
			continue
		}
		current, err := frontmatterops.ComputeFingerprint(doc.Meta, doc.Body)
		if err != nil || current == recorded {
			continue
		}
		issues = append(issues, Issue{
			FilePath:    doc.RelPath,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     "content changed since the fingerprint was written",
			Explanation: "lastmod no longer reflects the latest edit.",
			Fix:         "Run: patterns fix",
		})
	}
	return issues
}
