package lint

import (
	"fmt"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/markdown"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/util/sets"
)

// NavTargetRule reports navigation entries pointing at documents that do
// not exist in the content dir.
type NavTargetRule struct{}

func (r *NavTargetRule) Name() string { return "nav-target-exists" }

func (r *NavTargetRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, group := range ctx.Manifest.Nav {
		for _, item := range group.Items {
			if _, ok := ctx.Catalog.ByPath(item.Path); ok {
				continue
			}
			issues = append(issues, Issue{
				FilePath: ctx.ManifestPath,
				Severity: SeverityError,
				Rule:     r.Name(),
				Message:  fmt.Sprintf("nav entry %q points at missing document %s", item.Label, item.Path),
				Explanation: fmt.Sprintf(
					"Group %q lists %s, but no such file exists under %s. The build drops the entry with a warning.",
					group.Title, item.Path, ctx.Catalog.Dir),
				Fix: "Create the document or remove the entry from the manifest.",
			})
		}
	}
	return issues
}

// DuplicateNavPathRule reports the same document listed twice within one
// navigation group.
type DuplicateNavPathRule struct{}

func (r *DuplicateNavPathRule) Name() string { return "duplicate-nav-path" }

func (r *DuplicateNavPathRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, group := range ctx.Manifest.Nav {
		seen := sets.New[string]()
		for _, item := range group.Items {
			if !seen.Has(item.Path) {
				seen.Add(item.Path)
				continue
			}
			issues = append(issues, Issue{
				FilePath: ctx.ManifestPath,
				Severity: SeverityError,
				Rule:     r.Name(),
				Message:  fmt.Sprintf("group %q lists %s more than once", group.Title, item.Path),
				Fix:      "Remove the duplicate entry.",
			})
		}
	}
	return issues
}

// DuplicateNavLabelRule reports repeated labels within one group. Labels
// are display text, so this stays a warning.
type DuplicateNavLabelRule struct{}

func (r *DuplicateNavLabelRule) Name() string { return "duplicate-nav-label" }

func (r *DuplicateNavLabelRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, group := range ctx.Manifest.Nav {
		seen := sets.New[string]()
		for _, item := range group.Items {
			if !seen.Has(item.Label) {
				seen.Add(item.Label)
				continue
			}
			issues = append(issues, Issue{
				FilePath:    ctx.ManifestPath,
				Severity:    SeverityWarning,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("group %q shows the label %q more than once", group.Title, item.Label),
				Explanation: "Readers cannot tell identical sidebar entries apart.",
				Fix:         "Rename one of the entries.",
			})
		}
	}
	return issues
}

// OrphanRule reports documents that no navigation entry reaches. The landing
// page is exempt, as are documents marked `standalone: true` in frontmatter.
type OrphanRule struct{}

func (r *OrphanRule) Name() string { return "orphaned-page" }

func (r *OrphanRule) Check(ctx *Context) []Issue {
	reachable := sets.New[string]()
	for _, path := range ctx.Manifest.NavPaths() {
		reachable.Add(path)
	}

	var issues []Issue
	for _, doc := range ctx.Catalog.Documents {
		if doc.IsIndex() || reachable.Has(doc.RelPath) {
			continue
		}
		if standalone, _ := doc.Meta["standalone"].(bool); standalone {
			continue
		}
		issues = append(issues, Issue{
			FilePath:    doc.RelPath,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     "document is not reachable from the navigation",
			Explanation: fmt.Sprintf("%q is built but no sidebar entry links to it.", doc.Title),
			Fix:         "Add the document to a nav group, mark it standalone: true, or delete it.",
		})
	}
	return issues
}

// CrossrefRule reports bracketed-title references that do not resolve to
// exactly one document title.
type CrossrefRule struct{}

func (r *CrossrefRule) Name() string { return "crossref-resolves" }

func (r *CrossrefRule) Check(ctx *Context) []Issue {
	conflicts := ctx.Catalog.TitleConflicts()

	var issues []Issue
	for _, doc := range ctx.Catalog.Documents {
		for _, ref := range markdown.Crossrefs(doc.Body) {
			if paths, ambiguous := conflicts[ref.Title]; ambiguous {
				issues = append(issues, Issue{
					FilePath: doc.RelPath,
					Severity: SeverityWarning,
					Rule:     r.Name(),
					Message:  fmt.Sprintf("reference [[%s]] is ambiguous", ref.Title),
					Explanation: fmt.Sprintf(
						"The title is claimed by %d documents: %v. The first in path order wins.",
						len(paths), paths),
					Fix:  "Give the documents distinct titles.",
					Line: ref.Line + doc.BodyLineOffset,
				})
				continue
			}
			if _, ok := ctx.Catalog.ByTitle(ref.Title); !ok {
				issues = append(issues, Issue{
					FilePath:    doc.RelPath,
					Severity:    SeverityError,
					Rule:        r.Name(),
					Message:     fmt.Sprintf("reference [[%s]] does not match any document title", ref.Title),
					Explanation: "Bracketed references resolve against document titles, not paths.",
					Fix:         "Correct the reference or retitle the target document.",
					Line:        ref.Line + doc.BodyLineOffset,
				})
			}
		}
	}
	return issues
}

// FenceRule reports fenced code blocks that are opened but never closed.
// An unclosed fence swallows the rest of the document, including headings
// and references, when rendered.
type FenceRule struct{}

func (r *FenceRule) Name() string { return "unbalanced-fences" }

func (r *FenceRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, doc := range ctx.Catalog.Documents {
		for _, fence := range markdown.UnclosedFences(doc.Body) {
			marker := fence.Marker
			if fence.Info != "" {
				marker += fence.Info
			}
			issues = append(issues, Issue{
				FilePath:    doc.RelPath,
				Severity:    SeverityError,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("code fence %s is never closed", marker),
				Explanation: "Everything after the opening fence renders as code.",
				Fix:         fmt.Sprintf("Close the block with %s.", fence.Marker),
				Line:        fence.Line + doc.BodyLineOffset,
			})
		}
	}
	return issues
}
