package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
)

// InitCmd writes a starter manifest plus two documents so a fresh checkout
// builds on the first try.
type InitCmd struct {
	Force bool `help:"Overwrite an existing manifest"`
}

const starterIndex = `---
title: Overview
description: What this catalog is and how to read it.
tags: [meta]
---

# Overview

This catalog collects UI patterns your team has agreed on. Each document
describes one pattern: when to reach for it, how to implement it, and the
trade-offs involved.

Start with [[First Pattern]] to see the document format in action.

## Adding a pattern

1. Create a markdown file under the content directory.
2. Add it to a nav group in the manifest.
3. Run ` + "`patterns lint`" + ` to check cross-references and structure.
4. Run ` + "`patterns build`" + ` to render the site.
`

const starterFirstPattern = `---
title: First Pattern
description: A template to copy for new pattern documents.
tags: [meta, template]
---

# First Pattern

State the problem this pattern solves in one or two sentences. Link related
patterns by their title in double brackets, like [[Overview]].

## When to use it

Describe the situations where this pattern applies, and the ones where a
simpler approach works better.

## Example

` + "```js" + `
export function usePattern() {
  // replace with a real implementation
  return {}
}
` + "```" + `

## Trade-offs

List what the pattern costs: indirection, boilerplate, or coupling.
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if _, err := os.Stat(root.Manifest); err == nil && !i.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", root.Manifest)
	}
	if err := os.WriteFile(root.Manifest, manifest.Example(), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", root.Manifest)

	m, err := manifest.Load(root.Manifest)
	if err != nil {
		return err
	}
	contentDir := resolveAgainstManifest(root.Manifest, m.Content.Dir)
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return err
	}

	starters := []struct {
		name string
		body string
	}{
		{"index.md", starterIndex},
		{"first-pattern.md", starterFirstPattern},
	}
	for _, doc := range starters {
		path := filepath.Join(contentDir, doc.name)
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("kept existing %s\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(doc.body), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  patterns lint    check the catalog")
	fmt.Println("  patterns build   render the site")
	fmt.Println("  patterns serve   preview with live reload")
	return nil
}
