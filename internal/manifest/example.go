package manifest

// Example returns a starter manifest for new catalogs.
func Example() []byte {
	return []byte(`site:
  title: My Pattern Catalog
  description: Reusable UI patterns, documented.
  base_path: /
  social:
    github: https://github.com/example/patterns

content:
  dir: docs

build:
  output_dir: dist
  clean: true

serve:
  addr: ":4173"

nav:
  - title: Getting Started
    items:
      - label: Overview
        path: index.md
      - label: First Pattern
        path: first-pattern.md
`)
}
