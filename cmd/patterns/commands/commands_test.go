package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/catalog"
)

func newTestRoot(t *testing.T) *CLI {
	t.Helper()
	return &CLI{Manifest: filepath.Join(t.TempDir(), "patterns.yaml")}
}

func initCatalog(t *testing.T, root *CLI) {
	t.Helper()
	var cmd InitCmd
	require.NoError(t, cmd.Run(nil, root))
}

func TestInitCmd_Run_WritesStarterCatalog(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	require.FileExists(t, root.Manifest)
	dir := filepath.Dir(root.Manifest)
	require.FileExists(t, filepath.Join(dir, "docs", "index.md"))
	require.FileExists(t, filepath.Join(dir, "docs", "first-pattern.md"))
}

func TestInitCmd_Run_RefusesToOverwriteWithoutForce(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	var cmd InitCmd
	err := cmd.Run(nil, root)
	require.ErrorContains(t, err, "already exists")

	cmd.Force = true
	require.NoError(t, cmd.Run(nil, root))
}

func TestInitCmd_Run_KeepsExistingDocuments(t *testing.T) {
	root := newTestRoot(t)
	dir := filepath.Dir(root.Manifest)
	docPath := filepath.Join(dir, "docs", "index.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(docPath), 0o755))
	require.NoError(t, os.WriteFile(docPath, []byte("# Mine\n"), 0o644))

	initCatalog(t, root)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	require.Equal(t, "# Mine\n", string(data))
}

func TestLintCmd_Run_PassesOnStarterCatalog(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	cmd := LintCmd{Format: "text"}
	require.NoError(t, cmd.Run(nil, root))
}

func TestLintCmd_Run_FailsOnBrokenCrossref(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	dir := filepath.Dir(root.Manifest)
	doc := filepath.Join(dir, "docs", "first-pattern.md")
	require.NoError(t, os.WriteFile(doc, []byte(`---
title: First Pattern
description: Broken reference.
---

# First Pattern

See [[No Such Pattern]] for details.
`), 0o644))

	cmd := LintCmd{Format: "text"}
	err := cmd.Run(nil, root)
	require.ErrorContains(t, err, "lint errors")
}

func TestFixCmd_Run_AddsMissingFrontmatterFields(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	var cmd FixCmd
	require.NoError(t, cmd.Run(nil, root))

	dir := filepath.Dir(root.Manifest)
	data, err := os.ReadFile(filepath.Join(dir, "docs", "index.md"))
	require.NoError(t, err)
	require.Contains(t, string(data), "uid:")
	require.Contains(t, string(data), "fingerprint:")
}

func TestFixCmd_Run_DryRunLeavesFilesAlone(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	cmd := FixCmd{DryRun: true}
	require.NoError(t, cmd.Run(nil, root))

	dir := filepath.Dir(root.Manifest)
	data, err := os.ReadFile(filepath.Join(dir, "docs", "index.md"))
	require.NoError(t, err)
	require.NotContains(t, string(data), "uid:")
}

func TestBuildCmd_Run_RendersStarterSite(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	var cmd BuildCmd
	require.NoError(t, cmd.Run(nil, root))

	dir := filepath.Dir(root.Manifest)
	require.FileExists(t, filepath.Join(dir, "dist", "index.html"))
	require.FileExists(t, filepath.Join(dir, "dist", "first-pattern", "index.html"))
	require.FileExists(t, filepath.Join(dir, ".patterns", "events.db"))
}

func TestVerifyCmd_Run_RequiresRenderedSite(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	var cmd VerifyCmd
	err := cmd.Run(nil, root)
	require.ErrorContains(t, err, "run a build first")
}

func TestFindDocument_ResolvesPathSuffixAndTitle(t *testing.T) {
	root := newTestRoot(t)
	initCatalog(t, root)

	dir := filepath.Dir(root.Manifest)
	cat, err := catalog.Discover(filepath.Join(dir, "docs"))
	require.NoError(t, err)

	byPath, ok := findDocument(cat, "first-pattern.md")
	require.True(t, ok)
	require.Equal(t, "First Pattern", byPath.Title)

	bare, ok := findDocument(cat, "first-pattern")
	require.True(t, ok)
	require.Equal(t, byPath, bare)

	byTitle, ok := findDocument(cat, "First Pattern")
	require.True(t, ok)
	require.Equal(t, byPath, byTitle)

	_, ok = findDocument(cat, "missing")
	require.False(t, ok)
}

func TestResolveAgainstManifest_LeavesAbsolutePaths(t *testing.T) {
	require.Equal(t, "/tmp/x", resolveAgainstManifest("a/patterns.yaml", "/tmp/x"))
	require.Equal(t, filepath.Join("a", "docs"), resolveAgainstManifest("a/patterns.yaml", "docs"))
}
