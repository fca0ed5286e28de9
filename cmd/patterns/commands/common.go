// Package commands implements the patterns CLI surface.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command: global flags plus one struct per subcommand.
type CLI struct {
	Manifest string `short:"c" help:"Manifest file path" default:"patterns.yaml"`
	Verbose  bool   `short:"v" help:"Enable verbose logging"`

	Build   BuildCmd   `cmd:"" help:"Render the catalog into a static site"`
	Serve   ServeCmd   `cmd:"" help:"Serve the site locally with rebuild on change"`
	Lint    LintCmd    `cmd:"" help:"Check catalog integrity without building"`
	Fix     FixCmd     `cmd:"" help:"Repair document frontmatter (uid, fingerprint, lastmod)"`
	Verify  VerifyCmd  `cmd:"" help:"Check external links in the rendered site"`
	Show    ShowCmd    `cmd:"" help:"Render one document in the terminal"`
	Init    InitCmd    `cmd:"" help:"Write a starter manifest and first documents"`
	Version VersionCmd `cmd:"" help:"Print build metadata"`
}

// AfterApply configures logging once global flags are known.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// resolveAgainstManifest turns a manifest-relative path into one usable from
// the current working directory.
func resolveAgainstManifest(manifestPath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(manifestPath), p)
}
