// Package gitmeta reads document history from the git repository the
// catalog lives in. Builds use it to stamp pages with their last update.
package gitmeta

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
)

// ErrNoHistory means the file exists but no commit touches it yet.
var ErrNoHistory = errors.New("no git history for file")

// Info describes the checkout a build ran from.
type Info struct {
	Commit    string
	ShortHash string
	Branch    string
	When      time.Time
}

// DocInfo is the last recorded change of one document.
type DocInfo struct {
	When      time.Time
	ShortHash string
}

// Collector answers history questions for files under one repository.
type Collector struct {
	repo *git.Repository
	// root is the worktree root, for resolving document paths.
	root string
}

// Open locates the repository containing dir, searching parent directories
// the way git itself does.
func Open(dir string) (*Collector, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository worktree: %w", err)
	}
	return &Collector{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Head returns the current checkout.
func (c *Collector) Head() (Info, error) {
	ref, err := c.repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := c.repo.CommitObject(ref.Hash())
	if err != nil {
		return Info{}, fmt.Errorf("read HEAD commit: %w", err)
	}
	hash := ref.Hash().String()
	return Info{
		Commit:    hash,
		ShortHash: hash[:8],
		Branch:    ref.Name().Short(),
		When:      commit.Committer.When,
	}, nil
}

// DocInfo returns the most recent commit touching the file at absPath.
func (c *Collector) DocInfo(absPath string) (DocInfo, error) {
	rel, err := filepath.Rel(c.root, absPath)
	if err != nil {
		return DocInfo{}, fmt.Errorf("resolve %s against worktree: %w", absPath, err)
	}
	rel = filepath.ToSlash(rel)

	iter, err := c.repo.Log(&git.LogOptions{
		FileName: &rel,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return DocInfo{}, fmt.Errorf("log %s: %w", rel, err)
	}
	defer iter.Close()

	commit, err := iter.Next()
	if errors.Is(err, io.EOF) {
		return DocInfo{}, ErrNoHistory
	}
	if err != nil {
		return DocInfo{}, fmt.Errorf("log %s: %w", rel, err)
	}
	return DocInfo{
		When:      commit.Committer.When,
		ShortHash: commit.Hash.String()[:8],
	}, nil
}
