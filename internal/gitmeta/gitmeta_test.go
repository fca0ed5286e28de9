package gitmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, rel, content string, when time.Time) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(rel)
	require.NoError(t, err)
	hash, err := wt.Commit("update "+rel, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Catalog Bot",
			Email: "bot@example.com",
			When:  when,
		},
	})
	require.NoError(t, err)
	return hash.String()
}

func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return repo, dir
}

func TestOpen_NotARepository_ReturnsError(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}

func TestOpen_SubdirectoryOfRepo_DetectsDotGit(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, repo, dir, "docs/index.md", "# Welcome\n", time.Now())

	c, err := Open(filepath.Join(dir, "docs"))

	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestHead_ReturnsBranchAndCommit(t *testing.T) {
	repo, dir := initRepo(t)
	when := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	hash := commitFile(t, repo, dir, "docs/index.md", "# Welcome\n", when)

	c, err := Open(dir)
	require.NoError(t, err)
	info, err := c.Head()

	require.NoError(t, err)
	require.Equal(t, hash, info.Commit)
	require.Equal(t, hash[:8], info.ShortHash)
	require.Equal(t, "master", info.Branch)
	require.Equal(t, when.Unix(), info.When.Unix())
}

func TestDocInfo_ReturnsLatestCommitTouchingFile(t *testing.T) {
	repo, dir := initRepo(t)
	t1 := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	commitFile(t, repo, dir, "docs/a.md", "v1\n", t1)
	second := commitFile(t, repo, dir, "docs/a.md", "v2\n", t2)
	commitFile(t, repo, dir, "docs/b.md", "other\n", t2.Add(time.Hour))

	c, err := Open(dir)
	require.NoError(t, err)
	info, err := c.DocInfo(filepath.Join(dir, "docs", "a.md"))

	require.NoError(t, err)
	require.Equal(t, t2.Unix(), info.When.Unix())
	require.Equal(t, second[:8], info.ShortHash)
}

func TestDocInfo_UntrackedFile_ErrNoHistory(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, repo, dir, "docs/a.md", "v1\n", time.Now())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "new.md"), []byte("x\n"), 0o644))

	c, err := Open(dir)
	require.NoError(t, err)
	_, err = c.DocInfo(filepath.Join(dir, "docs", "new.md"))

	require.ErrorIs(t, err, ErrNoHistory)
}
