package scm_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/dockerdev/internal/process"
)

// initGitRepo creates a repository with the given files committed.
func initGitRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	commitFiles(t, dir, files, "initial commit")

	return dir
}

func commitFiles(t *testing.T, dir string, files map[string]string, message string) {
	t.Helper()

	repo, err := gogit.PlainOpen(dir)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
		_, err := worktree.Add(filepath.ToSlash(name))
		require.NoError(t, err)
	}

	_, err = worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// fakeRunner returns scripted results keyed by command line and records every
// command it receives.
type fakeRunner struct {
	results  map[string]process.Result
	commands []process.Command
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]process.Result{}}
}

func (f *fakeRunner) on(commandLine string, result process.Result) {
	f.results[commandLine] = result
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	f.commands = append(f.commands, cmd)
	return f.results[cmd.String()], nil
}
