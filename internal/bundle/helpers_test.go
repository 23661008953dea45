package bundle_test

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/dockerdev/internal/process"
)

// scriptedRunner answers every command with the same result and records the
// command lines it receives.
type scriptedRunner struct {
	result   process.Result
	commands []string
}

func (r *scriptedRunner) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	r.commands = append(r.commands, cmd.String())
	return r.result, nil
}

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

// readArchive returns the regular files of a gzipped tarball keyed by name.
func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	defer gz.Close()

	files := map[string]string{}
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		if header.Typeflag != tar.TypeReg {
			continue
		}

		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[filepath.Clean(header.Name)] = string(content)
	}

	return files
}

// archiveNames returns every entry name of a gzipped tarball, directories included.
func archiveNames(t *testing.T, path string) []string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, filepath.Clean(header.Name))
	}

	return names
}
