package scm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/ryanmoran/dockerdev/internal/process"
)

const gitRemoteName = "origin"

// Git is the git backend, implemented in-process with go-git.
type Git struct{}

// NewGit creates the git backend.
func NewGit() Git {
	return Git{}
}

func (Git) Name() string {
	return "git"
}

// IsRoot reports whether path itself is the root of a git repository. Parent
// directories are not searched.
func (Git) IsRoot(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

func (Git) Open(path string) (Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository %q: %w", path, err)
	}

	return &gitRepository{root: path, repo: repo}, nil
}

// Clone clones source into dest, which must be absent or empty. The clone's
// origin remote points at source.
func (Git) Clone(ctx context.Context, source, dest string) (Repository, error) {
	var progress bytes.Buffer
	repo, err := gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:        source,
		RemoteName: gitRemoteName,
		Progress:   &progress,
	})
	if err != nil {
		return nil, &process.ExitError{
			Command: fmt.Sprintf("git clone %s %s", source, dest),
			Result:  failedResult(progress.String(), err),
		}
	}

	return &gitRepository{root: dest, repo: repo}, nil
}

func (Git) MetadataDirectories() []string {
	return []string{".git"}
}

type gitRepository struct {
	root string
	repo *gogit.Repository
}

func (r *gitRepository) Root() string {
	return r.root
}

// Update resets the working tree to the current HEAD commit and removes
// untracked files.
func (r *gitRepository) Update(_ context.Context) (process.Result, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return process.Result{}, fmt.Errorf("failed to get worktree of %q: %w", r.root, err)
	}

	if err := discardLocalChanges(worktree); err != nil {
		return failedResult("", err), nil
	}

	head, err := r.repo.Head()
	if err != nil {
		return failedResult("", err), nil
	}

	return process.Result{Output: fmt.Sprintf("HEAD is now at %s\n", head.Hash())}, nil
}

// PullAndUpdate discards local changes, fetches from origin, and
// fast-forwards the checked out branch.
func (r *gitRepository) PullAndUpdate(ctx context.Context) (process.Result, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return process.Result{}, fmt.Errorf("failed to get worktree of %q: %w", r.root, err)
	}

	if err := discardLocalChanges(worktree); err != nil {
		return failedResult("", err), nil
	}

	var progress bytes.Buffer
	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName: gitRemoteName,
		Progress:   &progress,
	})
	switch {
	case errors.Is(err, gogit.NoErrAlreadyUpToDate):
		return process.Result{Output: progress.String() + "Already up to date.\n"}, nil
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return process.Result{}, fmt.Errorf("git pull interrupted: %w", ctxErr)
		}
		return failedResult(progress.String(), err), nil
	}

	return process.Result{Output: progress.String()}, nil
}

func (r *gitRepository) WorkingChanges(_ context.Context) ([]string, error) {
	return r.changes(func(s *gogit.FileStatus) bool {
		if s.Worktree == gogit.Untracked {
			return false
		}
		return s.Staging != gogit.Unmodified || s.Worktree != gogit.Unmodified
	})
}

func (r *gitRepository) UntrackedChanges(_ context.Context) ([]string, error) {
	return r.changes(func(s *gogit.FileStatus) bool {
		return s.Worktree == gogit.Untracked
	})
}

func (r *gitRepository) changes(include func(*gogit.FileStatus) bool) ([]string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree of %q: %w", r.root, err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status of %q: %w", r.root, err)
	}

	var paths []string
	for path, fileStatus := range status {
		if include(fileStatus) {
			paths = append(paths, filepath.Join(r.root, filepath.FromSlash(path)))
		}
	}
	sort.Strings(paths)

	return paths, nil
}

// discardLocalChanges returns the worktree to the committed state of HEAD.
func discardLocalChanges(worktree *gogit.Worktree) error {
	if err := worktree.Reset(&gogit.ResetOptions{Mode: gogit.HardReset}); err != nil {
		return fmt.Errorf("resetting worktree: %w", err)
	}

	if err := worktree.Clean(&gogit.CleanOptions{Dir: true}); err != nil {
		return fmt.Errorf("cleaning worktree: %w", err)
	}

	return nil
}

// failedResult describes an in-process failure as a non-zero result so that it
// is reported like a failed command.
func failedResult(output string, err error) process.Result {
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	return process.Result{
		ExitCode: 1,
		Output:   output + err.Error() + "\n",
	}
}
