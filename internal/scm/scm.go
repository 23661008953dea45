package scm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ryanmoran/dockerdev/internal/process"
)

// ErrNoBackend is returned by Detect when no backend owns the directory.
var ErrNoBackend = errors.New("no supported source control system detected")

// Backend is one supported source control system.
type Backend interface {
	// Name returns the short name of the system, e.g. "git".
	Name() string

	// IsRoot reports whether path is the root of a checkout managed by the system.
	IsRoot(path string) bool

	// Open returns a handle to the checkout rooted at path.
	Open(path string) (Repository, error)

	// Clone creates an independent copy of the repository at source in dest.
	Clone(ctx context.Context, source, dest string) (Repository, error)

	// MetadataDirectories returns the names of the directories the system
	// keeps inside a working copy.
	MetadataDirectories() []string
}

// Repository is a handle to a checkout.
type Repository interface {
	// Root returns the absolute root of the checkout.
	Root() string

	// Update brings the working copy up to date. A non-zero result is not an error.
	Update(ctx context.Context) (process.Result, error)

	// WorkingChanges returns the absolute paths of tracked files with local
	// modifications, sorted.
	WorkingChanges(ctx context.Context) ([]string, error)

	// UntrackedChanges returns the absolute paths of files present in the
	// checkout but not tracked, sorted.
	UntrackedChanges(ctx context.Context) ([]string, error)
}

// DistributedRepository is a Repository of a distributed system, which must
// fetch from its origin before updating.
type DistributedRepository interface {
	Repository

	// PullAndUpdate fetches from the origin and updates to the latest
	// revision. A non-zero result is not an error.
	PullAndUpdate(ctx context.Context) (process.Result, error)
}

// All returns the supported backends in detection order.
func All(runner process.Runner) []Backend {
	return []Backend{
		NewGit(),
		NewMercurial(runner),
		NewSubversion(runner),
	}
}

// Detect returns the first backend in backends that claims path as a root.
func Detect(path string, backends []Backend) (Backend, error) {
	for _, backend := range backends {
		if backend.IsRoot(path) {
			return backend, nil
		}
	}

	return nil, fmt.Errorf("%w for %q", ErrNoBackend, path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
