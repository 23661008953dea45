package bundle

import (
	"context"
	"fmt"

	"github.com/ryanmoran/dockerdev/internal"
	"github.com/ryanmoran/dockerdev/internal/process"
	"github.com/ryanmoran/dockerdev/internal/scm"
)

// Synchronize makes workingDir an up-to-date copy of the repository at
// sourceRoot. A non-empty workingDir is opened and updated: distributed
// repositories pull and update, others update. Anything else is cloned fresh.
func (b Bundler) Synchronize(ctx context.Context, backend scm.Backend, sourceRoot, workingDir string) (scm.Repository, error) {
	populated, err := internal.IsNonEmptyDir(workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect working directory %q: %w", workingDir, err)
	}

	if !populated {
		return b.clone(ctx, backend, sourceRoot, workingDir)
	}

	return b.update(ctx, backend, workingDir)
}

func (b Bundler) clone(ctx context.Context, backend scm.Backend, sourceRoot, workingDir string) (scm.Repository, error) {
	step := b.writer.Step(fmt.Sprintf("Cloning into '%s'...", workingDir))

	repo, err := backend.Clone(ctx, sourceRoot, workingDir)
	if err != nil {
		step.Fail(err)
		return nil, fmt.Errorf("failed to clone %q into %q: %w", sourceRoot, workingDir, err)
	}

	step.Done("")
	return repo, nil
}

func (b Bundler) update(ctx context.Context, backend scm.Backend, workingDir string) (scm.Repository, error) {
	step := b.writer.Step(fmt.Sprintf("Updating '%s'...", workingDir))

	repo, err := backend.Open(workingDir)
	if err != nil {
		step.Fail(err)
		return nil, fmt.Errorf("failed to open working directory %q: %w\nRemove it or pass an empty working directory to clone fresh", workingDir, err)
	}

	var (
		result    process.Result
		operation string
	)
	if distributed, ok := repo.(scm.DistributedRepository); ok {
		operation = backend.Name() + " pull and update"
		result, err = distributed.PullAndUpdate(ctx)
	} else {
		operation = backend.Name() + " update"
		result, err = repo.Update(ctx)
	}
	if err != nil {
		step.Fail(err)
		return nil, fmt.Errorf("failed to update %q: %w", workingDir, err)
	}

	if !result.Succeeded() {
		exitErr := &process.ExitError{Command: operation, Result: result}
		step.Fail(exitErr)
		return nil, fmt.Errorf("failed to update %q: %w", workingDir, exitErr)
	}

	step.Done("")
	if result.Output != "" {
		b.writer.Verbosef("%s", result.Output)
	}

	return repo, nil
}
