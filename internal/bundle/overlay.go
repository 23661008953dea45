package bundle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ryanmoran/dockerdev/internal"
	"github.com/ryanmoran/dockerdev/internal/scm"
)

// OverlayWorkingChanges copies the modified and untracked files of source over
// the same relative paths in workingDir. It returns the copied paths relative
// to the source root.
func (b Bundler) OverlayWorkingChanges(ctx context.Context, source scm.Repository, workingDir string) ([]string, error) {
	step := b.writer.Step(fmt.Sprintf("Detecting working changes in '%s'...", source.Root()))
	paths, err := CollectWorkingChanges(ctx, source)
	if err != nil {
		step.Fail(err)
		return nil, err
	}
	step.Done(fmt.Sprintf("%s found", pluralize(len(paths), "changed file")))

	if len(paths) == 0 {
		return nil, nil
	}

	step = b.writer.Step(fmt.Sprintf("Copying %s...", pluralize(len(paths), "file")))
	copied, err := CopyWorkingChanges(source.Root(), workingDir, paths)
	if err != nil {
		step.Fail(err)
		return nil, err
	}
	step.Done("")

	return copied, nil
}

// CollectWorkingChanges returns the modified tracked files followed by the
// untracked files of source. Paths that are not regular files, such as
// deleted files and directories, are dropped.
func CollectWorkingChanges(ctx context.Context, source scm.Repository) ([]string, error) {
	working, err := source.WorkingChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list working changes of %q: %w", source.Root(), err)
	}

	untracked, err := source.UntrackedChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked changes of %q: %w", source.Root(), err)
	}

	var paths []string
	for _, path := range append(working, untracked...) {
		if internal.IsRegularFile(path) {
			paths = append(paths, path)
		}
	}

	return paths, nil
}

// CopyWorkingChanges copies each path, which must lie beneath sourceRoot, to the
// corresponding location beneath workingDir.
func CopyWorkingChanges(sourceRoot, workingDir string, paths []string) ([]string, error) {
	copied := make([]string, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(sourceRoot, path)
		if err != nil {
			return nil, fmt.Errorf("failed to get relative path of %q: %w", path, err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("path %q is outside of %q", path, sourceRoot)
		}

		if err := internal.CopyFile(path, filepath.Join(workingDir, rel)); err != nil {
			return nil, fmt.Errorf("failed to copy working change %q: %w", rel, err)
		}
		copied = append(copied, rel)
	}

	return copied, nil
}

func pluralize(n int, noun string) string {
	switch n {
	case 0:
		return "no " + noun + "s"
	case 1:
		return "1 " + noun
	default:
		return fmt.Sprintf("%d %ss", n, noun)
	}
}
