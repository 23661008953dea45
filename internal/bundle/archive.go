package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/chainguard-dev/clog"

	"github.com/ryanmoran/dockerdev/internal"
	"github.com/ryanmoran/dockerdev/internal/process"
)

// Archive compresses the contents of workingDir, minus the exclude
// directories, into workingDir/archive.tgz and returns its path.
func (b Bundler) Archive(ctx context.Context, workingDir string, exclude []string) (string, error) {
	step := b.writer.Step("Bundling content...")

	entries, err := ArchiveEntries(workingDir, exclude)
	if err != nil {
		step.Fail(err)
		return "", err
	}

	cmd := ArchiveCommand(workingDir, exclude, entries)
	b.writer.Debugf("Command line: %s", cmd)
	clog.FromContext(ctx).Debugf("Archiving %d entries of %s", len(entries), workingDir)

	result, err := process.RunChecked(ctx, b.runner, cmd)
	if err != nil {
		step.Fail(err)
		return "", fmt.Errorf("failed to archive %q: %w", workingDir, err)
	}

	step.Done("")
	if result.Output != "" {
		b.writer.Verbosef("%s", result.Output)
	}
	return filepath.Join(workingDir, internal.ArchiveName), nil
}

// ArchiveEntries lists the sorted top-level names of workingDir that belong in
// the archive. Hidden entries are included; the exclude names and any previous
// archive are not.
func ArchiveEntries(workingDir string, exclude []string) ([]string, error) {
	dirEntries, err := os.ReadDir(workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read working directory %q: %w", workingDir, err)
	}

	var entries []string
	for _, entry := range dirEntries {
		name := entry.Name()
		if name == internal.ArchiveName || slices.Contains(exclude, name) {
			continue
		}
		entries = append(entries, name)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("working directory %q has no content to archive", workingDir)
	}
	sort.Strings(entries)

	return entries, nil
}

// ArchiveCommand builds the tar invocation that writes archive.tgz in workingDir.
func ArchiveCommand(workingDir string, exclude, entries []string) process.Command {
	args := []string{"-cz", "-f", internal.ArchiveName}
	for _, name := range exclude {
		args = append(args, "--exclude", name)
	}
	args = append(args, entries...)

	return process.Command{
		Dir:  workingDir,
		Name: "tar",
		Args: args,
	}
}
