package bundle

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/ryanmoran/dockerdev/internal"
	"github.com/ryanmoran/dockerdev/internal/process"
	"github.com/ryanmoran/dockerdev/internal/scm"
)

type Bundler struct {
	backends []scm.Backend
	runner   process.Runner
	writer   internal.Writer
}

// NewBundler creates a Bundler that checks backends in order, runs tar with
// runner, and reports progress to w.
func NewBundler(backends []scm.Backend, runner process.Runner, w internal.Writer) Bundler {
	return Bundler{
		backends: backends,
		runner:   runner,
		writer:   w,
	}
}

// Run bundles cfg.RepoRoot into cfg.BundlePath. The working directory cleanup
// is registered with cleanup once this run owns the directory: before cloning
// into an absent or empty directory, or after a populated one has been opened
// and updated. A directory that cannot be taken over is never removed. The
// caller owns executing cleanup.
func (b Bundler) Run(ctx context.Context, cfg internal.BundleConfig, cleanup *internal.CleanupManager) error {
	log := clog.FromContext(ctx).With("root", cfg.RepoRoot, "working_dir", cfg.WorkingDir)

	backend, err := b.Detect(cfg.RepoRoot)
	if err != nil {
		return err
	}
	log.Debugf("Detected %s repository", backend.Name())

	source, err := backend.Open(cfg.RepoRoot)
	if err != nil {
		return fmt.Errorf("failed to open %s repository %q: %w", backend.Name(), cfg.RepoRoot, err)
	}

	populated, err := internal.IsNonEmptyDir(cfg.WorkingDir)
	if err != nil {
		return fmt.Errorf("failed to inspect working directory %q: %w", cfg.WorkingDir, err)
	}

	workingDirCleanup := WorkingDirCleanup(cfg.WorkingDir, cfg.PreserveWorkingDir, b.writer)
	if !populated {
		cleanup.Add("working-dir", workingDirCleanup)
	}

	if _, err := b.Synchronize(ctx, backend, source.Root(), cfg.WorkingDir); err != nil {
		return err
	}

	if populated {
		cleanup.Add("working-dir", workingDirCleanup)
	}

	if cfg.IncludeWorkingChanges {
		copied, err := b.OverlayWorkingChanges(ctx, source, cfg.WorkingDir)
		if err != nil {
			return err
		}
		log.Debugf("Copied %d working change(s): %v", len(copied), copied)
	}

	archive, err := b.Archive(ctx, cfg.WorkingDir, backend.MetadataDirectories())
	if err != nil {
		return err
	}

	return b.Finalize(archive, cfg.BundlePath)
}

// Detect returns the backend that owns root.
func (b Bundler) Detect(root string) (scm.Backend, error) {
	step := b.writer.Step("Detecting SCM...")

	backend, err := scm.Detect(root, b.backends)
	if err != nil {
		step.Done("none detected")
		b.writer.Errorf("No SCM was detected for use in '%s'.", root)
		return nil, fmt.Errorf("failed to detect source control for %q: %w\nREPO_ROOT must be the root of a git, mercurial, or subversion checkout", root, err)
	}

	step.Done(backend.Name())
	return backend, nil
}

// Finalize copies the archive to bundlePath, creating parent directories.
func (b Bundler) Finalize(archive, bundlePath string) error {
	step := b.writer.Step("Copying archive...")

	if err := internal.CopyFile(archive, bundlePath); err != nil {
		step.Fail(err)
		return fmt.Errorf("failed to copy archive to %q: %w", bundlePath, err)
	}

	step.Done(bundlePath)
	return nil
}
