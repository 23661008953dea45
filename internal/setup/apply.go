package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"

	"github.com/ryanmoran/dockerdev/internal"
)

// Apply performs the declared custom actions in order, stopping at the first
// failure.
func Apply(ctx context.Context, cfg Configuration, w internal.Writer) error {
	for _, link := range cfg.Links {
		step := w.Step(fmt.Sprintf("Linking '%s'...", link.Link))

		target, err := CreateLink(link)
		if err != nil {
			step.Fail(err)
			return err
		}
		clog.FromContext(ctx).Debugf("Linked %s to %s", link.Link, target)

		step.Done(target)
	}

	return nil
}

// CreateLink creates the symbolic link and returns the target as written into
// it. The target must be an existing regular file.
func CreateLink(link Link) (string, error) {
	if !internal.IsRegularFile(link.Target) {
		return "", fmt.Errorf("link target %q is not a file\nCheck that the foundation repository has been set up", link.Target)
	}

	if _, err := os.Lstat(link.Link); err == nil {
		if !link.RemoveExisting {
			return "", fmt.Errorf("%q already exists", link.Link)
		}
		if err := os.Remove(link.Link); err != nil {
			return "", fmt.Errorf("failed to remove existing %q: %w", link.Link, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to inspect %q: %w", link.Link, err)
	}

	target := link.Target
	if link.Relative {
		rel, err := filepath.Rel(filepath.Dir(link.Link), link.Target)
		if err != nil {
			return "", fmt.Errorf("failed to make %q relative to %q: %w", link.Target, filepath.Dir(link.Link), err)
		}
		target = rel
	}

	if err := os.MkdirAll(filepath.Dir(link.Link), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %q: %w", link.Link, err)
	}

	if err := os.Symlink(target, link.Link); err != nil {
		return "", fmt.Errorf("failed to create link %q: %w", link.Link, err)
	}

	return target, nil
}
