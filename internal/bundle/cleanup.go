package bundle

import (
	"fmt"
	"os"

	"github.com/ryanmoran/dockerdev/internal"
)

// WorkingDirCleanup returns the cleanup for dir. When preserve is set it only
// reports that dir was kept.
func WorkingDirCleanup(dir string, preserve bool, w internal.Writer) func() error {
	return func() error {
		if preserve {
			w.Printf("\n'%s' was preserved.\n", dir)
			return nil
		}

		step := w.Step("Removing working directory...")
		if err := os.RemoveAll(dir); err != nil {
			step.Fail(err)
			return fmt.Errorf("failed to remove working directory %q: %w", dir, err)
		}
		step.Done("")

		return nil
	}
}
