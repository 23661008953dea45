package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies the regular file at src to dst, creating the parent
// directories of dst as needed. The destination takes the mode of the source
// and is truncated if it already exists.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source file %q: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("failed to copy %q: not a regular file", src)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	_, err = io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	// OpenFile only applies the mode on creation.
	return os.Chmod(dst, info.Mode().Perm())
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsNonEmptyDir reports whether path is a directory containing at least one entry.
func IsNonEmptyDir(path string) (bool, error) {
	dir, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer dir.Close()

	info, err := dir.Stat()
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}

	_, err = dir.Readdirnames(1)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
