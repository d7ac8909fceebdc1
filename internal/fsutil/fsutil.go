// Package fsutil holds small filesystem helpers shared by the pipeline:
// path containment checks and recursive copies. All path comparisons are
// lexical; callers are expected to pass cleaned absolute paths.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SamePath reports whether two paths are lexically identical after cleaning.
func SamePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// Contains reports whether child equals parent or lies underneath it.
func Contains(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)
	if parent == child {
		return true
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CopyFile copies src to dst, creating parent directories as needed.
// Existing destination files are overwritten.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	in, err := os.Open(src) // #nosec G304 -- paths come from validated configuration
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}

// CopyDir recursively copies the tree rooted at src into dst.
// Symlinks are not followed.
func CopyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return CopyFile(path, target)
	})
}
