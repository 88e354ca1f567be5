package discovery

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindTestDir resolves the directory to scan. An absolute path is used as-is. A relative path
// is looked up from the working directory and, unless noParent is set, from each of its parents.
// The result is canonical.
func FindTestDir(path string, noParent bool) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return FindTestDirFrom(cwd, path, noParent)
}

// FindTestDirFrom is FindTestDir with an explicit starting directory.
func FindTestDirFrom(start, path string, noParent bool) (string, error) {
	if filepath.IsAbs(path) {
		if isDir(path) {
			return canonicalDir(path)
		}
		return "", fmt.Errorf("%w: %s", ErrTestDirNotFound, path)
	}

	dir := start
	for {
		candidate := filepath.Join(dir, path)
		if isDir(candidate) {
			return canonicalDir(candidate)
		}
		if noParent {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: %s (searched from %s)", ErrTestDirNotFound, path, start)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func canonicalDir(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return filepath.Abs(resolved)
}
