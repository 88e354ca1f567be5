package catalog

import (
	"os"
	"path/filepath"
)

// ResolveSourceFile locates the source file a test declares. Absolute paths are taken as-is;
// relative ones are looked up from the directory containing executable and then each of its
// parents up to the filesystem root. The result is canonical. ok is false when nothing exists.
func ResolveSourceFile(executable, declared string) (path string, ok bool) {
	if declared == "" {
		return "", false
	}

	candidate := declared
	if !filepath.IsAbs(declared) {
		dir, err := filepath.Abs(filepath.Dir(executable))
		if err != nil {
			return "", false
		}
		candidate, ok = searchUpward(dir, declared)
		if !ok {
			return "", false
		}
	}

	if !isRegular(candidate) {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", false
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", false
	}
	return resolved, true
}

func searchUpward(dir, rel string) (string, bool) {
	for {
		candidate := filepath.Join(dir, rel)
		if isRegular(candidate) {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
