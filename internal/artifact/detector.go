// Package artifact detects files created or modified by a workflow step.
// Detection is content-hash based: comparing sha256 digests keyed by
// relative path avoids the false negatives mtime comparison suffers on
// rapid successive writes.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Snapshot maps project-relative paths to content hashes.
type Snapshot map[string]string

// ignoredDirs are ephemeral or engine-owned directories excluded from
// snapshots. The engine's own storage must never register as an artifact.
var ignoredDirs = map[string]bool{
	".git":         true,
	".gao-dev":     true,
	".archive":     true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	"dist":         true,
	"target":       true,
}

// Ignored reports whether a relative path falls under an ignored directory.
func Ignored(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if ignoredDirs[part] {
			return true
		}
	}
	return false
}

// Take walks the project root and hashes every regular file not under an
// ignored directory. It reads file contents but performs no writes.
func Take(projectRoot string) (Snapshot, error) {
	snap := make(Snapshot)

	err := filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Files can vanish mid-walk while an agent is working.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		hash, err := hashFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("hash %s: %w", rel, err)
		}
		snap[rel] = hash
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", projectRoot, err)
	}

	return snap, nil
}

// Diff returns the sorted relative paths present in after with a hash that
// is new or different from before. Deletions are not artifacts.
func Diff(before, after Snapshot) []string {
	var changed []string
	for path, hash := range after {
		if prev, ok := before[path]; !ok || prev != hash {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed
}

// hashFile computes the sha256 hex digest of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashContent computes the sha256 hex digest of in-memory content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
