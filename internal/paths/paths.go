// Package paths normalizes file paths against a workspace root. Tool calls
// may pass workspace-relative or absolute paths; everything handed to the
// LSAP layer is absolute, and everything returned to the agent is
// workspace-relative with forward slashes.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve turns a tool-supplied file path into an absolute path under the
// workspace root. Relative paths are joined to the root; absolute paths are
// used as-is.
func Resolve(workspaceRoot, filePath string) string {
	if filepath.IsAbs(filePath) {
		return filepath.Clean(filePath)
	}
	return filepath.Join(workspaceRoot, filePath)
}

// Canonicalize converts an absolute path to a workspace-relative canonical
// path: symlinks resolved, forward slashes, relative to the workspace root.
func Canonicalize(absolutePath, workspaceRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(workspaceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = workspaceRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinWorkspace checks if a path is inside the workspace root.
func IsWithinWorkspace(path, workspaceRoot string) bool {
	canonical, err := Canonicalize(path, workspaceRoot)
	if err != nil {
		return false
	}

	// Paths outside the workspace canonicalize to ../...
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// Exists reports whether the path exists on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether the path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
