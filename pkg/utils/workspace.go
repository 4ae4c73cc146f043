package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is a process-scoped temporary directory. Everything created through
// it is removed by Close, so callers defer Close right after NewWorkspace.
type Workspace struct {
	root string
}

func NewWorkspace(pattern string) (*Workspace, error) {
	root, err := os.MkdirTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Workspace{root: root}, nil
}

func (w *Workspace) Root() string {
	return w.root
}

// Path joins elem onto the workspace root.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.root}, elem...)...)
}

// Dir creates (if needed) and returns a subdirectory of the workspace.
func (w *Workspace) Dir(name string) (string, error) {
	dir := w.Path(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// Close removes the workspace and everything in it. Safe to call twice.
func (w *Workspace) Close() error {
	if w == nil || w.root == "" {
		return nil
	}
	root := w.root
	w.root = ""
	return os.RemoveAll(root)
}

// SanitizeFilename removes characters that are invalid in filenames
func SanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}
