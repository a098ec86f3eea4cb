// Package placer moves accepted directories into the data home tree,
// with an in-place rename as the fallback when a move cannot complete.
package placer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// maxConflictSuffix bounds the name1, name2, ... probe when the target
// already exists.
const maxConflictSuffix = 100

// FS performs directory placement on the local filesystem. It
// implements the orchestrator's Placer contract.
type FS struct{}

// New returns a filesystem placer.
func New() *FS { return &FS{} }

// Move relocates dir under parent with the given name, creating parent
// if needed. Name conflicts resolve by numeric suffix. Returns the
// final destination path.
func (f *FS) Move(ctx context.Context, dir, parent, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("source %s: %w", dir, err)
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", parent, err)
	}

	dest, err := resolveConflict(parent, name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(dir, dest); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", dir, dest, err)
	}
	return dest, nil
}

// Rename renames dir in place to the given name. Name conflicts
// resolve by numeric suffix. Returns the final destination path.
func (f *FS) Rename(ctx context.Context, dir, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("source %s: %w", dir, err)
	}

	if filepath.Join(filepath.Dir(dir), name) == dir {
		return dir, nil
	}
	dest, err := resolveConflict(filepath.Dir(dir), name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(dir, dest); err != nil {
		return "", fmt.Errorf("failed to rename %s to %s: %w", dir, dest, err)
	}
	return dest, nil
}

// resolveConflict returns parent/name, or the first suffixed variant
// that does not already exist.
func resolveConflict(parent, name string) (string, error) {
	dest := filepath.Join(parent, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest, nil
	}
	for i := 1; i <= maxConflictSuffix; i++ {
		candidate := filepath.Join(parent, name+strconv.Itoa(i))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s under %s", name, parent)
}
