package placer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdir(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	return path
}

func TestMove(t *testing.T) {
	root := t.TempDir()
	src := mkdir(t, filepath.Join(root, "unsorted"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("x"), 0o644))
	parent := filepath.Join(root, "data", "audio", "podcasts")

	dest, err := New().Move(context.Background(), src, parent, "audPodShow")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(parent, "audPodShow"), dest)
	assert.FileExists(t, filepath.Join(dest, "a.txt"))
	assert.NoDirExists(t, src)
}

func TestMoveConflictSuffix(t *testing.T) {
	root := t.TempDir()
	parent := mkdir(t, filepath.Join(root, "parent"))
	mkdir(t, filepath.Join(parent, "docNotes"))
	mkdir(t, filepath.Join(parent, "docNotes1"))
	src := mkdir(t, filepath.Join(root, "src"))

	dest, err := New().Move(context.Background(), src, parent, "docNotes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "docNotes2"), dest)
}

func TestMoveMissingSource(t *testing.T) {
	root := t.TempDir()
	_, err := New().Move(context.Background(), filepath.Join(root, "nope"), root, "x")
	assert.Error(t, err)
}

func TestRenameInPlace(t *testing.T) {
	root := t.TempDir()
	src := mkdir(t, filepath.Join(root, "untitled"))

	dest, err := New().Rename(context.Background(), src, "docMeetingNotes")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "docMeetingNotes"), dest)
	assert.DirExists(t, dest)
	assert.NoDirExists(t, src)
}

func TestRenameConflictSuffix(t *testing.T) {
	root := t.TempDir()
	src := mkdir(t, filepath.Join(root, "untitled"))
	mkdir(t, filepath.Join(root, "docNotes"))

	dest, err := New().Rename(context.Background(), src, "docNotes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "docNotes1"), dest)
}

func TestRenameSameName(t *testing.T) {
	root := t.TempDir()
	src := mkdir(t, filepath.Join(root, "docNotes"))

	dest, err := New().Rename(context.Background(), src, "docNotes")
	require.NoError(t, err)
	assert.Equal(t, src, dest)
	assert.DirExists(t, src)
}

func TestCancelledContext(t *testing.T) {
	root := t.TempDir()
	src := mkdir(t, filepath.Join(root, "src"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Move(ctx, src, root, "x")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = New().Rename(ctx, src, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
