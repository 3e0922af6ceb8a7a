package stager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newChannel creates a fake channel working copy with git metadata and leftovers.
func newChannel(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/pages\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.toml"), []byte("old"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mods"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mods", "removed.pw.toml"), []byte("old"), 0o644))

	return dir
}

// newSourceTree creates a dist tree with an index, manifest and nested entries.
func newSourceTree(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.json"), []byte(`{"pack_url": "x"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.toml"), []byte("name = \"UPMC\"\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mods"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mods", "sodium.pw.toml"), []byte("new"), 0o644))

	return dir
}

// TestStage_MirrorReplace deletes old content and copies the tree, keeping .git.
func TestStage_MirrorReplace(t *testing.T) {
	t.Parallel()

	channel := newChannel(t)
	source := newSourceTree(t)

	require.NoError(t, Stage(context.Background(), source, channel))

	// Git metadata survives.
	_, err := os.Stat(filepath.Join(channel, ".git", "HEAD"))
	require.NoError(t, err)

	// Old content is gone.
	_, err = os.Stat(filepath.Join(channel, "stale.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(channel, "mods", "removed.pw.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	// New content arrived with structure preserved.
	contents, err := os.ReadFile(filepath.Join(channel, "mods", "sodium.pw.toml"))
	require.NoError(t, err)
	require.Equal(t, "new", string(contents))

	_, err = os.Stat(filepath.Join(channel, "server.json"))
	require.NoError(t, err)
}

// TestStage_ChannelNotFound reports the precondition before deleting anything.
func TestStage_ChannelNotFound(t *testing.T) {
	t.Parallel()

	source := newSourceTree(t)

	// Missing directory.
	err := Stage(context.Background(), source, filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, ErrChannelNotFound)

	// Directory without git metadata.
	bare := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bare, "keep.txt"), []byte("x"), 0o644))

	err = Stage(context.Background(), source, bare)
	require.ErrorIs(t, err, ErrChannelNotFound)

	// Nothing was deleted.
	_, err = os.Stat(filepath.Join(bare, "keep.txt"))
	require.NoError(t, err)
}

// TestStage_SkipsSourceGitMetadata never copies the source tree's own .git.
func TestStage_SkipsSourceGitMetadata(t *testing.T) {
	t.Parallel()

	channel := newChannel(t)
	source := newSourceTree(t)
	require.NoError(t, os.MkdirAll(filepath.Join(source, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, ".git", "config"), []byte("x"), 0o644))

	require.NoError(t, Stage(context.Background(), source, channel))

	// The channel's .git is its own, not a copy of the source's.
	_, err := os.Stat(filepath.Join(channel, ".git", "HEAD"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(channel, ".git", "config"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
