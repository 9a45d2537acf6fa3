package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/voxelfix/internal/timeutil"
)

// filesystems returns each implementation rooted at a writable directory.
func filesystems(t *testing.T) map[string]struct {
	fs   FileSystem
	root string
} {
	t.Helper()
	mem := NewMemoryFileSystem()
	require.NoError(t, mem.MkdirAll("/cache", 0o755))
	return map[string]struct {
		fs   FileSystem
		root string
	}{
		"os":     {OSFileSystem{}, t.TempDir()},
		"memory": {mem, "/cache"},
	}
}

func TestFileSystem_WriteReadStat(t *testing.T) {
	t.Parallel()

	for name, tc := range filesystems(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(tc.root, "a.vox")
			require.NoError(t, tc.fs.WriteFile(path, []byte("first"), 0o644))
			require.NoError(t, tc.fs.WriteFile(path, []byte("second!"), 0o644))

			data, err := tc.fs.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "second!", string(data))

			info, err := tc.fs.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, int64(7), info.Size())
			assert.Equal(t, "a.vox", info.Name())
			assert.False(t, info.IsDir())
		})
	}
}

func TestFileSystem_MissingFiles(t *testing.T) {
	t.Parallel()

	for name, tc := range filesystems(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(tc.root, "missing.vox")
			_, err := tc.fs.ReadFile(path)
			assert.ErrorIs(t, err, fs.ErrNotExist)
			_, err = tc.fs.Stat(path)
			assert.ErrorIs(t, err, fs.ErrNotExist)
			assert.ErrorIs(t, tc.fs.Remove(path), fs.ErrNotExist)
		})
	}
}

func TestFileSystem_GlobAndRemove(t *testing.T) {
	t.Parallel()

	for name, tc := range filesystems(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, f := range []string{"b.vox", "a.vox", "notes.txt"} {
				require.NoError(t, tc.fs.WriteFile(filepath.Join(tc.root, f), []byte(f), 0o644))
			}

			names, err := tc.fs.Glob(filepath.Join(tc.root, "*.vox"))
			require.NoError(t, err)
			assert.Equal(t, []string{
				filepath.Join(tc.root, "a.vox"),
				filepath.Join(tc.root, "b.vox"),
			}, names)

			require.NoError(t, tc.fs.Remove(filepath.Join(tc.root, "a.vox")))
			names, err = tc.fs.Glob(filepath.Join(tc.root, "*.vox"))
			require.NoError(t, err)
			assert.Len(t, names, 1)

			_, err = tc.fs.Glob("[")
			assert.Error(t, err)
		})
	}
}

func TestOSFileSystem_WriteFileLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fsys := OSFileSystem{}
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "tile.vox"), []byte{1, 2, 3}, 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tile.vox", entries[0].Name())

	info, err := fsys.Stat(filepath.Join(dir, "tile.vox"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestOSFileSystem_WriteFileMissingDir(t *testing.T) {
	t.Parallel()

	err := OSFileSystem{}.WriteFile(filepath.Join(t.TempDir(), "nope", "tile.vox"), nil, 0o644)
	assert.Error(t, err)
}

func TestMemoryFileSystem_Directories(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	err := m.WriteFile("/missing/dir/a.vox", []byte("x"), 0o644)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, m.MkdirAll("/data/cache", 0o755))
	info, err := m.Stat("/data")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, m.WriteFile("/data/cache/a.vox", []byte("x"), 0o644))
	assert.ErrorIs(t, m.Remove("/data/cache"), fs.ErrExist)
	assert.ErrorIs(t, m.MkdirAll("/data/cache/a.vox", 0o755), fs.ErrExist)

	require.NoError(t, m.Remove("/data/cache/a.vox"))
	require.NoError(t, m.Remove("/data/cache"))
}

func TestMemoryFileSystem_ReadReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	src := []byte("abc")
	require.NoError(t, m.WriteFile("a.vox", src, 0o644))
	src[0] = 'z'

	data, err := m.ReadFile("a.vox")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	data[1] = 'z'

	again, err := m.ReadFile("a.vox")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryFileSystem_ModTimeFollowsClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start)
	m := NewMemoryFileSystem()
	m.SetClock(clock)

	require.NoError(t, m.WriteFile("a.vox", []byte("x"), 0o644))
	info, err := m.Stat("a.vox")
	require.NoError(t, err)
	assert.Equal(t, start, info.ModTime())

	clock.Advance(time.Hour)
	require.NoError(t, m.WriteFile("a.vox", []byte("y"), 0o644))
	info, err = m.Stat("a.vox")
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Hour), info.ModTime())
}
