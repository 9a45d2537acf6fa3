package volumestore

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/voxelfix/internal/fsutil"
	"github.com/banshee-data/voxelfix/internal/testutil"
	"github.com/banshee-data/voxelfix/internal/timeutil"
	"github.com/banshee-data/voxelfix/internal/voxel"
)

// stores opens one of each store kind in a fresh location.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	mem, err := NewFileStoreFS(fsutil.NewMemoryFileSystem(), "/tiles")
	require.NoError(t, err)
	disk, err := NewFileStore(filepath.Join(t.TempDir(), "tiles"))
	require.NoError(t, err)
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)

	all := map[string]Store{"file-memory": mem, "file-disk": disk, "sqlite": db}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"a", "tile_0-0.v2", strings.Repeat("x", 128), "X.Y"} {
		assert.NoError(t, ValidateKey(key), key)
	}
	for _, key := range []string{"", ".", "..", "a/b", "../etc", "tile 1", "tïle", strings.Repeat("x", 129)} {
		err := ValidateKey(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open(KindFile, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(KindSQLite, filepath.Join(t.TempDir(), "c.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("badger", t.TempDir())
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, backend := range testutil.Backends {
				key := "terrain_" + string(backend)
				v := testutil.Terrain(t, backend)
				saved, err := s.Save(key, v)
				require.NoError(t, err)
				assert.Equal(t, key, saved.Key)
				assert.Equal(t, backend, saved.Backend)
				assert.Equal(t, v.Bounds(), saved.Bounds)
				assert.NotEmpty(t, saved.ID)
				assert.Positive(t, saved.StoredSize)

				back, loaded, err := s.Load(key)
				require.NoError(t, err)
				assert.Equal(t, saved.ID, loaded.ID)
				assert.Equal(t, saved.Hash, loaded.Hash)
				assert.Equal(t, saved.RawSize, loaded.RawSize)
				assert.Equal(t, backend, back.Backend())
				if diff := cmp.Diff(v.ExportBlockData(), back.ExportBlockData()); diff != "" {
					t.Fatalf("loaded volume differs (-saved +loaded):\n%s", diff)
				}
			}
		})
	}
}

func TestStore_OverwriteKeepsID(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := testutil.NewVolume(t, voxel.BackendDense, 4, 4, 4)
			first, err := s.Save("tile", v)
			require.NoError(t, err)

			testutil.Set(t, v, 1, 1, 1, testutil.Brick)
			second, err := s.Save("tile", v)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			assert.NotEqual(t, first.Hash, second.Hash)

			back, _, err := s.Load("tile")
			require.NoError(t, err)
			got, ok := back.Get(1, 1, 1)
			require.True(t, ok)
			assert.Equal(t, testutil.Brick, got)

			entries, err := s.List()
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestStore_ListDeleteNotFound(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			entries, err := s.List()
			require.NoError(t, err)
			assert.Empty(t, entries)

			for _, key := range []string{"b", "a", "c"} {
				_, err := s.Save(key, testutil.NewVolume(t, voxel.BackendOctree, 2, 3, 4))
				require.NoError(t, err)
			}
			entries, err = s.List()
			require.NoError(t, err)
			require.Len(t, entries, 3)
			for i, key := range []string{"a", "b", "c"} {
				assert.Equal(t, key, entries[i].Key)
				assert.Equal(t, voxel.BackendOctree, entries[i].Backend)
				assert.Equal(t, 2, entries[i].Bounds.Width)
			}

			require.NoError(t, s.Delete("b"))
			assert.ErrorIs(t, s.Delete("b"), ErrNotFound)
			_, _, err = s.Load("b")
			assert.ErrorIs(t, err, ErrNotFound)

			entries, err = s.List()
			require.NoError(t, err)
			assert.Len(t, entries, 2)
		})
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := testutil.NewVolume(t, voxel.BackendDense, 1, 1, 1)
			_, err := s.Save("../escape", v)
			assert.ErrorIs(t, err, ErrInvalidKey)
			_, _, err = s.Load("")
			assert.ErrorIs(t, err, ErrInvalidKey)
			assert.ErrorIs(t, s.Delete("a b"), ErrInvalidKey)
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	fsys := fsutil.NewMemoryFileSystem()
	s, err := NewFileStoreFS(fsys, "/tiles")
	require.NoError(t, err)
	_, err = s.Save("good", testutil.NewVolume(t, voxel.BackendDense, 2, 2, 2))
	require.NoError(t, err)
	require.NoError(t, fsys.WriteFile("/tiles/bad.vox", []byte("not a cache"), 0o644))
	require.NoError(t, fsys.WriteFile("/tiles/notes.txt", []byte("ignored"), 0o644))

	_, _, err = s.Load("bad")
	assert.True(t, errors.Is(err, voxel.ErrCorruptCache))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "good", entries[0].Key)
	assert.Equal(t, entries[0].RawSize, entries[0].StoredSize)
}

func TestFileStore_IDsAreStable(t *testing.T) {
	t.Parallel()

	a, err := NewFileStoreFS(fsutil.NewMemoryFileSystem(), "/a")
	require.NoError(t, err)
	b, err := NewFileStoreFS(fsutil.NewMemoryFileSystem(), "/b")
	require.NoError(t, err)
	v := testutil.NewVolume(t, voxel.BackendDense, 1, 1, 1)

	ea, err := a.Save("tile", v)
	require.NoError(t, err)
	eb, err := b.Save("tile", v)
	require.NoError(t, err)
	other, err := b.Save("other", v)
	require.NoError(t, err)
	assert.Equal(t, ea.ID, eb.ID)
	assert.NotEqual(t, ea.ID, other.ID)

	_, err = NewFileStoreFS(fsutil.NewMemoryFileSystem(), "")
	assert.Error(t, err)
}

func TestFileStore_TimesComeFromFilesystem(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start)
	fsys := fsutil.NewMemoryFileSystem()
	fsys.SetClock(clock)
	s, err := NewFileStoreFS(fsys, "/tiles")
	require.NoError(t, err)
	v := testutil.NewVolume(t, voxel.BackendOctree, 2, 2, 2)

	e, err := s.Save("t", v)
	require.NoError(t, err)
	assert.Equal(t, start, e.UpdatedAt)

	clock.Advance(time.Hour)
	_, e, err = s.Load("t")
	require.NoError(t, err)
	assert.Equal(t, start, e.UpdatedAt, "loading does not touch the file")

	_, err = s.Save("t", v)
	require.NoError(t, err)
	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, start.Add(time.Hour), entries[0].UpdatedAt)
}
