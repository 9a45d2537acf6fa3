package volumestore

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/banshee-data/voxelfix/internal/fsutil"
	"github.com/banshee-data/voxelfix/internal/voxel"
)

const fileExt = ".vox"

// fileIDSpace derives stable entry ids from tile keys for file stores, which
// keep no metadata of their own.
var fileIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("voxelfix:filestore"))

// FileStore keeps each volume as <dir>/<key>.vox in the raw cache format.
type FileStore struct {
	fs  fsutil.FileSystem
	dir string
}

// NewFileStore creates dir if needed and returns a store on the OS
// filesystem.
func NewFileStore(dir string) (*FileStore, error) {
	return NewFileStoreFS(fsutil.OSFileSystem{}, dir)
}

// NewFileStoreFS returns a store on the given filesystem.
func NewFileStoreFS(fsys fsutil.FileSystem, dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory is empty")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return &FileStore{fs: fsys, dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Save writes v under key, replacing any previous volume.
func (s *FileStore) Save(key string, v voxel.Volume) (*Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	raw, e, err := encode(key, v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	path := s.path(key)
	if err := s.fs.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := s.describe(&e, path); err != nil {
		return nil, err
	}
	diagf("saved %s to %s (%s)", key, path, humanize.Bytes(uint64(len(raw))))
	return &e, nil
}

// Load reads and decodes the volume stored under key.
func (s *FileStore) Load(key string) (voxel.Volume, *Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, nil, err
	}
	path := s.path(key)
	raw, err := s.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := voxel.Deserialize(raw)
	if err != nil {
		opsf("corrupt cache file %s: %v", path, err)
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	e := Entry{Key: key, Backend: v.Backend(), Bounds: v.Bounds(), RawSize: len(raw), Hash: xxhash.Sum64(raw)}
	if err := s.describe(&e, path); err != nil {
		return nil, nil, err
	}
	diagf("loaded %s from %s: %s %s", key, path, e.Backend, e.Bounds)
	return v, &e, nil
}

// Delete removes the volume stored under key.
func (s *FileStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := s.fs.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	diagf("deleted %s", key)
	return nil
}

// List describes every stored volume, sorted by key. Files that do not
// hold a valid cache header are skipped.
func (s *FileStore) List() ([]Entry, error) {
	paths, err := s.fs.Glob(filepath.Join(s.dir, "*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		key := strings.TrimSuffix(filepath.Base(path), fileExt)
		if ValidateKey(key) != nil {
			continue
		}
		raw, err := s.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		backend, bounds, err := voxel.Inspect(raw)
		if err != nil {
			opsf("skipping %s: %v", path, err)
			continue
		}
		e := Entry{Key: key, Backend: backend, Bounds: bounds, RawSize: len(raw), Hash: xxhash.Sum64(raw)}
		if err := s.describe(&e, path); err != nil {
			return nil, err
		}
		tracef("listed %s: %s %s", key, backend, bounds)
		entries = append(entries, e)
	}
	return entries, nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

// describe fills the fields that come from the file itself.
func (s *FileStore) describe(e *Entry, path string) error {
	info, err := s.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	e.ID = uuid.NewSHA1(fileIDSpace, []byte(e.Key)).String()
	e.StoredSize = int(info.Size())
	e.CreatedAt = info.ModTime()
	e.UpdatedAt = info.ModTime()
	return nil
}
