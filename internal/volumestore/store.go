// Package volumestore persists volumes in the cache format, keyed by tile.
//
// FileStore writes one raw cache file per tile. SQLiteStore keeps
// zstd-compressed cache bytes in a single database together with the tile's
// layout, bounds and content hash.
package volumestore

import (
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

var (
	// ErrNotFound is returned when no volume is stored under a key.
	ErrNotFound = errors.New("volume not found")

	// ErrInvalidKey is returned for keys outside [A-Za-z0-9_.-]{1,128}.
	ErrInvalidKey = errors.New("invalid tile key")
)

// Store kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

const maxKeyLen = 128

// Entry describes one stored volume.
type Entry struct {
	ID         string
	Key        string
	Backend    voxel.Backend
	Bounds     voxel.Bounds
	RawSize    int    // Encoded cache bytes
	StoredSize int    // Bytes as persisted, after compression if any
	Hash       uint64 // xxhash of the encoded cache bytes
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store saves and loads volumes by tile key. Implementations are safe for
// concurrent use by different keys.
type Store interface {
	Save(key string, v voxel.Volume) (*Entry, error)
	Load(key string) (voxel.Volume, *Entry, error)
	Delete(key string) error
	List() ([]Entry, error)
	Close() error
}

// Open returns a store of the given kind. path is a directory for file
// stores and a database file for sqlite stores.
func Open(kind, path string) (Store, error) {
	switch kind {
	case KindFile:
		return NewFileStore(path)
	case KindSQLite:
		return NewSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown store kind %q (want %q or %q)", kind, KindFile, KindSQLite)
}

// ValidateKey checks that key is usable as a file name and a row key.
func ValidateKey(key string) error {
	if len(key) == 0 || len(key) > maxKeyLen {
		return fmt.Errorf("%w: length %d not in 1..%d", ErrInvalidKey, len(key), maxKeyLen)
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '.', c == '-':
		default:
			return fmt.Errorf("%w: %q has byte %q at %d", ErrInvalidKey, key, c, i)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
