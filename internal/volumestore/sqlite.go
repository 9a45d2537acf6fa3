package volumestore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/voxelfix/internal/timeutil"
	"github.com/banshee-data/voxelfix/internal/voxel"
)

// SQLiteStore keeps volumes as zstd-compressed cache bytes in the
// volume_cache table.
type SQLiteStore struct {
	db    *sql.DB
	codec *blobCodec
	clock timeutil.Clock
}

// NewSQLiteStore opens or creates the database at path and migrates it to
// the current schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One writer at a time; concurrent workers queue on the pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}
	if err := migrateUp(db); err != nil {
		opsf("migrating %s: %v", path, err)
		db.Close()
		return nil, err
	}
	codec, err := newBlobCodec()
	if err != nil {
		db.Close()
		return nil, err
	}
	version, _, err := schemaVersion(db)
	if err != nil {
		codec.Close()
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	diagf("opened %s at schema version %d", path, version)
	return &SQLiteStore{db: db, codec: codec, clock: timeutil.RealClock{}}, nil
}

// SetClock replaces the clock used to stamp saved entries.
func (s *SQLiteStore) SetClock(c timeutil.Clock) {
	s.clock = timeutil.OrReal(c)
}

// Save upserts v under key. The entry id and creation time survive
// overwrites.
func (s *SQLiteStore) Save(key string, v voxel.Volume) (*Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	raw, e, err := encode(key, v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	blob := s.codec.compress(raw)
	now := s.clock.Now().UnixNano()

	query := `
		INSERT INTO volume_cache (
			id, tile_key, backend, width, length, height, min_x, min_y, min_z,
			raw_size, content_hash, blob, created_at_ns, updated_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tile_key) DO UPDATE SET
			backend = excluded.backend,
			width = excluded.width,
			length = excluded.length,
			height = excluded.height,
			min_x = excluded.min_x,
			min_y = excluded.min_y,
			min_z = excluded.min_z,
			raw_size = excluded.raw_size,
			content_hash = excluded.content_hash,
			blob = excluded.blob,
			updated_at_ns = excluded.updated_at_ns
		RETURNING id, created_at_ns, updated_at_ns
	`
	b := e.Bounds
	var createdNs, updatedNs int64
	err = s.db.QueryRow(query,
		uuid.New().String(), key, string(e.Backend),
		b.Width, b.Length, b.Height, b.MinX, b.MinY, b.MinZ,
		e.RawSize, int64(e.Hash), blob, now, now,
	).Scan(&e.ID, &createdNs, &updatedNs)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", key, err)
	}
	e.StoredSize = len(blob)
	e.CreatedAt = time.Unix(0, createdNs)
	e.UpdatedAt = time.Unix(0, updatedNs)
	diagf("saved %s: %s compressed to %s", key,
		humanize.Bytes(uint64(e.RawSize)), humanize.Bytes(uint64(e.StoredSize)))
	return &e, nil
}

// Load decompresses, verifies and decodes the volume stored under key.
func (s *SQLiteStore) Load(key string) (voxel.Volume, *Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, nil, err
	}
	query := `
		SELECT id, tile_key, backend, width, length, height, min_x, min_y, min_z,
		       raw_size, content_hash, length(blob), created_at_ns, updated_at_ns, blob
		FROM volume_cache
		WHERE tile_key = ?
	`
	var blob []byte
	e, err := scanEntry(s.db.QueryRow(query, key), &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", key, err)
	}
	if want, err := voxel.EncodedSize(e.Backend, e.Bounds); err != nil || e.RawSize != want {
		opsf("corrupt cache entry %s: raw size %d for %s %s", key, e.RawSize, e.Backend, e.Bounds)
		return nil, nil, fmt.Errorf("%w: %s records raw size %d for %s %s",
			voxel.ErrCorruptCache, key, e.RawSize, e.Backend, e.Bounds)
	}

	raw, err := s.codec.decompress(blob, e.RawSize, e.Hash)
	if err != nil {
		opsf("corrupt cache entry %s: %v", key, err)
		return nil, nil, fmt.Errorf("load %s: %w", key, err)
	}
	v, err := voxel.Deserialize(raw)
	if err != nil {
		opsf("corrupt cache entry %s: %v", key, err)
		return nil, nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if v.Backend() != e.Backend || v.Bounds() != e.Bounds {
		return nil, nil, fmt.Errorf("%w: %s decodes as %s %s, entry says %s %s",
			voxel.ErrCorruptCache, key, v.Backend(), v.Bounds(), e.Backend, e.Bounds)
	}
	diagf("loaded %s: %s %s", key, e.Backend, e.Bounds)
	return v, e, nil
}

// Delete removes the volume stored under key.
func (s *SQLiteStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	res, err := s.db.Exec(`DELETE FROM volume_cache WHERE tile_key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	diagf("deleted %s", key)
	return nil
}

// List describes every stored volume, sorted by key.
func (s *SQLiteStore) List() ([]Entry, error) {
	query := `
		SELECT id, tile_key, backend, width, length, height, min_x, min_y, min_z,
		       raw_size, content_hash, length(blob), created_at_ns, updated_at_ns
		FROM volume_cache
		ORDER BY tile_key
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list volumes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scan volume row: %w", err)
		}
		tracef("listed %s: %s %s", e.Key, e.Backend, e.Bounds)
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list volumes: %w", err)
	}
	return entries, nil
}

// Close releases the database and the compression codec.
func (s *SQLiteStore) Close() error {
	s.codec.Close()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads the common entry columns, followed by the blob when blob
// is non-nil.
func scanEntry(row rowScanner, blob *[]byte) (*Entry, error) {
	var (
		e                    Entry
		backend              string
		hash                 int64
		createdNs, updatedNs int64
		b                    = &e.Bounds
	)
	dest := []any{
		&e.ID, &e.Key, &backend,
		&b.Width, &b.Length, &b.Height, &b.MinX, &b.MinY, &b.MinZ,
		&e.RawSize, &hash, &e.StoredSize, &createdNs, &updatedNs,
	}
	if blob != nil {
		dest = append(dest, blob)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	parsed, err := voxel.ParseBackend(backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", voxel.ErrCorruptCache, err)
	}
	e.Backend = parsed
	e.Hash = uint64(hash)
	e.CreatedAt = time.Unix(0, createdNs)
	e.UpdatedAt = time.Unix(0, updatedNs)
	return &e, nil
}
