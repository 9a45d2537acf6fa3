package volumestore

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

// maxBlobMemory caps the decompressed size of one cache entry.
const maxBlobMemory = 1 << 32

// blobCodec compresses cache bytes for storage. EncodeAll and DecodeAll are
// safe for concurrent use.
type blobCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newBlobCodec() (*blobCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlobMemory))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &blobCodec{enc: enc, dec: dec}, nil
}

func (c *blobCodec) compress(raw []byte) []byte {
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/8))
}

// decompress restores cache bytes and checks them against the recorded
// size and hash.
func (c *blobCodec) decompress(blob []byte, rawSize int, hash uint64) ([]byte, error) {
	if rawSize < 0 || int64(rawSize) > maxBlobMemory {
		return nil, fmt.Errorf("%w: entry size %d out of range", voxel.ErrCorruptCache, rawSize)
	}
	raw, err := c.dec.DecodeAll(blob, make([]byte, 0, rawSize))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", voxel.ErrCorruptCache, err)
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("%w: blob holds %d bytes, entry says %d", voxel.ErrCorruptCache, len(raw), rawSize)
	}
	if got := xxhash.Sum64(raw); got != hash {
		return nil, fmt.Errorf("%w: content hash %016x, entry says %016x", voxel.ErrCorruptCache, got, hash)
	}
	return raw, nil
}

func (c *blobCodec) Close() {
	c.enc.Close()
	c.dec.Close()
}

// encode serializes v and describes the result. StoredSize is left for the
// caller.
func encode(key string, v voxel.Volume) ([]byte, Entry, error) {
	raw, err := voxel.Serialize(v)
	if err != nil {
		return nil, Entry{}, err
	}
	return raw, Entry{
		Key:     key,
		Backend: v.Backend(),
		Bounds:  v.Bounds(),
		RawSize: len(raw),
		Hash:    xxhash.Sum64(raw),
	}, nil
}
