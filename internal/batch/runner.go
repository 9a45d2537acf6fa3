// Package batch repairs many stored tiles in parallel.
package batch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/voxelfix/internal/monitoring"
	"github.com/banshee-data/voxelfix/internal/repair"
	"github.com/banshee-data/voxelfix/internal/timeutil"
	"github.com/banshee-data/voxelfix/internal/volumestore"
	"github.com/banshee-data/voxelfix/internal/voxel"
)

// Runner loads, repairs and saves tiles. Each worker owns one volume at a
// time; the store and pipeline are shared.
type Runner struct {
	Store    volumestore.Store
	Pipeline *repair.Pipeline
	Workers  int // Concurrent tiles (default: 1)

	// Backend, when set, converts each tile before repair so it is saved
	// in that layout. MaxLeafSize applies to octree conversions.
	Backend     voxel.Backend
	MaxLeafSize int

	// ContinueOnError records tiles with bad data as failed instead of
	// cancelling the run. Store write failures always cancel.
	ContinueOnError bool

	// Clock times tiles and the run (default: wall clock).
	Clock timeutil.Clock
}

// TileResult is the outcome for one tile.
type TileResult struct {
	Key      string
	Report   *repair.Report     // Nil if the tile never reached the pipeline
	Entry    *volumestore.Entry // Saved entry; nil unless the tile succeeded
	BytesIn  int                // Stored size before repair
	BytesOut int                // Stored size after repair
	Duration time.Duration
	Err      error
}

// Summary describes one Run.
type Summary struct {
	RunID    string
	Tiles    []TileResult // Ordered by key
	Failed   int
	Duration time.Duration
}

// Run repairs every key. It returns the first error that cancelled the run;
// the summary is complete either way, with cancelled tiles carrying the
// context error.
func (r *Runner) Run(ctx context.Context, keys []string) (*Summary, error) {
	if r.Store == nil || r.Pipeline == nil {
		return nil, errors.New("batch runner needs a store and a pipeline")
	}
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)
	for _, key := range keys {
		if err := volumestore.ValidateKey(key); err != nil {
			return nil, err
		}
	}

	workers := max(r.Workers, 1)
	s := &Summary{RunID: uuid.New().String(), Tiles: make([]TileResult, len(keys))}
	clock := timeutil.OrReal(r.Clock)
	start := clock.Now()
	monitoring.Logf("batch %s: repairing %d tiles with %d workers", s.RunID, len(keys), workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, key := range keys {
		s.Tiles[i].Key = key
		g.Go(func() error {
			res := &s.Tiles[i]
			if err := gctx.Err(); err != nil {
				res.Err = err
				return nil
			}
			r.repairTile(res, clock)
			if res.Err != nil && !(r.ContinueOnError && tileDataError(res.Err)) {
				return fmt.Errorf("tile %s: %w", key, res.Err)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	for _, t := range s.Tiles {
		if t.Err != nil {
			s.Failed++
		}
	}
	s.Duration = clock.Since(start)
	monitoring.Logf("batch %s: %d/%d tiles repaired in %v", s.RunID, len(keys)-s.Failed, len(keys), s.Duration)
	return s, err
}

func (r *Runner) repairTile(res *TileResult, clock timeutil.Clock) {
	start := clock.Now()
	defer func() { res.Duration = clock.Since(start) }()

	v, before, err := r.Store.Load(res.Key)
	if err != nil {
		res.Err = err
		monitoring.Logf("tile %s: load failed: %v", res.Key, err)
		return
	}
	res.BytesIn = before.StoredSize

	if r.Backend != "" {
		if v, err = voxel.Convert(v, r.Backend, r.MaxLeafSize); err != nil {
			res.Err = fmt.Errorf("convert to %s: %w", r.Backend, err)
			return
		}
	}

	report, err := r.Pipeline.Run(v)
	res.Report = report
	if err != nil {
		res.Err = err
		monitoring.Logf("tile %s: repair failed: %v", res.Key, err)
		return
	}

	after, err := r.Store.Save(res.Key, v)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", errSave, err)
		monitoring.Logf("tile %s: save failed: %v", res.Key, err)
		return
	}
	res.Entry = after
	res.BytesOut = after.StoredSize
	monitoring.Logf("tile %s: %d cells changed, %s -> %s",
		res.Key, report.TotalChanged(),
		humanize.Bytes(uint64(res.BytesIn)), humanize.Bytes(uint64(res.BytesOut)))
}

var errSave = errors.New("save repaired volume")

// tileDataError reports whether err is confined to one tile's data.
func tileDataError(err error) bool {
	if errors.Is(err, errSave) {
		return false
	}
	return errors.Is(err, voxel.ErrGroundLayerIncomplete) ||
		errors.Is(err, voxel.ErrCorruptCache) ||
		errors.Is(err, voxel.ErrCapacityExceeded) ||
		errors.Is(err, volumestore.ErrNotFound)
}
