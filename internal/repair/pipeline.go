package repair

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/banshee-data/voxelfix/internal/timeutil"
	"github.com/banshee-data/voxelfix/internal/voxel"
)

// Pass names, in pipeline order.
const (
	PassFloatingBuildings = "remove-floating-buildings"
	PassFloatingPlants    = "remove-floating-plants"
	PassExtendBuildings   = "extend-buildings"
	PassNearBuildings     = "declassify-near-buildings"
	PassMergeUnknown      = "merge-unknown-into-plants"
	PassRoofs             = "roofs"
	PassFloodWater        = "flood-water"
	PassFillGround        = "fill-ground-holes"
	PassFillBottom        = "fill-bottom"
)

type pass struct {
	name string
	run  func(voxel.Volume) (int, error)
}

// Pipeline is an ordered list of repair passes. A Pipeline holds no
// per-volume state and can be shared by workers repairing different volumes.
type Pipeline struct {
	cfg    *Config
	clock  timeutil.Clock
	passes []pass
}

// New validates cfg and builds the pass list. The roof pass is included
// only when cfg.Roof is set.
func New(cfg *Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid repair config: %w", err)
	}
	p := &Pipeline{cfg: cfg, clock: timeutil.OrReal(cfg.Clock)}
	p.passes = []pass{
		{PassFloatingBuildings, p.removeFloatingBuildings},
		{PassFloatingPlants, p.removeFloatingPlants},
		{PassExtendBuildings, p.extendBuildings},
		{PassNearBuildings, p.declassifyNearBuildings},
		{PassMergeUnknown, p.mergeUnknownIntoPlants},
	}
	if cfg.Roof != nil {
		p.passes = append(p.passes, pass{PassRoofs, p.placeRoofs})
	}
	p.passes = append(p.passes,
		pass{PassFloodWater, p.floodWater},
		pass{PassFillGround, p.fillGroundHoles},
		pass{PassFillBottom, p.fillBottom},
	)
	return p, nil
}

// PassNames lists the passes in the order Run applies them.
func (p *Pipeline) PassNames() []string {
	names := make([]string, len(p.passes))
	for i, ps := range p.passes {
		names[i] = ps.name
	}
	return names
}

// Run applies every pass to v in order. It stops at the first error; v
// keeps the changes of the passes that completed.
func (p *Pipeline) Run(v voxel.Volume) (*Report, error) {
	start := p.clock.Now()
	report := &Report{Bounds: v.Bounds(), Backend: v.Backend(), VoxelsBefore: v.Size()}
	for _, ps := range p.passes {
		passStart := p.clock.Now()
		changed, err := ps.run(v)
		elapsed := p.clock.Since(passStart)
		report.Passes = append(report.Passes, PassResult{Name: ps.name, Changed: changed, Duration: elapsed})
		if err != nil {
			opsf("%s failed on %s: %v", ps.name, v.Bounds(), err)
			return report, fmt.Errorf("%s: %w", ps.name, err)
		}
		diagf("%s: %d cells changed in %v", ps.name, changed, elapsed)
	}
	report.VoxelsAfter = v.Size()
	report.Duration = p.clock.Since(start)
	if err := report.summariseGround(v); err != nil {
		return report, err
	}
	return report, nil
}

// cells snapshots every non-empty coordinate, sorted z, then x, then y, so
// passes behave the same on every backend.
func cells(v voxel.Volume) []voxel.Coord {
	coords := voxel.Coords(v)
	slices.SortFunc(coords, func(a, b voxel.Coord) int {
		if c := cmp.Compare(a.Z, b.Z); c != 0 {
			return c
		}
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
	return coords
}

// set writes vx and reports whether the cell changed.
func set(v voxel.Volume, c voxel.Coord, vx voxel.Voxel) (bool, error) {
	if cur, ok := v.Get(c.X, c.Y, c.Z); ok && cur == vx {
		return false, nil
	}
	if _, err := v.Set(c.X, c.Y, c.Z, vx); err != nil {
		return false, err
	}
	return true, nil
}

// airRunBelow reports whether at least n cells directly below c are empty
// or transparent before the first opaque voxel. A run that reaches the
// bottom of the volume only counts when openBottom is set.
func airRunBelow(v voxel.Volume, c voxel.Coord, n int, transparent func(voxel.Classification) bool, openBottom bool) bool {
	run := 0
	for z := c.Z - 1; z >= 0; z-- {
		below, ok := v.Get(c.X, c.Y, z)
		if ok && !transparent(below.Class) {
			return run >= n
		}
		run++
	}
	return openBottom && run >= n
}
