package repair

import (
	"github.com/eapache/queue"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

// floodStep is a flood candidate. Lateral steps need something solid below
// them in their column; seeds and downward steps do not.
type floodStep struct {
	at      voxel.Coord
	lateral bool
}

// floodWater grows every water body breadth-first through empty and
// vegetation cells. Columns whose surface is ground or whose top voxel is a
// building are never flooded. A cell counts once, and only if its value or
// its column's floor changed.
func (p *Pipeline) floodWater(v voxel.Volume) (int, error) {
	b := v.Bounds()
	surface := v.GroundSurface()
	work := queue.New()
	for _, c := range cells(v) {
		if cur, ok := v.Get(c.X, c.Y, c.Z); ok && cur.Class == voxel.Water {
			work.Add(floodStep{at: c})
		}
	}

	visited := make(map[voxel.Coord]struct{})
	absorbed := 0
	var lateral []voxel.Coord
	for work.Length() > 0 {
		step := work.Remove().(floodStep)
		c := step.at
		if _, seen := visited[c]; seen || !p.absorbs(v, surface, step) {
			continue
		}
		visited[c] = struct{}{}

		changed, err := set(v, c, p.cfg.Water)
		if err != nil {
			return absorbed, err
		}
		if c.Z > 0 {
			floor, err := set(v, voxel.Coord{X: c.X, Y: c.Y}, p.cfg.SeaBottom)
			if err != nil {
				return absorbed, err
			}
			changed = changed || floor
		}
		if changed {
			absorbed++
			tracef("flooded %+v", c)
		}

		lateral = voxel.LateralNeighbors(b, c.X, c.Y, lateral[:0])
		for _, n := range lateral {
			work.Add(floodStep{at: voxel.Coord{X: n.X, Y: n.Y, Z: c.Z}, lateral: true})
		}
		if c.Z > 0 {
			work.Add(floodStep{at: voxel.Coord{X: c.X, Y: c.Y, Z: c.Z - 1}})
		}
	}
	return absorbed, nil
}

func (p *Pipeline) absorbs(v voxel.Volume, surface *voxel.GroundSurface, step floodStep) bool {
	c := step.at
	if cur, ok := v.Get(c.X, c.Y, c.Z); ok && cur.Class != voxel.Water && !cur.Class.IsPlant() {
		return false
	}
	if g, ok := surface.At(c.X, c.Y); ok && g.Voxel.Class == voxel.Ground {
		return false
	}
	if c.Z > 0 {
		if below, ok := v.Get(c.X, c.Y, c.Z-1); ok && below.Class == voxel.Water {
			return false
		}
	}
	if top, ok := voxel.TopVoxel(v, c.X, c.Y); ok && top.Voxel.Class == voxel.Building {
		return false
	}
	if step.lateral && !supported(v, c) {
		return false
	}
	return true
}

// supported reports whether any voxel lies below c in its column.
func supported(v voxel.Volume, c voxel.Coord) bool {
	for z := c.Z - 1; z >= 0; z-- {
		if _, ok := v.Get(c.X, c.Y, z); ok {
			return true
		}
	}
	return false
}
