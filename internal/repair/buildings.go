package repair

import "github.com/banshee-data/voxelfix/internal/voxel"

// plantOrUnknown is transparent to the building air-run test: a building
// resting only on vegetation is still floating.
func plantOrUnknown(c voxel.Classification) bool {
	return c.IsPlant() || c == voxel.Unknown
}

// removeFloatingBuildings deletes building voxels that are isolated, sparse
// or hanging over a long air run.
func (p *Pipeline) removeFloatingBuildings(v voxel.Volume) (int, error) {
	cfg := p.cfg
	removed := 0
	for _, c := range cells(v) {
		cur, ok := v.Get(c.X, c.Y, c.Z)
		if !ok || cur.Class != voxel.Building {
			continue
		}
		if v.NeighborCountWithClassification(c.X, c.Y, c.Z, voxel.Building) <= cfg.BuildingMaxNeighbors ||
			v.CountInRadius(c.X, c.Y, c.Z, voxel.Building, cfg.BuildingNearbyRadius) < cfg.BuildingMinNearby ||
			airRunBelow(v, c, cfg.BuildingAirRun, plantOrUnknown, false) {
			v.Remove(c.X, c.Y, c.Z)
			removed++
			tracef("removed floating building at %+v", c)
		}
	}
	return removed, nil
}

// extendBuildings copies each connected building voxel down its column to
// z=0.
func (p *Pipeline) extendBuildings(v voxel.Volume) (int, error) {
	written := 0
	for _, c := range cells(v) {
		cur, ok := v.Get(c.X, c.Y, c.Z)
		if !ok || cur.Class != voxel.Building {
			continue
		}
		if v.NeighborCountWithClassification(c.X, c.Y, c.Z, voxel.Building) < p.cfg.ExtendMinNeighbors {
			continue
		}
		for z := c.Z - 1; z >= 0; z-- {
			changed, err := set(v, voxel.Coord{X: c.X, Y: c.Y, Z: z}, cur)
			if err != nil {
				return written, err
			}
			if changed {
				written++
			}
		}
	}
	return written, nil
}

// placeRoofs cleans up stray voxels and caps building columns with the roof
// material. A roof voxel with no roof neighbor reverts to the building
// material.
func (p *Pipeline) placeRoofs(v voxel.Volume) (int, error) {
	roof := *p.cfg.Roof
	changed := 0
	var roofs []voxel.Coord
	for _, c := range cells(v) {
		cur, ok := v.Get(c.X, c.Y, c.Z)
		if !ok {
			continue
		}
		same := v.NeighborCountWithClassification(c.X, c.Y, c.Z, cur.Class)
		switch {
		case (cur.Class.IsPlant() || cur.Class == voxel.Unknown) && same == 0:
			v.Remove(c.X, c.Y, c.Z)
			changed++
		case cur.Class == voxel.Building && same <= p.cfg.BuildingMaxNeighbors:
			v.Remove(c.X, c.Y, c.Z)
			changed++
		case cur.Class == voxel.Building:
			if above, ok := v.Get(c.X, c.Y, c.Z+1); ok && above.Class == voxel.Building {
				continue
			}
			if _, err := v.Set(c.X, c.Y, c.Z, roof); err != nil {
				return changed, err
			}
			roofs = append(roofs, c)
			changed++
		}
	}

	var buf []voxel.Coord
	for _, c := range roofs {
		if cur, ok := v.Get(c.X, c.Y, c.Z); !ok || cur != roof {
			continue
		}
		lonely := true
		buf = voxel.Neighbors6(v.Bounds(), c.X, c.Y, c.Z, buf[:0])
		for _, n := range buf {
			if nv, ok := v.Get(n.X, n.Y, n.Z); ok && nv == roof {
				lonely = false
				break
			}
		}
		if lonely {
			if _, err := v.Set(c.X, c.Y, c.Z, p.cfg.Building); err != nil {
				return changed, err
			}
		}
	}
	return changed, nil
}
