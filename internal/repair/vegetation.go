package repair

import (
	"github.com/eapache/queue"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

// unknownOrBuilding is transparent to the plant air-run test.
func unknownOrBuilding(c voxel.Classification) bool {
	return c == voxel.Unknown || c == voxel.Building
}

// removeFloatingPlants declassifies plants hanging over a long air run and
// deletes sparse plant and unknown voxels.
func (p *Pipeline) removeFloatingPlants(v voxel.Volume) (int, error) {
	cfg := p.cfg
	changed := 0
	for _, c := range cells(v) {
		cur, ok := v.Get(c.X, c.Y, c.Z)
		if !ok {
			continue
		}
		class := cur.Class
		if class.IsPlant() && airRunBelow(v, c, cfg.PlantAirRun, unknownOrBuilding, true) {
			if _, err := v.Set(c.X, c.Y, c.Z, cfg.Unknown); err != nil {
				return changed, err
			}
			changed++
			continue
		}
		if !class.IsPlant() && class != voxel.Unknown {
			continue
		}
		same := v.NeighborCountWithClassification(c.X, c.Y, c.Z, class)
		if (class.IsPlant() && same < cfg.PlantMinNeighbors) ||
			(class == voxel.Unknown && same <= cfg.UnknownMaxNeighbors) {
			v.Remove(c.X, c.Y, c.Z)
			changed++
		}
	}
	return changed, nil
}

// declassifyNearBuildings converts or deletes plant and unknown voxels that
// sit in building-dominated neighborhoods.
func (p *Pipeline) declassifyNearBuildings(v voxel.Volume) (int, error) {
	cfg := p.cfg
	changed := 0
	for _, c := range cells(v) {
		cur, ok := v.Get(c.X, c.Y, c.Z)
		if !ok || (!cur.Class.IsPlant() && cur.Class != voxel.Unknown) {
			continue
		}
		similar := v.CountInRadius(c.X, c.Y, c.Z, cur.Class, cfg.SimilarRadius)
		buildings := v.CountInRadius(c.X, c.Y, c.Z, voxel.Building, cfg.NearBuildingRadius)
		if similar > buildings {
			continue
		}
		switch {
		case buildings >= cfg.ConvertMinBuildings:
			if _, err := v.Set(c.X, c.Y, c.Z, cfg.Building); err != nil {
				return changed, err
			}
			changed++
		case buildings >= cfg.RemoveMinBuildings:
			v.Remove(c.X, c.Y, c.Z)
			changed++
		}
	}
	return changed, nil
}

// mergeUnknownIntoPlants lets unknown voxels touching vegetation adopt the
// first plant neighbor's voxel, spreading breadth-first through connected
// unknown voxels. A cell queued more than once is re-checked on every poll
// and may adopt a different plant; MergeMaxVisits caps how many times one
// cell is assigned. Only assignments that change the cell are counted.
func (p *Pipeline) mergeUnknownIntoPlants(v voxel.Volume) (int, error) {
	b := v.Bounds()
	work := queue.New()
	for _, c := range cells(v) {
		if cur, ok := v.Get(c.X, c.Y, c.Z); ok && cur.Class == voxel.Unknown {
			work.Add(c)
		}
	}

	visits := make(map[voxel.Coord]int)
	changed := 0
	var nbrs []voxel.Coord
	for work.Length() > 0 {
		c := work.Remove().(voxel.Coord)
		cur, ok := v.Get(c.X, c.Y, c.Z)
		if !ok || visits[c] >= p.cfg.MergeMaxVisits {
			continue
		}
		nbrs = voxel.Neighbors6(b, c.X, c.Y, c.Z, nbrs[:0])
		for _, n := range nbrs {
			plant, ok := v.Get(n.X, n.Y, n.Z)
			if !ok || !plant.Class.IsPlant() {
				continue
			}
			if plant != cur {
				if _, err := v.Set(c.X, c.Y, c.Z, plant); err != nil {
					return changed, err
				}
				changed++
				tracef("merged %+v into %s", c, plant)
			}
			visits[c]++
			for _, u := range nbrs {
				if uv, ok := v.Get(u.X, u.Y, u.Z); ok && uv.Class == voxel.Unknown {
					work.Add(u)
				}
			}
			break
		}
	}
	return changed, nil
}
