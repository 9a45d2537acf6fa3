package repair

import (
	"fmt"

	"github.com/google/btree"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

// edge is a resolved ground column queued for spreading into missing
// neighbors. seq breaks ties between equal heights in insertion order.
type edge struct {
	cell voxel.Cell
	seq  int
}

func edgeLess(a, b edge) bool {
	if a.cell.Z != b.cell.Z {
		return a.cell.Z < b.cell.Z
	}
	return a.seq < b.seq
}

// fillGroundHoles spreads the lowest known ground into columns with no
// ground or water voxel until every column is resolved, then checks that
// the ground layer builds.
func (p *Pipeline) fillGroundHoles(v voxel.Volume) (int, error) {
	b := v.Bounds()
	surface := v.GroundSurface()
	filled := 0
	if surface.Missing() > 0 {
		edges := btree.NewG[edge](32, edgeLess)
		seq := 0
		push := func(c voxel.Cell) {
			edges.ReplaceOrInsert(edge{cell: c, seq: seq})
			seq++
		}

		var nbrs []voxel.Coord
		for x := 0; x < b.Width; x++ {
			for y := 0; y < b.Length; y++ {
				g, ok := surface.At(x, y)
				if ok && hasMissingNeighbor(surface, x, y, &nbrs) {
					push(g)
				}
			}
		}

		for edges.Len() > 0 {
			e, _ := edges.DeleteMin()
			nbrs = voxel.LateralNeighbors(b, e.cell.X, e.cell.Y, nbrs[:0])
			for _, n := range nbrs {
				if _, ok := surface.At(n.X, n.Y); ok {
					continue
				}
				c := voxel.Cell{X: n.X, Y: n.Y, Z: e.cell.Z, Voxel: e.cell.Voxel}
				if _, err := v.Set(c.X, c.Y, c.Z, c.Voxel); err != nil {
					return filled, err
				}
				surface.Put(c)
				push(c)
				filled++
			}
		}
	}

	if _, err := v.GroundLayer(); err != nil {
		return filled, fmt.Errorf("ground still has holes after filling %d columns: %w", filled, err)
	}
	return filled, nil
}

func hasMissingNeighbor(s *voxel.GroundSurface, x, y int, buf *[]voxel.Coord) bool {
	*buf = voxel.LateralNeighbors(s.Bounds(), x, y, (*buf)[:0])
	for _, n := range *buf {
		if _, ok := s.At(n.X, n.Y); !ok {
			return true
		}
	}
	return false
}

// fillBottom copies the lowest voxel of each column into every empty cell
// beneath it.
func (p *Pipeline) fillBottom(v voxel.Volume) (int, error) {
	b := v.Bounds()
	filled := 0
	for x := 0; x < b.Width; x++ {
		for y := 0; y < b.Length; y++ {
			for z := 0; z < b.Height; z++ {
				lowest, ok := v.Get(x, y, z)
				if !ok {
					continue
				}
				n, err := voxel.FillColumn(v, x, y, 0, z, lowest)
				filled += n
				if err != nil {
					return filled, err
				}
				break
			}
		}
	}
	return filled, nil
}
