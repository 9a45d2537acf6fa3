package voxel

import "fmt"

// Backend names a storage layout.
type Backend string

const (
	BackendDense  Backend = "dense"
	BackendOctree Backend = "octree"
)

// ParseBackend accepts "dense" or "octree".
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendDense, BackendOctree:
		return b, nil
	}
	return "", fmt.Errorf("unknown volume backend %q", s)
}

// Volume is a bounded 3D container of voxels. All coordinates are local.
// A Volume is not safe for concurrent use.
type Volume interface {
	Bounds() Bounds
	Backend() Backend
	Palette() *Palette

	// Set stores v at (x, y, z). It returns false when the coordinate is
	// out of range, and ErrCapacityExceeded when v would be the 256th
	// distinct value.
	Set(x, y, z int, v Voxel) (bool, error)
	// Get returns the voxel at (x, y, z); ok is false when the cell is
	// empty or out of range.
	Get(x, y, z int) (v Voxel, ok bool)
	// Remove empties (x, y, z). It returns false when out of range.
	Remove(x, y, z int) bool

	// NeighborCount6 counts non-empty face neighbors.
	NeighborCount6(x, y, z int) int
	// NeighborCountWithClassification counts face neighbors classified c.
	NeighborCountWithClassification(x, y, z int, c Classification) int
	// CountInRadius counts voxels classified c inside the half-open box
	// [x-r,x+r)×[y-r,y+r)×[z-r,z+r).
	CountInRadius(x, y, z int, c Classification, r int) int

	// ForEach visits every non-empty voxel until fn returns false.
	ForEach(fn func(Cell) bool)
	// Size is the number of non-empty cells.
	Size() int

	// GroundSurface resolves the topmost ground or water voxel per column,
	// leaving unresolved columns marked missing.
	GroundSurface() *GroundSurface
	// GroundLayer is GroundSurface that fails with ErrGroundLayerIncomplete
	// when any column is missing.
	GroundLayer() (*GroundLayer, error)

	ExportBlockData() *BlockData
}

// NewVolume creates an empty volume with the chosen backend. maxLeafSize is only
// used by the octree.
func NewVolume(backend Backend, b Bounds, maxLeafSize int) (Volume, error) {
	switch backend {
	case BackendDense:
		return NewDense(b)
	case BackendOctree:
		return NewOctree(b, maxLeafSize)
	}
	return nil, fmt.Errorf("unknown volume backend %q", backend)
}

// faceOffsets is the order Neighbors6 reports neighbors in: -x, +x, -y,
// +y, -z, +z.
var faceOffsets = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

var lateralOffsets = [4][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// indexReader is the raw index lookup shared by both backends. It returns
// emptyIndex for out-of-range coordinates.
type indexReader interface {
	indexAt(x, y, z int) uint8
}

func neighborCount(r indexReader, x, y, z int) int {
	n := 0
	for _, o := range faceOffsets {
		if r.indexAt(x+o[0], y+o[1], z+o[2]) != emptyIndex {
			n++
		}
	}
	return n
}

func neighborCountMasked(r indexReader, mask *[MaxPaletteSize + 1]bool, x, y, z int) int {
	n := 0
	for _, o := range faceOffsets {
		if mask[r.indexAt(x+o[0], y+o[1], z+o[2])] {
			n++
		}
	}
	return n
}

// Neighbors6 appends the in-range face neighbors of (x, y, z) to dst in
// the order -x, +x, -y, +y, -z, +z.
func Neighbors6(b Bounds, x, y, z int, dst []Coord) []Coord {
	for _, o := range faceOffsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if b.Contains(nx, ny, nz) {
			dst = append(dst, Coord{X: nx, Y: ny, Z: nz})
		}
	}
	return dst
}

// LateralNeighbors appends the in-range horizontal neighbors of column
// (x, y) to dst, with Z left at zero.
func LateralNeighbors(b Bounds, x, y int, dst []Coord) []Coord {
	for _, o := range lateralOffsets {
		nx, ny := x+o[0], y+o[1]
		if b.ContainsColumn(nx, ny) {
			dst = append(dst, Coord{X: nx, Y: ny})
		}
	}
	return dst
}

// FillColumn writes v into column (x, y) for z in [zFrom, zTo).
func FillColumn(vol Volume, x, y, zFrom, zTo int, v Voxel) (int, error) {
	n := 0
	for z := zFrom; z < zTo; z++ {
		ok, err := vol.Set(x, y, z, v)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// TopVoxel returns the highest non-empty voxel in column (x, y).
func TopVoxel(vol Volume, x, y int) (Cell, bool) {
	for z := vol.Bounds().Height - 1; z >= 0; z-- {
		if v, ok := vol.Get(x, y, z); ok {
			return Cell{X: x, Y: y, Z: z, Voxel: v}, true
		}
	}
	return Cell{}, false
}

// Coords snapshots the coordinates of every non-empty voxel in ForEach order.
func Coords(vol Volume) []Coord {
	out := make([]Coord, 0, vol.Size())
	vol.ForEach(func(c Cell) bool {
		out = append(out, Coord{X: c.X, Y: c.Y, Z: c.Z})
		return true
	})
	return out
}

// Convert copies vol into a new volume with the given backend. Palette
// entries are re-added in the order voxels are first met, so indices may
// differ from vol's. vol is returned unchanged if it already has the
// backend and, for octrees, the leaf size. An octree copied from an octree
// keeps its walk order.
func Convert(vol Volume, backend Backend, maxLeafSize int) (Volume, error) {
	if vol.Backend() == backend {
		o, isOctree := vol.(*Octree)
		if !isOctree || o.MaxLeafSize() == maxLeafSize {
			return vol, nil
		}
	}
	out, err := NewVolume(backend, vol.Bounds(), maxLeafSize)
	if err != nil {
		return nil, err
	}
	vol.ForEach(func(c Cell) bool {
		_, err = out.Set(c.X, c.Y, c.Z, c.Voxel)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if from, ok := vol.(*Octree); ok {
		if to, ok := out.(*Octree); ok {
			to.SetWalkOrder(from.WalkOrder())
		}
	}
	diagf("converted %s %s to %s", vol.Backend(), vol.Bounds(), backend)
	return out, nil
}
