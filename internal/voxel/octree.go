package voxel

import "fmt"

// Octree stores palette indices in an 8-way tree whose leaves are allocated
// on first write. Regions of at most maxLeafSize cells are leaves; the
// branch/leaf split is fixed by size when a branch is created.
type Octree struct {
	bounds      Bounds
	palette     Palette
	maxLeafSize int
	order       WalkOrder
	root        node
}

var _ Volume = (*Octree)(nil)

// NewOctree creates an empty octree volume.
func NewOctree(b Bounds, maxLeafSize int) (*Octree, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if maxLeafSize < 1 {
		return nil, fmt.Errorf("max leaf size %d must be at least 1", maxLeafSize)
	}
	diagf("new octree volume %s max leaf %d", b, maxLeafSize)
	return &Octree{
		bounds:      b,
		palette:     newPalette(),
		maxLeafSize: maxLeafSize,
		root:        newNode(b.box(), maxLeafSize),
	}, nil
}

func (o *Octree) Bounds() Bounds    { return o.bounds }
func (o *Octree) Backend() Backend  { return BackendOctree }
func (o *Octree) Palette() *Palette { return &o.palette }

// MaxLeafSize is the construction parameter of the tree.
func (o *Octree) MaxLeafSize() int { return o.maxLeafSize }

// WalkOrder returns the order ForEach visits children in.
func (o *Octree) WalkOrder() WalkOrder { return o.order }

// SetWalkOrder changes the order ForEach visits children in.
func (o *Octree) SetWalkOrder(order WalkOrder) { o.order = order }

// Size counts occupied cells of materialized leaves.
func (o *Octree) Size() int { return o.root.occupied() }

func (o *Octree) indexAt(x, y, z int) uint8 {
	if !o.bounds.Contains(x, y, z) {
		return emptyIndex
	}
	return o.root.indexAt(x, y, z)
}

func (o *Octree) Set(x, y, z int, v Voxel) (bool, error) {
	if !o.bounds.Contains(x, y, z) {
		return false, nil
	}
	idx, err := o.palette.indexFor(v)
	if err != nil {
		return false, err
	}
	o.root.write(x, y, z, idx)
	return true, nil
}

func (o *Octree) Get(x, y, z int) (Voxel, bool) {
	idx := o.indexAt(x, y, z)
	if idx == emptyIndex {
		return Voxel{}, false
	}
	return o.palette.voxel(idx), true
}

func (o *Octree) Remove(x, y, z int) bool {
	if !o.bounds.Contains(x, y, z) {
		return false
	}
	o.root.write(x, y, z, emptyIndex)
	return true
}

func (o *Octree) NeighborCount6(x, y, z int) int {
	return neighborCount(o, x, y, z)
}

func (o *Octree) NeighborCountWithClassification(x, y, z int, c Classification) int {
	return neighborCountMasked(o, o.palette.classMask(c), x, y, z)
}

func (o *Octree) CountInRadius(x, y, z int, c Classification, r int) int {
	q := radiusBox(x, y, z, r)
	if q.empty() {
		return 0
	}
	return o.root.count(q, o.palette.classMask(c))
}

func (o *Octree) ForEach(fn func(Cell) bool) {
	o.root.walk(o.order, func(x, y, z int, idx uint8) bool {
		return fn(Cell{X: x, Y: y, Z: z, Voxel: o.palette.voxel(idx)})
	})
}

func (o *Octree) GroundSurface() *GroundSurface {
	g := newGroundSurface(o.bounds)
	o.root.ground(g, o.palette.surfaceMask(), &o.palette)
	return g
}

func (o *Octree) GroundLayer() (*GroundLayer, error) {
	return o.GroundSurface().Layer()
}

func (o *Octree) ExportBlockData() *BlockData {
	bd := newBlockData(o.bounds)
	o.root.walk(BottomUp, func(x, y, z int, idx uint8) bool {
		v := o.palette.voxel(idx)
		i := o.bounds.Index(x, y, z)
		bd.IDs[i] = v.MaterialID
		bd.Data[i] = v.MaterialVariant
		return true
	})
	return bd
}
