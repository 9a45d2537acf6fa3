package voxel

// Dense stores one palette index per cell in a flat array laid out like
// ExportBlockData.
type Dense struct {
	bounds  Bounds
	palette Palette
	cells   []uint8
	size    int
}

var _ Volume = (*Dense)(nil)

// NewDense allocates a dense volume.
func NewDense(b Bounds) (*Dense, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	diagf("new dense volume %s", b)
	return &Dense{
		bounds:  b,
		palette: newPalette(),
		cells:   make([]uint8, b.Cells()),
	}, nil
}

func (d *Dense) Bounds() Bounds    { return d.bounds }
func (d *Dense) Backend() Backend  { return BackendDense }
func (d *Dense) Palette() *Palette { return &d.palette }
func (d *Dense) Size() int         { return d.size }

func (d *Dense) indexAt(x, y, z int) uint8 {
	if !d.bounds.Contains(x, y, z) {
		return emptyIndex
	}
	return d.cells[d.bounds.Index(x, y, z)]
}

func (d *Dense) write(x, y, z int, idx uint8) {
	i := d.bounds.Index(x, y, z)
	prev := d.cells[i]
	d.cells[i] = idx
	switch {
	case prev == emptyIndex && idx != emptyIndex:
		d.size++
	case prev != emptyIndex && idx == emptyIndex:
		d.size--
	}
}

func (d *Dense) Set(x, y, z int, v Voxel) (bool, error) {
	if !d.bounds.Contains(x, y, z) {
		return false, nil
	}
	idx, err := d.palette.indexFor(v)
	if err != nil {
		return false, err
	}
	d.write(x, y, z, idx)
	return true, nil
}

func (d *Dense) Get(x, y, z int) (Voxel, bool) {
	idx := d.indexAt(x, y, z)
	if idx == emptyIndex {
		return Voxel{}, false
	}
	return d.palette.voxel(idx), true
}

func (d *Dense) Remove(x, y, z int) bool {
	if !d.bounds.Contains(x, y, z) {
		return false
	}
	d.write(x, y, z, emptyIndex)
	return true
}

func (d *Dense) NeighborCount6(x, y, z int) int {
	return neighborCount(d, x, y, z)
}

func (d *Dense) NeighborCountWithClassification(x, y, z int, c Classification) int {
	return neighborCountMasked(d, d.palette.classMask(c), x, y, z)
}

func (d *Dense) CountInRadius(x, y, z int, c Classification, r int) int {
	q := radiusBox(x, y, z, r).intersect(d.bounds.box())
	if q.empty() {
		return 0
	}
	mask := d.palette.classMask(c)
	n := 0
	for zz := q.z0; zz < q.z1; zz++ {
		for xx := q.x0; xx < q.x1; xx++ {
			row := d.bounds.Index(xx, q.y0, zz)
			for _, idx := range d.cells[row : row+q.y1-q.y0] {
				if mask[idx] {
					n++
				}
			}
		}
	}
	return n
}

func (d *Dense) ForEach(fn func(Cell) bool) {
	b := d.bounds
	i := 0
	for z := 0; z < b.Height; z++ {
		for x := 0; x < b.Width; x++ {
			for y := 0; y < b.Length; y++ {
				idx := d.cells[i]
				i++
				if idx == emptyIndex {
					continue
				}
				if !fn(Cell{X: x, Y: y, Z: z, Voxel: d.palette.voxel(idx)}) {
					return
				}
			}
		}
	}
}

func (d *Dense) GroundSurface() *GroundSurface {
	g := newGroundSurface(d.bounds)
	mask := d.palette.surfaceMask()
	for x := 0; x < d.bounds.Width; x++ {
		for y := 0; y < d.bounds.Length; y++ {
			for z := d.bounds.Height - 1; z >= 0; z-- {
				idx := d.cells[d.bounds.Index(x, y, z)]
				if mask[idx] {
					g.set(x, y, z, d.palette.voxel(idx))
					break
				}
			}
		}
	}
	return g
}

func (d *Dense) GroundLayer() (*GroundLayer, error) {
	return d.GroundSurface().Layer()
}

func (d *Dense) ExportBlockData() *BlockData {
	bd := newBlockData(d.bounds)
	for i, idx := range d.cells {
		if idx == emptyIndex {
			continue
		}
		v := d.palette.voxel(idx)
		bd.IDs[i] = v.MaterialID
		bd.Data[i] = v.MaterialVariant
	}
	return bd
}
