package voxel

// node is a materialized octree region. A nil node in a branch slot is an
// unmaterialized octant and reads as empty.
type node interface {
	bounds() box
	indexAt(x, y, z int) uint8
	// write stores idx and returns the previous index. Writing emptyIndex
	// never materializes children.
	write(x, y, z int, idx uint8) uint8
	count(q box, mask *[MaxPaletteSize + 1]bool) int
	walk(order WalkOrder, fn func(x, y, z int, idx uint8) bool) bool
	ground(g *GroundSurface, mask *[MaxPaletteSize + 1]bool, p *Palette)
	occupied() int
	encode(dst []byte) []byte
	decode(src []byte)
}

// WalkOrder selects which z-layer of children a branch visits first.
type WalkOrder int

const (
	// BottomUp visits children 0..7, lower layer first.
	BottomUp WalkOrder = iota
	// TopDown visits children 4..7 before 0..3.
	TopDown
)

var childOrder = [...][8]int{
	BottomUp: {0, 1, 2, 3, 4, 5, 6, 7},
	TopDown:  {4, 5, 6, 7, 0, 1, 2, 3},
}

func (o WalkOrder) String() string {
	if o == TopDown {
		return "top-down"
	}
	return "bottom-up"
}

type branch struct {
	box          box
	mx, my, mz   int
	maxLeafSize  int
	leafChildren bool
	children     [8]node
}

// newNode returns a leaf if b fits in maxLeafSize cells, otherwise a branch.
func newNode(b box, maxLeafSize int) node {
	if b.cells() <= maxLeafSize {
		return newLeaf(b)
	}
	return newBranch(b, maxLeafSize)
}

func newBranch(b box, maxLeafSize int) *branch {
	w, l, h := b.x1-b.x0, b.y1-b.y0, b.z1-b.z0
	// The largest child takes the remainder on every axis.
	largest := (w - w/2) * (l - l/2) * (h - h/2)
	return &branch{
		box:          b,
		mx:           b.x0 + w/2,
		my:           b.y0 + l/2,
		mz:           b.z0 + h/2,
		maxLeafSize:  maxLeafSize,
		leafChildren: largest <= maxLeafSize,
	}
}

func (b *branch) bounds() box { return b.box }

func (b *branch) octant(x, y, z int) int {
	i := 0
	if z >= b.mz {
		i += 4
	}
	if y >= b.my {
		i += 2
	}
	if x >= b.mx {
		i++
	}
	return i
}

func (b *branch) childBox(i int) box {
	c := b.box
	if i&1 == 0 {
		c.x1 = b.mx
	} else {
		c.x0 = b.mx
	}
	if i&2 == 0 {
		c.y1 = b.my
	} else {
		c.y0 = b.my
	}
	if i&4 == 0 {
		c.z1 = b.mz
	} else {
		c.z0 = b.mz
	}
	return c
}

func (b *branch) materialize(i int) node {
	cb := b.childBox(i)
	var n node
	if b.leafChildren {
		n = newLeaf(cb)
	} else {
		n = newBranch(cb, b.maxLeafSize)
	}
	b.children[i] = n
	tracef("materialized octant %d %+v leaf=%t", i, cb, b.leafChildren)
	return n
}

func (b *branch) indexAt(x, y, z int) uint8 {
	c := b.children[b.octant(x, y, z)]
	if c == nil {
		return emptyIndex
	}
	return c.indexAt(x, y, z)
}

func (b *branch) write(x, y, z int, idx uint8) uint8 {
	i := b.octant(x, y, z)
	c := b.children[i]
	if c == nil {
		if idx == emptyIndex {
			return emptyIndex
		}
		c = b.materialize(i)
	}
	return c.write(x, y, z, idx)
}

func (b *branch) count(q box, mask *[MaxPaletteSize + 1]bool) int {
	if !q.intersects(b.box) {
		return 0
	}
	n := 0
	for _, c := range b.children {
		if c != nil {
			n += c.count(q, mask)
		}
	}
	return n
}

func (b *branch) walk(order WalkOrder, fn func(x, y, z int, idx uint8) bool) bool {
	for _, i := range childOrder[order] {
		if c := b.children[i]; c != nil && !c.walk(order, fn) {
			return false
		}
	}
	return true
}

// ground resolves the upper child of each quadrant first and only asks the
// lower child about columns the upper child left unresolved.
func (b *branch) ground(g *GroundSurface, mask *[MaxPaletteSize + 1]bool, p *Palette) {
	for i := 0; i < 4; i++ {
		if upper := b.children[i+4]; upper != nil {
			upper.ground(g, mask, p)
		}
		lower := b.children[i]
		if lower != nil && g.unresolvedIn(lower.bounds()) {
			lower.ground(g, mask, p)
		}
	}
}

func (b *branch) occupied() int {
	n := 0
	for _, c := range b.children {
		if c != nil {
			n += c.occupied()
		}
	}
	return n
}

func (b *branch) encode(dst []byte) []byte {
	for i, c := range b.children {
		if c == nil {
			dst = append(dst, make([]byte, b.childBox(i).cells())...)
			continue
		}
		dst = c.encode(dst)
	}
	return dst
}

func (b *branch) decode(src []byte) {
	for i := range b.children {
		n := b.childBox(i).cells()
		seg := src[:n]
		src = src[n:]
		if allZero(seg) {
			continue
		}
		b.materialize(i).decode(seg)
	}
}

type leaf struct {
	box   box
	w, l  int
	cells []uint8
	n     int
}

func newLeaf(b box) *leaf {
	return &leaf{
		box:   b,
		w:     b.x1 - b.x0,
		l:     b.y1 - b.y0,
		cells: make([]uint8, b.cells()),
	}
}

func (lf *leaf) bounds() box { return lf.box }

func (lf *leaf) offset(x, y, z int) int {
	return (z-lf.box.z0)*(lf.w*lf.l) + (x-lf.box.x0)*lf.l + (y - lf.box.y0)
}

func (lf *leaf) indexAt(x, y, z int) uint8 {
	return lf.cells[lf.offset(x, y, z)]
}

func (lf *leaf) write(x, y, z int, idx uint8) uint8 {
	i := lf.offset(x, y, z)
	prev := lf.cells[i]
	lf.cells[i] = idx
	switch {
	case prev == emptyIndex && idx != emptyIndex:
		lf.n++
	case prev != emptyIndex && idx == emptyIndex:
		lf.n--
	}
	return prev
}

func (lf *leaf) count(q box, mask *[MaxPaletteSize + 1]bool) int {
	r := q.intersect(lf.box)
	if r.empty() {
		return 0
	}
	n := 0
	for z := r.z0; z < r.z1; z++ {
		for x := r.x0; x < r.x1; x++ {
			row := lf.offset(x, r.y0, z)
			for _, idx := range lf.cells[row : row+r.y1-r.y0] {
				if mask[idx] {
					n++
				}
			}
		}
	}
	return n
}

func (lf *leaf) walk(_ WalkOrder, fn func(x, y, z int, idx uint8) bool) bool {
	if lf.n == 0 {
		return true
	}
	i := 0
	for z := lf.box.z0; z < lf.box.z1; z++ {
		for x := lf.box.x0; x < lf.box.x1; x++ {
			for y := lf.box.y0; y < lf.box.y1; y++ {
				idx := lf.cells[i]
				i++
				if idx != emptyIndex && !fn(x, y, z, idx) {
					return false
				}
			}
		}
	}
	return true
}

func (lf *leaf) ground(g *GroundSurface, mask *[MaxPaletteSize + 1]bool, p *Palette) {
	if lf.n == 0 {
		return
	}
	for x := lf.box.x0; x < lf.box.x1; x++ {
		for y := lf.box.y0; y < lf.box.y1; y++ {
			if g.resolved(x, y) {
				continue
			}
			for z := lf.box.z1 - 1; z >= lf.box.z0; z-- {
				if idx := lf.indexAt(x, y, z); mask[idx] {
					g.set(x, y, z, p.voxel(idx))
					break
				}
			}
		}
	}
}

func (lf *leaf) occupied() int { return lf.n }

func (lf *leaf) encode(dst []byte) []byte {
	return append(dst, lf.cells...)
}

func (lf *leaf) decode(src []byte) {
	copy(lf.cells, src)
	lf.n = 0
	for _, idx := range lf.cells {
		if idx != emptyIndex {
			lf.n++
		}
	}
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
