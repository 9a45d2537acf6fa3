package voxel

import "fmt"

// MaxExtent is the largest width, length or height a volume can have. The
// export header stores each extent as uint16.
const MaxExtent = 1<<16 - 1

// Bounds is the local extent of a volume and its offset in world space.
type Bounds struct {
	Width, Length, Height int
	MinX, MinY, MinZ      int
}

// NewBounds validates the extents.
func NewBounds(width, length, height, minX, minY, minZ int) (Bounds, error) {
	b := Bounds{Width: width, Length: length, Height: height, MinX: minX, MinY: minY, MinZ: minZ}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// Validate checks that every extent is in [1, MaxExtent].
func (b Bounds) Validate() error {
	for _, e := range [...]struct {
		name string
		v    int
	}{{"width", b.Width}, {"length", b.Length}, {"height", b.Height}} {
		if e.v <= 0 || e.v > MaxExtent {
			return fmt.Errorf("%s %d out of range [1,%d]: %w", e.name, e.v, MaxExtent, ErrInvalidBounds)
		}
	}
	return nil
}

// Contains reports whether local (x, y, z) is inside the volume.
func (b Bounds) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < b.Width && y < b.Length && z < b.Height
}

// ContainsColumn reports whether local (x, y) is inside the footprint.
func (b Bounds) ContainsColumn(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Length
}

// Cells is width*length*height.
func (b Bounds) Cells() int {
	return b.Width * b.Length * b.Height
}

// Columns is width*length.
func (b Bounds) Columns() int {
	return b.Width * b.Length
}

// Index is the flat offset of (x, y, z) with z slowest and y fastest.
func (b Bounds) Index(x, y, z int) int {
	return z*(b.Width*b.Length) + x*b.Length + y
}

func (b Bounds) String() string {
	return fmt.Sprintf("%dx%dx%d@(%d,%d,%d)", b.Width, b.Length, b.Height, b.MinX, b.MinY, b.MinZ)
}

// box is a half-open region [x0,x1)×[y0,y1)×[z0,z1) in local coordinates.
type box struct {
	x0, y0, z0 int
	x1, y1, z1 int
}

func (b Bounds) box() box {
	return box{x1: b.Width, y1: b.Length, z1: b.Height}
}

func radiusBox(x, y, z, r int) box {
	return box{x0: x - r, y0: y - r, z0: z - r, x1: x + r, y1: y + r, z1: z + r}
}

func (a box) empty() bool {
	return a.x0 >= a.x1 || a.y0 >= a.y1 || a.z0 >= a.z1
}

func (a box) cells() int {
	if a.empty() {
		return 0
	}
	return (a.x1 - a.x0) * (a.y1 - a.y0) * (a.z1 - a.z0)
}

func (a box) contains(x, y, z int) bool {
	return x >= a.x0 && x < a.x1 && y >= a.y0 && y < a.y1 && z >= a.z0 && z < a.z1
}

func (a box) intersect(o box) box {
	return box{
		x0: max(a.x0, o.x0), y0: max(a.y0, o.y0), z0: max(a.z0, o.z0),
		x1: min(a.x1, o.x1), y1: min(a.y1, o.y1), z1: min(a.z1, o.z1),
	}
}

func (a box) intersects(o box) bool {
	return !a.intersect(o).empty()
}
