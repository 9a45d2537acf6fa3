package voxel

import "fmt"

// GroundSurface records the topmost ground or water voxel of each column.
// It is a snapshot: later writes to the volume are not reflected.
type GroundSurface struct {
	bounds  Bounds
	cells   []groundCell
	missing int
}

type groundCell struct {
	z  int
	v  Voxel
	ok bool
}

func newGroundSurface(b Bounds) *GroundSurface {
	return &GroundSurface{
		bounds:  b,
		cells:   make([]groundCell, b.Columns()),
		missing: b.Columns(),
	}
}

func (g *GroundSurface) col(x, y int) int {
	return x*g.bounds.Length + y
}

func (g *GroundSurface) set(x, y, z int, v Voxel) {
	c := &g.cells[g.col(x, y)]
	if !c.ok {
		g.missing--
	}
	*c = groundCell{z: z, v: v, ok: true}
}

func (g *GroundSurface) resolved(x, y int) bool {
	return g.cells[g.col(x, y)].ok
}

// unresolvedIn reports whether any column of the footprint of b is missing.
func (g *GroundSurface) unresolvedIn(b box) bool {
	for x := b.x0; x < b.x1; x++ {
		for y := b.y0; y < b.y1; y++ {
			if !g.resolved(x, y) {
				return true
			}
		}
	}
	return false
}

// Bounds returns the bounds of the volume the surface was built from.
func (g *GroundSurface) Bounds() Bounds {
	return g.bounds
}

// At returns the resolved cell of column (x, y).
func (g *GroundSurface) At(x, y int) (Cell, bool) {
	if !g.bounds.ContainsColumn(x, y) {
		return Cell{}, false
	}
	c := g.cells[g.col(x, y)]
	if !c.ok {
		return Cell{}, false
	}
	return Cell{X: x, Y: y, Z: c.z, Voxel: c.v}, true
}

// Put records c as the ground cell of its column.
func (g *GroundSurface) Put(c Cell) {
	if g.bounds.ContainsColumn(c.X, c.Y) {
		g.set(c.X, c.Y, c.Z, c.Voxel)
	}
}

// Missing is the number of unresolved columns.
func (g *GroundSurface) Missing() int {
	return g.missing
}

// MissingColumns lists unresolved columns in x-major order.
func (g *GroundSurface) MissingColumns() []Coord {
	out := make([]Coord, 0, g.missing)
	for x := 0; x < g.bounds.Width; x++ {
		for y := 0; y < g.bounds.Length; y++ {
			if !g.resolved(x, y) {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// Layer converts a fully resolved surface into a GroundLayer.
func (g *GroundSurface) Layer() (*GroundLayer, error) {
	if g.missing > 0 {
		first := g.MissingColumns()[0]
		return nil, fmt.Errorf("%d of %d columns have no ground or water, first at (%d,%d): %w",
			g.missing, g.bounds.Columns(), first.X, first.Y, ErrGroundLayerIncomplete)
	}
	return &GroundLayer{surface: g}, nil
}

// GroundLayer holds exactly one ground or water voxel per column.
type GroundLayer struct {
	surface *GroundSurface
}

// Bounds returns the bounds of the volume the layer was built from.
func (l *GroundLayer) Bounds() Bounds {
	return l.surface.bounds
}

// At returns the ground cell of column (x, y). Out-of-range columns return
// the zero Cell.
func (l *GroundLayer) At(x, y int) Cell {
	c, _ := l.surface.At(x, y)
	return c
}

// Heights returns the local z of every column in x-major order.
func (l *GroundLayer) Heights() []float64 {
	out := make([]float64, len(l.surface.cells))
	for i, c := range l.surface.cells {
		out[i] = float64(c.z)
	}
	return out
}
