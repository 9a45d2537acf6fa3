package voxel

import "fmt"

// MaxPaletteSize is the number of distinct non-empty voxels one volume can hold.
const MaxPaletteSize = 255

// emptyIndex marks a cell with no voxel.
const emptyIndex uint8 = 0

// Palette maps distinct voxel values to one-byte indices. Indices are handed
// out sequentially from 1 on first use and never reclaimed.
type Palette struct {
	entries [MaxPaletteSize + 1]Voxel
	n       int
	lookup  map[Voxel]uint8
}

func newPalette() Palette {
	return Palette{lookup: make(map[Voxel]uint8)}
}

// Len returns the number of allocated indices.
func (p *Palette) Len() int {
	return p.n
}

// Voxels returns the allocated voxels in index order.
func (p *Palette) Voxels() []Voxel {
	out := make([]Voxel, p.n)
	copy(out, p.entries[1:p.n+1])
	return out
}

// Contains reports whether v has an index.
func (p *Palette) Contains(v Voxel) bool {
	_, ok := p.lookup[v]
	return ok
}

// indexFor returns the index of v, allocating one if needed.
func (p *Palette) indexFor(v Voxel) (uint8, error) {
	if idx, ok := p.lookup[v]; ok {
		return idx, nil
	}
	if p.n >= MaxPaletteSize {
		opsf("palette full, rejecting %s", v)
		return 0, fmt.Errorf("allocate %s: %w", v, ErrCapacityExceeded)
	}
	p.n++
	idx := uint8(p.n)
	p.entries[idx] = v
	p.lookup[v] = idx
	return idx, nil
}

// voxel returns the value behind a non-empty index.
func (p *Palette) voxel(idx uint8) Voxel {
	return p.entries[idx]
}

// classMask marks every index whose voxel has classification c.
func (p *Palette) classMask(c Classification) *[MaxPaletteSize + 1]bool {
	var mask [MaxPaletteSize + 1]bool
	for i := 1; i <= p.n; i++ {
		mask[i] = p.entries[i].Class == c
	}
	return &mask
}

// restore rebuilds the palette from decoded entries. It fails on duplicate
// values, which a well-formed cache never contains.
func (p *Palette) restore(entries []Voxel) error {
	*p = newPalette()
	for i, v := range entries {
		idx := uint8(i + 1)
		if prev, dup := p.lookup[v]; dup {
			return fmt.Errorf("palette entries %d and %d both hold %s: %w", prev, idx, v, ErrCorruptCache)
		}
		p.entries[idx] = v
		p.lookup[v] = idx
	}
	p.n = len(entries)
	return nil
}

// surfaceMask marks every index classified ground or water.
func (p *Palette) surfaceMask() *[MaxPaletteSize + 1]bool {
	var mask [MaxPaletteSize + 1]bool
	for i := 1; i <= p.n; i++ {
		c := p.entries[i].Class
		mask[i] = c == Ground || c == Water
	}
	return &mask
}
