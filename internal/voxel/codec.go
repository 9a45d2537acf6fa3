package voxel

import (
	"encoding/binary"
	"fmt"
)

// Cache layout, all integers big-endian int32:
//
//	dense:  width length height minX minY minZ | palette | cells
//	octree: width length height minX minY minZ maxLeafSize | palette | cells
//
// The palette is 256 entries of (id, variant, classification); entry 0 is
// always zero. Dense cells follow the export index order. Octree cells are
// the bottom-up walk of the full tree with unmaterialized regions written
// as zeros. An octree's walk order is not stored: decoded octrees walk
// BottomUp.
const (
	paletteEntrySize   = 3
	paletteSectionSize = (MaxPaletteSize + 1) * paletteEntrySize
	denseHeaderSize    = 6 * 4
	octreeHeaderSize   = 7 * 4
)

// Serialize encodes a Dense or Octree volume in the cache format.
func Serialize(v Volume) ([]byte, error) {
	switch vol := v.(type) {
	case *Dense:
		return vol.MarshalBinary()
	case *Octree:
		return vol.MarshalBinary()
	}
	return nil, fmt.Errorf("serialize %T: unsupported volume type", v)
}

// EncodedSize returns the length of the cache bytes for a volume with the
// given backend and bounds.
func EncodedSize(backend Backend, b Bounds) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	switch backend {
	case BackendDense:
		return denseHeaderSize + paletteSectionSize + b.Cells(), nil
	case BackendOctree:
		return octreeHeaderSize + paletteSectionSize + b.Cells(), nil
	}
	return 0, fmt.Errorf("unknown volume backend %q", backend)
}

// MarshalBinary encodes d in the dense cache format.
func (d *Dense) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, denseHeaderSize+paletteSectionSize+len(d.cells))
	buf = appendBoundsHeader(buf, d.bounds)
	buf = appendPalette(buf, &d.palette)
	return append(buf, d.cells...), nil
}

// MarshalBinary encodes o in the octree cache format.
func (o *Octree) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, octreeHeaderSize+paletteSectionSize+o.bounds.Cells())
	buf = appendBoundsHeader(buf, o.bounds)
	buf = binary.BigEndian.AppendUint32(buf, uint32(int32(o.maxLeafSize)))
	buf = appendPalette(buf, &o.palette)
	return o.root.encode(buf), nil
}

// Deserialize decodes either cache format, telling them apart by length.
func Deserialize(data []byte) (Volume, error) {
	b, err := readBoundsHeader(data)
	if err != nil {
		return nil, err
	}
	switch len(data) {
	case denseHeaderSize + paletteSectionSize + b.Cells():
		return DeserializeDense(data)
	case octreeHeaderSize + paletteSectionSize + b.Cells():
		return DeserializeOctree(data)
	}
	return nil, fmt.Errorf("length %d matches neither layout for %s: %w", len(data), b, ErrCorruptCache)
}

// Inspect reports the layout and bounds of encoded cache bytes without
// decoding the cells.
func Inspect(data []byte) (Backend, Bounds, error) {
	b, err := readBoundsHeader(data)
	if err != nil {
		return "", Bounds{}, err
	}
	switch len(data) {
	case denseHeaderSize + paletteSectionSize + b.Cells():
		return BackendDense, b, nil
	case octreeHeaderSize + paletteSectionSize + b.Cells():
		return BackendOctree, b, nil
	}
	return "", Bounds{}, fmt.Errorf("length %d matches neither layout for %s: %w", len(data), b, ErrCorruptCache)
}

// DeserializeDense decodes the dense cache format.
func DeserializeDense(data []byte) (*Dense, error) {
	b, err := readBoundsHeader(data)
	if err != nil {
		return nil, err
	}
	if want := denseHeaderSize + paletteSectionSize + b.Cells(); len(data) != want {
		return nil, fmt.Errorf("dense %s wants %d bytes, got %d: %w", b, want, len(data), ErrCorruptCache)
	}
	cells := data[denseHeaderSize+paletteSectionSize:]
	pal, err := readPalette(data[denseHeaderSize:denseHeaderSize+paletteSectionSize], cells)
	if err != nil {
		return nil, err
	}
	d := &Dense{bounds: b, palette: pal, cells: make([]uint8, len(cells))}
	copy(d.cells, cells)
	for _, idx := range d.cells {
		if idx != emptyIndex {
			d.size++
		}
	}
	diagf("decoded dense %s: %d voxels, %d palette entries", b, d.size, pal.Len())
	return d, nil
}

// DeserializeOctree decodes the octree cache format.
func DeserializeOctree(data []byte) (*Octree, error) {
	b, err := readBoundsHeader(data)
	if err != nil {
		return nil, err
	}
	maxLeaf := int(int32(binary.BigEndian.Uint32(data[denseHeaderSize:octreeHeaderSize])))
	if maxLeaf < 1 {
		return nil, fmt.Errorf("max leaf size %d: %w", maxLeaf, ErrCorruptCache)
	}
	if want := octreeHeaderSize + paletteSectionSize + b.Cells(); len(data) != want {
		return nil, fmt.Errorf("octree %s wants %d bytes, got %d: %w", b, want, len(data), ErrCorruptCache)
	}
	cells := data[octreeHeaderSize+paletteSectionSize:]
	pal, err := readPalette(data[octreeHeaderSize:octreeHeaderSize+paletteSectionSize], cells)
	if err != nil {
		return nil, err
	}
	o := &Octree{bounds: b, palette: pal, maxLeafSize: maxLeaf, root: newNode(b.box(), maxLeaf)}
	o.root.decode(cells)
	diagf("decoded octree %s: %d voxels, %d palette entries", b, o.Size(), pal.Len())
	return o, nil
}

func appendBoundsHeader(buf []byte, b Bounds) []byte {
	for _, v := range [...]int{b.Width, b.Length, b.Height, b.MinX, b.MinY, b.MinZ} {
		buf = binary.BigEndian.AppendUint32(buf, uint32(int32(v)))
	}
	return buf
}

func appendPalette(buf []byte, p *Palette) []byte {
	for i := 0; i <= MaxPaletteSize; i++ {
		if i == 0 || i > p.n {
			buf = append(buf, 0, 0, 0)
			continue
		}
		v := p.entries[i]
		buf = append(buf, v.MaterialID, v.MaterialVariant, byte(v.Class))
	}
	return buf
}

// readBoundsHeader validates the six leading ints before anything sized by
// them is allocated.
func readBoundsHeader(data []byte) (Bounds, error) {
	if len(data) < denseHeaderSize+paletteSectionSize {
		return Bounds{}, fmt.Errorf("%d bytes is shorter than the header: %w", len(data), ErrCorruptCache)
	}
	var h [6]int
	for i := range h {
		h[i] = int(int32(binary.BigEndian.Uint32(data[i*4:])))
	}
	b := Bounds{Width: h[0], Length: h[1], Height: h[2], MinX: h[3], MinY: h[4], MinZ: h[5]}
	if err := b.Validate(); err != nil {
		opsf("rejecting cache header: %v", err)
		return Bounds{}, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}
	return b, nil
}

// readPalette restores entries 1..n where n is the highest slot that is
// either non-zero or referenced by a cell.
func readPalette(section, cells []byte) (Palette, error) {
	if section[0] != 0 || section[1] != 0 || section[2] != 0 {
		return Palette{}, fmt.Errorf("palette slot 0 is not empty: %w", ErrCorruptCache)
	}
	n := 0
	for _, idx := range cells {
		n = max(n, int(idx))
	}
	entries := make([]Voxel, 0, MaxPaletteSize)
	for i := 1; i <= MaxPaletteSize; i++ {
		e := section[i*paletteEntrySize : (i+1)*paletteEntrySize]
		class := Classification(e[2])
		if !class.Valid() {
			return Palette{}, fmt.Errorf("palette slot %d has classification %d: %w", i, e[2], ErrCorruptCache)
		}
		if e[0] != 0 || e[1] != 0 || e[2] != 0 {
			n = max(n, i)
		}
		entries = append(entries, Voxel{MaterialID: e[0], MaterialVariant: e[1], Class: class})
	}
	var p Palette
	if err := p.restore(entries[:n]); err != nil {
		return Palette{}, err
	}
	return p, nil
}
