package voxel

import "encoding/binary"

// BlockDataHeaderSize is the encoded size of BlockDataHeader.
const BlockDataHeaderSize = 3*2 + 3*4

// BlockDataHeader describes the exported buffers. The field order is the
// order expected by schematic writers.
type BlockDataHeader struct {
	Length uint16
	Width  uint16
	Height uint16
	MinX   int32
	MinY   int32
	MinZ   int32
}

// MarshalBinary encodes the header big-endian in field order.
func (h BlockDataHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, BlockDataHeaderSize)
	buf = binary.BigEndian.AppendUint16(buf, h.Length)
	buf = binary.BigEndian.AppendUint16(buf, h.Width)
	buf = binary.BigEndian.AppendUint16(buf, h.Height)
	buf = binary.BigEndian.AppendUint32(buf, uint32(h.MinX))
	buf = binary.BigEndian.AppendUint32(buf, uint32(h.MinY))
	buf = binary.BigEndian.AppendUint32(buf, uint32(h.MinZ))
	return buf, nil
}

// BlockData is a volume flattened into parallel material id and variant
// buffers, indexed z*(width*length) + x*length + y. Empty cells are 0 in
// both buffers.
type BlockData struct {
	Header BlockDataHeader
	IDs    []byte
	Data   []byte
}

func newBlockData(b Bounds) *BlockData {
	return &BlockData{
		Header: BlockDataHeader{
			Length: uint16(b.Length),
			Width:  uint16(b.Width),
			Height: uint16(b.Height),
			MinX:   int32(b.MinX),
			MinY:   int32(b.MinY),
			MinZ:   int32(b.MinZ),
		},
		IDs:  make([]byte, b.Cells()),
		Data: make([]byte, b.Cells()),
	}
}

// Index returns the buffer offset of local (x, y, z).
func (bd *BlockData) Index(x, y, z int) int {
	w, l := int(bd.Header.Width), int(bd.Header.Length)
	return z*(w*l) + x*l + y
}
