package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportBlockData_Layout(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			b, err := NewBounds(3, 4, 5, -10, 20, -30)
			require.NoError(t, err)
			v := mk(t, b)
			mustSet(t, v, 2, 3, 4, leaves)
			mustSet(t, v, 1, 0, 0, brick)

			bd := v.ExportBlockData()
			assert.Equal(t, BlockDataHeader{Length: 4, Width: 3, Height: 5, MinX: -10, MinY: 20, MinZ: -30}, bd.Header)
			require.Len(t, bd.IDs, 60)
			require.Len(t, bd.Data, 60)

			i := 4*(3*4) + 2*4 + 3
			assert.Equal(t, i, bd.Index(2, 3, 4))
			assert.Equal(t, leaves.MaterialID, bd.IDs[i])
			assert.Equal(t, leaves.MaterialVariant, bd.Data[i])
			assert.Equal(t, brick.MaterialID, bd.IDs[4])

			nonZero := 0
			for _, id := range bd.IDs {
				if id != 0 {
					nonZero++
				}
			}
			assert.Equal(t, 2, nonZero)
		})
	}
}

func TestBlockDataHeader_MarshalBinary(t *testing.T) {
	t.Parallel()

	h := BlockDataHeader{Length: 0x0102, Width: 0x0304, Height: 0x0506, MinX: -1, MinY: 2, MinZ: 0x0a0b0c0d}
	got, err := h.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06,
		0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x02,
		0x0a, 0x0b, 0x0c, 0x0d,
	}, got)
	assert.Len(t, got, BlockDataHeaderSize)
}
