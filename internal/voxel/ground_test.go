package voxel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroundLayer_Incomplete(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := mk(t, mustBounds(t, 2, 2, 4))
			mustSet(t, v, 0, 0, 0, stone)
			mustSet(t, v, 0, 1, 1, sea)
			mustSet(t, v, 1, 0, 3, grass)
			mustSet(t, v, 1, 1, 2, leaves)

			_, err := v.GroundLayer()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrGroundLayerIncomplete))

			surface := v.GroundSurface()
			assert.Equal(t, 1, surface.Missing())
			assert.Equal(t, []Coord{{X: 1, Y: 1}}, surface.MissingColumns())

			mustSet(t, v, 1, 1, 0, stone)
			layer, err := v.GroundLayer()
			require.NoError(t, err)
			assert.Equal(t, Cell{X: 0, Y: 1, Z: 1, Voxel: sea}, layer.At(0, 1))
			assert.Equal(t, []float64{0, 1, 3, 0}, layer.Heights())
			assert.Equal(t, v.Bounds(), layer.Bounds())
		})
	}
}

func TestGroundSurface_Put(t *testing.T) {
	t.Parallel()

	g := newGroundSurface(mustBounds(t, 2, 1, 1))
	assert.Equal(t, 2, g.Missing())
	g.Put(Cell{X: 0, Y: 0, Z: 0, Voxel: grass})
	g.Put(Cell{X: 0, Y: 0, Z: 0, Voxel: stone})
	g.Put(Cell{X: 5, Y: 0, Z: 0, Voxel: stone})
	assert.Equal(t, 1, g.Missing())

	c, ok := g.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, stone, c.Voxel)
	_, ok = g.At(-1, 0)
	assert.False(t, ok)
}
