package voxel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	grass    = New(2, 0, Ground)
	stone    = New(1, 0, Ground)
	sea      = New(9, 0, Water)
	brick    = New(45, 0, Building)
	leaves   = New(18, 1, HighVegetation)
	shrub    = New(31, 2, LowVegetation)
	mystery  = New(82, 0, Unknown)
	bridgeVx = New(5, 3, Bridge)
)

// backends lists constructors for both storage layouts. The octree uses a
// small leaf size so tests exercise several tree levels.
func backends() map[string]func(t *testing.T, b Bounds) Volume {
	return map[string]func(t *testing.T, b Bounds) Volume{
		"dense": func(t *testing.T, b Bounds) Volume {
			t.Helper()
			d, err := NewDense(b)
			require.NoError(t, err)
			return d
		},
		"octree": func(t *testing.T, b Bounds) Volume {
			t.Helper()
			o, err := NewOctree(b, 8)
			require.NoError(t, err)
			return o
		},
	}
}

func mustBounds(t *testing.T, w, l, h int) Bounds {
	t.Helper()
	b, err := NewBounds(w, l, h, 0, 0, 0)
	require.NoError(t, err)
	return b
}

func mustSet(t *testing.T, v Volume, x, y, z int, vx Voxel) {
	t.Helper()
	ok, err := v.Set(x, y, z, vx)
	require.NoError(t, err)
	require.True(t, ok, "set (%d,%d,%d)", x, y, z)
}
