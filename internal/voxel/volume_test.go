package voxel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolume_SetGetRemove(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := mk(t, mustBounds(t, 4, 5, 6))

			_, ok := v.Get(1, 2, 3)
			assert.False(t, ok)

			mustSet(t, v, 1, 2, 3, brick)
			got, ok := v.Get(1, 2, 3)
			require.True(t, ok)
			assert.Equal(t, brick, got)
			assert.Equal(t, 1, v.Size())

			mustSet(t, v, 1, 2, 3, leaves)
			got, _ = v.Get(1, 2, 3)
			assert.Equal(t, leaves, got)
			assert.Equal(t, 1, v.Size())

			assert.True(t, v.Remove(1, 2, 3))
			_, ok = v.Get(1, 2, 3)
			assert.False(t, ok)
			assert.Equal(t, 0, v.Size())

			// Removing an empty cell is still an in-range success.
			assert.True(t, v.Remove(0, 0, 0))
		})
	}
}

func TestVolume_OutOfRange(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := mk(t, mustBounds(t, 3, 3, 3))
			for _, c := range []Coord{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}, {3, 0, 0}, {0, 3, 0}, {0, 0, 3}} {
				ok, err := v.Set(c.X, c.Y, c.Z, brick)
				assert.NoError(t, err)
				assert.False(t, ok, "set %+v", c)
				assert.False(t, v.Remove(c.X, c.Y, c.Z), "remove %+v", c)
				_, ok = v.Get(c.X, c.Y, c.Z)
				assert.False(t, ok, "get %+v", c)
			}
			assert.Equal(t, 0, v.Palette().Len(), "rejected writes must not allocate")
		})
	}
}

func TestVolume_PaletteCapacity(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := mk(t, mustBounds(t, 16, 16, 2))
			for i := 0; i < MaxPaletteSize; i++ {
				mustSet(t, v, i%16, i/16, 0, New(uint8(i), 0, Ground))
			}
			assert.Equal(t, MaxPaletteSize, v.Palette().Len())

			// Reusing an existing value is fine once the palette is full.
			mustSet(t, v, 0, 0, 1, New(7, 0, Ground))

			ok, err := v.Set(1, 0, 1, New(0, 1, Ground))
			assert.False(t, ok)
			assert.True(t, errors.Is(err, ErrCapacityExceeded))
			_, present := v.Get(1, 0, 1)
			assert.False(t, present)
		})
	}
}

func TestVolume_PaletteSequential(t *testing.T) {
	t.Parallel()

	d, err := NewDense(mustBounds(t, 2, 2, 2))
	require.NoError(t, err)
	mustSet(t, d, 0, 0, 0, brick)
	mustSet(t, d, 1, 0, 0, leaves)
	mustSet(t, d, 0, 1, 0, brick)
	mustSet(t, d, 1, 1, 0, sea)

	assert.Equal(t, []Voxel{brick, leaves, sea}, d.Palette().Voxels())
	assert.True(t, d.Palette().Contains(sea))
	assert.False(t, d.Palette().Contains(grass))
}

func TestVolume_NeighborCounts(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := mk(t, mustBounds(t, 3, 3, 3))
			mustSet(t, v, 0, 1, 1, brick)
			mustSet(t, v, 2, 1, 1, brick)
			mustSet(t, v, 1, 0, 1, leaves)
			mustSet(t, v, 1, 1, 2, brick)
			mustSet(t, v, 1, 1, 0, grass)

			assert.Equal(t, 5, v.NeighborCount6(1, 1, 1))
			assert.Equal(t, 3, v.NeighborCountWithClassification(1, 1, 1, Building))
			assert.Equal(t, 1, v.NeighborCountWithClassification(1, 1, 1, HighVegetation))
			assert.Equal(t, 0, v.NeighborCountWithClassification(1, 1, 1, Water))

			// Corner cells see only in-range neighbors.
			assert.Equal(t, 0, v.NeighborCount6(0, 0, 0))
			assert.Equal(t, 1, v.NeighborCount6(0, 1, 0))
		})
	}
}

func TestVolume_CountInRadiusIsHalfOpenBox(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := mk(t, mustBounds(t, 8, 8, 8))
			for x := 0; x < 8; x++ {
				for y := 0; y < 8; y++ {
					for z := 0; z < 8; z++ {
						mustSet(t, v, x, y, z, brick)
					}
				}
			}

			// [2,6)^3 holds 64 cells, corners included.
			assert.Equal(t, 64, v.CountInRadius(4, 4, 4, Building, 2))
			// Clipped at the origin: [0,2)^3.
			assert.Equal(t, 8, v.CountInRadius(0, 0, 0, Building, 2))
			assert.Equal(t, 0, v.CountInRadius(4, 4, 4, Building, 0))
			assert.Equal(t, 0, v.CountInRadius(4, 4, 4, Water, 3))

			// The upper edge is exclusive.
			require.True(t, v.Remove(6, 4, 4))
			assert.Equal(t, 64, v.CountInRadius(4, 4, 4, Building, 2))
			require.True(t, v.Remove(2, 2, 2))
			assert.Equal(t, 63, v.CountInRadius(4, 4, 4, Building, 2))
		})
	}
}

func TestVolume_ForEachVisitsEveryVoxel(t *testing.T) {
	t.Parallel()

	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := mk(t, mustBounds(t, 5, 7, 3))
			want := map[Coord]Voxel{
				{0, 0, 0}: grass,
				{4, 6, 2}: brick,
				{2, 3, 1}: leaves,
				{1, 5, 0}: sea,
			}
			for c, vx := range want {
				mustSet(t, v, c.X, c.Y, c.Z, vx)
			}

			got := map[Coord]Voxel{}
			v.ForEach(func(c Cell) bool {
				got[Coord{c.X, c.Y, c.Z}] = c.Voxel
				return true
			})
			assert.Equal(t, want, got)

			visited := 0
			v.ForEach(func(Cell) bool {
				visited++
				return false
			})
			assert.Equal(t, 1, visited)
		})
	}
}

func TestDense_ForEachOrder(t *testing.T) {
	t.Parallel()

	d, err := NewDense(mustBounds(t, 2, 2, 2))
	require.NoError(t, err)
	mustSet(t, d, 1, 0, 1, brick)
	mustSet(t, d, 0, 1, 0, brick)
	mustSet(t, d, 1, 0, 0, brick)
	mustSet(t, d, 0, 0, 1, brick)

	assert.Equal(t, []Coord{{0, 1, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1}}, Coords(d))
}

func TestHelpers_NeighborsAndColumns(t *testing.T) {
	t.Parallel()

	b := mustBounds(t, 3, 3, 3)
	assert.Len(t, Neighbors6(b, 1, 1, 1, nil), 6)
	assert.Len(t, Neighbors6(b, 0, 0, 0, nil), 3)
	assert.Equal(t, []Coord{
		{0, 1, 1}, {2, 1, 1},
		{1, 0, 1}, {1, 2, 1},
		{1, 1, 0}, {1, 1, 2},
	}, Neighbors6(b, 1, 1, 1, nil))
	assert.ElementsMatch(t, []Coord{{1, 0, 0}, {0, 1, 0}}, LateralNeighbors(b, 0, 0, nil))

	d, err := NewDense(b)
	require.NoError(t, err)
	n, err := FillColumn(d, 2, 2, 0, 3, stone)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	top, ok := TopVoxel(d, 2, 2)
	require.True(t, ok)
	assert.Equal(t, Cell{X: 2, Y: 2, Z: 2, Voxel: stone}, top)
	_, ok = TopVoxel(d, 0, 0)
	assert.False(t, ok)
}

func TestNewVolume(t *testing.T) {
	t.Parallel()

	b := mustBounds(t, 2, 2, 2)
	v, err := NewVolume(BackendOctree, b, 4)
	require.NoError(t, err)
	assert.Equal(t, BackendOctree, v.Backend())

	v, err = NewVolume(BackendDense, b, 0)
	require.NoError(t, err)
	assert.Equal(t, BackendDense, v.Backend())

	_, err = NewVolume("voxelmap", b, 4)
	assert.Error(t, err)

	_, err = NewOctree(b, 0)
	assert.Error(t, err)

	_, err = NewBounds(0, 1, 1, 0, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidBounds))
	_, err = NewBounds(1, MaxExtent+1, 1, 0, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidBounds))

	backend, err := ParseBackend("dense")
	require.NoError(t, err)
	assert.Equal(t, BackendDense, backend)
	_, err = ParseBackend("sparse")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	b, err := NewBounds(7, 5, 9, 3, -4, 0)
	require.NoError(t, err)
	src, err := NewDense(b)
	require.NoError(t, err)
	mustSet(t, src, 0, 0, 0, grass)
	mustSet(t, src, 6, 4, 8, brick)
	mustSet(t, src, 3, 2, 1, sea)

	oct, err := Convert(src, BackendOctree, 8)
	require.NoError(t, err)
	assert.Equal(t, BackendOctree, oct.Backend())
	assert.Equal(t, b, oct.Bounds())
	assert.Equal(t, snapshot(src), snapshot(oct))

	same, err := Convert(oct, BackendOctree, 8)
	require.NoError(t, err)
	assert.Same(t, oct, same)

	releafed, err := Convert(oct, BackendOctree, 2)
	require.NoError(t, err)
	assert.NotSame(t, oct, releafed)
	assert.Equal(t, 2, releafed.(*Octree).MaxLeafSize())
	assert.Equal(t, snapshot(src), snapshot(releafed))

	back, err := Convert(oct, BackendDense, 0)
	require.NoError(t, err)
	assert.Equal(t, snapshot(src), snapshot(back))

	_, err = Convert(src, Backend("sparse"), 8)
	assert.Error(t, err)
}
