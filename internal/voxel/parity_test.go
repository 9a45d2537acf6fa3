package voxel

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fuzzPalette = []Voxel{grass, stone, sea, brick, leaves, shrub, mystery, bridgeVx}

type op struct {
	remove  bool
	x, y, z int
	v       Voxel
}

func randomOps(rng *rand.Rand, b Bounds, n int) []op {
	ops := make([]op, n)
	for i := range ops {
		ops[i] = op{
			remove: rng.IntN(4) == 0,
			x:      rng.IntN(b.Width),
			y:      rng.IntN(b.Length),
			z:      rng.IntN(b.Height),
			v:      fuzzPalette[rng.IntN(len(fuzzPalette))],
		}
	}
	return ops
}

func replay(t *testing.T, v Volume, ops []op) {
	t.Helper()
	for _, o := range ops {
		if o.remove {
			require.True(t, v.Remove(o.x, o.y, o.z))
			continue
		}
		mustSet(t, v, o.x, o.y, o.z, o.v)
	}
}

func snapshot(v Volume) map[Coord]Voxel {
	out := map[Coord]Voxel{}
	v.ForEach(func(c Cell) bool {
		out[Coord{c.X, c.Y, c.Z}] = c.Voxel
		return true
	})
	return out
}

func TestParity_ReplayedWrites(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 20; round++ {
		b := mustBounds(t, 1+rng.IntN(12), 1+rng.IntN(12), 1+rng.IntN(12))
		ops := randomOps(rng, b, 300)

		d, err := NewDense(b)
		require.NoError(t, err)
		o, err := NewOctree(b, 1+rng.IntN(40))
		require.NoError(t, err)
		replay(t, d, ops)
		replay(t, o, ops)

		if diff := cmp.Diff(snapshot(d), snapshot(o)); diff != "" {
			t.Fatalf("round %d %s: dense/octree mismatch (-dense +octree):\n%s", round, b, diff)
		}
		assert.Equal(t, d.Size(), o.Size())
		for x := 0; x < b.Width; x++ {
			for y := 0; y < b.Length; y++ {
				for z := 0; z < b.Height; z++ {
					dv, dok := d.Get(x, y, z)
					ov, ook := o.Get(x, y, z)
					require.Equal(t, dok, ook)
					require.Equal(t, dv, ov)
				}
			}
		}
		if diff := cmp.Diff(d.ExportBlockData(), o.ExportBlockData()); diff != "" {
			t.Fatalf("round %d: export mismatch:\n%s", round, diff)
		}
	}
}

func TestParity_CountInRadiusDifferential(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	classes := []Classification{Ground, Water, Building, HighVegetation, LowVegetation, Unknown, Bridge}
	for round := 0; round < 25; round++ {
		b := mustBounds(t, 2+rng.IntN(14), 2+rng.IntN(14), 2+rng.IntN(14))
		ops := randomOps(rng, b, 400)

		d, err := NewDense(b)
		require.NoError(t, err)
		o, err := NewOctree(b, 1+rng.IntN(64))
		require.NoError(t, err)
		replay(t, d, ops)
		replay(t, o, ops)

		for q := 0; q < 50; q++ {
			x := rng.IntN(b.Width+4) - 2
			y := rng.IntN(b.Length+4) - 2
			z := rng.IntN(b.Height+4) - 2
			r := rng.IntN(6)
			c := classes[rng.IntN(len(classes))]
			require.Equal(t, d.CountInRadius(x, y, z, c, r), o.CountInRadius(x, y, z, c, r),
				"round %d query (%d,%d,%d) r=%d class=%s", round, x, y, z, r, c)
		}
	}
}

func TestParity_GroundSurface(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5))
	for round := 0; round < 10; round++ {
		b := mustBounds(t, 1+rng.IntN(10), 1+rng.IntN(10), 2+rng.IntN(20))
		ops := randomOps(rng, b, 200)

		d, err := NewDense(b)
		require.NoError(t, err)
		o, err := NewOctree(b, 1+rng.IntN(32))
		require.NoError(t, err)
		replay(t, d, ops)
		replay(t, o, ops)

		dg, og := d.GroundSurface(), o.GroundSurface()
		assert.Equal(t, dg.Missing(), og.Missing())
		for x := 0; x < b.Width; x++ {
			for y := 0; y < b.Length; y++ {
				dc, dok := dg.At(x, y)
				oc, ook := og.At(x, y)
				require.Equal(t, dok, ook, "column (%d,%d)", x, y)
				require.Equal(t, dc, oc, "column (%d,%d)", x, y)
			}
		}
	}
}
