// Package testutil provides shared test utilities and fixtures.
//
// The fixtures build small voxel volumes for pipeline, store and batch
// tests so those packages agree on materials and layouts.
package testutil

import (
	"testing"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

// Shared materials. Their classifications match their names.
var (
	Grass    = voxel.New(2, 0, voxel.Ground)
	Dirt     = voxel.New(3, 0, voxel.Ground)
	Sea      = voxel.New(9, 0, voxel.Water)
	Brick    = voxel.New(45, 0, voxel.Building)
	Leaves   = voxel.New(18, 0, voxel.HighVegetation)
	Bush     = voxel.New(18, 1, voxel.MediumVegetation)
	Fern     = voxel.New(31, 2, voxel.LowVegetation)
	Mystery  = voxel.New(1, 5, voxel.Unknown)
	SandBed  = voxel.New(12, 0, voxel.Ground)
	RoofSlab = voxel.New(44, 0, voxel.Building)
)

// Backends lists the storage layouts tests should cover.
var Backends = []voxel.Backend{voxel.BackendDense, voxel.BackendOctree}

// NewVolume creates an empty volume at the origin. Octrees use a small leaf
// size so that fixtures span several tree levels.
func NewVolume(t testing.TB, backend voxel.Backend, width, length, height int) voxel.Volume {
	t.Helper()
	b, err := voxel.NewBounds(width, length, height, 0, 0, 0)
	AssertNoError(t, err)
	v, err := voxel.NewVolume(backend, b, 16)
	AssertNoError(t, err)
	return v
}

// Set writes vx and fails the test if the write is rejected.
func Set(t testing.TB, v voxel.Volume, x, y, z int, vx voxel.Voxel) {
	t.Helper()
	ok, err := v.Set(x, y, z, vx)
	AssertNoError(t, err)
	if !ok {
		t.Fatalf("set (%d,%d,%d) out of range for %s", x, y, z, v.Bounds())
	}
}

// FillLayer writes vx into every column at height z.
func FillLayer(t testing.TB, v voxel.Volume, z int, vx voxel.Voxel) {
	t.Helper()
	b := v.Bounds()
	for x := 0; x < b.Width; x++ {
		for y := 0; y < b.Length; y++ {
			Set(t, v, x, y, z, vx)
		}
	}
}

// FillBox writes vx into the half-open box [x0,x1)×[y0,y1)×[z0,z1).
func FillBox(t testing.TB, v voxel.Volume, x0, y0, z0, x1, y1, z1 int, vx voxel.Voxel) {
	t.Helper()
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			for z := z0; z < z1; z++ {
				Set(t, v, x, y, z, vx)
			}
		}
	}
}

// Terrain builds a small tile: grass at z=2 over dirt, a 3×3×4 building,
// a tree, a pond and a hole in the ground. It is the shared input for
// end-to-end pipeline, store and batch tests.
func Terrain(t testing.TB, backend voxel.Backend) voxel.Volume {
	t.Helper()
	v := NewVolume(t, backend, 16, 16, 24)
	FillBox(t, v, 0, 0, 0, 16, 16, 2, Dirt)
	FillLayer(t, v, 2, Grass)

	// Building on the grass.
	FillBox(t, v, 3, 3, 3, 6, 6, 7, Brick)

	// Tree: trunk of leaves with an unknown cap.
	FillBox(t, v, 10, 10, 3, 13, 13, 8, Leaves)
	Set(t, v, 11, 11, 8, Mystery)

	// Pond: water sunk into the grass.
	for x := 8; x < 11; x++ {
		for y := 2; y < 5; y++ {
			AssertTrue(t, v.Remove(x, y, 2), "remove pond cell")
			Set(t, v, x, y, 1, Sea)
		}
	}

	// Hole with no ground at all.
	for z := 0; z < 3; z++ {
		v.Remove(14, 14, z)
	}

	// Floating noise.
	Set(t, v, 7, 12, 20, Brick)
	return v
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertTrue fails the test if cond is false.
func AssertTrue(t testing.TB, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatalf("expected true: %s", msg)
	}
}
