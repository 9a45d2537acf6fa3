package voxel

import "fmt"

// Voxel is one material with its classification. Voxels are values and are
// replaced wholesale, never modified in place.
type Voxel struct {
	MaterialID      uint8
	MaterialVariant uint8
	Class           Classification
}

// New returns a voxel for the given material and classification.
func New(id, variant uint8, class Classification) Voxel {
	return Voxel{MaterialID: id, MaterialVariant: variant, Class: class}
}

func (v Voxel) String() string {
	return fmt.Sprintf("%d:%d/%s", v.MaterialID, v.MaterialVariant, v.Class)
}

// Cell is a voxel at local coordinates.
type Cell struct {
	X, Y, Z int
	Voxel   Voxel
}

// Coord is a local coordinate.
type Coord struct {
	X, Y, Z int
}
