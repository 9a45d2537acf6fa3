// Package voxel stores classified voxels in a bounded volume.
//
// A Volume has a fixed local coordinate space [0,width)×[0,length)×[0,height)
// offset by (minX, minY, minZ) in world space. Two backends share the
// Volume contract: Dense keeps one palette index per cell in a flat array,
// Octree keeps the same indices in lazily materialized leaves.
//
// Every volume owns a Palette that maps up to 255 distinct Voxel values to
// one-byte indices. Index 0 is the empty cell and never leaves this package.
package voxel
