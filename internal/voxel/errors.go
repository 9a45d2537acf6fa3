package voxel

import "errors"

var (
	// ErrCapacityExceeded is returned when a volume would need a 256th
	// distinct voxel value.
	ErrCapacityExceeded = errors.New("voxel: palette capacity exceeded")

	// ErrGroundLayerIncomplete is returned when a column has no ground or
	// water voxel.
	ErrGroundLayerIncomplete = errors.New("voxel: ground layer incomplete")

	// ErrCorruptCache is returned when serialized volume bytes fail validation.
	ErrCorruptCache = errors.New("voxel: corrupt cache")

	// ErrInvalidBounds is returned for non-positive or oversized dimensions.
	ErrInvalidBounds = errors.New("voxel: invalid bounds")
)
