// Package repair runs the consistency passes that turn a noisy classified
// voxel volume into a solid, internally consistent one.
//
// A Pipeline applies its passes in a fixed order. Every pass works only
// through the voxel.Volume contract and sees the effects of the passes
// before it. The only fatal condition is a ground layer that still has
// holes after the ground fill pass.
package repair
