package repair

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

// PassResult records what one pass did.
type PassResult struct {
	Name     string
	Changed  int
	Duration time.Duration
}

// GroundStats summarises the local z of the final ground layer.
type GroundStats struct {
	Columns int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Report describes one pipeline run.
type Report struct {
	Bounds       voxel.Bounds
	Backend      voxel.Backend
	Passes       []PassResult
	VoxelsBefore int
	VoxelsAfter  int
	Ground       GroundStats
	Duration     time.Duration
}

// Changed returns the cell count reported by the named pass.
func (r *Report) Changed(name string) int {
	for _, p := range r.Passes {
		if p.Name == name {
			return p.Changed
		}
	}
	return 0
}

// TotalChanged sums the per-pass counts.
func (r *Report) TotalChanged() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Changed
	}
	return n
}

func (r *Report) summariseGround(v voxel.Volume) error {
	layer, err := v.GroundLayer()
	if err != nil {
		return fmt.Errorf("summarise ground: %w", err)
	}
	heights := layer.Heights()
	mean, std := stat.PopMeanStdDev(heights, nil)
	r.Ground = GroundStats{
		Columns: len(heights),
		Min:     floats.Min(heights),
		Max:     floats.Max(heights),
		Mean:    mean,
		StdDev:  std,
	}
	return nil
}

func (r *Report) String() string {
	return fmt.Sprintf("%s %s: %d -> %d voxels, %d cells changed, ground z %.0f..%.0f (mean %.2f, sd %.2f) in %v",
		r.Backend, r.Bounds, r.VoxelsBefore, r.VoxelsAfter, r.TotalChanged(),
		r.Ground.Min, r.Ground.Max, r.Ground.Mean, r.Ground.StdDev, r.Duration)
}
