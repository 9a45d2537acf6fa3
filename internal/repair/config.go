package repair

import (
	"fmt"

	"github.com/banshee-data/voxelfix/internal/config"
	"github.com/banshee-data/voxelfix/internal/timeutil"
	"github.com/banshee-data/voxelfix/internal/voxel"
)

// Config holds the thresholds and materials used by the passes.
type Config struct {
	// Floating buildings
	BuildingMaxNeighbors int // Removed at or below this many building face neighbors (default: 1)
	BuildingMinNearby    int // Removed below this many buildings in the radius box (default: 6)
	BuildingNearbyRadius int // Radius of the building density box (default: 3)
	BuildingAirRun       int // Removed above an air run this long (default: 20)

	// Floating vegetation and unknown
	PlantAirRun         int // Plants above an air run this long become unknown (default: 30)
	PlantMinNeighbors   int // Plants removed below this many same-class neighbors (default: 3)
	UnknownMaxNeighbors int // Unknown removed at or below this many unknown neighbors (default: 1)

	// Building extension and near-building cleanup
	ExtendMinNeighbors  int // Buildings with this many building neighbors extend down (default: 2)
	SimilarRadius       int // Radius of the same-class density box (default: 4)
	NearBuildingRadius  int // Radius of the building density box (default: 2)
	ConvertMinBuildings int // Convert to building at this building density (default: 7)
	RemoveMinBuildings  int // Remove at this building density (default: 3)

	// Unknown to plant merge
	MergeMaxVisits int // Conversions allowed per cell (default: 4)

	// Materials
	Building  voxel.Voxel
	Unknown   voxel.Voxel
	Water     voxel.Voxel
	SeaBottom voxel.Voxel
	Roof      *voxel.Voxel // Enables the roof pass when set

	Clock timeutil.Clock // Times the passes (default: wall clock)
}

// DefaultConfig returns the compiled defaults.
func DefaultConfig() *Config {
	return ConfigFromRepair(config.EmptyRepairConfig())
}

// ConfigFromRepair builds a Config from a loaded RepairConfig.
func ConfigFromRepair(cfg *config.RepairConfig) *Config {
	c := &Config{
		BuildingMaxNeighbors: cfg.GetBuildingMaxNeighbors(),
		BuildingMinNearby:    cfg.GetBuildingMinNearby(),
		BuildingNearbyRadius: cfg.GetBuildingNearbyRadius(),
		BuildingAirRun:       cfg.GetBuildingAirRun(),
		PlantAirRun:          cfg.GetPlantAirRun(),
		PlantMinNeighbors:    cfg.GetPlantMinNeighbors(),
		UnknownMaxNeighbors:  cfg.GetUnknownMaxNeighbors(),
		ExtendMinNeighbors:   cfg.GetExtendMinNeighbors(),
		SimilarRadius:        cfg.GetSimilarRadius(),
		NearBuildingRadius:   cfg.GetNearBuildingRadius(),
		ConvertMinBuildings:  cfg.GetConvertMinBuildings(),
		RemoveMinBuildings:   cfg.GetRemoveMinBuildings(),
		MergeMaxVisits:       cfg.GetMergeMaxVisits(),
		Building:             cfg.GetBuildingMaterial(),
		Unknown:              cfg.GetUnknownMaterial(),
		Water:                cfg.GetWaterMaterial(),
		SeaBottom:            cfg.GetSeaBottomMaterial(),
	}
	if roof, ok := cfg.GetRoofMaterial(); ok {
		c.Roof = &roof
	}
	return c
}

// Validate checks thresholds and material classifications.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"BuildingMaxNeighbors", c.BuildingMaxNeighbors},
		{"BuildingMinNearby", c.BuildingMinNearby},
		{"BuildingNearbyRadius", c.BuildingNearbyRadius},
		{"BuildingAirRun", c.BuildingAirRun},
		{"PlantAirRun", c.PlantAirRun},
		{"PlantMinNeighbors", c.PlantMinNeighbors},
		{"UnknownMaxNeighbors", c.UnknownMaxNeighbors},
		{"ExtendMinNeighbors", c.ExtendMinNeighbors},
		{"SimilarRadius", c.SimilarRadius},
		{"NearBuildingRadius", c.NearBuildingRadius},
		{"ConvertMinBuildings", c.ConvertMinBuildings},
		{"RemoveMinBuildings", c.RemoveMinBuildings},
		{"MergeMaxVisits", c.MergeMaxVisits},
	} {
		if f.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, f.v)
		}
	}
	if c.Building.Class != voxel.Building {
		return fmt.Errorf("Building material must be classified building, got %s", c.Building.Class)
	}
	if c.Unknown.Class != voxel.Unknown {
		return fmt.Errorf("Unknown material must be classified unknown, got %s", c.Unknown.Class)
	}
	if c.Water.Class != voxel.Water {
		return fmt.Errorf("Water material must be classified water, got %s", c.Water.Class)
	}
	if c.SeaBottom.Class != voxel.Ground {
		return fmt.Errorf("SeaBottom material must be classified ground, got %s", c.SeaBottom.Class)
	}
	if c.Roof != nil && c.Roof.Class != voxel.Building {
		return fmt.Errorf("Roof material must be classified building, got %s", c.Roof.Class)
	}
	return nil
}

// WithRoof enables the roof pass with the given voxel.
func (c *Config) WithRoof(v voxel.Voxel) *Config {
	c.Roof = &v
	return c
}

// WithoutRoof disables the roof pass.
func (c *Config) WithoutRoof() *Config {
	c.Roof = nil
	return c
}

// WithWater sets the flood fill material.
func (c *Config) WithWater(v voxel.Voxel) *Config {
	c.Water = v
	return c
}

// WithSeaBottom sets the material written under flooded columns.
func (c *Config) WithSeaBottom(v voxel.Voxel) *Config {
	c.SeaBottom = v
	return c
}

// WithBuilding sets the building material used by conversions.
func (c *Config) WithBuilding(v voxel.Voxel) *Config {
	c.Building = v
	return c
}

// WithUnknown sets the material floating plants are declassified to.
func (c *Config) WithUnknown(v voxel.Voxel) *Config {
	c.Unknown = v
	return c
}
