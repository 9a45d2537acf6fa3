package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/banshee-data/voxelfix/internal/voxel"
)

// DefaultConfigPath is the path to the canonical repair defaults file.
const DefaultConfigPath = "config/repair.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// RepairConfig is the on-disk configuration for the repair pipeline, the
// volume backend and the batch runner. Every field is optional; the Get*
// methods supply defaults for fields left out of the file.
type RepairConfig struct {
	// Volume backend
	Backend     *string `json:"backend,omitempty" toml:"backend,omitempty"` // "dense" or "octree"
	MaxLeafSize *int    `json:"max_leaf_size,omitempty" toml:"max_leaf_size,omitempty"`

	// Floating buildings
	BuildingMaxNeighbors *int `json:"building_max_neighbors,omitempty" toml:"building_max_neighbors,omitempty"`
	BuildingMinNearby    *int `json:"building_min_nearby,omitempty" toml:"building_min_nearby,omitempty"`
	BuildingNearbyRadius *int `json:"building_nearby_radius,omitempty" toml:"building_nearby_radius,omitempty"`
	BuildingAirRun       *int `json:"building_air_run,omitempty" toml:"building_air_run,omitempty"`

	// Floating vegetation and unknown
	PlantAirRun         *int `json:"plant_air_run,omitempty" toml:"plant_air_run,omitempty"`
	PlantMinNeighbors   *int `json:"plant_min_neighbors,omitempty" toml:"plant_min_neighbors,omitempty"`
	UnknownMaxNeighbors *int `json:"unknown_max_neighbors,omitempty" toml:"unknown_max_neighbors,omitempty"`

	// Building extension and near-building cleanup
	ExtendMinNeighbors  *int `json:"extend_min_neighbors,omitempty" toml:"extend_min_neighbors,omitempty"`
	SimilarRadius       *int `json:"similar_radius,omitempty" toml:"similar_radius,omitempty"`
	NearBuildingRadius  *int `json:"near_building_radius,omitempty" toml:"near_building_radius,omitempty"`
	ConvertMinBuildings *int `json:"convert_min_buildings,omitempty" toml:"convert_min_buildings,omitempty"`
	RemoveMinBuildings  *int `json:"remove_min_buildings,omitempty" toml:"remove_min_buildings,omitempty"`

	// Unknown to plant merge
	MergeMaxVisits *int `json:"merge_max_visits,omitempty" toml:"merge_max_visits,omitempty"`

	// Materials written by the pipeline
	Materials *MaterialsConfig `json:"materials,omitempty" toml:"materials,omitempty"`

	// Batch runner
	Workers   *int    `json:"workers,omitempty" toml:"workers,omitempty"`
	Store     *string `json:"store,omitempty" toml:"store,omitempty"` // "file" or "sqlite"
	StorePath *string `json:"store_path,omitempty" toml:"store_path,omitempty"`
}

// MaterialsConfig names the voxels the pipeline writes. Roof is optional
// and enables the roof pass when set.
type MaterialsConfig struct {
	Building  *MaterialConfig `json:"building,omitempty" toml:"building,omitempty"`
	Unknown   *MaterialConfig `json:"unknown,omitempty" toml:"unknown,omitempty"`
	Water     *MaterialConfig `json:"water,omitempty" toml:"water,omitempty"`
	SeaBottom *MaterialConfig `json:"sea_bottom,omitempty" toml:"sea_bottom,omitempty"`
	Roof      *MaterialConfig `json:"roof,omitempty" toml:"roof,omitempty"`
}

// MaterialConfig is one voxel value. Class uses the snake_case
// classification names.
type MaterialConfig struct {
	ID      int    `json:"id" toml:"id"`
	Variant int    `json:"variant" toml:"variant"`
	Class   string `json:"class" toml:"class"`
}

// Voxel converts m to a voxel value.
func (m MaterialConfig) Voxel() (voxel.Voxel, error) {
	if m.ID < 0 || m.ID > 255 {
		return voxel.Voxel{}, fmt.Errorf("material id %d out of range [0,255]", m.ID)
	}
	if m.Variant < 0 || m.Variant > 255 {
		return voxel.Voxel{}, fmt.Errorf("material variant %d out of range [0,255]", m.Variant)
	}
	class, err := voxel.ParseClassification(m.Class)
	if err != nil {
		return voxel.Voxel{}, err
	}
	return voxel.New(uint8(m.ID), uint8(m.Variant), class), nil
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyRepairConfig returns a RepairConfig with all fields set to nil.
func EmptyRepairConfig() *RepairConfig {
	return &RepairConfig{}
}

// LoadRepairConfig loads a RepairConfig from a .json or .toml file no larger
// than 1MB. Omitted fields keep their defaults.
func LoadRepairConfig(path string) (*RepairConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".toml" {
		return nil, fmt.Errorf("config file must have .json or .toml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRepairConfig()
	if ext == ".toml" {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *RepairConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from cmd/voxelfix/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadRepairConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *RepairConfig) Validate() error {
	if c.Backend != nil {
		if _, err := voxel.ParseBackend(*c.Backend); err != nil {
			return err
		}
	}
	if c.MaxLeafSize != nil && *c.MaxLeafSize < 1 {
		return fmt.Errorf("max_leaf_size must be at least 1, got %d", *c.MaxLeafSize)
	}
	for name, v := range map[string]*int{
		"building_max_neighbors": c.BuildingMaxNeighbors,
		"building_min_nearby":    c.BuildingMinNearby,
		"building_nearby_radius": c.BuildingNearbyRadius,
		"building_air_run":       c.BuildingAirRun,
		"plant_air_run":          c.PlantAirRun,
		"plant_min_neighbors":    c.PlantMinNeighbors,
		"unknown_max_neighbors":  c.UnknownMaxNeighbors,
		"extend_min_neighbors":   c.ExtendMinNeighbors,
		"similar_radius":         c.SimilarRadius,
		"near_building_radius":   c.NearBuildingRadius,
		"convert_min_buildings":  c.ConvertMinBuildings,
		"remove_min_buildings":   c.RemoveMinBuildings,
		"merge_max_visits":       c.MergeMaxVisits,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, *v)
		}
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.Store != nil && *c.Store != "file" && *c.Store != "sqlite" {
		return fmt.Errorf("store must be \"file\" or \"sqlite\", got %q", *c.Store)
	}
	if c.Materials != nil {
		for name, m := range map[string]*MaterialConfig{
			"building":   c.Materials.Building,
			"unknown":    c.Materials.Unknown,
			"water":      c.Materials.Water,
			"sea_bottom": c.Materials.SeaBottom,
			"roof":       c.Materials.Roof,
		} {
			if m == nil {
				continue
			}
			if _, err := m.Voxel(); err != nil {
				return fmt.Errorf("materials.%s: %w", name, err)
			}
		}
		if r := c.Materials.Roof; r != nil {
			if v, _ := r.Voxel(); v.Class != voxel.Building {
				return fmt.Errorf("materials.roof must be classified building, got %s", v.Class)
			}
		}
	}
	return nil
}

// GetBackend returns the volume backend or the default.
func (c *RepairConfig) GetBackend() voxel.Backend {
	if c.Backend == nil {
		return voxel.BackendOctree // default
	}
	b, err := voxel.ParseBackend(*c.Backend)
	if err != nil {
		return voxel.BackendOctree
	}
	return b
}

// GetMaxLeafSize returns max_leaf_size or the default.
func (c *RepairConfig) GetMaxLeafSize() int {
	return intOr(c.MaxLeafSize, 4096)
}

// GetBuildingMaxNeighbors returns building_max_neighbors or the default.
func (c *RepairConfig) GetBuildingMaxNeighbors() int { return intOr(c.BuildingMaxNeighbors, 1) }

// GetBuildingMinNearby returns building_min_nearby or the default.
func (c *RepairConfig) GetBuildingMinNearby() int { return intOr(c.BuildingMinNearby, 6) }

// GetBuildingNearbyRadius returns building_nearby_radius or the default.
func (c *RepairConfig) GetBuildingNearbyRadius() int { return intOr(c.BuildingNearbyRadius, 3) }

// GetBuildingAirRun returns building_air_run or the default.
func (c *RepairConfig) GetBuildingAirRun() int { return intOr(c.BuildingAirRun, 20) }

// GetPlantAirRun returns plant_air_run or the default.
func (c *RepairConfig) GetPlantAirRun() int { return intOr(c.PlantAirRun, 30) }

// GetPlantMinNeighbors returns plant_min_neighbors or the default.
func (c *RepairConfig) GetPlantMinNeighbors() int { return intOr(c.PlantMinNeighbors, 3) }

// GetUnknownMaxNeighbors returns unknown_max_neighbors or the default.
func (c *RepairConfig) GetUnknownMaxNeighbors() int { return intOr(c.UnknownMaxNeighbors, 1) }

// GetExtendMinNeighbors returns extend_min_neighbors or the default.
func (c *RepairConfig) GetExtendMinNeighbors() int { return intOr(c.ExtendMinNeighbors, 2) }

// GetSimilarRadius returns similar_radius or the default.
func (c *RepairConfig) GetSimilarRadius() int { return intOr(c.SimilarRadius, 4) }

// GetNearBuildingRadius returns near_building_radius or the default.
func (c *RepairConfig) GetNearBuildingRadius() int { return intOr(c.NearBuildingRadius, 2) }

// GetConvertMinBuildings returns convert_min_buildings or the default.
func (c *RepairConfig) GetConvertMinBuildings() int { return intOr(c.ConvertMinBuildings, 7) }

// GetRemoveMinBuildings returns remove_min_buildings or the default.
func (c *RepairConfig) GetRemoveMinBuildings() int { return intOr(c.RemoveMinBuildings, 3) }

// GetMergeMaxVisits returns merge_max_visits or the default.
func (c *RepairConfig) GetMergeMaxVisits() int { return intOr(c.MergeMaxVisits, 4) }

// GetWorkers returns workers or the default.
func (c *RepairConfig) GetWorkers() int { return intOr(c.Workers, 4) }

// GetStore returns the store kind or the default.
func (c *RepairConfig) GetStore() string {
	if c.Store == nil {
		return "file"
	}
	return *c.Store
}

// GetStorePath returns store_path or the default.
func (c *RepairConfig) GetStorePath() string {
	if c.StorePath == nil || *c.StorePath == "" {
		return "cache"
	}
	return *c.StorePath
}

var defaultMaterials = MaterialsConfig{
	Building:  &MaterialConfig{ID: 98, Variant: 0, Class: "building"},
	Unknown:   &MaterialConfig{ID: 1, Variant: 5, Class: "unknown"},
	Water:     &MaterialConfig{ID: 9, Variant: 0, Class: "water"},
	SeaBottom: &MaterialConfig{ID: 12, Variant: 0, Class: "ground"},
}

func (c *RepairConfig) material(pick func(*MaterialsConfig) *MaterialConfig) voxel.Voxel {
	m := pick(&defaultMaterials)
	if c.Materials != nil {
		if set := pick(c.Materials); set != nil {
			m = set
		}
	}
	v, err := m.Voxel()
	if err != nil {
		v, _ = pick(&defaultMaterials).Voxel()
	}
	return v
}

// GetBuildingMaterial returns the voxel written for buildings.
func (c *RepairConfig) GetBuildingMaterial() voxel.Voxel {
	return c.material(func(m *MaterialsConfig) *MaterialConfig { return m.Building })
}

// GetUnknownMaterial returns the voxel written for declassified plants.
func (c *RepairConfig) GetUnknownMaterial() voxel.Voxel {
	return c.material(func(m *MaterialsConfig) *MaterialConfig { return m.Unknown })
}

// GetWaterMaterial returns the voxel written by the flood fill.
func (c *RepairConfig) GetWaterMaterial() voxel.Voxel {
	return c.material(func(m *MaterialsConfig) *MaterialConfig { return m.Water })
}

// GetSeaBottomMaterial returns the voxel written under flooded columns.
func (c *RepairConfig) GetSeaBottomMaterial() voxel.Voxel {
	return c.material(func(m *MaterialsConfig) *MaterialConfig { return m.SeaBottom })
}

// GetRoofMaterial returns the roof voxel, or false when no roof is set.
func (c *RepairConfig) GetRoofMaterial() (voxel.Voxel, bool) {
	if c.Materials == nil || c.Materials.Roof == nil {
		return voxel.Voxel{}, false
	}
	v, err := c.Materials.Roof.Voxel()
	if err != nil {
		return voxel.Voxel{}, false
	}
	return v, true
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
