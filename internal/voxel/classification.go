package voxel

import (
	"fmt"
	"strings"
)

// Classification is the semantic category of a voxel. The ordinal values
// are part of the cache format and must not be reordered.
type Classification uint8

const (
	Unknown Classification = iota
	Ground
	LowVegetation
	MediumVegetation
	HighVegetation
	Building
	LowPoint
	KeyPoint
	Water
	Bridge
	Overlap

	numClassifications
)

var classificationNames = [numClassifications]string{
	Unknown:          "unknown",
	Ground:           "ground",
	LowVegetation:    "low_vegetation",
	MediumVegetation: "medium_vegetation",
	HighVegetation:   "high_vegetation",
	Building:         "building",
	LowPoint:         "low_point",
	KeyPoint:         "key_point",
	Water:            "water",
	Bridge:           "bridge",
	Overlap:          "overlap",
}

// Valid reports whether c is one of the defined classifications.
func (c Classification) Valid() bool {
	return c < numClassifications
}

// IsPlant reports whether c is any vegetation tier.
func (c Classification) IsPlant() bool {
	return c == LowVegetation || c == MediumVegetation || c == HighVegetation
}

// Importance is the weight used when several classifications compete for
// one cell in a majority vote.
func (c Classification) Importance() int {
	switch c {
	case Bridge:
		return 60
	case Water:
		return 50
	case Building:
		return 30
	case KeyPoint, Unknown:
		return 1
	default:
		return 20
	}
}

func (c Classification) String() string {
	if !c.Valid() {
		return fmt.Sprintf("classification(%d)", uint8(c))
	}
	return classificationNames[c]
}

// ParseClassification accepts the snake_case names printed by String.
func ParseClassification(s string) (Classification, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range classificationNames {
		if n == name {
			return Classification(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown classification %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid classification %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Classification) UnmarshalText(text []byte) error {
	parsed, err := ParseClassification(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
