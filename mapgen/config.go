package mapgen

import (
	"errors"
	"fmt"
)

// NoiseKind selects the coherent noise backend
type NoiseKind string

const (
	NoisePerlin  NoiseKind = "perlin"
	NoiseSimplex NoiseKind = "simplex"
)

// Default values for a freshly authored config
const (
	DefaultWidth           = 100
	DefaultHeight          = 100
	DefaultNoiseScale      = 0.1
	DefaultGrassThreshold  = 0.5
	DefaultSmallChance     = 0.05
	DefaultMediumChance    = 0.02
	DefaultLargeChance     = 0.01
	DefaultSpawnSafeRadius = 5
	DefaultVariationChance = 0.1
	DefaultCameraPadding   = 5.0
	DefaultGrassFillTile   = TileID("grass")
	DefaultDirtFillTile    = TileID("dirt")
)

var (
	ErrMissingConfig = errors.New("mapgen: no map config assigned")
	ErrInvalidConfig = errors.New("mapgen: invalid map config")
)

// DecorationTier is one tier of decorations with its per-tile chance
type DecorationTier struct {
	Tiles  []TileID `yaml:"tiles" json:"tiles"`
	Chance float64  `yaml:"chance" json:"chance"`
}

// Decorations groups the three decoration tiers
type Decorations struct {
	Small  DecorationTier `yaml:"small" json:"small"`
	Medium DecorationTier `yaml:"medium" json:"medium"`
	Large  DecorationTier `yaml:"large" json:"large"`
}

// Config describes how a map is generated. It is authored offline and
// must not change while a generation runs.
type Config struct {
	Width          int       `yaml:"width" json:"width"`
	Height         int       `yaml:"height" json:"height"`
	Noise          NoiseKind `yaml:"noise" json:"noise"`
	NoiseScale     float64   `yaml:"noise_scale" json:"noise_scale"`
	GrassThreshold float64   `yaml:"grass_threshold" json:"grass_threshold"`

	GrassFill        TileID   `yaml:"grass_fill" json:"grass_fill"`
	DirtFill         TileID   `yaml:"dirt_fill" json:"dirt_fill"`
	GrassEdges       []TileID `yaml:"grass_edges" json:"grass_edges"`
	GroundVariations []TileID `yaml:"ground_variations" json:"ground_variations"`

	Decorations     Decorations `yaml:"decorations" json:"decorations"`
	SpawnSafeRadius float64     `yaml:"spawn_safe_radius" json:"spawn_safe_radius"`
}

// DefaultConfig returns the stock 100x100 forest configuration
func DefaultConfig() *Config {
	return &Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Noise:          NoisePerlin,
		NoiseScale:     DefaultNoiseScale,
		GrassThreshold: DefaultGrassThreshold,
		GrassFill:      DefaultGrassFillTile,
		DirtFill:       DefaultDirtFillTile,
		GrassEdges: []TileID{
			"grass_tl", "grass_t", "grass_tr",
			"grass_l", "grass", "grass_r",
			"grass_bl", "grass_b", "grass_br",
		},
		GroundVariations: []TileID{"grass_flowers", "grass_tuft"},
		Decorations: Decorations{
			Small:  DecorationTier{Tiles: []TileID{"bush", "mushroom", "pebble"}, Chance: DefaultSmallChance},
			Medium: DecorationTier{Tiles: []TileID{"stump", "log", "bones"}, Chance: DefaultMediumChance},
			Large:  DecorationTier{Tiles: []TileID{"oak", "pine", "boulder"}, Chance: DefaultLargeChance},
		},
		SpawnSafeRadius: DefaultSpawnSafeRadius,
	}
}

// Validate checks the config invariants
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.NoiseScale <= 0 {
		return fmt.Errorf("%w: noise_scale %v must be positive", ErrInvalidConfig, c.NoiseScale)
	}
	if !unit(c.GrassThreshold) {
		return fmt.Errorf("%w: grass_threshold %v outside [0,1]", ErrInvalidConfig, c.GrassThreshold)
	}
	tiers := map[string]float64{
		"small":  c.Decorations.Small.Chance,
		"medium": c.Decorations.Medium.Chance,
		"large":  c.Decorations.Large.Chance,
	}
	for name, chance := range tiers {
		if !unit(chance) {
			return fmt.Errorf("%w: %s decoration chance %v outside [0,1]", ErrInvalidConfig, name, chance)
		}
	}
	if c.SpawnSafeRadius < 0 {
		return fmt.Errorf("%w: spawn_safe_radius %v is negative", ErrInvalidConfig, c.SpawnSafeRadius)
	}
	switch c.Noise {
	case "", NoisePerlin, NoiseSimplex:
	default:
		return fmt.Errorf("%w: unknown noise backend %q", ErrInvalidConfig, c.Noise)
	}
	return nil
}

// Clone returns a deep copy so a running generation never sees later edits
func (c *Config) Clone() *Config {
	cp := *c
	cp.GrassEdges = append([]TileID(nil), c.GrassEdges...)
	cp.GroundVariations = append([]TileID(nil), c.GroundVariations...)
	cp.Decorations.Small.Tiles = append([]TileID(nil), c.Decorations.Small.Tiles...)
	cp.Decorations.Medium.Tiles = append([]TileID(nil), c.Decorations.Medium.Tiles...)
	cp.Decorations.Large.Tiles = append([]TileID(nil), c.Decorations.Large.Tiles...)
	return &cp
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
