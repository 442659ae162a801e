package mapgen

import "math"

// Tier identifies a decoration tier
type Tier int

const (
	TierNone Tier = iota
	TierSmall
	TierMedium
	TierLarge
)

func (t Tier) String() string {
	switch t {
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	}
	return "none"
}

// InSafeZone reports whether (x, y) is closer to the origin than radius
func InSafeZone(x, y int, radius float64) bool {
	return math.Hypot(float64(x), float64(y)) < radius
}

// placeDecorations makes one pass over the grass cells. Tiers are tried
// large, medium, small; the first one that places a tile ends the cell.
func placeDecorations(grid *Grid, t terrain, rng Rand) {
	lo, hi := grid.Min(), grid.Max()
	deco := t.cfg.Decorations

	for x := lo.X; x < hi.X; x++ {
		for y := lo.Y; y < hi.Y; y++ {
			if !t.isGrass(x, y) {
				continue
			}
			safe := InSafeZone(x, y, t.cfg.SpawnSafeRadius)

			if !safe {
				if tile, ok := roll(deco.Large, rng); ok {
					grid.Decoration.Set(x, y, tile)
					grid.Collision.Set(x, y, tile)
					continue
				}
			}
			if tile, ok := roll(deco.Medium, rng); ok {
				grid.Decoration.Set(x, y, tile)
				continue
			}
			if tile, ok := roll(deco.Small, rng); ok {
				grid.Decoration.Set(x, y, tile)
			}
		}
	}
}

// roll draws against the tier chance and picks a tile on success.
// Empty tiers consume no draws. An empty tile name counts as a miss.
func roll(tier DecorationTier, rng Rand) (TileID, bool) {
	if len(tier.Tiles) == 0 {
		return "", false
	}
	if rng.Float64() >= tier.Chance {
		return "", false
	}
	tile := tier.Tiles[rng.Intn(len(tier.Tiles))]
	return tile, tile != ""
}

// TierOf reports which tier a decoration tile belongs to
func (c *Config) TierOf(tile TileID) Tier {
	if tile == "" {
		return TierNone
	}
	for _, tier := range []struct {
		t     Tier
		tiles []TileID
	}{
		{TierLarge, c.Decorations.Large.Tiles},
		{TierMedium, c.Decorations.Medium.Tiles},
		{TierSmall, c.Decorations.Small.Tiles},
	} {
		for _, candidate := range tier.tiles {
			if candidate == tile {
				return tier.t
			}
		}
	}
	return TierNone
}
