package mapgen

import "testing"

type constSource float64

func (c constSource) eval(_, _ float64) float64 { return float64(c) }

// scriptedRand replays fixed draws; Intn always picks the first element
type scriptedRand struct {
	draws []float64
	used  int
}

func (r *scriptedRand) Float64() float64 {
	if r.used >= len(r.draws) {
		return 0
	}
	v := r.draws[r.used]
	r.used++
	return v
}

func (r *scriptedRand) Intn(int) int { return 0 }

func constTerrain(cfg *Config, value float64) terrain {
	return terrain{cfg: cfg, field: &NoiseField{src: constSource(value), scale: 1}}
}

func TestSafeZoneFallsBackToLowerTiers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 20, 20
	cfg.SpawnSafeRadius = 5

	grid := NewGrid(cfg.Width, cfg.Height)
	// Every draw succeeds
	placeDecorations(grid, constTerrain(cfg, 1), &scriptedRand{})

	for x := -10; x < 10; x++ {
		for y := -10; y < 10; y++ {
			tile := grid.Decoration.Get(x, y)
			want := TierLarge
			if InSafeZone(x, y, cfg.SpawnSafeRadius) {
				want = TierMedium
			}
			if got := cfg.TierOf(tile); got != want {
				t.Fatalf("cell (%d,%d): got %s tier, want %s", x, y, got, want)
			}
		}
	}
}

func TestSafeZoneCellAtDistanceOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnSafeRadius = 5
	cfg.Decorations.Large.Chance = 1
	cfg.Decorations.Medium.Chance = 0.5
	cfg.Decorations.Small.Chance = 0.5

	// A 2x2 grid keeps every cell within distance 1.5 of the origin
	grid := NewGrid(2, 2)
	// Medium misses, small hits, for each of the four cells
	rng := &scriptedRand{draws: []float64{0.9, 0.1, 0.9, 0.1, 0.9, 0.1, 0.9, 0.1}}
	placeDecorations(grid, constTerrain(cfg, 1), rng)

	if grid.Collision.Count() != 0 {
		t.Fatalf("large decoration placed inside the safe zone")
	}
	grid.Decoration.Each(func(p Point, tile TileID) {
		if got := cfg.TierOf(tile); got != TierSmall {
			t.Fatalf("cell %v: got %s tier, want small", p, got)
		}
	})
	if grid.Decoration.Count() != 4 {
		t.Fatalf("expected 4 small decorations, got %d", grid.Decoration.Count())
	}
	if rng.used != 8 {
		t.Fatalf("expected 8 draws (no large roll in the safe zone), got %d", rng.used)
	}
}

func TestFirstSuccessfulTierWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnSafeRadius = 0
	cfg.Decorations.Large.Chance = 0.5
	cfg.Decorations.Medium.Chance = 0.5
	cfg.Decorations.Small.Chance = 0.5

	grid := NewGrid(2, 2)
	// cell 1: large hits; cell 2: large misses, medium hits;
	// cell 3: all miss; cell 4: small hits
	rng := &scriptedRand{draws: []float64{
		0.1,
		0.9, 0.1,
		0.9, 0.9, 0.9,
		0.9, 0.9, 0.1,
	}}
	placeDecorations(grid, constTerrain(cfg, 1), rng)

	want := []Tier{TierLarge, TierMedium, TierNone, TierSmall}
	i := 0
	for x := -1; x < 1; x++ {
		for y := -1; y < 1; y++ {
			if got := cfg.TierOf(grid.Decoration.Get(x, y)); got != want[i] {
				t.Fatalf("cell (%d,%d): got %s tier, want %s", x, y, got, want[i])
			}
			i++
		}
	}
	if grid.Collision.Count() != 1 {
		t.Fatalf("expected exactly one collision cell, got %d", grid.Collision.Count())
	}
}

func TestDirtNeverDecorates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decorations.Small.Chance = 1

	grid := NewGrid(10, 10)
	rng := &scriptedRand{}
	placeDecorations(grid, constTerrain(cfg, 0), rng)

	if grid.Decoration.Count() != 0 {
		t.Fatalf("expected no decorations on dirt, got %d", grid.Decoration.Count())
	}
	if rng.used != 0 {
		t.Fatalf("dirt cells consumed %d draws", rng.used)
	}
}

func TestEmptyTileNameIsAMiss(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnSafeRadius = 0
	cfg.Decorations.Large = DecorationTier{Tiles: []TileID{""}, Chance: 1}
	cfg.Decorations.Medium = DecorationTier{Tiles: []TileID{"stump"}, Chance: 1}

	grid := NewGrid(2, 2)
	placeDecorations(grid, constTerrain(cfg, 1), &scriptedRand{})

	if grid.Collision.Count() != 0 {
		t.Fatalf("empty large tile should not block")
	}
	if got := grid.Decoration.Get(0, 0); got != "stump" {
		t.Fatalf("expected fallback to medium tier, got %q", got)
	}
}
