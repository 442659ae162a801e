package mapgen

import "testing"

func TestEdgeIndex(t *testing.T) {
	tests := []struct {
		name                     string
		top, bottom, left, right bool
		want                     int
	}{
		{"surrounded", true, true, true, true, EdgeCenter},
		{"top-left corner", false, true, false, true, EdgeTopLeft},
		{"top-right corner", false, true, true, false, EdgeTopRight},
		{"bottom-left corner", true, false, false, true, EdgeBottomLeft},
		{"bottom-right corner", true, false, true, false, EdgeBottomRight},
		{"top edge", false, true, true, true, EdgeTop},
		{"bottom edge", true, false, true, true, EdgeBottom},
		{"left edge", true, true, false, true, EdgeLeft},
		{"right edge", true, true, true, false, EdgeRight},
		{"isolated", false, false, false, false, EdgeCenter},
		{"single neighbour", true, false, false, false, EdgeCenter},
		{"vertical strip", true, true, false, false, EdgeCenter},
		{"horizontal strip", false, false, true, true, EdgeCenter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EdgeIndex(tt.top, tt.bottom, tt.left, tt.right); got != tt.want {
				t.Fatalf("EdgeIndex(%v,%v,%v,%v) = %d, want %d", tt.top, tt.bottom, tt.left, tt.right, got, tt.want)
			}
		})
	}
}

func TestEdgePassOnlyTouchesGrass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 40, 40
	grid := generate(t, cfg, 2024)

	edges := map[TileID]bool{}
	for _, e := range cfg.GrassEdges {
		edges[e] = true
	}
	grass, dirt := 0, 0
	grid.Ground.Each(func(p Point, tile TileID) {
		switch {
		case tile == cfg.DirtFill:
			dirt++
		case edges[tile]:
			grass++
		default:
			t.Fatalf("cell %v holds %q, expected an edge tile or dirt", p, tile)
		}
	})
	if grass == 0 || dirt == 0 {
		t.Fatalf("expected a mix of grass and dirt, got %d grass and %d dirt", grass, dirt)
	}
}

func TestUniformFieldUsesCenterTile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroundVariations = nil

	grid := NewGrid(6, 6)
	constTerrain(cfg, 1).buildGround(grid, &scriptedRand{})

	grid.Ground.Each(func(p Point, tile TileID) {
		if tile != cfg.GrassEdges[EdgeCenter] {
			t.Fatalf("cell %v: got %q, want centre tile", p, tile)
		}
	})
}

func TestVariationTilesWithoutEdges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrassEdges = nil
	cfg.GroundVariations = []TileID{"flowers"}

	grid := NewGrid(2, 2)
	// First cell rolls under the 10% variation chance
	constTerrain(cfg, 1).buildGround(grid, &scriptedRand{draws: []float64{0.05, 0.5, 0.5, 0.5}})

	if got := grid.Ground.Get(-1, -1); got != "flowers" {
		t.Fatalf("expected variation tile at first cell, got %q", got)
	}
	if got := grid.Ground.Get(0, 0); got != cfg.GrassFill {
		t.Fatalf("expected grass fill at last cell, got %q", got)
	}
}
