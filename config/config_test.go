package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shiftgrove/server/mapgen"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMapConfigDefaults(t *testing.T) {
	cfg, err := LoadMapConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Width != mapgen.DefaultWidth || cfg.GrassThreshold != mapgen.DefaultGrassThreshold {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestLoadMapConfigOverrides(t *testing.T) {
	path := writeFile(t, `
width: 40
height: 30
noise: simplex
grass_threshold: 0.4
ground_variations: []
decorations:
  large:
    tiles: [rock]
    chance: 0.03
`)
	cfg, err := LoadMapConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Fatalf("expected 40x30, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Noise != mapgen.NoiseSimplex {
		t.Fatalf("expected simplex noise, got %q", cfg.Noise)
	}
	if len(cfg.GroundVariations) != 0 {
		t.Fatalf("expected variations cleared, got %v", cfg.GroundVariations)
	}
	if got := cfg.Decorations.Large.Tiles; len(got) != 1 || got[0] != "rock" {
		t.Fatalf("expected large tiles [rock], got %v", got)
	}
	// Untouched fields keep their defaults
	if cfg.NoiseScale != mapgen.DefaultNoiseScale || cfg.Decorations.Small.Chance != mapgen.DefaultSmallChance {
		t.Fatalf("defaults lost: scale=%v small=%v", cfg.NoiseScale, cfg.Decorations.Small.Chance)
	}
}

func TestLoadMapConfigRejectsInvalid(t *testing.T) {
	path := writeFile(t, "width: 0\n")
	if _, err := LoadMapConfig(path); !errors.Is(err, mapgen.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMapConfigStockFile(t *testing.T) {
	cfg, err := LoadMapConfig(filepath.Join("..", "configs", "forest.yaml"))
	if err != nil {
		t.Fatalf("load stock config: %v", err)
	}
	if len(cfg.GrassEdges) != mapgen.EdgeTileCount {
		t.Fatalf("expected %d edge tiles, got %d", mapgen.EdgeTileCount, len(cfg.GrassEdges))
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAP_SEED", "-42")
	t.Setenv("TICK_RATE", "20ms")
	t.Setenv("BOSS_TIMER", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.FixedSeed == nil || *cfg.FixedSeed != -42 {
		t.Fatalf("expected fixed seed -42, got %v", cfg.FixedSeed)
	}
	if cfg.TickRate != 20*time.Millisecond {
		t.Fatalf("expected 20ms tick, got %v", cfg.TickRate)
	}
	if cfg.BossTimer != DefaultBossTimer {
		t.Fatalf("expected default boss timer, got %v", cfg.BossTimer)
	}
}

func TestFromEnvRejectsBadSeed(t *testing.T) {
	t.Setenv("MAP_SEED", "99999999999")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for out-of-range seed")
	}
}
