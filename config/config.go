package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"shiftgrove/server/mapgen"
)

// Defaults used when the environment leaves a setting empty
const (
	DefaultPort        = "8080"
	DefaultDBFile      = "db.json"
	DefaultDatabaseURL = "host=localhost user=shiftgrove password=shiftgrove dbname=shiftgrove sslmode=disable"
	DefaultWorldName   = "forest"
	DefaultTickRate    = 50 * time.Millisecond
	DefaultBossTimer   = 300 * time.Second
	DefaultSpawnRadius = 10.0
)

// Server holds the process settings read from the environment
type Server struct {
	Port        string
	DBType      string
	DatabaseURL string
	DBFile      string

	WorldName     string
	MapConfigPath string
	// FixedSeed pins the map seed; nil means the authority draws one
	FixedSeed *int32
	// AdminToken guards the regenerate and boss endpoints; empty disables them
	AdminToken string

	TickRate    time.Duration
	BossTimer   time.Duration
	SpawnRadius float64
}

// FromEnv reads the server settings, applying defaults for unset variables
func FromEnv() (*Server, error) {
	cfg := &Server{
		Port:          getenv("PORT", DefaultPort),
		DBType:        os.Getenv("DB_TYPE"),
		DatabaseURL:   getenv("DATABASE_URL", DefaultDatabaseURL),
		DBFile:        getenv("DB_FILE", DefaultDBFile),
		WorldName:     getenv("WORLD_NAME", DefaultWorldName),
		MapConfigPath: os.Getenv("MAP_CONFIG"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		TickRate:      DefaultTickRate,
		BossTimer:     DefaultBossTimer,
		SpawnRadius:   DefaultSpawnRadius,
	}

	if v := os.Getenv("MAP_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid MAP_SEED %q: %w", v, err)
		}
		s := int32(seed)
		cfg.FixedSeed = &s
	}
	if v := os.Getenv("TICK_RATE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid TICK_RATE %q", v)
		}
		cfg.TickRate = d
	}
	if v := os.Getenv("BOSS_TIMER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid BOSS_TIMER %q", v)
		}
		cfg.BossTimer = d
	}
	if v := os.Getenv("SPAWN_RADIUS"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return nil, fmt.Errorf("invalid SPAWN_RADIUS %q", v)
		}
		cfg.SpawnRadius = r
	}

	return cfg, nil
}

// LoadMapConfig reads a YAML map config. Fields missing from the file keep
// their default values. An empty path yields the default config.
func LoadMapConfig(path string) (*mapgen.Config, error) {
	cfg := mapgen.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse map config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
