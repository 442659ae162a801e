package mapgen

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
)

// Seed is the single 32-bit value a whole map is derived from
type Seed int32

// noiseOffsetRange bounds the per-generation noise offset on each axis
const noiseOffsetRange = 10000.0

// ErrGenerationInProgress is returned when Generate is re-entered
var ErrGenerationInProgress = errors.New("mapgen: generation already in progress")

// State is the generator lifecycle state
type State int32

const (
	StateUninitialized State = iota
	StateGenerating
	StateGenerated
)

func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateGenerated:
		return "generated"
	}
	return "uninitialized"
}

// Options toggles the optional pipeline steps
type Options struct {
	BoundaryWalls       bool
	CameraBounds        bool
	CameraBoundsPadding float64
}

// DefaultOptions enables walls and camera bounds with the stock padding
func DefaultOptions() Options {
	return Options{
		BoundaryWalls:       true,
		CameraBounds:        true,
		CameraBoundsPadding: DefaultCameraPadding,
	}
}

// Generator produces reproducible tile maps from a seed.
// Generate is the only entry point that mutates the map.
type Generator struct {
	cfg   *Config
	opts  Options
	state atomic.Int32

	mu     sync.RWMutex
	seed   Seed
	grid   *Grid
	walls  []Wall
	bounds *CameraBounds
}

// NewGenerator creates a generator for cfg. A nil cfg is accepted here and
// reported by Generate.
func NewGenerator(cfg *Config, opts Options) *Generator {
	g := &Generator{opts: opts}
	if cfg != nil {
		g.cfg = cfg.Clone()
	}
	return g
}

// Generate discards the current map and builds a new one from seed
func (g *Generator) Generate(seed Seed) (*Grid, error) {
	if g.cfg == nil {
		log.Printf("[mapgen] refusing to generate: %v", ErrMissingConfig)
		return nil, ErrMissingConfig
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	if !g.enter() {
		return nil, ErrGenerationInProgress
	}

	log.Printf("[mapgen] Generating map with seed %d", seed)

	g.mu.Lock()
	g.grid = nil
	g.walls = nil
	g.bounds = nil
	g.mu.Unlock()

	rng := rand.New(rand.NewSource(int64(seed)))
	offsetX := rng.Float64() * noiseOffsetRange
	offsetY := rng.Float64() * noiseOffsetRange

	t := terrain{
		cfg:   g.cfg,
		field: NewNoiseField(g.cfg.Noise, seed, g.cfg.NoiseScale, offsetX, offsetY),
	}
	grid := NewGrid(g.cfg.Width, g.cfg.Height)
	t.buildGround(grid, rng)
	placeDecorations(grid, t, rng)

	var walls []Wall
	if g.opts.BoundaryWalls {
		walls = BuildWalls(g.cfg.Width, g.cfg.Height)
	}
	var bounds *CameraBounds
	if g.opts.CameraBounds {
		b := BuildCameraBounds(g.cfg.Width, g.cfg.Height, g.opts.CameraBoundsPadding)
		bounds = &b
	}

	g.mu.Lock()
	g.seed = seed
	g.grid = grid
	g.walls = walls
	g.bounds = bounds
	g.mu.Unlock()
	g.state.Store(int32(StateGenerated))

	log.Printf("[mapgen] Map generation complete! Size: %dx%d, decorations: %d",
		g.cfg.Width, g.cfg.Height, grid.Decoration.Count())
	return grid, nil
}

// enter moves the generator into the generating state
func (g *Generator) enter() bool {
	for {
		cur := g.state.Load()
		if State(cur) == StateGenerating {
			return false
		}
		if g.state.CompareAndSwap(cur, int32(StateGenerating)) {
			return true
		}
	}
}

// State returns the lifecycle state
func (g *Generator) State() State {
	return State(g.state.Load())
}

// Config returns the generator's config (nil if none was assigned)
func (g *Generator) Config() *Config {
	return g.cfg
}

// Seed returns the seed of the current map
func (g *Generator) Seed() (Seed, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.seed, g.grid != nil
}

// Grid returns the current map, or nil before the first generation
func (g *Generator) Grid() *Grid {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.grid
}

// Walls returns the boundary walls of the current map
func (g *Generator) Walls() []Wall {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Wall(nil), g.walls...)
}

// CameraBounds returns the camera-bounds region of the current map
func (g *Generator) CameraBounds() (CameraBounds, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.bounds == nil {
		return CameraBounds{}, false
	}
	return *g.bounds, true
}

// Summary describes the current map for logs and status endpoints
func (g *Generator) Summary() string {
	seed, ok := g.Seed()
	if !ok {
		return fmt.Sprintf("map %s", g.State())
	}
	grid := g.Grid()
	return fmt.Sprintf("map %s seed=%d size=%dx%d digest=%016x", g.State(), seed, grid.Width, grid.Height, grid.Digest())
}
