package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"shiftgrove/server/mapgen"
	"shiftgrove/server/messages"
	"shiftgrove/server/models"
	"shiftgrove/server/persistence"
	"shiftgrove/server/replica"
)

// spawnAttempts bounds the random spawn search before falling back to a scan
const spawnAttempts = 64

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrBlocked          = errors.New("cannot walk into a blocked tile")
	ErrNoFreeTile       = errors.New("no free tile to spawn on")
)

// SeedState is the replicated map seed. Digest fingerprints the map built
// from Seed so readers can check their local build. Version increases with
// every published seed.
type SeedState struct {
	World   string
	Seed    mapgen.Seed
	Version uint64
	Digest  uint64
	Width   int
	Height  int
}

// Message converts the state into its wire form
func (s SeedState) Message(set bool) messages.SeedMessage {
	return messages.SeedMessage{
		World:   s.World,
		Seed:    int32(s.Seed),
		Set:     set,
		Version: s.Version,
		Digest:  fmt.Sprintf("%016x", s.Digest),
		Width:   s.Width,
		Height:  s.Height,
	}
}

// WorldOptions configures the authoritative world
type WorldOptions struct {
	Name string
	// FixedSeed pins the seed; nil draws a random one
	FixedSeed   *int32
	SpawnRadius float64
	Generator   mapgen.Options
}

var directions = map[string]models.Position{
	"north":     {X: 0, Y: 1},
	"south":     {X: 0, Y: -1},
	"east":      {X: 1, Y: 0},
	"west":      {X: -1, Y: 0},
	"northeast": {X: 1, Y: 1},
	"northwest": {X: -1, Y: 1},
	"southeast": {X: 1, Y: -1},
	"southwest": {X: -1, Y: -1},
}

// WorldService is the authority for the map and player positions.
// It is the only writer of the replicated seed.
type WorldService struct {
	opts WorldOptions
	cfg  *mapgen.Config
	db   persistence.Storage

	// generator holds the published map; replaced whole on regeneration
	generator *mapgen.Generator
	genMutex  sync.RWMutex

	seed       *replica.Value[SeedState]
	seedWriter *replica.Writer[SeedState]

	// regenMutex serializes generation requests
	regenMutex sync.Mutex

	players    map[string]*models.Player
	worldMutex sync.RWMutex

	rng      *rand.Rand
	rngMutex sync.Mutex
}

// NewWorldService creates the world, reusing the persisted seed if the world
// already exists, and generates the map
func NewWorldService(db persistence.Storage, cfg *mapgen.Config, opts WorldOptions) (*WorldService, error) {
	seed, seedWriter := replica.New[SeedState]()
	ws := &WorldService{
		opts:       opts,
		cfg:        cfg,
		db:         db,
		seed:       seed,
		seedWriter: seedWriter,
		players:    make(map[string]*models.Player),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := ws.initializeWorld(); err != nil {
		return nil, err
	}
	return ws, nil
}

// initializeWorld picks the seed and builds the first map
func (ws *WorldService) initializeWorld() error {
	var seed mapgen.Seed
	switch record, err := ws.db.LoadWorld(ws.opts.Name); {
	case ws.opts.FixedSeed != nil:
		seed = mapgen.Seed(*ws.opts.FixedSeed)
		log.Printf("[world] %s: using fixed seed %d", ws.opts.Name, seed)
	case err == nil:
		seed = mapgen.Seed(record.Seed)
		log.Printf("[world] %s: restored seed %d", ws.opts.Name, seed)
	case errors.Is(err, persistence.ErrNotFound):
		seed = ws.drawSeed()
		log.Printf("[world] %s: new world, drew seed %d", ws.opts.Name, seed)
	default:
		return fmt.Errorf("failed to load world %s: %w", ws.opts.Name, err)
	}

	_, err := ws.generate(seed)
	return err
}

// Regenerate replaces the map with one built from a fresh random seed
func (ws *WorldService) Regenerate() (SeedState, error) {
	return ws.generate(ws.drawSeed())
}

// RegenerateWithSeed replaces the map with one built from seed
func (ws *WorldService) RegenerateWithSeed(seed mapgen.Seed) (SeedState, error) {
	return ws.generate(seed)
}

// generate builds the map on a fresh generator, persists the seed and only
// then swaps the map in and publishes the seed. A failure leaves the current
// map and seed untouched.
func (ws *WorldService) generate(seed mapgen.Seed) (SeedState, error) {
	ws.regenMutex.Lock()
	defer ws.regenMutex.Unlock()

	next := mapgen.NewGenerator(ws.cfg, ws.opts.Generator)
	grid, err := next.Generate(seed)
	if err != nil {
		return SeedState{}, fmt.Errorf("failed to generate world %s: %w", ws.opts.Name, err)
	}

	record := &models.WorldRecord{
		Name:   ws.opts.Name,
		Seed:   int32(seed),
		Config: next.Config(),
	}
	if err := ws.db.SaveWorld(record); err != nil {
		return SeedState{}, fmt.Errorf("failed to save world %s: %w", ws.opts.Name, err)
	}

	ws.genMutex.Lock()
	ws.generator = next
	ws.genMutex.Unlock()

	state := SeedState{
		World:   ws.opts.Name,
		Seed:    seed,
		Version: ws.seed.Version() + 1,
		Digest:  grid.Digest(),
		Width:   grid.Width,
		Height:  grid.Height,
	}
	ws.relocateBlockedPlayers(grid)
	ws.seedWriter.Set(state)

	log.Printf("[world] %s", next.Summary())
	return state, nil
}

func (ws *WorldService) drawSeed() mapgen.Seed {
	ws.rngMutex.Lock()
	defer ws.rngMutex.Unlock()
	return mapgen.Seed(int32(ws.rng.Uint32()))
}

// Seed returns the replicated seed
func (ws *WorldService) Seed() *replica.Value[SeedState] {
	return ws.seed
}

// Generator exposes the generator holding the published map
func (ws *WorldService) Generator() *mapgen.Generator {
	ws.genMutex.RLock()
	defer ws.genMutex.RUnlock()
	return ws.generator
}

// Grid returns the current map
func (ws *WorldService) Grid() *mapgen.Grid {
	if g := ws.Generator(); g != nil {
		return g.Grid()
	}
	return nil
}

// Name returns the world name
func (ws *WorldService) Name() string {
	return ws.opts.Name
}

// SpawnPosition picks a random free tile within the spawn radius
func (ws *WorldService) SpawnPosition() (models.Position, error) {
	grid := ws.Grid()
	if grid == nil {
		return models.Position{}, ErrNoFreeTile
	}

	ws.rngMutex.Lock()
	for i := 0; i < spawnAttempts; i++ {
		// Uniform point inside the circle
		angle := ws.rng.Float64() * 2 * math.Pi
		dist := ws.opts.SpawnRadius * math.Sqrt(ws.rng.Float64())
		x := int(math.Floor(dist * math.Cos(angle)))
		y := int(math.Floor(dist * math.Sin(angle)))
		if !grid.Blocked(x, y) {
			ws.rngMutex.Unlock()
			return models.Position{X: x, Y: y}, nil
		}
	}
	ws.rngMutex.Unlock()

	return nearestFree(grid, 0, 0)
}

// nearestFree scans outward from (x, y) for an unblocked tile
func nearestFree(grid *mapgen.Grid, x, y int) (models.Position, error) {
	lo, hi := grid.Min(), grid.Max()
	maxRing := max(hi.X-lo.X, hi.Y-lo.Y)
	for r := 0; r <= maxRing; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if !grid.Blocked(x+dx, y+dy) {
					return models.Position{X: x + dx, Y: y + dy}, nil
				}
			}
		}
	}
	return models.Position{}, ErrNoFreeTile
}

// relocateBlockedPlayers moves players whose tile became blocked after regeneration
func (ws *WorldService) relocateBlockedPlayers(grid *mapgen.Grid) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	for _, p := range ws.players {
		at := p.GetPosition()
		if !grid.Blocked(at.X, at.Y) {
			continue
		}
		pos, err := nearestFree(grid, at.X, at.Y)
		if err != nil {
			continue
		}
		p.X, p.Y = pos.X, pos.Y
	}
}

// AddPlayer adds a player to the world
func (ws *WorldService) AddPlayer(player *models.Player) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	ws.players[player.ID] = player
}

// RemovePlayer removes a player from the world
func (ws *WorldService) RemovePlayer(playerID string) {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	delete(ws.players, playerID)
}

// MovePlayer moves a player one tile, refusing blocked tiles and the map edge
func (ws *WorldService) MovePlayer(playerID string, direction string) (*models.Position, error) {
	delta, ok := directions[direction]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	grid := ws.Grid()

	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	player, exists := ws.players[playerID]
	if !exists {
		return nil, ErrPlayerNotFound
	}

	newPos := models.Position{X: player.X + delta.X, Y: player.Y + delta.Y}
	if grid == nil || grid.Blocked(newPos.X, newPos.Y) {
		return nil, ErrBlocked
	}

	player.X = newPos.X
	player.Y = newPos.Y
	player.UpdatedAt = time.Now()

	return &newPos, nil
}

// UpdatePlayer runs fn on a player while holding the world lock
func (ws *WorldService) UpdatePlayer(playerID string, fn func(p *models.Player) error) error {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	player, exists := ws.players[playerID]
	if !exists {
		return ErrPlayerNotFound
	}
	return fn(player)
}

// Teleport places a player on pos
func (ws *WorldService) Teleport(playerID string, pos models.Position) error {
	ws.worldMutex.Lock()
	defer ws.worldMutex.Unlock()

	player, exists := ws.players[playerID]
	if !exists {
		return ErrPlayerNotFound
	}
	player.X, player.Y = pos.X, pos.Y
	return nil
}

// ScatterPlayers sends every player to a fresh spawn position
func (ws *WorldService) ScatterPlayers() {
	for _, id := range ws.playerIDs() {
		pos, err := ws.SpawnPosition()
		if err != nil {
			log.Printf("[world] cannot respawn %s: %v", id, err)
			continue
		}
		ws.Teleport(id, pos)
	}
}

// GatherPlayers moves every player onto the free tile nearest to (x, y)
func (ws *WorldService) GatherPlayers(x, y int) {
	grid := ws.Grid()
	if grid == nil {
		return
	}
	pos, err := nearestFree(grid, x, y)
	if err != nil {
		return
	}
	for _, id := range ws.playerIDs() {
		ws.Teleport(id, pos)
	}
}

func (ws *WorldService) playerIDs() []string {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()

	ids := make([]string, 0, len(ws.players))
	for id := range ws.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetWorldUpdate returns the view of all players in the world
func (ws *WorldService) GetWorldUpdate() *messages.UpdateMessage {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()

	players := make([]messages.PlayerView, 0, len(ws.players))
	for _, p := range ws.players {
		players = append(players, playerView(p))
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	return &messages.UpdateMessage{Players: players}
}

// PlayerView returns a snapshot of a player's public view
func (ws *WorldService) PlayerView(playerID string) (messages.PlayerView, error) {
	ws.worldMutex.RLock()
	defer ws.worldMutex.RUnlock()

	player, exists := ws.players[playerID]
	if !exists {
		return messages.PlayerView{}, ErrPlayerNotFound
	}
	return playerView(player), nil
}

func playerView(p *models.Player) messages.PlayerView {
	return messages.PlayerView{
		ID:       p.ID,
		Username: p.Username,
		X:        p.X,
		Y:        p.Y,
		HP:       p.HP,
		MaxHP:    p.MaxHP,
		Speed:    p.MoveSpeed,
	}
}

// Helper function to calculate absolute value
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
