package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"shiftgrove/server/models"
	"shiftgrove/server/persistence"
	"shiftgrove/server/upgrades"
)

// Player name rules
const (
	MinNameLength = 2
	MaxNameLength = 12
	UnknownName   = "Unknown Survivor"
)

var ErrInvalidName = errors.New("player name must be 2-12 letters, digits or underscores")

// PlayerService manages player-related operations
type PlayerService struct {
	players  map[string]*models.Player
	world    *WorldService
	db       persistence.Storage
	upgrades *upgrades.Registry
	mutex    sync.RWMutex
}

// NewPlayerService creates a new player service
func NewPlayerService(world *WorldService, db persistence.Storage, registry *upgrades.Registry) *PlayerService {
	return &PlayerService{
		players:  make(map[string]*models.Player),
		world:    world,
		db:       db,
		upgrades: registry,
	}
}

// SanitizeName keeps letters, digits and underscores and checks the length
func SanitizeName(name string) (string, error) {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		}
	}
	clean := sb.String()
	if n := len([]rune(clean)); n < MinNameLength || n > MaxNameLength {
		return "", ErrInvalidName
	}
	return clean, nil
}

// GetOrCreatePlayer gets an existing player or creates a new one, then
// places the player on a free spawn tile
func (ps *PlayerService) GetOrCreatePlayer(username string) (*models.Player, error) {
	name, err := SanitizeName(username)
	if err != nil {
		return nil, err
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	// Check if player already exists in memory
	for _, player := range ps.players {
		if player.Username == name {
			return player, nil
		}
	}

	spawn, err := ps.world.SpawnPosition()
	if err != nil {
		return nil, fmt.Errorf("failed to pick spawn for %s: %w", name, err)
	}

	// Try to load player from database
	player, err := ps.db.LoadPlayerByUsername(name)
	switch {
	case err == nil:
		player.X, player.Y = spawn.X, spawn.Y
		ps.restore(player)
	case errors.Is(err, persistence.ErrNotFound):
		player = newPlayer(name, spawn)
		if err := ps.db.SavePlayer(player); err != nil {
			return nil, fmt.Errorf("failed to save new player to database: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load player %s: %w", name, err)
	}

	log.Printf("Approved %s at (%d,%d)", player.Username, player.X, player.Y)

	ps.players[player.ID] = player
	ps.world.AddPlayer(player)
	return player, nil
}

func newPlayer(name string, spawn models.Position) *models.Player {
	now := time.Now()
	return &models.Player{
		ID:               uuid.NewString(),
		Username:         name,
		X:                spawn.X,
		Y:                spawn.Y,
		HP:               models.StartingHP,
		MaxHP:            models.StartingHP,
		MoveSpeed:        models.StartingMoveSpeed,
		DamageMultiplier: 1,
		Weapons:          []string{models.StartingWeapon},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// restore rebuilds a stored player's stats by replaying its upgrade history
func (ps *PlayerService) restore(player *models.Player) {
	history := player.Upgrades
	fresh := newPlayer(player.Username, models.Position{X: player.X, Y: player.Y})

	player.MaxHP = fresh.MaxHP
	player.HP = fresh.HP
	player.MoveSpeed = fresh.MoveSpeed
	player.DamageMultiplier = fresh.DamageMultiplier
	player.Weapons = fresh.Weapons
	player.Upgrades = nil

	for _, key := range history {
		if err := ps.upgrades.Apply(key, player); err != nil {
			log.Printf("[Upgrade] skipping %q for %s: %v", key, player.Username, err)
			continue
		}
		player.Upgrades = append(player.Upgrades, key)
	}
	log.Printf("[Upgrade] Restored %d upgrades for %s", len(player.Upgrades), player.Username)
}

// GetPlayer retrieves a player by ID
func (ps *PlayerService) GetPlayer(playerID string) (*models.Player, error) {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	player, exists := ps.players[playerID]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// PlayerName returns the name for an ID, falling back to UnknownName
func (ps *PlayerService) PlayerName(playerID string) string {
	if p, err := ps.GetPlayer(playerID); err == nil {
		return p.Username
	}
	return UnknownName
}

// ApplyUpgrade applies the upgrade key to a player and records it in the history
func (ps *PlayerService) ApplyUpgrade(playerID, key string) (*models.Player, error) {
	var snapshot models.Player
	err := ps.world.UpdatePlayer(playerID, func(p *models.Player) error {
		if err := ps.upgrades.Apply(key, p); err != nil {
			return err
		}
		p.Upgrades = append(p.Upgrades, key)
		p.UpdatedAt = time.Now()
		snapshot = *p
		snapshot.Upgrades = append([]string(nil), p.Upgrades...)
		snapshot.Weapons = append([]string(nil), p.Weapons...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Upgrade] Player %s picked %s", snapshot.Username, key)

	if err := ps.db.SavePlayer(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to save upgraded player: %w", err)
	}
	return &snapshot, nil
}

// Disconnect saves the player and removes it from the world
func (ps *PlayerService) Disconnect(playerID string) error {
	ps.mutex.Lock()
	player, exists := ps.players[playerID]
	delete(ps.players, playerID)
	ps.mutex.Unlock()

	if !exists {
		return ErrPlayerNotFound
	}

	var snapshot models.Player
	ps.world.UpdatePlayer(playerID, func(p *models.Player) error {
		snapshot = *p
		return nil
	})
	ps.world.RemovePlayer(playerID)

	if snapshot.ID == "" {
		snapshot = *player
	}
	if err := ps.db.SavePlayer(&snapshot); err != nil {
		return fmt.Errorf("failed to save player on disconnect: %w", err)
	}
	return nil
}
