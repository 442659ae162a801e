package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"shiftgrove/server/models"
)

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
	// writeMutex serializes file writes from marshal through rename
	writeMutex sync.Mutex
}

// JSONData represents the structure of the JSON database
type JSONData struct {
	Players map[string]*models.Player      `json:"players"`
	Worlds  map[string]*models.WorldRecord `json:"worlds"`
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Players: make(map[string]*models.Player),
			Worlds:  make(map[string]*models.WorldRecord),
		},
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		// Create file if it doesn't exist
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

// loadFromFile loads data from the JSON file
func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	// Older files may lack one of the sections
	if js.data.Players == nil {
		js.data.Players = make(map[string]*models.Player)
	}
	if js.data.Worlds == nil {
		js.data.Worlds = make(map[string]*models.WorldRecord)
	}
	return nil
}

// saveToFile saves data to the JSON file
func (js *JSONStore) saveToFile() error {
	js.writeMutex.Lock()
	defer js.writeMutex.Unlock()

	js.mutex.RLock()
	data, err := json.MarshalIndent(js.data, "", "  ")
	js.mutex.RUnlock()
	if err != nil {
		return err
	}

	// Write via a temp file and rename
	tmp := js.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, js.filePath)
}

// SavePlayer saves a player to the store
func (js *JSONStore) SavePlayer(player *models.Player) error {
	cp := *player
	cp.Weapons = append([]string(nil), player.Weapons...)
	cp.Upgrades = append([]string(nil), player.Upgrades...)

	js.mutex.Lock()
	js.data.Players[player.ID] = &cp
	js.mutex.Unlock()

	return js.saveToFile()
}

// LoadPlayer loads a player by ID
func (js *JSONStore) LoadPlayer(playerID string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	player, exists := js.data.Players[playerID]
	if !exists {
		return nil, fmt.Errorf("player with ID %s: %w", playerID, ErrNotFound)
	}

	cp := *player
	return &cp, nil
}

// LoadPlayerByUsername loads a player by username
func (js *JSONStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	for _, player := range js.data.Players {
		if player.Username == username {
			cp := *player
			return &cp, nil
		}
	}

	return nil, fmt.Errorf("player with username %s: %w", username, ErrNotFound)
}

// SaveWorld saves a world record to the store
func (js *JSONStore) SaveWorld(world *models.WorldRecord) error {
	js.mutex.Lock()
	now := time.Now()
	if prev, ok := js.data.Worlds[world.Name]; ok {
		world.CreatedAt = prev.CreatedAt
	} else if world.CreatedAt.IsZero() {
		world.CreatedAt = now
	}
	world.UpdatedAt = now
	cp := *world
	if world.Config != nil {
		cp.Config = world.Config.Clone()
	}
	js.data.Worlds[world.Name] = &cp
	js.mutex.Unlock()

	return js.saveToFile()
}

// LoadWorld loads a world record by name
func (js *JSONStore) LoadWorld(name string) (*models.WorldRecord, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	world, exists := js.data.Worlds[name]
	if !exists {
		return nil, fmt.Errorf("world with name %s: %w", name, ErrNotFound)
	}

	cp := *world
	return &cp, nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
