package persistence

import (
	"errors"

	"shiftgrove/server/models"
)

// ErrNotFound is returned when a player or world does not exist
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence
type Storage interface {
	SavePlayer(player *models.Player) error
	LoadPlayer(playerID string) (*models.Player, error)
	LoadPlayerByUsername(username string) (*models.Player, error)
	SaveWorld(world *models.WorldRecord) error
	LoadWorld(name string) (*models.WorldRecord, error)
	Close() error
}
