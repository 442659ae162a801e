package models

import (
	"time"

	"shiftgrove/server/mapgen"
)

// WorldRecord is what gets persisted for a world: the seed and the config
// it was generated with. Tiles are always rebuilt from these.
type WorldRecord struct {
	Name      string         `json:"name"`
	Seed      int32          `json:"seed"`
	Config    *mapgen.Config `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
