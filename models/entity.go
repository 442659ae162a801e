package models

import "time"

// Player is a connected survivor and its progression
type Player struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	X                int       `json:"x"`
	Y                int       `json:"y"`
	HP               int       `json:"hp"`
	MaxHP            int       `json:"max_hp"`
	MoveSpeed        float64   `json:"move_speed"`
	DamageMultiplier float64   `json:"damage_multiplier"`
	Weapons          []string  `json:"weapons"`
	Upgrades         []string  `json:"upgrades"` // Applied upgrade keys, oldest first
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Starting stats for a new player
const (
	StartingHP        = 100
	StartingMoveSpeed = 5.0
	StartingWeapon    = "wand"
)

// GetPosition returns the player's tile position
func (p *Player) GetPosition() Position {
	return Position{X: p.X, Y: p.Y}
}

// Position is a tile coordinate
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}
