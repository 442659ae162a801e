// Package upgrades holds the level-up upgrades and the registries that
// build them from their string keys.
package upgrades

import (
	"errors"
	"fmt"

	"shiftgrove/server/models"
)

var (
	ErrUnknownUpgrade = errors.New("unknown upgrade")
	ErrUnknownWeapon  = errors.New("unknown weapon")
)

// Upgrade changes a player when picked on level up
type Upgrade interface {
	Key() string
	Name() string
	Description() string
	Apply(p *models.Player) error
}

// Factory builds an upgrade
type Factory func() Upgrade

// Registry maps upgrade keys to factories, keeping registration order
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds an upgrade; keys must be unique
func (r *Registry) Register(key string, f Factory) error {
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("upgrade %q already registered", key)
	}
	r.factories[key] = f
	r.order = append(r.order, key)
	return nil
}

// Build constructs the upgrade for key
func (r *Registry) Build(key string) (Upgrade, error) {
	f, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("upgrade %q: %w", key, ErrUnknownUpgrade)
	}
	return f(), nil
}

// Keys lists the upgrades in registration order
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Apply builds and applies the upgrade for key
func (r *Registry) Apply(key string, p *models.Player) error {
	u, err := r.Build(key)
	if err != nil {
		return err
	}
	return u.Apply(p)
}

// StatType selects the stat a StatUpgrade changes
type StatType int

const (
	StatMaxHealth StatType = iota
	StatMoveSpeed
	StatDamageMultiplier
	StatHeal
)

// StatUpgrade adds Value to one stat
type StatUpgrade struct {
	key, name, description string
	Stat                   StatType
	Value                  float64
}

func (u StatUpgrade) Key() string         { return u.key }
func (u StatUpgrade) Name() string        { return u.name }
func (u StatUpgrade) Description() string { return u.description }

// Apply changes the player's stat
func (u StatUpgrade) Apply(p *models.Player) error {
	switch u.Stat {
	case StatMaxHealth:
		p.MaxHP += int(u.Value)
		p.HP += int(u.Value)
	case StatHeal:
		p.HP = min(p.HP+int(u.Value), p.MaxHP)
	case StatMoveSpeed:
		p.MoveSpeed += u.Value
	case StatDamageMultiplier:
		p.DamageMultiplier += u.Value
	default:
		return fmt.Errorf("upgrade %q: unknown stat %d", u.key, u.Stat)
	}
	return nil
}

// WeaponUpgrade gives the player another weapon; duplicates are allowed
type WeaponUpgrade struct {
	key, name, description string
	Weapon                 string
	weapons                *WeaponRegistry
}

func (u WeaponUpgrade) Key() string         { return u.key }
func (u WeaponUpgrade) Name() string        { return u.name }
func (u WeaponUpgrade) Description() string { return u.description }

// Apply adds the weapon after checking its behaviour exists
func (u WeaponUpgrade) Apply(p *models.Player) error {
	if _, err := u.weapons.Build(u.Weapon); err != nil {
		return fmt.Errorf("upgrade %q: %w", u.key, err)
	}
	p.Weapons = append(p.Weapons, u.Weapon)
	return nil
}

// Default registers the stock upgrade pool
func Default(weapons *WeaponRegistry) *Registry {
	r := NewRegistry()

	stats := []StatUpgrade{
		{key: "max_health", name: "Vitality", description: "+10 max health", Stat: StatMaxHealth, Value: 10},
		{key: "move_speed", name: "Swift Boots", description: "+10% move speed", Stat: StatMoveSpeed, Value: 0.5},
		{key: "damage", name: "Sharpened Edge", description: "+10% damage", Stat: StatDamageMultiplier, Value: 0.1},
		{key: "heal", name: "Bandage", description: "Restore 30 health", Stat: StatHeal, Value: 30},
	}
	for _, s := range stats {
		s := s
		r.Register(s.key, func() Upgrade { return s })
	}

	for _, key := range weapons.Keys() {
		w := WeaponUpgrade{
			key:         "weapon_" + key,
			name:        "Weapon: " + key,
			description: "Adds a " + key,
			Weapon:      key,
			weapons:     weapons,
		}
		r.Register(w.key, func() Upgrade { return w })
	}

	return r
}
