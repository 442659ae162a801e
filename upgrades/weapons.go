package upgrades

import (
	"fmt"
	"sort"
	"time"
)

// Weapon is a weapon behaviour a player can carry
type Weapon interface {
	Key() string
	Damage(multiplier float64) int
	Cooldown() time.Duration
}

// WeaponFactory builds a fresh weapon behaviour
type WeaponFactory func() Weapon

// WeaponRegistry maps behaviour keys to weapon factories
type WeaponRegistry struct {
	factories map[string]WeaponFactory
}

// NewWeaponRegistry creates an empty weapon registry
func NewWeaponRegistry() *WeaponRegistry {
	return &WeaponRegistry{factories: make(map[string]WeaponFactory)}
}

// Register adds a weapon behaviour; keys must be unique
func (r *WeaponRegistry) Register(key string, f WeaponFactory) error {
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("weapon %q already registered", key)
	}
	r.factories[key] = f
	return nil
}

// Build constructs the weapon behaviour for key
func (r *WeaponRegistry) Build(key string) (Weapon, error) {
	f, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("weapon %q: %w", key, ErrUnknownWeapon)
	}
	return f(), nil
}

// Keys lists the registered behaviours in sorted order
func (r *WeaponRegistry) Keys() []string {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// basicWeapon is a weapon defined purely by numbers
type basicWeapon struct {
	key      string
	damage   int
	cooldown time.Duration
}

func (w basicWeapon) Key() string             { return w.key }
func (w basicWeapon) Cooldown() time.Duration { return w.cooldown }

func (w basicWeapon) Damage(multiplier float64) int {
	return int(float64(w.damage)*multiplier + 0.5)
}

// DefaultWeapons registers the stock weapon behaviours
func DefaultWeapons() *WeaponRegistry {
	r := NewWeaponRegistry()
	for _, w := range []basicWeapon{
		{key: "wand", damage: 10, cooldown: 1200 * time.Millisecond},
		{key: "axe", damage: 25, cooldown: 2 * time.Second},
		{key: "orbit", damage: 6, cooldown: 400 * time.Millisecond},
		{key: "lightning", damage: 18, cooldown: 1500 * time.Millisecond},
	} {
		w := w
		r.Register(w.key, func() Weapon { return w })
	}
	return r
}
