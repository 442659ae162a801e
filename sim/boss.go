package sim

import (
	"errors"
	"log"
	"sync"
	"time"

	"shiftgrove/server/replica"
)

// ErrBossActive is returned when starting an event that is already running
var ErrBossActive = errors.New("boss event already active")

// BossState is the replicated boss event state
type BossState struct {
	Active bool
	// Reason is why the state last changed: timer, forced, defeated, player_death
	Reason string
}

// BossDirector starts the boss event once enough game time has passed.
// Only the authority ticks it; clients observe State.
type BossDirector struct {
	// transition is held across a state change and its publish so readers
	// see changes in the order they happened
	transition sync.Mutex

	mu       sync.Mutex
	duration time.Duration
	elapsed  time.Duration
	active   bool

	state  *replica.Value[BossState]
	writer *replica.Writer[BossState]
}

// NewBossDirector creates a director that fires after duration
func NewBossDirector(duration time.Duration) *BossDirector {
	state, writer := replica.New[BossState]()
	writer.Set(BossState{Active: false, Reason: "init"})
	return &BossDirector{
		duration: duration,
		state:    state,
		writer:   writer,
	}
}

// State returns the replicated event state
func (d *BossDirector) State() *replica.Value[BossState] {
	return d.state
}

// Tick advances the timer while no event is running
func (d *BossDirector) Tick(dt time.Duration) {
	d.transition.Lock()
	defer d.transition.Unlock()

	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.elapsed += dt
	fire := d.elapsed >= d.duration
	if fire {
		d.active = true
	}
	d.mu.Unlock()

	if fire {
		d.publish(true, "timer")
	}
}

// Active reports whether the event is running
func (d *BossDirector) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Remaining returns the time left before the next event
func (d *BossDirector) Remaining() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return 0
	}
	return d.duration - d.elapsed
}

// ForceStart starts the event immediately
func (d *BossDirector) ForceStart() error {
	d.transition.Lock()
	defer d.transition.Unlock()

	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return ErrBossActive
	}
	d.active = true
	d.mu.Unlock()

	d.publish(true, "forced")
	return nil
}

// Defeated ends the event and rewinds the timer
func (d *BossDirector) Defeated() {
	d.end("defeated")
}

// ResetOnPlayerDeath ends the event after a player died to the boss
func (d *BossDirector) ResetOnPlayerDeath() {
	d.end("player_death")
}

func (d *BossDirector) end(reason string) {
	d.transition.Lock()
	defer d.transition.Unlock()

	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.elapsed = 0
	d.mu.Unlock()

	d.publish(false, reason)
}

func (d *BossDirector) publish(active bool, reason string) {
	if active {
		log.Printf("[boss] >>> BOSS EVENT STARTED (%s) <<<", reason)
	} else {
		log.Printf("[boss] boss event ended (%s)", reason)
	}
	d.writer.Set(BossState{Active: active, Reason: reason})
}
