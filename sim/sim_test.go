package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoopRunsHandlersInOrder(t *testing.T) {
	loop := NewLoop(10 * time.Millisecond)

	var order []string
	var total time.Duration
	loop.Register("first", HandlerFunc(func(dt time.Duration) {
		order = append(order, "first")
		total += dt
	}))
	loop.Register("second", HandlerFunc(func(time.Duration) { order = append(order, "second") }))

	loop.Step()
	loop.Step()

	want := []string{"first", "second", "first", "second"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}
	if total != 20*time.Millisecond {
		t.Fatalf("expected 20ms of game time, got %v", total)
	}
	if loop.Ticks() != 2 {
		t.Fatalf("expected 2 ticks, got %d", loop.Ticks())
	}
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	loop := NewLoop(time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if loop.Ticks() == 0 {
		t.Fatalf("expected the loop to tick")
	}
}

func TestBossDirectorTimer(t *testing.T) {
	d := NewBossDirector(time.Second)

	var seen []BossState
	d.State().Subscribe(func(_, next BossState) { seen = append(seen, next) })

	for i := 0; i < 9; i++ {
		d.Tick(100 * time.Millisecond)
	}
	if state, _ := d.State().Get(); state.Active {
		t.Fatalf("event started early")
	}

	d.Tick(100 * time.Millisecond)
	state, _ := d.State().Get()
	if !state.Active || state.Reason != "timer" {
		t.Fatalf("expected timer start, got %+v", state)
	}

	// Ticks during the event do nothing
	d.Tick(time.Hour)
	if len(seen) != 1 {
		t.Fatalf("expected one state change, got %v", seen)
	}

	d.Defeated()
	if state, _ := d.State().Get(); state.Active || state.Reason != "defeated" {
		t.Fatalf("expected defeated state, got %+v", state)
	}
	if d.Remaining() != time.Second {
		t.Fatalf("expected timer rewound, got %v remaining", d.Remaining())
	}
}

func TestBossDirectorForceStart(t *testing.T) {
	d := NewBossDirector(time.Hour)
	if err := d.ForceStart(); err != nil {
		t.Fatalf("force start: %v", err)
	}
	if err := d.ForceStart(); !errors.Is(err, ErrBossActive) {
		t.Fatalf("expected ErrBossActive, got %v", err)
	}

	d.ResetOnPlayerDeath()
	state, _ := d.State().Get()
	if state.Active || state.Reason != "player_death" {
		t.Fatalf("expected reset after player death, got %+v", state)
	}

	// Ending an inactive event is a no-op
	version := d.State().Version()
	d.Defeated()
	if d.State().Version() != version {
		t.Fatalf("ending an inactive event published a change")
	}
}

func TestBossDirectorPublishesInOrder(t *testing.T) {
	d := NewBossDirector(time.Millisecond)

	var seen []bool
	stop := d.State().Subscribe(func(_, next BossState) { seen = append(seen, next.Active) })
	defer stop()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); d.Tick(time.Millisecond) }()
		go func() { defer wg.Done(); d.Defeated() }()
		go func() { defer wg.Done(); d.ResetOnPlayerDeath() }()
	}
	wg.Wait()

	for i := 1; i < len(seen); i++ {
		if seen[i] == seen[i-1] {
			t.Fatalf("published Active=%v twice in a row at %d", seen[i], i)
		}
	}
	st, _ := d.State().Get()
	if st.Active != d.Active() {
		t.Fatalf("replicated Active=%v, director Active=%v", st.Active, d.Active())
	}
}
