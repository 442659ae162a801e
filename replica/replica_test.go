package replica

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUnsetUntilFirstWrite(t *testing.T) {
	v, w := New[int32]()
	if _, ok := v.Get(); ok {
		t.Fatalf("expected unset value")
	}

	// Zero is a real value once written
	w.Set(0)
	got, ok := v.Get()
	if !ok || got != 0 {
		t.Fatalf("expected set zero, got %d set=%v", got, ok)
	}
	if v.Version() != 1 {
		t.Fatalf("expected version 1, got %d", v.Version())
	}
}

func TestWaitReturnsOnceSet(t *testing.T) {
	v, w := New[string]()

	result := make(chan string, 1)
	go func() {
		got, err := v.Wait(context.Background())
		if err != nil {
			t.Errorf("wait: %v", err)
		}
		result <- got
	}()

	time.Sleep(10 * time.Millisecond)
	w.Set("ready")

	select {
	case got := <-result:
		if got != "ready" {
			t.Fatalf("expected %q, got %q", "ready", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("wait did not return after set")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	v, _ := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := v.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSubscribersSeePreviousAndNext(t *testing.T) {
	v, w := New[int]()

	var calls [][2]int
	var order []string
	unsubscribe := v.Subscribe(func(prev, next int) {
		calls = append(calls, [2]int{prev, next})
		order = append(order, "first")
	})
	v.Subscribe(func(int, int) { order = append(order, "second") })

	w.Set(1)
	w.Set(5)
	unsubscribe()
	w.Set(9)

	if len(calls) != 2 || calls[0] != [2]int{0, 1} || calls[1] != [2]int{1, 5} {
		t.Fatalf("unexpected calls %v", calls)
	}
	want := []string{"first", "second", "first", "second", "second"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}
}
