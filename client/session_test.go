package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"shiftgrove/server/mapgen"
	"shiftgrove/server/messages"
)

func smallConfig() *mapgen.Config {
	cfg := mapgen.DefaultConfig()
	cfg.Width, cfg.Height = 24, 24
	return cfg
}

func encode(t *testing.T, typ messages.MessageType, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(messages.New(typ, payload))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func digestFor(t *testing.T, cfg *mapgen.Config, seed mapgen.Seed) string {
	t.Helper()
	grid, err := mapgen.NewGenerator(cfg, mapgen.Options{}).Generate(seed)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return fmt.Sprintf("%016x", grid.Digest())
}

func TestSeedBuildsMatchingMap(t *testing.T) {
	cfg := smallConfig()
	s := NewSession(cfg)

	msg := messages.SeedMessage{World: "forest", Seed: 12345, Set: true, Digest: digestFor(t, cfg, 12345), Width: 24, Height: 24}
	if err := s.Apply(encode(t, messages.MessageTypeSeed, msg)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m, err := s.WaitForMap(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if m.Seed.Seed != 12345 || m.Grid == nil {
		t.Fatalf("unexpected map %+v", m.Seed)
	}
}

func TestUnsetSeedIsIgnored(t *testing.T) {
	s := NewSession(smallConfig())
	if err := s.Apply(encode(t, messages.MessageTypeSeed, messages.SeedMessage{Seed: 0, Set: false})); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := s.Map().Get(); ok {
		t.Fatalf("expected no map before a seed is set")
	}
}

func TestZeroSeedIsAValidSeed(t *testing.T) {
	cfg := smallConfig()
	s := NewSession(cfg)
	msg := messages.SeedMessage{Seed: 0, Set: true, Digest: digestFor(t, cfg, 0)}
	if err := s.Apply(encode(t, messages.MessageTypeSeed, msg)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := s.Map().Get(); !ok {
		t.Fatalf("expected map for seed 0")
	}
}

func TestDigestMismatch(t *testing.T) {
	s := NewSession(smallConfig())
	msg := messages.SeedMessage{Seed: 7, Set: true, Digest: "0000000000000000"}
	err := s.Apply(encode(t, messages.MessageTypeSeed, msg))
	if !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("expected ErrDigestMismatch, got %v", err)
	}
	if _, ok := s.Map().Get(); ok {
		t.Fatalf("mismatched map must not be published")
	}
	if !errors.Is(s.Err(), ErrDigestMismatch) {
		t.Fatalf("expected Err to report mismatch, got %v", s.Err())
	}
}

func TestTracksPlayersAndBoss(t *testing.T) {
	s := NewSession(smallConfig())
	steps := [][]byte{
		encode(t, messages.MessageTypeLoginSuccess, messages.LoginSuccessMessage{PlayerID: "p1"}),
		encode(t, messages.MessageTypeUpdate, messages.UpdateMessage{Players: []messages.PlayerView{{ID: "p1", X: 2}}}),
		encode(t, messages.MessageTypeBossEvent, messages.BossEventMessage{Active: true}),
	}
	for _, step := range steps {
		if err := s.Apply(step); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if s.PlayerID() != "p1" || len(s.Players()) != 1 || !s.BossActive() {
		t.Fatalf("unexpected session state id=%q players=%v boss=%v", s.PlayerID(), s.Players(), s.BossActive())
	}
}

func TestSendWithoutConnection(t *testing.T) {
	if err := NewSession(smallConfig()).Move("north"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestOlderSeedIsDropped(t *testing.T) {
	cfg := smallConfig()
	s := NewSession(cfg)

	// A regeneration broadcast overtakes the seed read at login
	newer := messages.SeedMessage{Seed: 20, Set: true, Version: 2, Digest: digestFor(t, cfg, 20)}
	older := messages.SeedMessage{Seed: 10, Set: true, Version: 1, Digest: digestFor(t, cfg, 10)}
	for _, m := range []messages.SeedMessage{newer, older} {
		if err := s.Apply(encode(t, messages.MessageTypeSeed, m)); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	m, ok := s.Map().Get()
	if !ok || m.Seed.Seed != 20 || s.SeedVersion() != 2 {
		t.Fatalf("expected to stay on seed 20 v2, got seed %d v%d", m.Seed.Seed, s.SeedVersion())
	}
}
