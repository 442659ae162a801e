// Package client is the reader side of seed replication. A Session never
// receives tiles; it rebuilds the map from the replicated seed and checks
// the result against the authority's digest.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"shiftgrove/server/mapgen"
	"shiftgrove/server/messages"
	"shiftgrove/server/network"
	"shiftgrove/server/replica"
)

// ErrDigestMismatch means the local map differs from the authority's
var ErrDigestMismatch = errors.New("local map digest does not match authority")

// ErrNotConnected is returned when sending before Attach
var ErrNotConnected = errors.New("session has no connection")

// Map is a locally built map for one replicated seed
type Map struct {
	Seed messages.SeedMessage
	Grid *mapgen.Grid
}

// Session tracks the state a client learns from the server
type Session struct {
	generator *mapgen.Generator

	conn *network.Connection

	mu       sync.RWMutex
	playerID string
	players  []messages.PlayerView
	boss     bool
	lastErr  error
	chat     []messages.ChatMessage
	// version of the last seed built; older seeds are dropped
	version uint64

	current   *replica.Value[Map]
	mapWriter *replica.Writer[Map]
}

// NewSession creates a session that builds maps with cfg. cfg must match
// the server's map config for digests to agree.
func NewSession(cfg *mapgen.Config) *Session {
	current, writer := replica.New[Map]()
	return &Session{
		generator: mapgen.NewGenerator(cfg, mapgen.Options{}),
		current:   current,
		mapWriter: writer,
	}
}

// Attach sets the connection used by the send helpers
func (s *Session) Attach(conn *network.Connection) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

// HandleMessage applies a server message to the session
func (s *Session) HandleMessage(_ *network.Connection, message []byte) {
	if err := s.Apply(message); err != nil {
		log.Printf("[client] %v", err)
	}
}

// Apply decodes and applies one server message
func (s *Session) Apply(message []byte) error {
	var env messages.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case messages.MessageTypeLoginSuccess:
		var m messages.LoginSuccessMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		s.mu.Lock()
		s.playerID = m.PlayerID
		s.mu.Unlock()
	case messages.MessageTypeSeed:
		var m messages.SeedMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		return s.applySeed(m)
	case messages.MessageTypeUpdate:
		var m messages.UpdateMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		s.mu.Lock()
		s.players = m.Players
		s.mu.Unlock()
	case messages.MessageTypeBossEvent:
		var m messages.BossEventMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		s.mu.Lock()
		s.boss = m.Active
		s.mu.Unlock()
	case messages.MessageTypeChat:
		var m messages.ChatMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		s.mu.Lock()
		s.chat = append(s.chat, m)
		s.mu.Unlock()
	case messages.MessageTypeError:
		var m messages.ErrorMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		s.setErr(fmt.Errorf("server error %s: %s", m.Code, m.Message))
	}
	return nil
}

// applySeed rebuilds the map for a replicated seed. An unset seed, or one
// older than the map already built, is ignored.
func (s *Session) applySeed(m messages.SeedMessage) error {
	if !m.Set {
		return nil
	}
	s.mu.Lock()
	stale := m.Version != 0 && m.Version <= s.version
	s.mu.Unlock()
	if stale {
		log.Printf("[client] dropping seed %d v%d, already on v%d", m.Seed, m.Version, s.SeedVersion())
		return nil
	}

	grid, err := s.generator.Generate(mapgen.Seed(m.Seed))
	if err != nil {
		s.setErr(err)
		return fmt.Errorf("generate seed %d: %w", m.Seed, err)
	}
	if m.Digest != "" {
		if local := fmt.Sprintf("%016x", grid.Digest()); local != m.Digest {
			err := fmt.Errorf("%w: seed %d local %s remote %s", ErrDigestMismatch, m.Seed, local, m.Digest)
			s.setErr(err)
			return err
		}
	}

	log.Printf("[client] built %s from seed %d (%dx%d)", m.World, m.Seed, grid.Width, grid.Height)
	s.mu.Lock()
	s.version = m.Version
	s.mu.Unlock()
	s.mapWriter.Set(Map{Seed: m, Grid: grid})
	return nil
}

// SeedVersion returns the version of the seed the current map was built from
func (s *Session) SeedVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// WaitForMap blocks until a map has been built
func (s *Session) WaitForMap(ctx context.Context) (Map, error) {
	return s.current.Wait(ctx)
}

// Map returns the replicated local map
func (s *Session) Map() *replica.Value[Map] {
	return s.current
}

// PlayerID returns the ID assigned at login
func (s *Session) PlayerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerID
}

// Players returns the last known player views
func (s *Session) Players() []messages.PlayerView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]messages.PlayerView(nil), s.players...)
}

// BossActive reports whether the boss event is running
func (s *Session) BossActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boss
}

// Chat returns received chat messages
func (s *Session) Chat() []messages.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]messages.ChatMessage(nil), s.chat...)
}

// Err returns the last error reported by the server or the local build
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Session) send(t messages.MessageType, payload interface{}) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.SendMessage(messages.New(t, payload))
}

// Login asks the server to approve username
func (s *Session) Login(username string) error {
	return s.send(messages.MessageTypeLogin, messages.LoginMessage{Username: username})
}

// Move requests a one-tile move
func (s *Session) Move(direction string) error {
	return s.send(messages.MessageTypeMove, messages.MoveMessage{Direction: direction})
}

// Say sends a chat line
func (s *Session) Say(text string) error {
	return s.send(messages.MessageTypeChat, messages.ChatMessage{Message: text})
}

// Upgrade requests an upgrade by key
func (s *Session) Upgrade(key string) error {
	return s.send(messages.MessageTypeUpgrade, messages.UpgradeMessage{Key: key})
}
