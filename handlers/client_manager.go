package handlers

import (
	"log"
	"sync"

	"shiftgrove/server/messages"
	"shiftgrove/server/services"
	"shiftgrove/server/sim"
)

// ClientManager manages connected clients
type ClientManager struct {
	clients map[string]*ClientHandler // Map PlayerID to ClientHandler
	mutex   sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
	}
}

// AddClient adds a client to the manager
func (cm *ClientManager) AddClient(playerID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[playerID] = handler
}

// RemoveClient removes a client from the manager
func (cm *ClientManager) RemoveClient(playerID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, playerID)
}

// Count returns the number of logged in clients
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToAll sends a message to all connected clients
func (cm *ClientManager) BroadcastToAll(msg interface{}) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for id, client := range cm.clients {
		if err := client.conn.SendMessage(msg); err != nil {
			log.Printf("Error broadcasting to client %s: %v", id, err)
		}
	}
}

// BroadcastUpdate sends every client the current player positions
func (cm *ClientManager) BroadcastUpdate(world *services.WorldService) {
	cm.BroadcastToAll(messages.New(messages.MessageTypeUpdate, world.GetWorldUpdate()))
}

// ReplicateSeed pushes every new map seed to all clients. The returned
// func stops replication.
func (cm *ClientManager) ReplicateSeed(world *services.WorldService) func() {
	return world.Seed().Subscribe(func(_, next services.SeedState) {
		log.Printf("[replica] seed %d -> %d clients", next.Seed, cm.Count())
		cm.BroadcastToAll(messages.New(messages.MessageTypeSeed, next.Message(true)))
		cm.BroadcastUpdate(world)
	})
}

// ReplicateBoss announces boss event changes. Players gather at the arena
// when the event starts and respawn when it ends.
func (cm *ClientManager) ReplicateBoss(director *sim.BossDirector, world *services.WorldService) func() {
	return director.State().Subscribe(func(prev, next sim.BossState) {
		if prev.Active == next.Active {
			return
		}
		if next.Active {
			world.GatherPlayers(0, 0)
		} else {
			world.ScatterPlayers()
		}
		cm.BroadcastToAll(messages.New(messages.MessageTypeBossEvent, messages.BossEventMessage{Active: next.Active}))
		cm.BroadcastUpdate(world)
	})
}
