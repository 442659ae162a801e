package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"shiftgrove/server/messages"
	"shiftgrove/server/models"
	"shiftgrove/server/network"
	"shiftgrove/server/services"
)

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          *network.Connection
	playerService *services.PlayerService
	worldService  *services.WorldService
	clientManager *ClientManager
	player        *models.Player
}

// HandleClientConnection handles a new client connection
func HandleClientConnection(wsConn *websocket.Conn, playerService *services.PlayerService, worldService *services.WorldService, clientManager *ClientManager) {
	log.Printf("New connection from %s", wsConn.RemoteAddr())

	conn := network.NewConnection(wsConn)
	handler := &ClientHandler{
		conn:          conn,
		playerService: playerService,
		worldService:  worldService,
		clientManager: clientManager,
	}

	// Start the write pump in a goroutine
	go conn.WritePump()

	// Handle the read pump in the current goroutine
	conn.ReadPump(handler)

	// Clean up when the connection is closed
	if handler.player != nil {
		clientManager.RemoveClient(handler.player.ID)
		if err := playerService.Disconnect(handler.player.ID); err != nil {
			log.Printf("Error disconnecting %s: %v", handler.player.Username, err)
		}
		log.Printf("Player %s disconnected and removed from world", handler.player.Username)

		// Notify others
		clientManager.BroadcastUpdate(worldService)
	}
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var env messages.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		h.sendError(messages.CodeBadPayload, "malformed message")
		return
	}

	if env.Type != messages.MessageTypeLogin && h.player == nil {
		h.sendError(messages.CodeNotLoggedIn, "log in first")
		return
	}

	switch env.Type {
	case messages.MessageTypeLogin:
		h.handleLogin(env.Payload)
	case messages.MessageTypeMove:
		h.handleMove(env.Payload)
	case messages.MessageTypeChat:
		h.handleChat(env.Payload)
	case messages.MessageTypeUpgrade:
		h.handleUpgrade(env.Payload)
	default:
		log.Printf("Unknown message type: %s", env.Type)
		h.sendError(messages.CodeUnknownMessage, "Unknown message type received")
	}
}

func (h *ClientHandler) decode(payload json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(payload, v); err != nil {
		log.Printf("Error unmarshaling payload: %v", err)
		h.sendError(messages.CodeBadPayload, err.Error())
		return false
	}
	return true
}

// handleLogin approves the player, then sends the current seed so the
// client can build the map locally
func (h *ClientHandler) handleLogin(payload json.RawMessage) {
	var loginMsg messages.LoginMessage
	if !h.decode(payload, &loginMsg) {
		return
	}
	if h.player != nil {
		h.sendError(messages.CodeLoginFailed, "already logged in")
		return
	}

	player, err := h.playerService.GetOrCreatePlayer(loginMsg.Username)
	if err != nil {
		log.Printf("Error getting/creating player: %v", err)
		h.sendError(messages.CodeLoginFailed, err.Error())
		return
	}

	view, err := h.worldService.PlayerView(player.ID)
	if err != nil {
		h.sendError(messages.CodeLoginFailed, err.Error())
		return
	}

	h.player = player
	h.clientManager.AddClient(player.ID, h)

	if err := h.conn.SendMessage(messages.New(messages.MessageTypeLoginSuccess, messages.LoginSuccessMessage{
		PlayerID: player.ID,
		Message:  "Login successful",
		Player:   view,
	})); err != nil {
		log.Printf("Error sending login success: %v", err)
		return
	}

	// Seeds are versioned; the client keeps the newest if a broadcast overtakes this one
	if state, ok := h.worldService.Seed().Get(); ok {
		if err := h.conn.SendMessage(messages.New(messages.MessageTypeSeed, state.Message(true))); err != nil {
			log.Printf("Error sending seed: %v", err)
			return
		}
	}
	h.clientManager.BroadcastUpdate(h.worldService)
}

// handleMove handles player movement requests
func (h *ClientHandler) handleMove(payload json.RawMessage) {
	var moveMsg messages.MoveMessage
	if !h.decode(payload, &moveMsg) {
		return
	}

	if _, err := h.worldService.MovePlayer(h.player.ID, moveMsg.Direction); err != nil {
		h.sendError(messages.CodeMoveFailed, err.Error())
		return
	}

	h.clientManager.BroadcastUpdate(h.worldService)
}

// handleChat handles chat messages
func (h *ClientHandler) handleChat(payload json.RawMessage) {
	var chatMsg messages.ChatMessage
	if !h.decode(payload, &chatMsg) {
		return
	}

	chatMsg.Sender = h.playerService.PlayerName(h.player.ID)
	chatMsg.Timestamp = time.Now().Unix()
	h.clientManager.BroadcastToAll(messages.New(messages.MessageTypeChat, chatMsg))
}

// handleUpgrade applies an upgrade picked by the player
func (h *ClientHandler) handleUpgrade(payload json.RawMessage) {
	var upgradeMsg messages.UpgradeMessage
	if !h.decode(payload, &upgradeMsg) {
		return
	}

	player, err := h.playerService.ApplyUpgrade(h.player.ID, upgradeMsg.Key)
	if err != nil {
		h.sendError(messages.CodeUpgradeFailed, err.Error())
		return
	}

	view, err := h.worldService.PlayerView(h.player.ID)
	if err != nil {
		h.sendError(messages.CodeUpgradeFailed, err.Error())
		return
	}
	if err := h.conn.SendMessage(messages.New(messages.MessageTypeUpgradeApplied, messages.UpgradeAppliedMessage{
		Key:     upgradeMsg.Key,
		Player:  view,
		History: player.Upgrades,
	})); err != nil {
		log.Printf("Error sending upgrade result: %v", err)
	}
	h.clientManager.BroadcastUpdate(h.worldService)
}

func (h *ClientHandler) sendError(code, message string) {
	if err := h.conn.SendMessage(messages.Error(code, message)); err != nil {
		log.Printf("Error sending error %s: %v", code, err)
	}
}
