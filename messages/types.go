package messages

import "encoding/json"

// MessageType defines the type of message being sent
type MessageType string

const (
	MessageTypeLogin          MessageType = "login"
	MessageTypeLoginSuccess   MessageType = "login_success"
	MessageTypeSeed           MessageType = "seed"
	MessageTypeMove           MessageType = "move"
	MessageTypeChat           MessageType = "chat"
	MessageTypeUpdate         MessageType = "update"
	MessageTypeUpgrade        MessageType = "upgrade"
	MessageTypeUpgradeApplied MessageType = "upgrade_applied"
	MessageTypeBossEvent      MessageType = "boss_event"
	MessageTypeError          MessageType = "error"
)

// Error codes sent in ErrorMessage
const (
	CodeUnknownMessage = "UNKNOWN_MESSAGE_TYPE"
	CodeBadPayload     = "BAD_PAYLOAD"
	CodeNotLoggedIn    = "NOT_LOGGED_IN"
	CodeLoginFailed    = "LOGIN_FAILED"
	CodeMoveFailed     = "MOVE_FAILED"
	CodeUpgradeFailed  = "UPGRADE_FAILED"
)

// BaseMessage is the base structure for all outgoing messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is the decoding side of BaseMessage; the payload is decoded
// once the type is known
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// New wraps a payload in a BaseMessage
func New(t MessageType, payload interface{}) BaseMessage {
	return BaseMessage{Type: t, Payload: payload}
}

// Error builds an error message
func Error(code, message string) BaseMessage {
	return New(MessageTypeError, ErrorMessage{Code: code, Message: message})
}

// LoginMessage represents a login request
type LoginMessage struct {
	Username string `json:"username"`
}

// LoginSuccessMessage represents a successful login response
type LoginSuccessMessage struct {
	PlayerID string     `json:"player_id"`
	Message  string     `json:"message"`
	Player   PlayerView `json:"player"`
}

// SeedMessage replicates the map seed. Set distinguishes a real seed of
// zero from "not chosen yet". Version orders seeds so a client can drop one
// that arrives after a newer seed. Digest lets a client check its local build.
type SeedMessage struct {
	World   string `json:"world"`
	Seed    int32  `json:"seed"`
	Set     bool   `json:"set"`
	Version uint64 `json:"version"`
	Digest  string `json:"digest,omitempty"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// MoveMessage represents a player movement request
type MoveMessage struct {
	Direction string `json:"direction"` // north, south, east, west, northeast, northwest, southeast, southwest
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// PlayerView is the public view of a player
type PlayerView struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	HP       int     `json:"hp"`
	MaxHP    int     `json:"max_hp"`
	Speed    float64 `json:"speed"`
}

// UpdateMessage carries the positions of all players
type UpdateMessage struct {
	Players []PlayerView `json:"players"`
}

// UpgradeMessage asks the server to apply an upgrade by key
type UpgradeMessage struct {
	Key string `json:"key"`
}

// UpgradeAppliedMessage confirms an upgrade
type UpgradeAppliedMessage struct {
	Key     string     `json:"key"`
	Player  PlayerView `json:"player"`
	History []string   `json:"history"`
}

// BossEventMessage announces the start or end of the boss event
type BossEventMessage struct {
	Active bool `json:"active"`
	ArenaX int  `json:"arena_x"`
	ArenaY int  `json:"arena_y"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
