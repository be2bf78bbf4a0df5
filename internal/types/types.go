package types

import (
	"encoding/json"

	"github.com/cagdev/cag-backend/internal/engine"
)

// Wire message types, shared by the websocket handler and clients.
const (
	MsgGameStateUpdate = "GAME_STATE_UPDATE"
	MsgRoomCreated     = "ROOM_CREATED"
	MsgJoinSuccess     = "JOIN_SUCCESS"
	MsgError           = "ERROR"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type GameStatePayload struct {
	Version int          `json:"version"`
	State   engine.State `json:"state"`
}

type JoinSuccessPayload struct {
	RoomCode  string `json:"roomCode"`
	SessionID string `json:"sessionId"`
	IsHost    bool   `json:"isHost"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func StateUpdate(version int, s engine.State) ServerMessage {
	return ServerMessage{Type: MsgGameStateUpdate, Payload: GameStatePayload{Version: version, State: s}}
}

func ErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: MsgError, Payload: ErrorPayload{Message: msg}}
}
