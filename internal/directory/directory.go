// Package directory is the durable roster of rooms and their members. The
// in-memory game state inside a room is rebuilt from it whenever membership
// changes, so joins and ready toggles survive a reconnect.
package directory

import (
	"context"
	"errors"

	"github.com/cagdev/cag-backend/internal/engine"
)

var (
	ErrRoomNotFound   = errors.New("directory: room not found")
	ErrRoomExists     = errors.New("directory: room already exists")
	ErrMemberNotFound = errors.New("directory: member not found")
)

// Member is one registered participant of a room.
type Member struct {
	SessionID string
	RoomCode  string
	Name      string
	IsHost    bool
	IsReady   bool
}

type Directory interface {
	// CreateRoom registers a room with its host as the first member.
	CreateRoom(ctx context.Context, code string, host Member) error
	// JoinRoom adds a member, or refreshes the name of a returning session.
	JoinRoom(ctx context.Context, code string, m Member) error
	Leave(ctx context.Context, code, sessionID string) error
	// ToggleReady flips the lobby ready flag and returns the new value.
	ToggleReady(ctx context.Context, code, sessionID string) (bool, error)
	RoomExists(ctx context.Context, code string) (bool, error)
	Members(ctx context.Context, code string) ([]Member, error)
	DeleteRoom(ctx context.Context, code string) error
}

// Roster converts a room's members into engine players, in join order.
// Budgets and squads are zero valued here; the engine preserves the live
// ones when the roster is pushed into an existing state.
func Roster(members []Member, startingBudget int) []engine.Player {
	players := make([]engine.Player, 0, len(members))
	for _, m := range members {
		players = append(players, engine.Player{
			ID:      m.SessionID,
			Name:    m.Name,
			IsHost:  m.IsHost,
			IsReady: m.IsReady,
			Budget:  startingBudget,
			Squad:   []engine.Cricketer{},
		})
	}
	return players
}
