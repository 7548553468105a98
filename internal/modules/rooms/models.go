// Package rooms stores the round pointer, port assignments and per-round revenue
// that the ledger and performance modules read as external game state.
package rooms

import (
	"context"
	"time"

	"github.com/harborline/cargosim/internal/domain"
)

// Defaults applied when a room has no stored state
const (
	DefaultCurrentRound = 1
	DefaultTotalRounds  = 4
)

// Room is the round state of one game room
type Room struct {
	ID           string    `json:"id"`
	DeckID       *int64    `json:"deck_id"`
	CurrentRound int       `json:"current_round"`
	TotalRounds  int       `json:"total_rounds"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Player is a user's assignment within a room
type Player struct {
	RoomID string          `json:"room_id"`
	UserID int64           `json:"user_id"`
	Port   domain.PortCode `json:"port"`
}

// RoundState is the read-only view other modules consume.
type RoundState interface {
	GetRoom(ctx context.Context, roomID string) (*Room, error)
	AssignedPort(ctx context.Context, roomID string, userID int64) (domain.PortCode, error)
	RevenueByWeek(ctx context.Context, roomID string, userID int64) (map[int]int64, error)
}

// UpdateRoomRequest is the body of PUT /api/rooms/{room}
type UpdateRoomRequest struct {
	DeckID       *int64 `json:"deck_id"`
	CurrentRound *int   `json:"current_round"`
	TotalRounds  *int   `json:"total_rounds"`
}
