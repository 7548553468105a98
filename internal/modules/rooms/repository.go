package rooms

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles room round state in game.db.
type Repository struct {
	db                 *sql.DB
	defaultTotalRounds int
	log                zerolog.Logger
}

// NewRepository creates a new room repository.
// defaultTotalRounds <= 0 falls back to DefaultTotalRounds.
func NewRepository(db *sql.DB, defaultTotalRounds int, log zerolog.Logger) *Repository {
	if defaultTotalRounds <= 0 {
		defaultTotalRounds = DefaultTotalRounds
	}
	return &Repository{
		db:                 db,
		defaultTotalRounds: defaultTotalRounds,
		log:                log.With().Str("repository", "rooms").Logger(),
	}
}

// GetRoom returns the room state. Unknown rooms get the default round pointer and count.
func (r *Repository) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	room := &Room{ID: roomID, CurrentRound: DefaultCurrentRound, TotalRounds: r.defaultTotalRounds}

	var deckID sql.NullInt64
	var updatedAt int64
	err := r.db.QueryRowContext(ctx,
		"SELECT deck_id, current_round, total_rounds, updated_at FROM rooms WHERE id = ?", roomID,
	).Scan(&deckID, &room.CurrentRound, &room.TotalRounds, &updatedAt)
	if err == sql.ErrNoRows {
		return room, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", roomID, err)
	}

	if deckID.Valid {
		room.DeckID = &deckID.Int64
	}
	room.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return room, nil
}

// UpdateRoom applies the fields present in req, creating the room if needed.
func (r *Repository) UpdateRoom(ctx context.Context, roomID string, req UpdateRoomRequest) (*Room, error) {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if req.DeckID != nil {
		room.DeckID = req.DeckID
	}
	if req.CurrentRound != nil {
		room.CurrentRound = *req.CurrentRound
	}
	if req.TotalRounds != nil {
		room.TotalRounds = *req.TotalRounds
	}

	var errs domain.ValidationErrors
	if room.CurrentRound < 1 {
		errs.Add("current_round", "must be at least 1")
	}
	if room.TotalRounds < 1 {
		errs.Add("total_rounds", "must be at least 1")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	room.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rooms (id, deck_id, current_round, total_rounds, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deck_id = excluded.deck_id,
			current_round = excluded.current_round,
			total_rounds = excluded.total_rounds,
			updated_at = excluded.updated_at`,
		roomID, room.DeckID, room.CurrentRound, room.TotalRounds, room.UpdatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save room %s: %w", roomID, err)
	}

	r.log.Info().
		Str("room", roomID).
		Int("current_round", room.CurrentRound).
		Int("total_rounds", room.TotalRounds).
		Msg("Room updated")

	return room, nil
}

// AssignedPort returns the user's port, or "" when unassigned.
func (r *Repository) AssignedPort(ctx context.Context, roomID string, userID int64) (domain.PortCode, error) {
	var port string
	err := r.db.QueryRowContext(ctx,
		"SELECT port FROM room_players WHERE room_id = ? AND user_id = ?", roomID, userID,
	).Scan(&port)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get port for user %d in %s: %w", userID, roomID, err)
	}
	return domain.PortCode(port), nil
}

// AssignPort sets the user's port within a room
func (r *Repository) AssignPort(ctx context.Context, roomID string, userID int64, port domain.PortCode) (*Player, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO room_players (room_id, user_id, port, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(room_id, user_id) DO UPDATE SET port = excluded.port, updated_at = excluded.updated_at`,
		roomID, userID, string(port), time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assign port: %w", err)
	}
	return &Player{RoomID: roomID, UserID: userID, Port: port}, nil
}

// SetRoundRevenue stores the revenue figure for one week
func (r *Repository) SetRoundRevenue(ctx context.Context, roomID string, userID int64, week int, revenue int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO round_revenues (room_id, user_id, week, revenue, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(room_id, user_id, week) DO UPDATE SET revenue = excluded.revenue, updated_at = excluded.updated_at`,
		roomID, userID, week, revenue, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set revenue for week %d: %w", week, err)
	}
	return nil
}

// RevenueByWeek returns the stored revenue figures keyed by week
func (r *Repository) RevenueByWeek(ctx context.Context, roomID string, userID int64) (map[int]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT week, revenue FROM round_revenues WHERE room_id = ? AND user_id = ?", roomID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query round revenue: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int64)
	for rows.Next() {
		var week int
		var revenue int64
		if err := rows.Scan(&week, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan round revenue: %w", err)
		}
		out[week] = revenue
	}
	return out, rows.Err()
}
