package capacity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Repository appends and reads decision events in ledger.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new capacity ledger repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "capacity_ledger").Logger(),
	}
}

const eventColumns = "seq, event_id, room_id, user_id, week, port, card_id, decision, card_snapshot, processed_at, created_at"

// Append stores an event. It returns false when the same decision for the same
// card and key already exists; nothing is written in that case.
func (r *Repository) Append(ctx context.Context, e *Event) (bool, error) {
	snapshot, err := msgpack.Marshal(&e.Card)
	if err != nil {
		return false, fmt.Errorf("failed to encode card snapshot: %w", err)
	}

	if e.EventID == "" {
		e.EventID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var processedAt interface{}
	if e.ProcessedAt != nil {
		processedAt = e.ProcessedAt.UnixMilli()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO capacity_decisions
			(event_id, room_id, user_id, week, port, card_id, decision, card_snapshot, processed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(room_id, user_id, week, port, card_id, decision) DO NOTHING`,
		e.EventID, e.Key.Room, e.Key.UserID, e.Key.Week, string(e.Key.Port), e.CardID,
		string(e.Decision), snapshot, processedAt, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to append decision event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		r.log.Debug().
			Str("room", e.Key.Room).
			Int64("user_id", e.Key.UserID).
			Int("week", e.Key.Week).
			Str("card_id", e.CardID).
			Str("decision", string(e.Decision)).
			Msg("Duplicate decision ignored")
		return false, nil
	}

	seq, err := result.LastInsertId()
	if err == nil {
		e.Seq = seq
	}
	return true, nil
}

// ListEvents returns the events of one ledger row in append order
func (r *Repository) ListEvents(ctx context.Context, key Key) ([]Event, error) {
	return r.query(ctx,
		"SELECT "+eventColumns+" FROM capacity_decisions WHERE room_id = ? AND user_id = ? AND week = ? AND port = ? ORDER BY seq",
		key.Room, key.UserID, key.Week, string(key.Port),
	)
}

// RejectedForWeek returns every rejected event for (room, user, week) across ports
func (r *Repository) RejectedForWeek(ctx context.Context, room string, userID int64, week int) ([]Event, error) {
	return r.query(ctx,
		"SELECT "+eventColumns+" FROM capacity_decisions WHERE room_id = ? AND user_id = ? AND week = ? AND decision = ? ORDER BY seq",
		room, userID, week, string(domain.DecisionReject),
	)
}

// LatestWeek returns the highest week with events for (room, user).
func (r *Repository) LatestWeek(ctx context.Context, room string, userID int64) (int, bool, error) {
	var week sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(week) FROM capacity_decisions WHERE room_id = ? AND user_id = ?", room, userID,
	).Scan(&week)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get latest week: %w", err)
	}
	if !week.Valid {
		return 0, false, nil
	}
	return int(week.Int64), true, nil
}

// PortsForWeek returns the ports with events in a week, most recently used first.
func (r *Repository) PortsForWeek(ctx context.Context, room string, userID int64, week int) ([]domain.PortCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT port FROM capacity_decisions
		WHERE room_id = ? AND user_id = ? AND week = ?
		GROUP BY port ORDER BY MAX(seq) DESC`,
		room, userID, week,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ports for week: %w", err)
	}
	defer rows.Close()

	var out []domain.PortCode
	for rows.Next() {
		var port string
		if err := rows.Scan(&port); err != nil {
			return nil, fmt.Errorf("failed to scan port: %w", err)
		}
		out = append(out, domain.PortCode(port))
	}
	return out, rows.Err()
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decision events: %w", err)
	}
	return out, nil
}

func scanEvent(rows *sql.Rows) (*Event, error) {
	var e Event
	var port, decision string
	var snapshot []byte
	var processedAt sql.NullInt64
	var createdAt int64

	err := rows.Scan(&e.Seq, &e.EventID, &e.Key.Room, &e.Key.UserID, &e.Key.Week, &port,
		&e.CardID, &decision, &snapshot, &processedAt, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan decision event: %w", err)
	}

	if err := msgpack.Unmarshal(snapshot, &e.Card); err != nil {
		return nil, fmt.Errorf("failed to decode card snapshot for event %s: %w", e.EventID, err)
	}

	e.Key.Port = domain.PortCode(port)
	e.Decision = domain.Decision(decision)
	if processedAt.Valid {
		t := time.UnixMilli(processedAt.Int64).UTC()
		e.ProcessedAt = &t
	}
	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &e, nil
}
