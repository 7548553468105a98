package performance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harborline/cargosim/internal/database"
	"github.com/rs/zerolog"
)

// Repository stores summaries and their patch log in cache.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new weekly performance repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "weekly_performance").Logger(),
	}
}

// PatchRecord is one entry of the patch log
type PatchRecord struct {
	Seq       int64           `json:"seq"`
	Week      int             `json:"week"`
	Patch     json.RawMessage `json:"patch"`
	CreatedAt time.Time       `json:"created_at"`
}

// Get returns the stored summary, or nil if none exists.
func (r *Repository) Get(ctx context.Context, room string, userID int64) (*Summary, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT summary FROM weekly_performance WHERE room_id = ? AND user_id = ?", room, userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly performance: %w", err)
	}

	var s Summary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode weekly performance for %s/%d: %w", room, userID, err)
	}
	return &s, nil
}

// Insert stores a freshly derived summary unless one already exists.
// The stored summary is returned either way so concurrent builds agree.
func (r *Repository) Insert(ctx context.Context, s *Summary) (*Summary, bool, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode weekly performance: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO weekly_performance (room_id, user_id, summary, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(room_id, user_id) DO NOTHING`,
		s.Room, s.UserID, string(raw), s.UpdatedAt.Unix(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store weekly performance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 1 {
		return s, true, nil
	}

	stored, err := r.Get(ctx, s.Room, s.UserID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// SaveWithPatch overwrites the summary and appends the raw patch in one transaction.
func (r *Repository) SaveWithPatch(ctx context.Context, s *Summary, week int, patch json.RawMessage) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode weekly performance: %w", err)
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE weekly_performance SET summary = ?, updated_at = ? WHERE room_id = ? AND user_id = ?",
			string(raw), s.UpdatedAt.Unix(), s.Room, s.UserID,
		); err != nil {
			return fmt.Errorf("failed to update weekly performance: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO weekly_performance_patches (room_id, user_id, week, patch, created_at) VALUES (?, ?, ?, ?, ?)",
			s.Room, s.UserID, week, string(patch), s.UpdatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("failed to append performance patch: %w", err)
		}
		return nil
	})
}

// Delete removes a stored summary so the next read rebuilds it. The patch log is kept.
func (r *Repository) Delete(ctx context.Context, room string, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM weekly_performance WHERE room_id = ? AND user_id = ?", room, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete weekly performance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Patches returns the patch log for (room, user) in append order
func (r *Repository) Patches(ctx context.Context, room string, userID int64) ([]PatchRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT seq, week, patch, created_at FROM weekly_performance_patches WHERE room_id = ? AND user_id = ? ORDER BY seq",
		room, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance patches: %w", err)
	}
	defer rows.Close()

	var out []PatchRecord
	for rows.Next() {
		var p PatchRecord
		var patch string
		var createdAt int64
		if err := rows.Scan(&p.Seq, &p.Week, &patch, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan performance patch: %w", err)
		}
		p.Patch = json.RawMessage(patch)
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
