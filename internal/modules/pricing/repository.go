package pricing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/cargosim/internal/database"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles market intelligence rows in game.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new market intelligence repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "market_intelligence").Logger(),
	}
}

const miColumns = "id, deck_id, name, price_data, is_active, created_at"

// Create stores a validated price set. When activate is true the new set
// becomes the deck's only active one in the same transaction.
func (r *Repository) Create(ctx context.Context, deckID int64, name string, priceData map[string]float64, activate bool) (*MarketIntelligence, error) {
	if err := ValidatePriceData(priceData); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(priceData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode price data: %w", err)
	}

	mi := &MarketIntelligence{
		ID:        uuid.New().String(),
		DeckID:    deckID,
		Name:      name,
		PriceData: priceData,
		IsActive:  activate,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if activate {
			if _, err := tx.ExecContext(ctx, "UPDATE market_intelligence SET is_active = 0 WHERE deck_id = ?", deckID); err != nil {
				return fmt.Errorf("failed to deactivate sibling sets: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO market_intelligence ("+miColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			mi.ID, mi.DeckID, mi.Name, string(encoded), boolToInt(activate), mi.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert market intelligence: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Int64("deck_id", deckID).
		Str("id", mi.ID).
		Int("prices", len(priceData)).
		Bool("active", activate).
		Msg("Market intelligence stored")

	return mi, nil
}

// List returns all sets for a deck, newest first.
func (r *Repository) List(ctx context.Context, deckID int64) ([]MarketIntelligence, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+miColumns+" FROM market_intelligence WHERE deck_id = ? ORDER BY created_at DESC, id",
		deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list market intelligence: %w", err)
	}
	defer rows.Close()

	var out []MarketIntelligence
	for rows.Next() {
		mi, err := scanMarketIntelligence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *mi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate market intelligence: %w", err)
	}
	return out, nil
}

// GetActive returns the deck's active set, or nil if none is active.
func (r *Repository) GetActive(ctx context.Context, deckID int64) (*MarketIntelligence, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+miColumns+" FROM market_intelligence WHERE deck_id = ? AND is_active = 1 LIMIT 1",
		deckID,
	)
	mi, err := scanMarketIntelligence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mi, nil
}

// Get returns one set by id, or nil if it does not exist for the deck.
func (r *Repository) Get(ctx context.Context, deckID int64, id string) (*MarketIntelligence, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+miColumns+" FROM market_intelligence WHERE deck_id = ? AND id = ?",
		deckID, id,
	)
	mi, err := scanMarketIntelligence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mi, nil
}

// Activate makes id the deck's only active set.
func (r *Repository) Activate(ctx context.Context, deckID int64, id string) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM market_intelligence WHERE deck_id = ? AND id = ?", deckID, id,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up market intelligence: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("market intelligence %s: %w", id, domain.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE market_intelligence SET is_active = CASE WHEN id = ? THEN 1 ELSE 0 END WHERE deck_id = ?",
			id, deckID,
		); err != nil {
			return fmt.Errorf("failed to activate market intelligence: %w", err)
		}
		return nil
	})
}

// Delete removes a set. Deleting the active set leaves the deck on builtin prices.
func (r *Repository) Delete(ctx context.Context, deckID int64, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM market_intelligence WHERE deck_id = ? AND id = ?", deckID, id)
	if err != nil {
		return fmt.Errorf("failed to delete market intelligence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("market intelligence %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMarketIntelligence(row rowScanner) (*MarketIntelligence, error) {
	var (
		mi        MarketIntelligence
		priceData string
		isActive  int
		createdAt int64
	)
	if err := row.Scan(&mi.ID, &mi.DeckID, &mi.Name, &priceData, &isActive, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan market intelligence: %w", err)
	}
	if err := json.Unmarshal([]byte(priceData), &mi.PriceData); err != nil {
		return nil, fmt.Errorf("failed to decode price data for %s: %w", mi.ID, err)
	}
	mi.IsActive = isActive == 1
	mi.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &mi, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
