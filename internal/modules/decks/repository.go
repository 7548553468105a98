package decks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harborline/cargosim/internal/database"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles deck, card and container rows in game.db.
type Repository struct {
	db      *sql.DB
	palette Palette
	log     zerolog.Logger
}

// NewRepository creates a new deck repository
func NewRepository(db *sql.DB, palette Palette, log zerolog.Logger) *Repository {
	return &Repository{
		db:      db,
		palette: palette,
		log:     log.With().Str("repository", "decks").Logger(),
	}
}

const cardColumns = "deck_id, id, type, priority, origin, destination, quantity, revenue, created_at"

// CreateDeck inserts a new empty deck
func (r *Repository) CreateDeck(ctx context.Context, name string) (*Deck, error) {
	now := time.Now().UTC().Truncate(time.Second)
	result, err := r.db.ExecContext(ctx, "INSERT INTO decks (name, created_at) VALUES (?, ?)", name, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get deck id: %w", err)
	}
	return &Deck{ID: id, Name: name, CreatedAt: now}, nil
}

// GetDeck returns a deck with its card count, or nil if it does not exist.
func (r *Repository) GetDeck(ctx context.Context, id int64) (*Deck, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, d.created_at, (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id)
		FROM decks d WHERE d.id = ?`, id)

	deck, err := scanDeck(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck %d: %w", id, err)
	}
	return deck, nil
}

// ListDecks returns every deck ordered by id
func (r *Repository) ListDecks(ctx context.Context) ([]Deck, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.created_at, (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id)
		FROM decks d ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var out []Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		out = append(out, *deck)
	}
	return out, rows.Err()
}

// ListCards returns a deck's cards ordered by id
func (r *Repository) ListCards(ctx context.Context, deckID int64) ([]Card, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+cardColumns+" FROM cards WHERE deck_id = ? ORDER BY id", deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return out, nil
}

// GetCard returns one card, or nil if it does not exist.
func (r *Repository) GetCard(ctx context.Context, deckID int64, cardID int) (*Card, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+cardColumns+" FROM cards WHERE deck_id = ? AND id = ?", deckID, cardID)
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// ListContainers returns the container rows of one card
func (r *Repository) ListContainers(ctx context.Context, deckID int64, cardID int) ([]Container, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, deck_id, card_id, destination, color FROM containers WHERE deck_id = ? AND card_id = ? ORDER BY id",
		deckID, cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	defer rows.Close()

	var out []Container
	for rows.Next() {
		var c Container
		var dest string
		if err := rows.Scan(&c.ID, &c.DeckID, &c.CardID, &dest, &c.Color); err != nil {
			return nil, fmt.Errorf("failed to scan container: %w", err)
		}
		c.Destination = domain.PortCode(dest)
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendCards reads the deck's used ids, lets build produce new cards, and
// inserts them with their containers, all in one transaction.
// Any error from build or the inserts rolls the whole batch back.
func (r *Repository) AppendCards(ctx context.Context, deckID int64, build BuildFunc) ([]Card, error) {
	var inserted []Card

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM decks WHERE id = ?", deckID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to look up deck: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("deck %d: %w", deckID, domain.ErrNotFound)
		}

		used, err := usedIDs(ctx, tx, deckID)
		if err != nil {
			return err
		}

		cards, err := build(used)
		if err != nil {
			return err
		}

		now := time.Now().UTC().Truncate(time.Second)
		for i := range cards {
			cards[i].DeckID = deckID
			cards[i].Type = domain.TypeForID(cards[i].ID)
			cards[i].CreatedAt = now
			if err := r.insertCard(ctx, tx, &cards[i]); err != nil {
				return err
			}
		}
		inserted = cards
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateCardQuantity changes a card's quantity and reconciles its container rows.
func (r *Repository) UpdateCardQuantity(ctx context.Context, deckID int64, cardID, quantity int) (*Card, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Message: "must be positive"}
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var current int
		var dest string
		err := tx.QueryRowContext(ctx,
			"SELECT quantity, destination FROM cards WHERE deck_id = ? AND id = ?", deckID, cardID,
		).Scan(&current, &dest)
		if err == sql.ErrNoRows {
			return fmt.Errorf("card %d in deck %d: %w", cardID, deckID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load card: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE cards SET quantity = ? WHERE deck_id = ? AND id = ?", quantity, deckID, cardID,
		); err != nil {
			return fmt.Errorf("failed to update card quantity: %w", err)
		}

		switch {
		case quantity > current:
			color := r.palette.Color(domain.PortCode(dest))
			for i := current; i < quantity; i++ {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO containers (deck_id, card_id, destination, color) VALUES (?, ?, ?, ?)",
					deckID, cardID, dest, color,
				); err != nil {
					return fmt.Errorf("failed to add container: %w", err)
				}
			}
		case quantity < current:
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM containers WHERE id IN (
					SELECT id FROM containers WHERE deck_id = ? AND card_id = ? ORDER BY id DESC LIMIT ?
				)`, deckID, cardID, current-quantity,
			); err != nil {
				return fmt.Errorf("failed to remove containers: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetCard(ctx, deckID, cardID)
}

func (r *Repository) insertCard(ctx context.Context, tx *sql.Tx, c *Card) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO cards ("+cardColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.DeckID, c.ID, string(c.Type), string(c.Priority), string(c.Origin), string(c.Destination),
		c.Quantity, c.Revenue, c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %d: %w", c.ID, err)
	}

	color := r.palette.Color(c.Destination)
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO containers (deck_id, card_id, destination, color) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare container insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < c.Quantity; i++ {
		if _, err := stmt.ExecContext(ctx, c.DeckID, c.ID, string(c.Destination), color); err != nil {
			return fmt.Errorf("failed to insert container for card %d: %w", c.ID, err)
		}
	}
	return nil
}

func usedIDs(ctx context.Context, tx *sql.Tx, deckID int64) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM cards WHERE deck_id = ?", deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load used card ids: %w", err)
	}
	defer rows.Close()

	used := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		used[id] = true
	}
	return used, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDeck(row rowScanner) (*Deck, error) {
	var d Deck
	var createdAt int64
	if err := row.Scan(&d.ID, &d.Name, &createdAt, &d.CardCount); err != nil {
		return nil, err
	}
	d.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &d, nil
}

func scanCard(row rowScanner) (*Card, error) {
	var c Card
	var ctype, priority, origin, destination string
	var createdAt int64
	err := row.Scan(&c.DeckID, &c.ID, &ctype, &priority, &origin, &destination, &c.Quantity, &c.Revenue, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	c.Type = domain.ContainerType(ctype)
	c.Priority = domain.Priority(priority)
	c.Origin = domain.PortCode(origin)
	c.Destination = domain.PortCode(destination)
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &c, nil
}
