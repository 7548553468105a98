// Package decks stores decks, their cards and the per-unit container rows.
package decks

import (
	"time"

	"github.com/harborline/cargosim/internal/domain"
)

// Deck is a named collection of cards
type Deck struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Card is one sales call. Type is always derived from ID.
type Card struct {
	ID          int                  `json:"id"`
	DeckID      int64                `json:"deck_id"`
	Type        domain.ContainerType `json:"type"`
	Priority    domain.Priority      `json:"priority"`
	Origin      domain.PortCode      `json:"origin"`
	Destination domain.PortCode      `json:"destination"`
	Quantity    int                  `json:"quantity"`
	Revenue     int64                `json:"revenue"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Container is one physical unit of a card's quantity
type Container struct {
	ID          int64           `json:"id"`
	DeckID      int64           `json:"deck_id"`
	CardID      int             `json:"card_id"`
	Destination domain.PortCode `json:"destination"`
	Color       string          `json:"color"`
}

// ImportRow is one untrusted row of a bulk card import
type ImportRow struct {
	ID          *int   `json:"id,omitempty"`
	Priority    string `json:"priority"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Quantity    int    `json:"quantity"`
	Revenue     int64  `json:"revenue"`
}

// ImportRequest is the body of POST /api/decks/{deckID}/cards/import
type ImportRequest struct {
	AutoID bool        `json:"auto_id"`
	Cards  []ImportRow `json:"cards"`
}

// Palette maps a destination port to its container color
type Palette interface {
	Color(destination domain.PortCode) string
}

// BuildFunc produces the cards to append given the ids already used in the deck.
// It runs inside the insert transaction.
type BuildFunc func(used map[int]bool) ([]Card, error)
