package testing

import (
	"database/sql"
	"testing"
	"time"

	"github.com/harborline/cargosim/internal/domain"
)

// CardFixture is a raw card row for seeding game.db without going through the decks module.
type CardFixture struct {
	ID          int
	Priority    domain.Priority
	Origin      domain.PortCode
	Destination domain.PortCode
	Quantity    int
	Revenue     int64
}

// SeedDeck inserts an empty deck and returns its id.
func SeedDeck(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	result, err := db.Exec("INSERT INTO decks (name, created_at) VALUES (?, ?)", name, time.Now().Unix())
	if err != nil {
		t.Fatalf("Failed to seed deck %s: %v", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read deck id: %v", err)
	}
	return id
}

// SeedCards inserts cards with one gray container per unit of quantity.
func SeedCards(t *testing.T, db *sql.DB, deckID int64, cards ...CardFixture) {
	t.Helper()

	now := time.Now().Unix()
	for _, c := range cards {
		priority := c.Priority
		if priority == "" {
			priority = domain.PriorityNonCommitted
		}
		_, err := db.Exec(
			`INSERT INTO cards (deck_id, id, type, priority, origin, destination, quantity, revenue, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			deckID, c.ID, string(domain.TypeForID(c.ID)), string(priority),
			string(c.Origin), string(c.Destination), c.Quantity, c.Revenue, now,
		)
		if err != nil {
			t.Fatalf("Failed to seed card %d: %v", c.ID, err)
		}
		for i := 0; i < c.Quantity; i++ {
			if _, err := db.Exec(
				"INSERT INTO containers (deck_id, card_id, destination, color) VALUES (?, ?, ?, 'gray')",
				deckID, c.ID, string(c.Destination),
			); err != nil {
				t.Fatalf("Failed to seed container for card %d: %v", c.ID, err)
			}
		}
	}
}
