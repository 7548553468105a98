package pricing

import "time"

// MarketIntelligence is a named per-deck price override set.
// At most one set per deck is active at a time.
type MarketIntelligence struct {
	ID        string             `json:"id"`
	DeckID    int64              `json:"deck_id"`
	Name      string             `json:"name"`
	PriceData map[string]float64 `json:"price_data"`
	IsActive  bool               `json:"is_active"`
	CreatedAt time.Time          `json:"created_at"`
}

// CreateRequest is the body of POST /api/decks/{deckID}/market-intelligence
type CreateRequest struct {
	Name      string                 `json:"name"`
	PriceData map[string]interface{} `json:"price_data"`
	Activate  bool                   `json:"activate"`
}
