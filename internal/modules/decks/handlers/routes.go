package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all deck routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/decks", h.HandleCreateDeck)
	r.Get("/decks", h.HandleListDecks)
	r.Get("/decks/{deckID}", h.HandleGetDeck)
	r.Get("/decks/{deckID}/cards", h.HandleListCards)
	r.Post("/decks/{deckID}/cards/import", h.HandleImportCards)
	r.Patch("/decks/{deckID}/cards/{cardID}", h.HandleUpdateCard)
}
