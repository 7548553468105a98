package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market intelligence routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/decks/{deckID}/market-intelligence", h.HandleList)
	r.Post("/decks/{deckID}/market-intelligence", h.HandleCreate)
	r.Post("/decks/{deckID}/market-intelligence/{id}/activate", h.HandleActivate)
	r.Delete("/decks/{deckID}/market-intelligence/{id}", h.HandleDelete)
}
