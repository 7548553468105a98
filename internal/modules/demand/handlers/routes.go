package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the generation route
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/decks/{deckID}/generate", h.HandleGenerate)
}
