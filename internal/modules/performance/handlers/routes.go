package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all weekly performance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rooms/{room}/users/{userID}/weekly-performance", h.HandleGet)
	r.Get("/rooms/{room}/users/{userID}/weekly-performance/patches", h.HandlePatches)
	r.Post("/rooms/{room}/users/{userID}/weekly-performance/rebuild", h.HandleRebuild)
	r.Patch("/rooms/{room}/users/{userID}/weekly-performance/{week}", h.HandleMergeWeek)
}
