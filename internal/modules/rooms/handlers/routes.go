package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all room admin routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rooms/{room}", h.HandleGetRoom)
	r.Put("/rooms/{room}", h.HandleUpdateRoom)
	r.Put("/rooms/{room}/users/{userID}", h.HandleAssignPort)
	r.Put("/rooms/{room}/users/{userID}/revenue/{week}", h.HandleSetRevenue)
}
