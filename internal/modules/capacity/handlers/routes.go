package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all capacity uptake routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/rooms/{room}/users/{userID}/capacity-uptake", h.HandleRecord)
	r.Post("/rooms/{room}/users/{userID}/capacity-uptake/{week}", h.HandleRecord)
	r.Get("/rooms/{room}/users/{userID}/capacity-uptake", h.HandleGet)
	r.Get("/rooms/{room}/users/{userID}/capacity-uptake/{week}", h.HandleGet)
}
