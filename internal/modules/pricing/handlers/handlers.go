// Package handlers provides HTTP handlers for market intelligence price overrides.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/httputil"
	"github.com/harborline/cargosim/internal/modules/pricing"
	"github.com/rs/zerolog"
)

// Handler handles market intelligence HTTP requests
type Handler struct {
	service *pricing.Service
	log     zerolog.Logger
}

// NewHandler creates a new market intelligence handler
func NewHandler(service *pricing.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market_intelligence").Logger(),
	}
}

// HandleList handles GET /api/decks/{deckID}/market-intelligence
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	deckID, err := deckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	sets, err := h.service.List(r.Context(), deckID)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	if sets == nil {
		sets = []pricing.MarketIntelligence{}
	}

	httputil.WriteData(w, h.log, http.StatusOK, sets)
}

// HandleCreate handles POST /api/decks/{deckID}/market-intelligence
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	deckID, err := deckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	var req pricing.CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	mi, err := h.service.Create(r.Context(), deckID, req)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusCreated, mi)
}

// HandleActivate handles POST /api/decks/{deckID}/market-intelligence/{id}/activate
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	deckID, err := deckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	mi, err := h.service.Activate(r.Context(), deckID, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, mi)
}

// HandleDelete handles DELETE /api/decks/{deckID}/market-intelligence/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deckID, err := deckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	if err := h.service.Delete(r.Context(), deckID, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func deckIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "deckID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "deckID", Message: "must be a positive integer"}
	}
	return id, nil
}
