// Package handlers provides HTTP handlers for the capacity uptake ledger.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/httputil"
	"github.com/harborline/cargosim/internal/modules/capacity"
	"github.com/rs/zerolog"
)

// Handler handles capacity uptake HTTP requests
type Handler struct {
	service *capacity.Service
	log     zerolog.Logger
}

// NewHandler creates a new capacity uptake handler
func NewHandler(service *capacity.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "capacity").Logger(),
	}
}

// HandleRecord handles POST /api/rooms/{room}/users/{userID}/capacity-uptake[/{week}]
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	room, userID, week, err := parseKey(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	var req capacity.DecisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	result, err := h.service.RecordDecision(r.Context(), room, userID, week, req)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, result)
}

// HandleGet handles GET /api/rooms/{room}/users/{userID}/capacity-uptake[/{week}].
// A missing row is answered with a zero projection, never 404.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	room, userID, week, err := parseKey(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	uptake, err := h.service.GetSnapshot(r.Context(), room, userID, week)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, uptake)
}

// parseKey reads room, user and the optional week from the path or ?week= query.
func parseKey(r *http.Request) (string, int64, *int, error) {
	room, err := httputil.RequiredParam(r, "room")
	if err != nil {
		return "", 0, nil, err
	}
	userID, err := httputil.PositiveInt64Param(r, "userID")
	if err != nil {
		return "", 0, nil, err
	}

	raw := chi.URLParam(r, "week")
	if raw == "" {
		raw = r.URL.Query().Get("week")
	}
	if raw == "" {
		return room, userID, nil, nil
	}

	week, err := strconv.Atoi(raw)
	if err != nil || week < 1 {
		return "", 0, nil, &domain.ValidationError{Field: "week", Message: "must be a positive integer"}
	}
	return room, userID, &week, nil
}
