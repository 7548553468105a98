// Package handlers provides admin HTTP handlers for room round state.
package handlers

import (
	"net/http"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/httputil"
	"github.com/harborline/cargosim/internal/modules/rooms"
	"github.com/rs/zerolog"
)

// Handler handles room HTTP requests
type Handler struct {
	repo *rooms.Repository
	log  zerolog.Logger
}

// NewHandler creates a new room handler
func NewHandler(repo *rooms.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "rooms").Logger(),
	}
}

type assignPortRequest struct {
	Port string `json:"port"`
}

type revenueRequest struct {
	Revenue *int64 `json:"revenue"`
}

// HandleGetRoom handles GET /api/rooms/{room}
func (h *Handler) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := httputil.RequiredParam(r, "room")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	room, err := h.repo.GetRoom(r.Context(), roomID)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	httputil.WriteData(w, h.log, http.StatusOK, room)
}

// HandleUpdateRoom handles PUT /api/rooms/{room}
func (h *Handler) HandleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := httputil.RequiredParam(r, "room")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	var req rooms.UpdateRoomRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	room, err := h.repo.UpdateRoom(r.Context(), roomID, req)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	httputil.WriteData(w, h.log, http.StatusOK, room)
}

// HandleAssignPort handles PUT /api/rooms/{room}/users/{userID}
func (h *Handler) HandleAssignPort(w http.ResponseWriter, r *http.Request) {
	roomID, err := httputil.RequiredParam(r, "room")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	userID, err := httputil.PositiveInt64Param(r, "userID")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	var req assignPortRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	port, err := domain.ParsePort(req.Port)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	player, err := h.repo.AssignPort(r.Context(), roomID, userID, port)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	httputil.WriteData(w, h.log, http.StatusOK, player)
}

// HandleSetRevenue handles PUT /api/rooms/{room}/users/{userID}/revenue/{week}
func (h *Handler) HandleSetRevenue(w http.ResponseWriter, r *http.Request) {
	roomID, err := httputil.RequiredParam(r, "room")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	userID, err := httputil.PositiveInt64Param(r, "userID")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	week, err := httputil.PositiveIntParam(r, "week")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	var req revenueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	if req.Revenue == nil {
		httputil.WriteError(w, h.log, &domain.ValidationError{Field: "revenue", Message: "is required"})
		return
	}

	if err := h.repo.SetRoundRevenue(r.Context(), roomID, userID, week, *req.Revenue); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	httputil.WriteData(w, h.log, http.StatusOK, map[string]interface{}{
		"room":    roomID,
		"user_id": userID,
		"week":    week,
		"revenue": *req.Revenue,
	})
}
