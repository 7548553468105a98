// Package handlers provides HTTP handlers for weekly performance summaries.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/httputil"
	"github.com/harborline/cargosim/internal/modules/performance"
	"github.com/rs/zerolog"
)

// Handler handles weekly performance HTTP requests
type Handler struct {
	service *performance.Service
	log     zerolog.Logger
}

// NewHandler creates a new weekly performance handler
func NewHandler(service *performance.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "performance").Logger(),
	}
}

// MergeRequest is the body of PATCH .../weekly-performance/{week}
type MergeRequest struct {
	WeekData json.RawMessage `json:"weekData"`
}

// HandleGet handles GET /api/rooms/{room}/users/{userID}/weekly-performance
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	room, userID, err := parseOwner(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	summary, err := h.service.GetOrBuild(r.Context(), room, userID)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, summary)
}

// HandleMergeWeek handles PATCH /api/rooms/{room}/users/{userID}/weekly-performance/{week}
func (h *Handler) HandleMergeWeek(w http.ResponseWriter, r *http.Request) {
	room, userID, err := parseOwner(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	week, err := httputil.PositiveIntParam(r, "week")
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	var req MergeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	if len(req.WeekData) == 0 || string(req.WeekData) == "null" {
		httputil.WriteError(w, h.log, &domain.ValidationError{Field: "weekData", Message: "is required"})
		return
	}

	summary, err := h.service.MergeWeek(r.Context(), room, userID, week, req.WeekData)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, summary)
}

// HandleRebuild handles POST /api/rooms/{room}/users/{userID}/weekly-performance/rebuild
func (h *Handler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	room, userID, err := parseOwner(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	summary, err := h.service.Rebuild(r.Context(), room, userID)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, summary)
}

// HandlePatches handles GET /api/rooms/{room}/users/{userID}/weekly-performance/patches
func (h *Handler) HandlePatches(w http.ResponseWriter, r *http.Request) {
	room, userID, err := parseOwner(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	patches, err := h.service.Patches(r.Context(), room, userID)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	if patches == nil {
		patches = []performance.PatchRecord{}
	}

	httputil.WriteData(w, h.log, http.StatusOK, patches)
}

func parseOwner(r *http.Request) (string, int64, error) {
	room, err := httputil.RequiredParam(r, "room")
	if err != nil {
		return "", 0, err
	}
	userID, err := httputil.PositiveInt64Param(r, "userID")
	if err != nil {
		return "", 0, err
	}
	return room, userID, nil
}
