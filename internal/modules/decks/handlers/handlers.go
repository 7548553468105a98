// Package handlers provides HTTP handlers for decks and cards.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/httputil"
	"github.com/harborline/cargosim/internal/modules/decks"
	"github.com/rs/zerolog"
)

// Handler handles deck HTTP requests
type Handler struct {
	service *decks.Service
	log     zerolog.Logger
}

// NewHandler creates a new deck handler
func NewHandler(service *decks.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "decks").Logger(),
	}
}

type createDeckRequest struct {
	Name string `json:"name"`
}

type updateCardRequest struct {
	Quantity int `json:"quantity"`
}

// HandleCreateDeck handles POST /api/decks
func (h *Handler) HandleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	deck, err := h.service.CreateDeck(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusCreated, deck)
}

// HandleListDecks handles GET /api/decks
func (h *Handler) HandleListDecks(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDecks(r.Context())
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	if list == nil {
		list = []decks.Deck{}
	}

	httputil.WriteData(w, h.log, http.StatusOK, list)
}

// HandleGetDeck handles GET /api/decks/{deckID}
func (h *Handler) HandleGetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := DeckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	deck, err := h.service.GetDeck(r.Context(), deckID)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, deck)
}

// HandleListCards handles GET /api/decks/{deckID}/cards
func (h *Handler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := DeckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	cards, err := h.service.ListCards(r.Context(), deckID)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	if cards == nil {
		cards = []decks.Card{}
	}

	httputil.WriteData(w, h.log, http.StatusOK, cards)
}

// HandleImportCards handles POST /api/decks/{deckID}/cards/import
func (h *Handler) HandleImportCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := DeckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	var req decks.ImportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	cards, err := h.service.ImportCards(r.Context(), deckID, req)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusCreated, cards)
}

// HandleUpdateCard handles PATCH /api/decks/{deckID}/cards/{cardID}
func (h *Handler) HandleUpdateCard(w http.ResponseWriter, r *http.Request) {
	deckID, err := DeckIDParam(r)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}
	cardID, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil || cardID <= 0 {
		httputil.WriteError(w, h.log, &domain.ValidationError{Field: "cardID", Message: "must be a positive integer"})
		return
	}

	var req updateCardRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	card, err := h.service.UpdateCardQuantity(r.Context(), deckID, cardID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, h.log, err)
		return
	}

	httputil.WriteData(w, h.log, http.StatusOK, card)
}

// DeckIDParam parses the {deckID} URL parameter
func DeckIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "deckID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "deckID", Message: "must be a positive integer"}
	}
	return id, nil
}
