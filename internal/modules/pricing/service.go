package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/events"
	"github.com/rs/zerolog"
)

// Service manages market intelligence and builds price models for generation runs.
type Service struct {
	repo   *Repository
	table  *Table
	events events.Emitter
	log    zerolog.Logger
}

// NewService creates a pricing service. A nil emitter disables event publishing.
func NewService(repo *Repository, table *Table, emitter events.Emitter, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		table:  table,
		events: emitter,
		log:    log.With().Str("service", "pricing").Logger(),
	}
}

// Table returns the builtin table backing this service.
func (s *Service) Table() *Table {
	return s.table
}

// Create validates raw JSON price data and stores it.
func (s *Service) Create(ctx context.Context, deckID int64, req CreateRequest) (*MarketIntelligence, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "is required"}
	}

	priceData, err := NormalizePriceData(req.PriceData)
	if err != nil {
		return nil, err
	}

	mi, err := s.repo.Create(ctx, deckID, name, priceData, req.Activate)
	if err != nil {
		return nil, err
	}
	if mi.IsActive {
		s.emitActivated(mi)
	}
	return mi, nil
}

// List returns every set for a deck.
func (s *Service) List(ctx context.Context, deckID int64) ([]MarketIntelligence, error) {
	return s.repo.List(ctx, deckID)
}

// Activate switches the deck's active set.
func (s *Service) Activate(ctx context.Context, deckID int64, id string) (*MarketIntelligence, error) {
	if err := s.repo.Activate(ctx, deckID, id); err != nil {
		return nil, err
	}
	mi, err := s.repo.Get(ctx, deckID, id)
	if err != nil {
		return nil, err
	}
	if mi == nil {
		return nil, fmt.Errorf("market intelligence %s: %w", id, domain.ErrNotFound)
	}
	s.emitActivated(mi)
	return mi, nil
}

// Delete removes a set.
func (s *Service) Delete(ctx context.Context, deckID int64, id string) error {
	return s.repo.Delete(ctx, deckID, id)
}

// ModelForDeck returns the price model for a generation run.
// With useOverride false, or no non-empty active set, only the builtin table applies.
func (s *Service) ModelForDeck(ctx context.Context, deckID int64, useOverride bool) (*Model, *MarketIntelligence, error) {
	if !useOverride {
		return NewModel(s.table, nil), nil, nil
	}

	active, err := s.repo.GetActive(ctx, deckID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load active market intelligence: %w", err)
	}
	if active == nil || len(active.PriceData) == 0 {
		return NewModel(s.table, nil), nil, nil
	}

	s.log.Debug().
		Int64("deck_id", deckID).
		Str("market_intelligence", active.ID).
		Msg("Using market intelligence prices")

	return NewModel(s.table, active.PriceData), active, nil
}

func (s *Service) emitActivated(mi *MarketIntelligence) {
	if s.events == nil {
		return
	}
	s.events.EmitTyped("pricing", &events.MarketIntelligenceActivatedData{
		DeckID: mi.DeckID,
		ID:     mi.ID,
		Name:   mi.Name,
	})
}
