package decks

import (
	"context"
	"fmt"
	"strings"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/events"
	"github.com/rs/zerolog"
)

// Service exposes deck operations to handlers and other modules.
type Service struct {
	repo   *Repository
	events events.Emitter
	log    zerolog.Logger
}

// NewService creates a deck service. A nil emitter disables event publishing.
func NewService(repo *Repository, emitter events.Emitter, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: emitter,
		log:    log.With().Str("service", "decks").Logger(),
	}
}

// Repository exposes the underlying repository for modules that append cards.
func (s *Service) Repository() *Repository {
	return s.repo
}

// CreateDeck creates an empty deck
func (s *Service) CreateDeck(ctx context.Context, name string) (*Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "is required"}
	}
	return s.repo.CreateDeck(ctx, name)
}

// GetDeck returns a deck or ErrNotFound
func (s *Service) GetDeck(ctx context.Context, id int64) (*Deck, error) {
	deck, err := s.repo.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("deck %d: %w", id, domain.ErrNotFound)
	}
	return deck, nil
}

// ListDecks returns every deck
func (s *Service) ListDecks(ctx context.Context) ([]Deck, error) {
	return s.repo.ListDecks(ctx)
}

// ListCards returns a deck's cards or ErrNotFound for an unknown deck
func (s *Service) ListCards(ctx context.Context, deckID int64) ([]Card, error) {
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	return s.repo.ListCards(ctx, deckID)
}

// GetCard returns one card, or nil if it is gone.
func (s *Service) GetCard(ctx context.Context, deckID int64, cardID int) (*Card, error) {
	return s.repo.GetCard(ctx, deckID, cardID)
}

// ImportCards validates and stores a batch. Any row error rejects the whole batch.
func (s *Service) ImportCards(ctx context.Context, deckID int64, req ImportRequest) ([]Card, error) {
	cards, err := s.repo.AppendCards(ctx, deckID, func(used map[int]bool) ([]Card, error) {
		return ValidateImport(req.Cards, used, req.AutoID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("deck_id", deckID).
		Int("cards", len(cards)).
		Bool("auto_id", req.AutoID).
		Msg("Cards imported")

	if s.events != nil {
		s.events.EmitTyped("decks", &events.CardsImportedData{
			DeckID:    deckID,
			CardCount: len(cards),
			AutoID:    req.AutoID,
		})
	}
	return cards, nil
}

// UpdateCardQuantity changes a card's quantity and its containers
func (s *Service) UpdateCardQuantity(ctx context.Context, deckID int64, cardID, quantity int) (*Card, error) {
	return s.repo.UpdateCardQuantity(ctx, deckID, cardID, quantity)
}

// ListContainers returns the containers of a card
func (s *Service) ListContainers(ctx context.Context, deckID int64, cardID int) ([]Container, error) {
	return s.repo.ListContainers(ctx, deckID, cardID)
}
