package demand

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/events"
	"github.com/harborline/cargosim/internal/modules/decks"
	"github.com/harborline/cargosim/internal/modules/pricing"
	"github.com/harborline/cargosim/internal/utils"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// Service runs generation requests against a deck.
type Service struct {
	decks   *decks.Service
	pricing *pricing.Service
	events  events.Emitter
	log     zerolog.Logger

	mu  sync.Mutex // guards rng
	rng Random
}

// NewService creates a demand service. A nil rng gets a time-seeded source.
func NewService(deckService *decks.Service, pricingService *pricing.Service, rng Random, emitter events.Emitter, log zerolog.Logger) *Service {
	if rng == nil {
		rng = NewRandom()
	}
	return &Service{
		decks:   deckService,
		pricing: pricingService,
		events:  emitter,
		rng:     rng,
		log:     log.With().Str("service", "demand").Logger(),
	}
}

// Generate validates req, generates every port's calls and stores them in one transaction.
func (s *Service) Generate(ctx context.Context, deckID int64, req GenerationRequest) (*GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deck, err := s.decks.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	model, active, err := s.pricing.ModelForDeck(ctx, deckID, req.MarketIntelligenceEnabled())
	if err != nil {
		return nil, err
	}

	roster, err := domain.Roster(req.Ports)
	if err != nil {
		return nil, err
	}
	draw := ChancePriority
	if active != nil {
		if override := pricing.OverrideRoster(active.PriceData); len(override) >= domain.MinRosterSize {
			roster = override
			draw = CoinPriority
		}
	}

	timer := utils.NewTimer("demand_generation", s.log)
	targets := req.Targets()

	s.mu.Lock()
	generator := NewGenerator(s.rng, model, draw)
	cards, err := s.decks.Repository().AppendCards(ctx, deckID, func(used map[int]bool) ([]decks.Card, error) {
		generated := generator.Generate(roster, targets, used)
		if err := CheckRevenue(generated); err != nil {
			return nil, err
		}
		return generated, nil
	})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{
		RunID:  uuid.New().String(),
		Deck:   deck,
		Cards:  cards,
		Roster: roster,
		Ports:  PortStatistics(roster, cards),
	}
	result.Deck.CardCount += len(cards)
	if active != nil {
		result.MarketIntelligenceID = active.ID
	}

	timer.StopWithFields(map[string]interface{}{
		"deck_id": deckID,
		"cards":   len(cards),
		"ports":   len(roster),
	})

	s.log.Info().
		Int64("deck_id", deckID).
		Str("run_id", result.RunID).
		Int("cards", len(cards)).
		Int("ports", len(roster)).
		Bool("market_intelligence", active != nil).
		Bool("price_override", model.HasOverride()).
		Msg("Demand generated")

	if s.events != nil {
		ports := make([]string, len(roster))
		for i, p := range roster {
			ports[i] = string(p)
		}
		s.events.EmitTyped("demand", &events.CardsGeneratedData{
			DeckID:    deckID,
			RunID:     result.RunID,
			CardCount: len(cards),
			Ports:     ports,
			Override:  active != nil,
		})
	}

	return result, nil
}

// PortStatistics summarizes generated cards per origin in roster order.
func PortStatistics(roster []domain.PortCode, cards []decks.Card) []PortStats {
	byOrigin := make(map[domain.PortCode][]decks.Card, len(roster))
	for _, c := range cards {
		byOrigin[c.Origin] = append(byOrigin[c.Origin], c)
	}

	out := make([]PortStats, 0, len(roster))
	for _, port := range roster {
		calls := byOrigin[port]
		ps := PortStats{Port: port, Calls: len(calls)}

		quantities := make([]float64, len(calls))
		unitRevenues := make([]float64, len(calls))
		for i, c := range calls {
			ps.TotalQuantity += c.Quantity
			ps.TotalRevenue += c.Revenue
			if c.Priority.Committed() {
				ps.CommittedCalls++
			}
			if c.Type == domain.ContainerReefer {
				ps.ReeferCalls++
			}
			quantities[i] = float64(c.Quantity)
			unitRevenues[i] = float64(c.Revenue) / float64(c.Quantity)
		}

		ps.MeanQuantity, ps.StdDevQuantity = meanStdDev(quantities)
		ps.MeanUnitRevenue, ps.StdDevUnitRevenue = meanStdDev(unitRevenues)
		out = append(out, ps)
	}
	return out
}

// meanStdDev wraps stat.MeanStdDev, which yields NaN deviation for fewer than two samples.
func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
