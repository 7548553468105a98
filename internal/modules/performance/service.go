package performance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/events"
	"github.com/harborline/cargosim/internal/modules/capacity"
	"github.com/harborline/cargosim/internal/modules/decks"
	"github.com/harborline/cargosim/internal/modules/rooms"
	"github.com/rs/zerolog"
)

// RejectedSource supplies rejected card snapshots per week
type RejectedSource interface {
	RejectedForWeek(ctx context.Context, room string, userID int64, week int) ([]capacity.CardSnapshot, error)
}

// CardSource resolves deck cards; nil means the card no longer exists
type CardSource interface {
	GetCard(ctx context.Context, deckID int64, cardID int) (*decks.Card, error)
}

// Service builds, caches and patches weekly performance summaries.
type Service struct {
	repo     *Repository
	rejected RejectedSource
	cards    CardSource
	rounds   rooms.RoundState
	events   events.Emitter
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a weekly performance service. A nil emitter disables event publishing.
func NewService(repo *Repository, rejected RejectedSource, cards CardSource, rounds rooms.RoundState, emitter events.Emitter, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		rejected: rejected,
		cards:    cards,
		rounds:   rounds,
		events:   emitter,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("service", "performance").Logger(),
	}
}

// GetOrBuild returns the stored summary, deriving and storing it on first read.
func (s *Service) GetOrBuild(ctx context.Context, room string, userID int64) (*Summary, error) {
	stored, err := s.repo.Get(ctx, room, userID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}

	input, err := s.gather(ctx, room, userID)
	if err != nil {
		return nil, err
	}

	summary := Derive(input)
	replayed, err := s.replay(ctx, summary)
	if err != nil {
		return nil, err
	}
	summary.UpdatedAt = s.now().Truncate(time.Second)

	result, created, err := s.repo.Insert(ctx, summary)
	if err != nil {
		return nil, err
	}

	if created {
		s.log.Info().
			Str("room", room).
			Int64("user_id", userID).
			Int("weeks", len(result.Weeks)).
			Int("patches_replayed", replayed).
			Int64("total_revenue", result.TotalRevenue).
			Msg("Weekly performance built")

		if s.events != nil {
			s.events.EmitTyped("performance", &events.PerformanceRebuiltData{
				Room:         room,
				UserID:       userID,
				Weeks:        len(result.Weeks),
				TotalRevenue: result.TotalRevenue,
			})
		}
	}
	return result, nil
}

// Rebuild drops the stored summary and derives it again from the ledger,
// replaying the patch log on top.
func (s *Service) Rebuild(ctx context.Context, room string, userID int64) (*Summary, error) {
	if _, err := s.repo.Delete(ctx, room, userID); err != nil {
		return nil, err
	}
	return s.GetOrBuild(ctx, room, userID)
}

// MergeWeek applies a week patch to the stored summary.
// It fails with ErrNotFound when no summary has been built or the week is absent.
func (s *Service) MergeWeek(ctx context.Context, room string, userID int64, week int, raw json.RawMessage) (*Summary, error) {
	if week < 1 {
		return nil, &domain.ValidationError{Field: "week", Message: "must be at least 1"}
	}

	patch, err := DecodeWeekPatch(raw)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(week); err != nil {
		return nil, err
	}

	summary, err := s.repo.Get(ctx, room, userID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("weekly performance for %s/%d: %w", room, userID, domain.ErrNotFound)
	}

	if err := ApplyPatch(summary, week, patch); err != nil {
		return nil, err
	}
	summary.UpdatedAt = s.now().Truncate(time.Second)

	if err := s.repo.SaveWithPatch(ctx, summary, week, raw); err != nil {
		return nil, err
	}

	fields := patch.Fields()
	s.log.Info().
		Str("room", room).
		Int64("user_id", userID).
		Int("week", week).
		Strs("fields", fields).
		Msg("Weekly performance merged")

	if s.events != nil {
		s.events.EmitTyped("performance", &events.PerformanceWeekMergedData{
			Room:           room,
			UserID:         userID,
			Week:           week,
			Fields:         fields,
			TotalRevenue:   summary.TotalRevenue,
			TotalPenalties: summary.TotalPenalties,
		})
	}
	return summary, nil
}

// Patches returns the patch log
func (s *Service) Patches(ctx context.Context, room string, userID int64) ([]PatchRecord, error) {
	return s.repo.Patches(ctx, room, userID)
}

// replay applies logged week patches in order. Patches for weeks the summary
// no longer has are skipped.
func (s *Service) replay(ctx context.Context, summary *Summary) (int, error) {
	history, err := s.repo.Patches(ctx, summary.Room, summary.UserID)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, rec := range history {
		patch, err := DecodeWeekPatch(rec.Patch)
		if err != nil {
			s.log.Warn().Err(err).Int64("seq", rec.Seq).Msg("Skipping undecodable performance patch")
			continue
		}
		if err := ApplyPatch(summary, rec.Week, patch); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// gather reads round state, revenue and rejected cards for every played week.
func (s *Service) gather(ctx context.Context, room string, userID int64) (DeriveInput, error) {
	r, err := s.rounds.GetRoom(ctx, room)
	if err != nil {
		return DeriveInput{}, err
	}
	revenue, err := s.rounds.RevenueByWeek(ctx, room, userID)
	if err != nil {
		return DeriveInput{}, err
	}

	input := DeriveInput{
		Room:         room,
		UserID:       userID,
		CurrentRound: r.CurrentRound,
		TotalRounds:  r.TotalRounds,
		Rejected:     make(map[int][]RolledCard),
		Revenue:      revenue,
	}

	for week := 1; week <= r.TotalRounds && week <= r.CurrentRound; week++ {
		snapshots, err := s.rejected.RejectedForWeek(ctx, room, userID, week)
		if err != nil {
			return DeriveInput{}, err
		}
		for _, snap := range snapshots {
			rolled, err := s.resolve(ctx, r.DeckID, snap)
			if err != nil {
				return DeriveInput{}, err
			}
			input.Rejected[week] = append(input.Rejected[week], rolled)
		}
	}
	return input, nil
}

// resolve joins a rejected snapshot to its deck card, falling back to the snapshot
// when the room has no deck, the id is not numeric, or the card is gone.
func (s *Service) resolve(ctx context.Context, deckID *int64, snap capacity.CardSnapshot) (RolledCard, error) {
	fallback := RolledCard{Type: snap.Type, Priority: snap.Priority, Quantity: snap.Units()}
	if deckID == nil || s.cards == nil {
		return fallback, nil
	}
	id, err := strconv.Atoi(snap.ID)
	if err != nil {
		return fallback, nil
	}

	card, err := s.cards.GetCard(ctx, *deckID, id)
	if err != nil {
		return RolledCard{}, err
	}
	if card == nil {
		return fallback, nil
	}
	return RolledCard{Type: card.Type, Priority: card.Priority, Quantity: card.Quantity}, nil
}
