package capacity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/events"
	"github.com/harborline/cargosim/internal/modules/rooms"
	"github.com/rs/zerolog"
)

// Service records decisions and serves ledger snapshots.
type Service struct {
	repo   *Repository
	rounds rooms.RoundState
	events events.Emitter
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a capacity ledger service. A nil emitter disables event publishing.
func NewService(repo *Repository, rounds rooms.RoundState, emitter events.Emitter, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		rounds: rounds,
		events: emitter,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log.With().Str("service", "capacity").Logger(),
	}
}

// RecordDecision appends a decision for (room, user, week) and returns the folded row.
// A nil week means the room's current round. Re-submitting an identical decision
// for the same card leaves the ledger unchanged and reports Duplicate.
func (s *Service) RecordDecision(ctx context.Context, room string, userID int64, week *int, req DecisionRequest) (*RecordResult, error) {
	room, err := normalizeRoom(room)
	if err != nil {
		return nil, err
	}
	decision, port, card, err := req.Parse()
	if err != nil {
		return nil, err
	}

	resolvedWeek, err := s.resolveRecordWeek(ctx, room, week)
	if err != nil {
		return nil, err
	}

	key := Key{Room: room, UserID: userID, Week: resolvedWeek, Port: port}
	event := &Event{
		Key:      key,
		CardID:   card.ID,
		Decision: decision,
		Card:     card,
	}
	if decision == domain.DecisionAccept {
		processedAt := s.now()
		event.ProcessedAt = &processedAt
	}

	inserted, err := s.repo.Append(ctx, event)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListEvents(ctx, key)
	if err != nil {
		return nil, err
	}
	uptake := Fold(key, history)

	s.log.Info().
		Str("room", key.Room).
		Int64("user_id", userID).
		Int("week", key.Week).
		Str("port", string(port)).
		Str("card_id", card.ID).
		Str("decision", string(decision)).
		Bool("duplicate", !inserted).
		Msg("Capacity decision recorded")

	s.emitRecorded(key, card, decision, !inserted)

	return &RecordResult{Uptake: uptake, Duplicate: !inserted}, nil
}

// GetSnapshot returns the ledger row for (room, user, week).
// A nil week resolves to the latest week with events. When nothing is stored a
// zero row is returned with the week from the round pointer (or the requested
// week) and the user's assigned port.
func (s *Service) GetSnapshot(ctx context.Context, room string, userID int64, week *int) (*Uptake, error) {
	room, err := normalizeRoom(room)
	if err != nil {
		return nil, err
	}

	var resolved int
	if week != nil {
		if *week < 1 {
			return nil, &domain.ValidationError{Field: "week", Message: "must be at least 1"}
		}
		resolved = *week
	} else {
		latest, ok, err := s.repo.LatestWeek(ctx, room, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.zeroProjection(ctx, room, userID, nil)
		}
		resolved = latest
	}

	ports, err := s.repo.PortsForWeek(ctx, room, userID, resolved)
	if err != nil {
		return nil, err
	}
	if len(ports) == 0 {
		return s.zeroProjection(ctx, room, userID, &resolved)
	}

	assigned, err := s.rounds.AssignedPort(ctx, room, userID)
	if err != nil {
		return nil, err
	}
	port := ports[0]
	for _, p := range ports {
		if p == assigned {
			port = p
			break
		}
	}

	key := Key{Room: room, UserID: userID, Week: resolved, Port: port}
	history, err := s.repo.ListEvents(ctx, key)
	if err != nil {
		return nil, err
	}
	return Fold(key, history), nil
}

// RejectedForWeek returns the rejected card snapshots for (room, user, week) across ports.
func (s *Service) RejectedForWeek(ctx context.Context, room string, userID int64, week int) ([]CardSnapshot, error) {
	room, err := normalizeRoom(room)
	if err != nil {
		return nil, err
	}
	rejected, err := s.repo.RejectedForWeek(ctx, room, userID, week)
	if err != nil {
		return nil, err
	}
	out := make([]CardSnapshot, len(rejected))
	for i, e := range rejected {
		out[i] = e.Card
	}
	return out, nil
}

// normalizeRoom trims the room code; every ledger path keys on the trimmed form.
func normalizeRoom(room string) (string, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return "", &domain.ValidationError{Field: "room", Message: "is required"}
	}
	return room, nil
}

func (s *Service) resolveRecordWeek(ctx context.Context, room string, week *int) (int, error) {
	if week != nil {
		if *week < 1 {
			return 0, &domain.ValidationError{Field: "week", Message: "must be at least 1"}
		}
		return *week, nil
	}
	r, err := s.rounds.GetRoom(ctx, room)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current round: %w", err)
	}
	return r.CurrentRound, nil
}

func (s *Service) zeroProjection(ctx context.Context, room string, userID int64, week *int) (*Uptake, error) {
	r, err := s.rounds.GetRoom(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current round: %w", err)
	}
	port, err := s.rounds.AssignedPort(ctx, room, userID)
	if err != nil {
		return nil, err
	}

	resolved := r.CurrentRound
	if week != nil {
		resolved = *week
	}
	return Empty(Key{Room: room, UserID: userID, Week: resolved, Port: port}), nil
}

func (s *Service) emitRecorded(key Key, card CardSnapshot, decision domain.Decision, duplicate bool) {
	if s.events == nil {
		return
	}
	s.events.EmitTyped("capacity", &events.DecisionRecordedData{
		Room:      key.Room,
		UserID:    key.UserID,
		Week:      key.Week,
		Port:      string(key.Port),
		CardID:    card.ID,
		Decision:  string(decision),
		Quantity:  card.Units(),
		Duplicate: duplicate,
	})
}
