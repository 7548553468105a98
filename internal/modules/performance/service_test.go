package performance

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/events"
	"github.com/harborline/cargosim/internal/modules/capacity"
	"github.com/harborline/cargosim/internal/modules/decks"
	"github.com/harborline/cargosim/internal/modules/rooms"
	testutil "github.com/harborline/cargosim/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grayPalette struct{}

func (grayPalette) Color(domain.PortCode) string { return "gray" }

type fixture struct {
	service  *Service
	capacity *capacity.Service
	rooms    *rooms.Repository
	emitter  *testutil.RecordingEmitter
	deckID   int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	game, cleanupGame := testutil.NewTestDB(t, "game")
	t.Cleanup(cleanupGame)
	ledger, cleanupLedger := testutil.NewTestDB(t, "ledger")
	t.Cleanup(cleanupLedger)
	cache, cleanupCache := testutil.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	deckID := testutil.SeedDeck(t, game.Conn(), "week deck")
	testutil.SeedCards(t, game.Conn(), deckID,
		testutil.CardFixture{ID: 5, Priority: domain.PriorityCommitted, Origin: domain.PortSBY, Destination: domain.PortMKS, Quantity: 4, Revenue: 200_000},
		testutil.CardFixture{ID: 7, Priority: domain.PriorityNonCommitted, Origin: domain.PortSBY, Destination: domain.PortMDN, Quantity: 2, Revenue: 100_000},
	)

	roomRepo := rooms.NewRepository(game.Conn(), 4, zerolog.Nop())
	deckService := decks.NewService(decks.NewRepository(game.Conn(), grayPalette{}, zerolog.Nop()), nil, zerolog.Nop())
	capacityService := capacity.NewService(capacity.NewRepository(ledger.Conn(), zerolog.Nop()), roomRepo, nil, zerolog.Nop())
	emitter := testutil.NewRecordingEmitter()

	return &fixture{
		service:  NewService(NewRepository(cache.Conn(), zerolog.Nop()), capacityService, deckService, roomRepo, emitter, zerolog.Nop()),
		capacity: capacityService,
		rooms:    roomRepo,
		emitter:  emitter,
		deckID:   deckID,
	}
}

func (f *fixture) room(t *testing.T, current, total int) {
	t.Helper()
	_, err := f.rooms.UpdateRoom(context.Background(), "R1", rooms.UpdateRoomRequest{
		DeckID:       &f.deckID,
		CurrentRound: &current,
		TotalRounds:  &total,
	})
	require.NoError(t, err)
}

func (f *fixture) reject(t *testing.T, week int, id, ct, priority string, qty int) {
	t.Helper()
	q := qty
	_, err := f.capacity.RecordDecision(context.Background(), "R1", 5, &week, capacity.DecisionRequest{
		CardAction: "reject",
		Port:       "SBY",
		Card:       capacity.CardInput{ID: capacity.CardID(id), Type: ct, Priority: priority, Quantity: &q},
	})
	require.NoError(t, err)
}

func TestGetOrBuild_DerivesFromLedgerAndDeck(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.room(t, 2, 4)
	require.NoError(t, f.rooms.SetRoundRevenue(ctx, "R1", 5, 1, 750_000))

	// The deck card wins over the snapshot for card 5.
	f.reject(t, 1, "5", "dry", "non-committed", 1)
	f.reject(t, 2, "7", "dry", "non-committed", 2)
	// Card 99 is not in the deck; the snapshot is used.
	f.reject(t, 2, "99", "reefer", "non-committed", 3)

	s, err := f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)
	require.Len(t, s.Weeks, 4)

	w1 := s.Week(1)
	assert.Equal(t, 4, *w1.RolledReeferCommitted)
	assert.Equal(t, 0, *w1.RolledDryNonCommitted)
	assert.Equal(t, int64(750_000), *w1.Revenue)

	w2 := s.Week(2)
	assert.Equal(t, 2, *w2.RolledDryNonCommitted)
	assert.Equal(t, 3, *w2.RolledReeferNonCommitted)
	assert.Equal(t, int64(0), *w2.Revenue)

	assert.Nil(t, s.Week(3).Revenue)
	assert.Nil(t, s.Week(4).RolledDryCommitted)
	assert.Equal(t, int64(750_000), s.TotalRevenue)

	assert.Len(t, f.emitter.OfType(events.PerformanceRebuilt), 1)
}

func TestGetOrBuild_ReturnsStoredSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.room(t, 1, 2)

	first, err := f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)

	// New ledger activity does not change the cached summary.
	f.reject(t, 1, "7", "dry", "non-committed", 2)

	second, err := f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, *second.Week(1).RolledDryNonCommitted)
	assert.Equal(t, first.UpdatedAt.Unix(), second.UpdatedAt.Unix())
	assert.Len(t, f.emitter.OfType(events.PerformanceRebuilt), 1)
}

func TestGetOrBuild_RoomWithoutDeckUsesSnapshots(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.reject(t, 1, "5", "dry", "non-committed", 1)

	s, err := f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)
	require.Len(t, s.Weeks, rooms.DefaultTotalRounds)
	assert.Equal(t, 1, *s.Week(1).RolledDryNonCommitted)
	assert.Nil(t, s.Week(2).Revenue)
}

func TestMergeWeek(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.room(t, 2, 3)

	_, err := f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)

	s, err := f.service.MergeWeek(ctx, "R1", 5, 2, json.RawMessage(`{"revenue": 400000, "totalPenalty": 25000}`))
	require.NoError(t, err)
	assert.Equal(t, int64(400_000), *s.Week(2).Revenue)
	assert.Equal(t, int64(25_000), s.TotalPenalties)

	stored, err := f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(400_000), stored.TotalRevenue)

	patches, err := f.service.Patches(ctx, "R1", 5)
	require.NoError(t, err)
	require.Len(t, patches, 1)
	assert.Equal(t, 2, patches[0].Week)
	assert.JSONEq(t, `{"revenue": 400000, "totalPenalty": 25000}`, string(patches[0].Patch))

	merged := f.emitter.OfType(events.PerformanceWeekMerged)
	require.Len(t, merged, 1)
	assert.Equal(t, []string{"revenue", "totalPenalty"}, merged[0].(*events.PerformanceWeekMergedData).Fields)
}

func TestMergeWeek_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.room(t, 1, 2)

	_, err := f.service.MergeWeek(ctx, "R1", 5, 1, json.RawMessage(`{"revenue": 1}`))
	assert.True(t, errors.Is(err, domain.ErrNotFound), "no summary built yet")

	_, err = f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)

	_, err = f.service.MergeWeek(ctx, "R1", 5, 7, json.RawMessage(`{"revenue": 1}`))
	assert.True(t, errors.Is(err, domain.ErrNotFound), "week outside summary")

	_, err = f.service.MergeWeek(ctx, "R1", 5, 1, json.RawMessage(`{"weekNumber": 2}`))
	assert.True(t, domain.IsValidation(err))

	_, err = f.service.MergeWeek(ctx, "R1", 5, 1, json.RawMessage(`{"surprise": true}`))
	assert.True(t, domain.IsValidation(err))

	_, err = f.service.MergeWeek(ctx, "R1", 5, 0, json.RawMessage(`{"revenue": 1}`))
	assert.True(t, domain.IsValidation(err))

	patches, err := f.service.Patches(ctx, "R1", 5)
	require.NoError(t, err)
	assert.Empty(t, patches)
}

func TestRebuild_ReplaysPatchLog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.room(t, 1, 2)

	_, err := f.service.GetOrBuild(ctx, "R1", 5)
	require.NoError(t, err)
	_, err = f.service.MergeWeek(ctx, "R1", 5, 1, json.RawMessage(`{"totalPenalty": 10}`))
	require.NoError(t, err)

	f.reject(t, 1, "7", "dry", "non-committed", 2)

	s, err := f.service.Rebuild(ctx, "R1", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, *s.Week(1).RolledDryNonCommitted)
	assert.Equal(t, int64(10), *s.Week(1).TotalPenalty)
	assert.Equal(t, int64(10), s.TotalPenalties)
}
