package capacity

import (
	"context"
	"testing"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/events"
	"github.com/harborline/cargosim/internal/modules/rooms"
	testutil "github.com/harborline/cargosim/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service *Service
	rooms   *rooms.Repository
	emitter *testutil.RecordingEmitter
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ledger, cleanupLedger := testutil.NewTestDB(t, "ledger")
	t.Cleanup(cleanupLedger)
	game, cleanupGame := testutil.NewTestDB(t, "game")
	t.Cleanup(cleanupGame)

	roomRepo := rooms.NewRepository(game.Conn(), 4, zerolog.Nop())
	emitter := testutil.NewRecordingEmitter()
	return &fixture{
		service: NewService(NewRepository(ledger.Conn(), zerolog.Nop()), roomRepo, emitter, zerolog.Nop()),
		rooms:   roomRepo,
		emitter: emitter,
	}
}

func intPtr(v int) *int { return &v }

func decision(action, id, ct, priority string, qty int, port string) DecisionRequest {
	q := qty
	return DecisionRequest{
		CardAction: action,
		Port:       port,
		Card:       CardInput{ID: CardID(id), Type: ct, Priority: priority, Quantity: &q},
	}
}

func TestRecordDecision_AcceptScenario(t *testing.T) {
	f := setup(t)

	result, err := f.service.RecordDecision(context.Background(), "R1", 5, intPtr(2),
		decision("accept", "7", "dry", "committed", 3, "SBY"))
	require.NoError(t, err)

	assert.False(t, result.Duplicate)
	assert.Equal(t, 2, result.Week)
	assert.Equal(t, domain.PortSBY, result.Port)
	assert.Equal(t, 3, result.DryContainersAccepted)
	assert.Equal(t, 3, result.CommittedContainersAccepted)
	require.Len(t, result.AcceptedCards, 1)
	assert.False(t, result.AcceptedCards[0].ProcessedAt.IsZero())

	assert.Len(t, f.emitter.OfType(events.DecisionRecorded), 1)
}

func TestRecordDecision_DuplicateIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	req := decision("reject", "4", "dry", "non-committed", 2, "SBY")

	_, err := f.service.RecordDecision(ctx, "R1", 5, intPtr(1), req)
	require.NoError(t, err)
	second, err := f.service.RecordDecision(ctx, "R1", 5, intPtr(1), req)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Len(t, second.RejectedCards, 1)
	assert.Equal(t, 2, second.DryContainersRejected)

	// The opposite decision on the same card is a distinct event.
	third, err := f.service.RecordDecision(ctx, "R1", 5, intPtr(1), decision("accept", "4", "dry", "non-committed", 2, "SBY"))
	require.NoError(t, err)
	assert.False(t, third.Duplicate)
	assert.Equal(t, 2, third.DryContainersAccepted)
}

func TestRecordDecision_CountersEqualListSums(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cards := []DecisionRequest{
		decision("accept", "1", "dry", "committed", 2, "MKS"),
		decision("accept", "5", "reefer", "committed", 4, "MKS"),
		decision("accept", "6", "dry", "non-committed", 1, "MKS"),
		decision("reject", "2", "dry", "committed", 3, "MKS"),
		decision("reject", "10", "reefer", "non-committed", 5, "MKS"),
	}
	var last *RecordResult
	for _, c := range cards {
		var err error
		last, err = f.service.RecordDecision(ctx, "R2", 9, intPtr(3), c)
		require.NoError(t, err)
	}

	var accDry, accReefer, accCommitted, accNon int
	for _, c := range last.AcceptedCards {
		if c.Type == domain.ContainerReefer {
			accReefer += c.Units()
		} else {
			accDry += c.Units()
		}
		if c.Priority.Committed() {
			accCommitted += c.Units()
		} else {
			accNon += c.Units()
		}
	}
	assert.Equal(t, accDry, last.DryContainersAccepted)
	assert.Equal(t, accReefer, last.ReeferContainersAccepted)
	assert.Equal(t, accCommitted, last.CommittedContainersAccepted)
	assert.Equal(t, accNon, last.NonCommittedContainersAccepted)
	assert.Equal(t, 3, last.DryContainersRejected)
	assert.Equal(t, 5, last.ReeferContainersRejected)
}

func TestRecordDecision_DefaultsToCurrentRound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.rooms.UpdateRoom(ctx, "R1", rooms.UpdateRoomRequest{CurrentRound: intPtr(3)})
	require.NoError(t, err)

	result, err := f.service.RecordDecision(ctx, "R1", 5, nil, decision("accept", "1", "dry", "committed", 1, "SBY"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Week)
}

func TestRecordDecision_Invalid(t *testing.T) {
	f := setup(t)
	_, err := f.service.RecordDecision(context.Background(), "R1", 5, intPtr(1),
		decision("hold", "1", "dry", "committed", 1, "SBY"))
	assert.True(t, domain.IsValidation(err))

	_, err = f.service.RecordDecision(context.Background(), "R1", 5, intPtr(0),
		decision("accept", "1", "dry", "committed", 1, "SBY"))
	assert.True(t, domain.IsValidation(err))
}

func TestGetSnapshot_LatestWeek(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.service.RecordDecision(ctx, "R1", 5, intPtr(1), decision("accept", "1", "dry", "committed", 1, "SBY"))
	require.NoError(t, err)
	_, err = f.service.RecordDecision(ctx, "R1", 5, intPtr(3), decision("reject", "2", "dry", "committed", 2, "SBY"))
	require.NoError(t, err)

	snap, err := f.service.GetSnapshot(ctx, "R1", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Week)
	assert.Equal(t, 2, snap.DryContainersRejected)

	snap, err = f.service.GetSnapshot(ctx, "R1", 5, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, snap.DryContainersAccepted)
}

func TestGetSnapshot_PrefersAssignedPort(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.rooms.AssignPort(ctx, "R1", 5, domain.PortMKS)
	require.NoError(t, err)
	_, err = f.service.RecordDecision(ctx, "R1", 5, intPtr(1), decision("accept", "1", "dry", "committed", 1, "MKS"))
	require.NoError(t, err)
	_, err = f.service.RecordDecision(ctx, "R1", 5, intPtr(1), decision("accept", "2", "dry", "committed", 4, "SBY"))
	require.NoError(t, err)

	snap, err := f.service.GetSnapshot(ctx, "R1", 5, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, domain.PortMKS, snap.Port)
	assert.Equal(t, 1, snap.DryContainersAccepted)
}

func TestGetSnapshot_ZeroProjection(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.rooms.UpdateRoom(ctx, "R9", rooms.UpdateRoomRequest{CurrentRound: intPtr(2)})
	require.NoError(t, err)
	_, err = f.rooms.AssignPort(ctx, "R9", 1, domain.PortJYP)
	require.NoError(t, err)

	snap, err := f.service.GetSnapshot(ctx, "R9", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Week)
	assert.Equal(t, domain.PortJYP, snap.Port)
	assert.Empty(t, snap.AcceptedCards)
	assert.NotNil(t, snap.AcceptedCards)

	snap, err = f.service.GetSnapshot(ctx, "R9", 1, intPtr(4))
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Week)
	assert.Equal(t, 0, snap.DryContainersAccepted)
}

func TestRejectedForWeek_AcrossPorts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.service.RecordDecision(ctx, "R1", 5, intPtr(2), decision("reject", "1", "dry", "committed", 2, "SBY"))
	require.NoError(t, err)
	_, err = f.service.RecordDecision(ctx, "R1", 5, intPtr(2), decision("reject", "5", "reefer", "committed", 1, "MKS"))
	require.NoError(t, err)
	_, err = f.service.RecordDecision(ctx, "R1", 5, intPtr(2), decision("accept", "6", "dry", "committed", 1, "MKS"))
	require.NoError(t, err)
	_, err = f.service.RecordDecision(ctx, "R1", 5, intPtr(3), decision("reject", "7", "dry", "committed", 1, "MKS"))
	require.NoError(t, err)

	rejected, err := f.service.RejectedForWeek(ctx, "R1", 5, 2)
	require.NoError(t, err)
	require.Len(t, rejected, 2)
	assert.Equal(t, "1", rejected[0].ID)
	assert.Equal(t, "5", rejected[1].ID)
}

func TestService_RoomCodeIsTrimmedOnEveryPath(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.service.RecordDecision(ctx, " R1 ", 5, intPtr(2), decision("reject", "3", "dry", "committed", 2, "SBY"))
	require.NoError(t, err)

	snap, err := f.service.GetSnapshot(ctx, "R1\t", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "R1", snap.Room)
	assert.Equal(t, 2, snap.Week)
	assert.Len(t, snap.RejectedCards, 1)

	rejected, err := f.service.RejectedForWeek(ctx, "  R1", 5, 2)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "3", rejected[0].ID)

	_, err = f.service.GetSnapshot(ctx, "   ", 5, nil)
	assert.True(t, domain.IsValidation(err))
	_, err = f.service.RejectedForWeek(ctx, "", 5, 2)
	assert.True(t, domain.IsValidation(err))
}
