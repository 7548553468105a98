package rooms

import (
	"context"
	"testing"

	"github.com/harborline/cargosim/internal/domain"
	testutil "github.com/harborline/cargosim/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := testutil.NewTestDB(t, "game")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), 0, zerolog.Nop())
}

func intPtr(v int) *int { return &v }

func TestGetRoom_Defaults(t *testing.T) {
	repo := setupRepo(t)

	room, err := repo.GetRoom(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, 1, room.CurrentRound)
	assert.Equal(t, 4, room.TotalRounds)
	assert.Nil(t, room.DeckID)
}

func TestUpdateRoom_PartialFields(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.UpdateRoom(ctx, "R1", UpdateRoomRequest{CurrentRound: intPtr(2)})
	require.NoError(t, err)

	room, err := repo.UpdateRoom(ctx, "R1", UpdateRoomRequest{TotalRounds: intPtr(6)})
	require.NoError(t, err)
	assert.Equal(t, 2, room.CurrentRound)
	assert.Equal(t, 6, room.TotalRounds)

	stored, err := repo.GetRoom(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentRound)
	assert.Equal(t, 6, stored.TotalRounds)

	_, err = repo.UpdateRoom(ctx, "R1", UpdateRoomRequest{CurrentRound: intPtr(0)})
	assert.True(t, domain.IsValidation(err))
}

func TestAssignedPort(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	port, err := repo.AssignedPort(ctx, "R1", 5)
	require.NoError(t, err)
	assert.Empty(t, port)

	_, err = repo.AssignPort(ctx, "R1", 5, domain.PortSBY)
	require.NoError(t, err)
	_, err = repo.AssignPort(ctx, "R1", 5, domain.PortMKS)
	require.NoError(t, err)

	port, err = repo.AssignedPort(ctx, "R1", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.PortMKS, port)
}

func TestRoundRevenue(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetRoundRevenue(ctx, "R1", 5, 1, 40_000_000))
	require.NoError(t, repo.SetRoundRevenue(ctx, "R1", 5, 2, 10_000_000))
	require.NoError(t, repo.SetRoundRevenue(ctx, "R1", 5, 2, 12_000_000))
	require.NoError(t, repo.SetRoundRevenue(ctx, "R1", 6, 1, 1))

	revenue, err := repo.RevenueByWeek(ctx, "R1", 5)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{1: 40_000_000, 2: 12_000_000}, revenue)
}
