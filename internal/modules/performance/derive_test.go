package performance

import (
	"testing"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_PlayedAndFutureWeeks(t *testing.T) {
	s := Derive(DeriveInput{
		Room:         "R1",
		UserID:       5,
		CurrentRound: 2,
		TotalRounds:  4,
		Rejected: map[int][]RolledCard{
			1: {
				{Type: domain.ContainerDry, Priority: domain.PriorityCommitted, Quantity: 3},
				{Type: domain.ContainerReefer, Priority: domain.PriorityNonCommitted, Quantity: 2},
			},
			2: {
				{Type: domain.ContainerDry, Priority: domain.PriorityNonCommitted, Quantity: 1},
				{Type: domain.ContainerReefer, Priority: domain.PriorityCommitted, Quantity: 4},
			},
		},
		Revenue: map[int]int64{1: 1_500_000},
	})

	require.Len(t, s.Weeks, 4)

	w1 := s.Week(1)
	require.NotNil(t, w1)
	assert.Equal(t, 3, *w1.RolledDryCommitted)
	assert.Equal(t, 0, *w1.RolledDryNonCommitted)
	assert.Equal(t, 0, *w1.RolledReeferCommitted)
	assert.Equal(t, 2, *w1.RolledReeferNonCommitted)
	assert.Equal(t, int64(1_500_000), *w1.Revenue)
	assert.Equal(t, int64(0), *w1.TotalPenalty)

	w2 := s.Week(2)
	require.NotNil(t, w2)
	assert.Equal(t, 1, *w2.RolledDryNonCommitted)
	assert.Equal(t, 4, *w2.RolledReeferCommitted)
	assert.Equal(t, int64(0), *w2.Revenue)

	for _, week := range []int{3, 4} {
		w := s.Week(week)
		require.NotNil(t, w)
		assert.Nil(t, w.RolledDryCommitted)
		assert.Nil(t, w.RolledDryNonCommitted)
		assert.Nil(t, w.RolledReeferCommitted)
		assert.Nil(t, w.RolledReeferNonCommitted)
		assert.Nil(t, w.Revenue)
		assert.Nil(t, w.TotalPenalty)
	}

	assert.Equal(t, int64(1_500_000), s.TotalRevenue)
	assert.Equal(t, int64(0), s.TotalPenalties)
	assert.JSONEq(t, string(DefaultPenaltyMatrix), string(s.PenaltyMatrix))
}

func TestDerive_MissingQuantityCountsAsOne(t *testing.T) {
	s := Derive(DeriveInput{
		CurrentRound: 1,
		TotalRounds:  1,
		Rejected: map[int][]RolledCard{
			1: {{Type: domain.ContainerDry, Priority: domain.PriorityNonCommitted}},
		},
	})

	assert.Equal(t, 1, *s.Week(1).RolledDryNonCommitted)
}

func TestDerive_CurrentRoundBeyondTotal(t *testing.T) {
	s := Derive(DeriveInput{CurrentRound: 9, TotalRounds: 2})

	require.Len(t, s.Weeks, 2)
	assert.NotNil(t, s.Week(2).Revenue)
}

func TestDerive_ZeroCurrentRoundTreatedAsFirst(t *testing.T) {
	s := Derive(DeriveInput{CurrentRound: 0, TotalRounds: 3})

	assert.NotNil(t, s.Week(1).Revenue)
	assert.Nil(t, s.Week(2).Revenue)
}
