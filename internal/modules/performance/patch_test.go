package performance

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtSummary() *Summary {
	return Derive(DeriveInput{
		Room:         "R1",
		UserID:       5,
		CurrentRound: 2,
		TotalRounds:  3,
		Revenue:      map[int]int64{1: 100, 2: 200},
	})
}

func TestDecodeWeekPatch_PresenceAndNull(t *testing.T) {
	p, err := DecodeWeekPatch(json.RawMessage(`{"revenue": 500, "totalPenalty": null}`))
	require.NoError(t, err)

	assert.True(t, p.Revenue.Set)
	require.NotNil(t, p.Revenue.Value)
	assert.Equal(t, int64(500), *p.Revenue.Value)
	assert.True(t, p.TotalPenalty.Set)
	assert.Nil(t, p.TotalPenalty.Value)
	assert.False(t, p.RolledDryCommitted.Set)
	assert.Equal(t, []string{"revenue", "totalPenalty"}, p.Fields())
}

func TestDecodeWeekPatch_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"unknown field", `{"bonus": 1}`},
		{"wrong type", `{"revenue": "lots"}`},
		{"not an object", `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeWeekPatch(json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestWeekPatch_Validate(t *testing.T) {
	assert.NoError(t, WeekPatch{WeekNumber: Of(2), Revenue: Of[int64](10)}.Validate(2))
	assert.Error(t, WeekPatch{WeekNumber: Of(3)}.Validate(2))
	assert.Error(t, WeekPatch{WeekNumber: Null[int]()}.Validate(2))
	assert.Error(t, WeekPatch{RolledDryCommitted: Of(-1)}.Validate(2))
	assert.NoError(t, WeekPatch{RolledDryCommitted: Null[int]()}.Validate(2))
}

func TestApplyPatch_OverwritesOnlyPresentFields(t *testing.T) {
	s := builtSummary()

	err := ApplyPatch(s, 2, WeekPatch{
		RolledReeferCommitted: Of(7),
		TotalPenalty:          Of[int64](50),
	})
	require.NoError(t, err)

	w := s.Week(2)
	assert.Equal(t, 7, *w.RolledReeferCommitted)
	assert.Equal(t, int64(50), *w.TotalPenalty)
	assert.Equal(t, int64(200), *w.Revenue)
	assert.Equal(t, 0, *w.RolledDryCommitted)

	assert.Equal(t, int64(300), s.TotalRevenue)
	assert.Equal(t, int64(50), s.TotalPenalties)
}

func TestApplyPatch_NullOverwrites(t *testing.T) {
	s := builtSummary()

	require.NoError(t, ApplyPatch(s, 1, WeekPatch{Revenue: Null[int64]()}))

	assert.Nil(t, s.Week(1).Revenue)
	assert.Equal(t, int64(200), s.TotalRevenue)
}

func TestApplyPatch_FutureWeekCanBeFilled(t *testing.T) {
	s := builtSummary()

	require.NoError(t, ApplyPatch(s, 3, WeekPatch{Revenue: Of[int64](1000)}))

	assert.Equal(t, int64(1000), *s.Week(3).Revenue)
	assert.Nil(t, s.Week(3).RolledDryCommitted)
	assert.Equal(t, int64(1300), s.TotalRevenue)
}

func TestApplyPatch_MissingWeek(t *testing.T) {
	err := ApplyPatch(builtSummary(), 9, WeekPatch{Revenue: Of[int64](1)})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestApplyPatch_DoesNotAliasPatchValues(t *testing.T) {
	s := builtSummary()
	p := WeekPatch{Revenue: Of[int64](10)}

	require.NoError(t, ApplyPatch(s, 1, p))
	*p.Revenue.Value = 99

	assert.Equal(t, int64(10), *s.Week(1).Revenue)
}

func TestField_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(WeekPatch{Revenue: Of[int64](5)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"revenue":5`)
	assert.Contains(t, string(raw), `"totalPenalty":null`)
}
