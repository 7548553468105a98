package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeForID(t *testing.T) {
	for id := 1; id <= 50; id++ {
		want := ContainerDry
		if id%5 == 0 {
			want = ContainerReefer
		}
		assert.Equal(t, want, TypeForID(id), "id %d", id)
	}
	assert.Equal(t, "Reefer", TypeForID(10).Title())
	assert.Equal(t, "Dry", TypeForID(7).Title())
}

func TestRoster(t *testing.T) {
	r, err := Roster(4)
	require.NoError(t, err)
	assert.Equal(t, []PortCode{PortSBY, PortMKS, PortMDN, PortJYP}, r)

	r, err = Roster(MaxRosterSize)
	require.NoError(t, err)
	assert.Len(t, r, 10)

	_, err = Roster(1)
	assert.True(t, IsValidation(err))
	_, err = Roster(11)
	assert.True(t, IsValidation(err))
}

func TestParsers(t *testing.T) {
	p, err := ParsePort(" sby ")
	require.NoError(t, err)
	assert.Equal(t, PortSBY, p)
	_, err = ParsePort("XXX")
	assert.Error(t, err)

	ct, err := ParseContainerType("Reefer")
	require.NoError(t, err)
	assert.Equal(t, ContainerReefer, ct)
	_, err = ParseContainerType("tank")
	assert.Error(t, err)

	pr, err := ParsePriority("non_committed")
	require.NoError(t, err)
	assert.Equal(t, PriorityNonCommitted, pr)
	assert.False(t, pr.Committed())
	_, err = ParsePriority("urgent")
	assert.Error(t, err)

	d, err := ParseDecision("ACCEPT")
	require.NoError(t, err)
	assert.Equal(t, DecisionAccept, d)
	_, err = ParseDecision("maybe")
	assert.Error(t, err)
}

func TestErrorTaxonomy(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.OrNil())

	errs.Add("ports", "must be between %d and %d", 2, 10)
	errs.Add("revenue", "must be positive")
	err := errs.OrNil()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ports: must be between 2 and 10")
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))

	assert.True(t, IsValidation(RowErrors{{Row: 1, Message: "bad"}}))
	assert.False(t, IsValidation(ErrNotFound))
	assert.False(t, IsValidation(errors.New("db down")))
}
