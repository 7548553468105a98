package performance

import (
	"github.com/harborline/cargosim/internal/domain"
)

// Derive builds a summary for weeks 1..TotalRounds.
// Weeks after CurrentRound are placeholders with every field nil. Played weeks
// bucket rolled quantities by type and priority, take revenue from the input
// (0 when missing) and start with a zero penalty.
func Derive(in DeriveInput) *Summary {
	current := in.CurrentRound
	if current < 1 {
		current = 1
	}

	s := &Summary{
		Room:          in.Room,
		UserID:        in.UserID,
		Weeks:         make([]WeekEntry, 0, in.TotalRounds),
		PenaltyMatrix: DefaultPenaltyMatrix,
	}

	for week := 1; week <= in.TotalRounds; week++ {
		if week > current {
			s.Weeks = append(s.Weeks, WeekEntry{WeekNumber: week})
			continue
		}

		var dryC, dryN, reeferC, reeferN int
		for _, c := range in.Rejected[week] {
			qty := c.Quantity
			if qty <= 0 {
				qty = 1
			}
			switch {
			case c.Type == domain.ContainerReefer && c.Priority.Committed():
				reeferC += qty
			case c.Type == domain.ContainerReefer:
				reeferN += qty
			case c.Priority.Committed():
				dryC += qty
			default:
				dryN += qty
			}
		}

		revenue := in.Revenue[week]
		var penalty int64
		s.Weeks = append(s.Weeks, WeekEntry{
			WeekNumber:               week,
			RolledDryCommitted:       &dryC,
			RolledDryNonCommitted:    &dryN,
			RolledReeferCommitted:    &reeferC,
			RolledReeferNonCommitted: &reeferN,
			Revenue:                  &revenue,
			TotalPenalty:             &penalty,
		})
	}

	s.RecomputeTotals()
	return s
}
