package capacity

import (
	"github.com/harborline/cargosim/internal/domain"
)

// Empty returns the zero ledger row for a key. Lists are empty, not nil.
func Empty(key Key) *Uptake {
	return &Uptake{
		Room:          key.Room,
		UserID:        key.UserID,
		Week:          key.Week,
		Port:          key.Port,
		AcceptedCards: []AcceptedCard{},
		RejectedCards: []CardSnapshot{},
	}
}

// Fold derives the ledger row from its events in order.
// Counters are always the quantity-weighted totals of the lists.
func Fold(key Key, events []Event) *Uptake {
	u := Empty(key)
	for _, e := range events {
		units := e.Card.Units()
		reefer := e.Card.Type == domain.ContainerReefer
		committed := e.Card.Priority.Committed()

		switch e.Decision {
		case domain.DecisionAccept:
			accepted := AcceptedCard{CardSnapshot: e.Card}
			if e.ProcessedAt != nil {
				accepted.ProcessedAt = *e.ProcessedAt
			}
			u.AcceptedCards = append(u.AcceptedCards, accepted)
			if reefer {
				u.ReeferContainersAccepted += units
			} else {
				u.DryContainersAccepted += units
			}
			if committed {
				u.CommittedContainersAccepted += units
			} else {
				u.NonCommittedContainersAccepted += units
			}
		case domain.DecisionReject:
			u.RejectedCards = append(u.RejectedCards, e.Card)
			if reefer {
				u.ReeferContainersRejected += units
			} else {
				u.DryContainersRejected += units
			}
			if committed {
				u.CommittedContainersRejected += units
			} else {
				u.NonCommittedContainersRejected += units
			}
		}
	}
	return u
}
