// Package capacity keeps the per-round ledger of accept/reject decisions.
// Decisions are stored as events; the ledger row is a fold over them.
package capacity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harborline/cargosim/internal/domain"
)

// Key identifies one ledger row
type Key struct {
	Room   string
	UserID int64
	Week   int
	Port   domain.PortCode
}

// CardSnapshot is the card as submitted with a decision.
type CardSnapshot struct {
	ID          string               `json:"id" msgpack:"id"`
	Priority    domain.Priority      `json:"priority" msgpack:"priority"`
	Type        domain.ContainerType `json:"type" msgpack:"type"`
	Quantity    int                  `json:"quantity" msgpack:"quantity"`
	Origin      domain.PortCode      `json:"origin,omitempty" msgpack:"origin,omitempty"`
	Destination domain.PortCode      `json:"destination,omitempty" msgpack:"destination,omitempty"`
	Revenue     int64                `json:"revenue,omitempty" msgpack:"revenue,omitempty"`
}

// Units is the container count the card contributes; a missing quantity counts as 1.
func (c CardSnapshot) Units() int {
	if c.Quantity <= 0 {
		return 1
	}
	return c.Quantity
}

// AcceptedCard is an accepted snapshot stamped with its processing time.
// Rejected entries carry no timestamp.
type AcceptedCard struct {
	CardSnapshot
	ProcessedAt time.Time `json:"processed_at"`
}

// Event is one stored decision
type Event struct {
	Seq         int64
	EventID     string
	Key         Key
	CardID      string
	Decision    domain.Decision
	Card        CardSnapshot
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

// Uptake is the ledger row for (room, user, week, port).
type Uptake struct {
	Room   string          `json:"room"`
	UserID int64           `json:"user_id"`
	Week   int             `json:"week"`
	Port   domain.PortCode `json:"port"`

	AcceptedCards []AcceptedCard `json:"accepted_cards"`
	RejectedCards []CardSnapshot `json:"rejected_cards"`

	DryContainersAccepted          int `json:"dry_containers_accepted"`
	ReeferContainersAccepted       int `json:"reefer_containers_accepted"`
	CommittedContainersAccepted    int `json:"committed_containers_accepted"`
	NonCommittedContainersAccepted int `json:"non_committed_containers_accepted"`
	DryContainersRejected          int `json:"dry_containers_rejected"`
	ReeferContainersRejected       int `json:"reefer_containers_rejected"`
	CommittedContainersRejected    int `json:"committed_containers_rejected"`
	NonCommittedContainersRejected int `json:"non_committed_containers_rejected"`
}

// RecordResult is the response of a recorded decision.
type RecordResult struct {
	*Uptake
	Duplicate bool `json:"duplicate"`
}

// CardID accepts a JSON string or number.
type CardID string

// UnmarshalJSON implements json.Unmarshaler
func (c *CardID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CardID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("card id must be a string or number")
	}
	*c = CardID(n.String())
	return nil
}

// CardInput is the untrusted card of a decision request
type CardInput struct {
	ID          CardID `json:"id"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
	Quantity    *int   `json:"quantity,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Revenue     int64  `json:"revenue,omitempty"`
}

// DecisionRequest is the body of POST .../capacity-uptake
type DecisionRequest struct {
	CardAction string    `json:"card_action"`
	Card       CardInput `json:"card"`
	Port       string    `json:"port"`
}

// Parse validates the request once at the boundary.
// A missing type is derived from a numeric id; a missing quantity defaults to 1.
func (r DecisionRequest) Parse() (domain.Decision, domain.PortCode, CardSnapshot, error) {
	var errs domain.ValidationErrors

	decision, err := domain.ParseDecision(r.CardAction)
	if err != nil {
		errs.Add("card_action", "must be accept or reject, got %q", r.CardAction)
	}
	port, err := domain.ParsePort(r.Port)
	if err != nil {
		errs.Add("port", "unknown port code %q", r.Port)
	}

	card := CardSnapshot{ID: string(r.Card.ID), Quantity: 1, Revenue: r.Card.Revenue}
	if card.ID == "" {
		errs.Add("card.id", "is required")
	}

	if card.Priority, err = domain.ParsePriority(r.Card.Priority); err != nil {
		errs.Add("card.priority", "must be committed or non-committed, got %q", r.Card.Priority)
	}

	switch {
	case strings.TrimSpace(r.Card.Type) != "":
		if card.Type, err = domain.ParseContainerType(r.Card.Type); err != nil {
			errs.Add("card.type", "must be dry or reefer, got %q", r.Card.Type)
		}
	default:
		id, convErr := strconv.Atoi(card.ID)
		if convErr != nil {
			errs.Add("card.type", "is required when the card id is not numeric")
		} else {
			card.Type = domain.TypeForID(id)
		}
	}

	if r.Card.Quantity != nil {
		if *r.Card.Quantity <= 0 {
			errs.Add("card.quantity", "must be positive, got %d", *r.Card.Quantity)
		}
		card.Quantity = *r.Card.Quantity
	}

	if r.Card.Origin != "" {
		if card.Origin, err = domain.ParsePort(r.Card.Origin); err != nil {
			errs.Add("card.origin", "unknown port code %q", r.Card.Origin)
		}
	}
	if r.Card.Destination != "" {
		if card.Destination, err = domain.ParsePort(r.Card.Destination); err != nil {
			errs.Add("card.destination", "unknown port code %q", r.Card.Destination)
		}
	}

	if err := errs.OrNil(); err != nil {
		return "", "", CardSnapshot{}, err
	}
	return decision, port, card, nil
}
