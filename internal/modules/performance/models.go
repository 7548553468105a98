// Package performance derives and patches the weekly KPI summary of a player.
package performance

import (
	"encoding/json"
	"time"

	"github.com/harborline/cargosim/internal/domain"
)

// DefaultPenaltyMatrix is the opaque penalty breakdown stored with a fresh summary.
var DefaultPenaltyMatrix = json.RawMessage(`{"dry":{"committed":0,"nonCommitted":0},"reefer":{"committed":0,"nonCommitted":0}}`)

// WeekEntry is one round of the summary. Nil fields are unknown (future weeks).
type WeekEntry struct {
	WeekNumber               int    `json:"weekNumber"`
	RolledDryCommitted       *int   `json:"rolledDryCommitted"`
	RolledDryNonCommitted    *int   `json:"rolledDryNonCommitted"`
	RolledReeferCommitted    *int   `json:"rolledReeferCommitted"`
	RolledReeferNonCommitted *int   `json:"rolledReeferNonCommitted"`
	Revenue                  *int64 `json:"revenue"`
	TotalPenalty             *int64 `json:"totalPenalty"`
}

// Summary is the stored weekly performance of one (room, user).
type Summary struct {
	Room           string          `json:"room"`
	UserID         int64           `json:"userId"`
	Weeks          []WeekEntry     `json:"weeks"`
	TotalRevenue   int64           `json:"totalRevenue"`
	TotalPenalties int64           `json:"totalPenalties"`
	PenaltyMatrix  json.RawMessage `json:"penaltyMatrix"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Week returns the entry for a week number, or nil.
func (s *Summary) Week(week int) *WeekEntry {
	for i := range s.Weeks {
		if s.Weeks[i].WeekNumber == week {
			return &s.Weeks[i]
		}
	}
	return nil
}

// RecomputeTotals sums revenue and penalties over all weeks, nulls counting as 0.
func (s *Summary) RecomputeTotals() {
	s.TotalRevenue = 0
	s.TotalPenalties = 0
	for _, w := range s.Weeks {
		if w.Revenue != nil {
			s.TotalRevenue += *w.Revenue
		}
		if w.TotalPenalty != nil {
			s.TotalPenalties += *w.TotalPenalty
		}
	}
}

// RolledCard is a rejected card resolved against the deck.
type RolledCard struct {
	Type     domain.ContainerType
	Priority domain.Priority
	Quantity int
}

// DeriveInput is everything Derive needs; it performs no I/O.
type DeriveInput struct {
	Room         string
	UserID       int64
	CurrentRound int
	TotalRounds  int
	Rejected     map[int][]RolledCard
	Revenue      map[int]int64
}
