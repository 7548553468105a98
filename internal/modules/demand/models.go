// Package demand generates sales-call cards that hit per-port quantity and revenue targets.
package demand

import (
	"math"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/modules/decks"
)

// GenerationRequest is the body of POST /api/decks/{deckID}/generate.
// Numeric targets arrive as JSON numbers and are checked to be whole where a count is expected.
type GenerationRequest struct {
	TotalRevenueEachPort           float64 `json:"totalRevenueEachPort"`
	TotalContainerQuantityEachPort float64 `json:"totalContainerQuantityEachPort"`
	SalesCallCountEachPort         float64 `json:"salesCallCountEachPort"`
	Ports                          int     `json:"ports"`
	QuantityStandardDeviation      float64 `json:"quantityStandardDeviation"`
	RevenueStandardDeviation       float64 `json:"revenueStandardDeviation"`
	UseMarketIntelligence          *bool   `json:"useMarketIntelligence,omitempty"`
}

// Validate checks every field and reports all problems at once.
func (r GenerationRequest) Validate() error {
	var errs domain.ValidationErrors

	positiveWhole := func(field string, v float64) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0) || v <= 0:
			errs.Add(field, "must be a number greater than 0")
		case v != math.Trunc(v):
			errs.Add(field, "must be a whole number, got %v", v)
		}
	}
	positiveWhole("totalRevenueEachPort", r.TotalRevenueEachPort)
	positiveWhole("totalContainerQuantityEachPort", r.TotalContainerQuantityEachPort)
	positiveWhole("salesCallCountEachPort", r.SalesCallCountEachPort)

	if r.Ports < domain.MinRosterSize || r.Ports > domain.MaxRosterSize {
		errs.Add("ports", "must be between %d and %d, got %d", domain.MinRosterSize, domain.MaxRosterSize, r.Ports)
	}
	if math.IsNaN(r.QuantityStandardDeviation) || r.QuantityStandardDeviation < 0 {
		errs.Add("quantityStandardDeviation", "must be >= 0")
	}
	if math.IsNaN(r.RevenueStandardDeviation) || r.RevenueStandardDeviation < 0 {
		errs.Add("revenueStandardDeviation", "must be >= 0")
	}
	if r.TotalRevenueEachPort > 0 && r.SalesCallCountEachPort > 0 &&
		r.TotalRevenueEachPort < r.SalesCallCountEachPort*RevenueGrid {
		errs.Add("totalRevenueEachPort", "must be at least %d per sales call (%v)",
			RevenueGrid, r.SalesCallCountEachPort*RevenueGrid)
	}
	if r.SalesCallCountEachPort > 0 && r.TotalContainerQuantityEachPort < r.SalesCallCountEachPort {
		errs.Add("totalContainerQuantityEachPort", "must be at least salesCallCountEachPort (%v)", r.SalesCallCountEachPort)
	}

	return errs.OrNil()
}

// MarketIntelligenceEnabled reports the useMarketIntelligence flag, defaulting to true.
func (r GenerationRequest) MarketIntelligenceEnabled() bool {
	return r.UseMarketIntelligence == nil || *r.UseMarketIntelligence
}

// Targets converts a validated request into per-port generation targets.
func (r GenerationRequest) Targets() Targets {
	return Targets{
		Revenue:       int64(r.TotalRevenueEachPort),
		Quantity:      int(r.TotalContainerQuantityEachPort),
		Calls:         int(r.SalesCallCountEachPort),
		RevenueStdDev: r.RevenueStandardDeviation,
	}
}

// Targets are the per-port goals of one generation run.
type Targets struct {
	Revenue       int64
	Quantity      int
	Calls         int
	RevenueStdDev float64
}

// PortStats summarizes one origin's generated calls.
type PortStats struct {
	Port              domain.PortCode `json:"port"`
	Calls             int             `json:"calls"`
	TotalQuantity     int             `json:"total_quantity"`
	TotalRevenue      int64           `json:"total_revenue"`
	MeanQuantity      float64         `json:"mean_quantity"`
	StdDevQuantity    float64         `json:"stddev_quantity"`
	MeanUnitRevenue   float64         `json:"mean_unit_revenue"`
	StdDevUnitRevenue float64         `json:"stddev_unit_revenue"`
	CommittedCalls    int             `json:"committed_calls"`
	ReeferCalls       int             `json:"reefer_calls"`
}

// GenerationResult is returned by a generation run.
type GenerationResult struct {
	RunID                string            `json:"run_id"`
	Deck                 *decks.Deck       `json:"deck"`
	Cards                []decks.Card      `json:"cards"`
	Roster               []domain.PortCode `json:"roster"`
	MarketIntelligenceID string            `json:"market_intelligence_id,omitempty"`
	Ports                []PortStats       `json:"ports"`
}
