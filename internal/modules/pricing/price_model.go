// Package pricing resolves per-route container prices from deck overrides and the builtin table.
package pricing

import (
	"github.com/harborline/cargosim/internal/domain"
)

// Model resolves base prices.
// Resolution order: override map (when non-empty), builtin table, fallback constant.
type Model struct {
	table    *Table
	override map[string]float64
}

// NewModel creates a price model. A nil or empty override means builtin only.
func NewModel(table *Table, override map[string]float64) *Model {
	return &Model{table: table, override: override}
}

// Lookup returns the per-container base price for a route and container type.
func (m *Model) Lookup(origin, destination domain.PortCode, ct domain.ContainerType) float64 {
	if len(m.override) > 0 {
		if price, ok := m.override[PriceKey(origin, destination, ct)]; ok {
			return price
		}
	}

	if m.table != nil {
		if price, ok := m.table.Price(origin, destination, ct); ok {
			return price
		}
		return m.table.Fallback()
	}

	return FallbackPrice
}

// HasOverride reports whether an override map is in effect.
func (m *Model) HasOverride() bool {
	return len(m.override) > 0
}
