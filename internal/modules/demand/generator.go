package demand

import (
	"fmt"
	"math"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/harborline/cargosim/internal/modules/decks"
)

// Revenue amounts snap to this grid; per-container revenue never drops below it.
const RevenueGrid = 50_000

// PriceLookup resolves the per-container base price of a route.
type PriceLookup interface {
	Lookup(origin, destination domain.PortCode, ct domain.ContainerType) float64
}

// PriorityDraw picks a card priority.
type PriorityDraw func(r Random) domain.Priority

// ChancePriority draws committed with probability 0.5.
func ChancePriority(r Random) domain.Priority {
	if Chance(r, 0.5) {
		return domain.PriorityCommitted
	}
	return domain.PriorityNonCommitted
}

// CoinPriority draws committed on a fair coin.
func CoinPriority(r Random) domain.Priority {
	if Coin(r) {
		return domain.PriorityCommitted
	}
	return domain.PriorityNonCommitted
}

// Generator builds card batches for a roster. It is not safe for concurrent use.
type Generator struct {
	rng          Random
	prices       PriceLookup
	drawPriority PriorityDraw
}

// NewGenerator creates a generator. A nil draw defaults to ChancePriority.
func NewGenerator(rng Random, prices PriceLookup, draw PriorityDraw) *Generator {
	if draw == nil {
		draw = ChancePriority
	}
	return &Generator{rng: rng, prices: prices, drawPriority: draw}
}

// Generate produces every port's calls, origins in roster order.
// Ids are strictly increasing across the run and skip ids in used.
func (g *Generator) Generate(roster []domain.PortCode, t Targets, used map[int]bool) []decks.Card {
	ids := newIDAllocator(used)

	cards := make([]decks.Card, 0, len(roster)*t.Calls)
	for _, origin := range roster {
		cards = append(cards, g.generatePort(origin, roster, t, ids)...)
	}
	return cards
}

func (g *Generator) generatePort(origin domain.PortCode, roster []domain.PortCode, t Targets, ids *idAllocator) []decks.Card {
	quantities := DistributeQuantity(g.rng, t.Quantity, t.Calls)

	calls := make([]decks.Card, t.Calls)
	var portRevenue int64
	for i := range calls {
		id := ids.next()
		ct := domain.TypeForID(id)
		destination := pickDestination(g.rng, origin, roster)
		priority := g.drawPriority(g.rng)

		base := g.prices.Lookup(origin, destination, ct)
		unit := UnitRevenue(base + Gaussian(g.rng)*t.RevenueStdDev)

		calls[i] = decks.Card{
			ID:          id,
			Type:        ct,
			Priority:    priority,
			Origin:      origin,
			Destination: destination,
			Quantity:    quantities[i],
			Revenue:     unit * int64(quantities[i]),
		}
		portRevenue += calls[i].Revenue
	}

	Normalize(calls, portRevenue, t.Revenue)
	CorrectRemainder(calls, t.Revenue)
	return calls
}

// DistributeQuantity starts every call at 1 and hands out the rest one unit at a
// time to uniformly chosen calls. Repeated picks make the split uneven on purpose.
func DistributeQuantity(r Random, total, calls int) []int {
	quantities := make([]int, calls)
	for i := range quantities {
		quantities[i] = 1
	}
	for remaining := total - calls; remaining > 0; remaining-- {
		quantities[r.IntN(calls)]++
	}
	return quantities
}

// RoundToGrid rounds to the nearest multiple of RevenueGrid.
func RoundToGrid(v float64) int64 {
	return int64(math.Round(v/RevenueGrid)) * RevenueGrid
}

// UnitRevenue rounds a noisy per-container price to the grid with a floor of one grid step.
func UnitRevenue(v float64) int64 {
	rounded := RoundToGrid(v)
	if rounded < RevenueGrid {
		return RevenueGrid
	}
	return rounded
}

// Normalize scales every call's revenue by target/current and re-rounds to the grid.
func Normalize(calls []decks.Card, current, target int64) {
	if current <= 0 {
		return
	}
	factor := float64(target) / float64(current)
	for i := range calls {
		calls[i].Revenue = RoundToGrid(float64(calls[i].Revenue) * factor)
	}
}

// CorrectRemainder adds target minus the current sum to the first call holding the maximum revenue.
func CorrectRemainder(calls []decks.Card, target int64) {
	if len(calls) == 0 {
		return
	}
	var actual int64
	maxIdx := 0
	for i, c := range calls {
		actual += c.Revenue
		if c.Revenue > calls[maxIdx].Revenue {
			maxIdx = i
		}
	}
	calls[maxIdx].Revenue += target - actual
}

// CheckRevenue rejects a batch in which normalization left a call at zero or negative revenue.
func CheckRevenue(calls []decks.Card) error {
	for _, c := range calls {
		if c.Revenue <= 0 {
			msg := fmt.Sprintf("too small for salesCallCountEachPort at the %d grid: card %d from %s would carry revenue %d",
				RevenueGrid, c.ID, c.Origin, c.Revenue)
			return &domain.ValidationError{Field: "totalRevenueEachPort", Message: msg}
		}
	}
	return nil
}

func pickDestination(r Random, origin domain.PortCode, roster []domain.PortCode) domain.PortCode {
	for {
		d := roster[r.IntN(len(roster))]
		if d != origin {
			return d
		}
	}
}

type idAllocator struct {
	used    map[int]bool
	current int
}

func newIDAllocator(used map[int]bool) *idAllocator {
	return &idAllocator{used: used, current: 1}
}

func (a *idAllocator) next() int {
	for a.used[a.current] {
		a.current++
	}
	id := a.current
	a.current++
	return id
}
