package pricing

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/harborline/cargosim/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed base_prices.yaml
var basePricesYAML []byte

// FallbackPrice is used when neither an override nor the builtin table has the route.
const FallbackPrice = 10_000_000

// DefaultColor is the container color for destinations missing from the palette.
const DefaultColor = "gray"

type routePrice struct {
	Dry    float64 `yaml:"dry"`
	Reefer float64 `yaml:"reefer"`
}

type builtinFile struct {
	FallbackPrice float64                          `yaml:"fallback_price"`
	Palette       map[string]string                `yaml:"palette"`
	Routes        map[string]map[string]routePrice `yaml:"routes"`
}

// Table is the static builtin price table plus the destination color palette.
type Table struct {
	fallback float64
	palette  map[domain.PortCode]string
	routes   map[domain.PortCode]map[domain.PortCode]routePrice
}

var (
	builtinOnce  sync.Once
	builtinTable *Table
	builtinErr   error
)

// ParseTable decodes a YAML price table.
func ParseTable(raw []byte) (*Table, error) {
	var f builtinFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse price table: %w", err)
	}

	t := &Table{
		fallback: f.FallbackPrice,
		palette:  make(map[domain.PortCode]string, len(f.Palette)),
		routes:   make(map[domain.PortCode]map[domain.PortCode]routePrice, len(f.Routes)),
	}
	if t.fallback <= 0 {
		t.fallback = FallbackPrice
	}

	for port, color := range f.Palette {
		t.palette[domain.PortCode(port)] = color
	}
	for origin, dests := range f.Routes {
		m := make(map[domain.PortCode]routePrice, len(dests))
		for dest, price := range dests {
			m[domain.PortCode(dest)] = price
		}
		t.routes[domain.PortCode(origin)] = m
	}

	return t, nil
}

// Builtin returns the embedded default table. It is parsed once.
func Builtin() (*Table, error) {
	builtinOnce.Do(func() {
		builtinTable, builtinErr = ParseTable(basePricesYAML)
	})
	return builtinTable, builtinErr
}

// MustBuiltin is Builtin for callers that treat a broken embedded table as a programming error.
func MustBuiltin() *Table {
	t, err := Builtin()
	if err != nil {
		panic(err)
	}
	return t
}

// Price looks up a route in the table.
func (t *Table) Price(origin, destination domain.PortCode, ct domain.ContainerType) (float64, bool) {
	dests, ok := t.routes[origin]
	if !ok {
		return 0, false
	}
	rp, ok := dests[destination]
	if !ok {
		return 0, false
	}
	if ct == domain.ContainerReefer {
		return rp.Reefer, rp.Reefer > 0
	}
	return rp.Dry, rp.Dry > 0
}

// Fallback returns the table's fallback price.
func (t *Table) Fallback() float64 {
	return t.fallback
}

// Color returns the palette color for a destination, gray when unmapped.
func (t *Table) Color(destination domain.PortCode) string {
	if c, ok := t.palette[destination]; ok {
		return c
	}
	return DefaultColor
}
