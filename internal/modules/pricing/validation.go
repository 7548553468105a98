package pricing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harborline/cargosim/internal/domain"
)

// PriceKey builds the override key "ORIGIN-DESTINATION-Type".
func PriceKey(origin, destination domain.PortCode, ct domain.ContainerType) string {
	return fmt.Sprintf("%s-%s-%s", origin, destination, ct.Title())
}

// RouteKey is a parsed override key.
type RouteKey struct {
	Origin      domain.PortCode
	Destination domain.PortCode
	Type        domain.ContainerType
}

// ParsePriceKey parses "ORIGIN-DESTINATION-Type". Type must be exactly "Dry" or "Reefer".
func ParsePriceKey(key string) (RouteKey, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return RouteKey{}, fmt.Errorf("expected 3 hyphen-separated segments, got %d", len(parts))
	}

	origin := domain.PortCode(parts[0])
	if !origin.Valid() {
		return RouteKey{}, fmt.Errorf("unknown origin port %q", parts[0])
	}
	destination := domain.PortCode(parts[1])
	if !destination.Valid() {
		return RouteKey{}, fmt.Errorf("unknown destination port %q", parts[1])
	}

	var ct domain.ContainerType
	switch parts[2] {
	case "Dry":
		ct = domain.ContainerDry
	case "Reefer":
		ct = domain.ContainerReefer
	default:
		return RouteKey{}, fmt.Errorf("type must be Dry or Reefer, got %q", parts[2])
	}

	return RouteKey{Origin: origin, Destination: destination, Type: ct}, nil
}

// NormalizePriceData converts decoded JSON values to prices and validates every key.
// All offending keys are reported; any error rejects the whole map.
func NormalizePriceData(raw map[string]interface{}) (map[string]float64, error) {
	var errs domain.ValidationErrors
	if len(raw) == 0 {
		errs.Add("price_data", "must contain at least one entry")
		return nil, errs
	}

	out := make(map[string]float64, len(raw))
	for _, key := range sortedKeys(raw) {
		if _, err := ParsePriceKey(key); err != nil {
			errs.Add(key, "%s", err.Error())
			continue
		}
		switch v := raw[key].(type) {
		case float64:
			if v <= 0 {
				errs.Add(key, "price must be a positive number, got %v", v)
				continue
			}
			out[key] = v
		case int:
			if v <= 0 {
				errs.Add(key, "price must be a positive number, got %v", v)
				continue
			}
			out[key] = float64(v)
		default:
			errs.Add(key, "price must be a positive number, got %T", raw[key])
		}
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidatePriceData validates an already-typed price map.
func ValidatePriceData(data map[string]float64) error {
	raw := make(map[string]interface{}, len(data))
	for k, v := range data {
		raw[k] = v
	}
	_, err := NormalizePriceData(raw)
	return err
}

// OverrideRoster returns the sorted distinct origin ports of a price map.
// The caller applies it only when it has at least two entries.
func OverrideRoster(data map[string]float64) []domain.PortCode {
	seen := make(map[domain.PortCode]bool)
	var roster []domain.PortCode
	for key := range data {
		rk, err := ParsePriceKey(key)
		if err != nil || seen[rk.Origin] {
			continue
		}
		seen[rk.Origin] = true
		roster = append(roster, rk.Origin)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i] < roster[j] })
	return roster
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
