package decks

import (
	"fmt"

	"github.com/harborline/cargosim/internal/domain"
)

// ValidateImport checks every row and assigns ids. Row numbers in errors are 1-based.
// Rows without an id always get the smallest unused positive id. A duplicate explicit
// id (within the batch or already in the deck) is an error unless autoID is set, in
// which case it is reassigned the same way.
func ValidateImport(rows []ImportRow, used map[int]bool, autoID bool) ([]Card, error) {
	var errs domain.RowErrors
	if len(rows) == 0 {
		return nil, domain.RowErrors{{Row: 0, Field: "cards", Message: "at least one card is required"}}
	}

	taken := make(map[int]bool, len(used)+len(rows))
	for id := range used {
		taken[id] = true
	}

	cards := make([]Card, len(rows))
	pending := make([]int, 0)

	for i, row := range rows {
		rowNum := i + 1
		rowErr := func(field, format string, args ...interface{}) {
			errs = append(errs, domain.RowError{Row: rowNum, Field: field, Message: fmt.Sprintf(format, args...)})
		}

		origin, err := domain.ParsePort(row.Origin)
		if err != nil {
			rowErr("origin", "unknown port code %q", row.Origin)
		}
		destination, err := domain.ParsePort(row.Destination)
		if err != nil {
			rowErr("destination", "unknown port code %q", row.Destination)
		}
		if origin != "" && origin == destination {
			rowErr("destination", "must differ from origin")
		}
		priority, err := domain.ParsePriority(row.Priority)
		if err != nil {
			rowErr("priority", "must be committed or non-committed, got %q", row.Priority)
		}
		if row.Quantity <= 0 {
			rowErr("quantity", "must be positive, got %d", row.Quantity)
		}
		if row.Revenue <= 0 {
			rowErr("revenue", "must be positive, got %d", row.Revenue)
		}

		cards[i] = Card{
			Priority:    priority,
			Origin:      origin,
			Destination: destination,
			Quantity:    row.Quantity,
			Revenue:     row.Revenue,
		}

		switch {
		case row.ID == nil:
			pending = append(pending, i)
		case *row.ID <= 0:
			rowErr("id", "must be positive, got %d", *row.ID)
		case taken[*row.ID]:
			if autoID {
				pending = append(pending, i)
			} else {
				rowErr("id", "duplicate card id %d", *row.ID)
			}
		default:
			taken[*row.ID] = true
			cards[i].ID = *row.ID
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	next := 1
	for _, i := range pending {
		for taken[next] {
			next++
		}
		cards[i].ID = next
		taken[next] = true
	}

	for i := range cards {
		cards[i].Type = domain.TypeForID(cards[i].ID)
	}
	return cards, nil
}
