package performance

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/harborline/cargosim/internal/domain"
)

// Field is an optional patch value. Set records presence; a present null leaves Value nil.
type Field[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Of returns a set field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a set field holding null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// WeekPatch overwrites only the fields that are present.
type WeekPatch struct {
	WeekNumber               Field[int]   `json:"weekNumber"`
	RolledDryCommitted       Field[int]   `json:"rolledDryCommitted"`
	RolledDryNonCommitted    Field[int]   `json:"rolledDryNonCommitted"`
	RolledReeferCommitted    Field[int]   `json:"rolledReeferCommitted"`
	RolledReeferNonCommitted Field[int]   `json:"rolledReeferNonCommitted"`
	Revenue                  Field[int64] `json:"revenue"`
	TotalPenalty             Field[int64] `json:"totalPenalty"`
}

// DecodeWeekPatch parses weekData strictly; unknown keys are rejected.
func DecodeWeekPatch(raw json.RawMessage) (WeekPatch, error) {
	var p WeekPatch
	if len(bytes.TrimSpace(raw)) == 0 {
		return p, &domain.ValidationError{Field: "weekData", Message: "is required"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, &domain.ValidationError{Field: "weekData", Message: err.Error()}
	}
	return p, nil
}

// Fields lists the present field names in a stable order.
func (p WeekPatch) Fields() []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("rolledDryCommitted", p.RolledDryCommitted.Set)
	add("rolledDryNonCommitted", p.RolledDryNonCommitted.Set)
	add("rolledReeferCommitted", p.RolledReeferCommitted.Set)
	add("rolledReeferNonCommitted", p.RolledReeferNonCommitted.Set)
	add("revenue", p.Revenue.Set)
	add("totalPenalty", p.TotalPenalty.Set)
	return out
}

// Validate checks the patch against the target week.
func (p WeekPatch) Validate(week int) error {
	var errs domain.ValidationErrors
	if p.WeekNumber.Set && (p.WeekNumber.Value == nil || *p.WeekNumber.Value != week) {
		errs.Add("weekNumber", "cannot be changed (target week %d)", week)
	}
	for name, f := range map[string]Field[int]{
		"rolledDryCommitted":       p.RolledDryCommitted,
		"rolledDryNonCommitted":    p.RolledDryNonCommitted,
		"rolledReeferCommitted":    p.RolledReeferCommitted,
		"rolledReeferNonCommitted": p.RolledReeferNonCommitted,
	} {
		if f.Value != nil && *f.Value < 0 {
			errs.Add(name, "must not be negative, got %d", *f.Value)
		}
	}
	return errs.OrNil()
}

// ApplyPatch merges p into the matching week and recomputes the totals.
func ApplyPatch(s *Summary, week int, p WeekPatch) error {
	entry := s.Week(week)
	if entry == nil {
		return fmt.Errorf("week %d: %w", week, domain.ErrNotFound)
	}

	setField(&entry.RolledDryCommitted, p.RolledDryCommitted)
	setField(&entry.RolledDryNonCommitted, p.RolledDryNonCommitted)
	setField(&entry.RolledReeferCommitted, p.RolledReeferCommitted)
	setField(&entry.RolledReeferNonCommitted, p.RolledReeferNonCommitted)
	setField(&entry.Revenue, p.Revenue)
	setField(&entry.TotalPenalty, p.TotalPenalty)

	s.RecomputeTotals()
	return nil
}

func setField[T any](dst **T, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		*dst = nil
		return
	}
	v := *f.Value
	*dst = &v
}
