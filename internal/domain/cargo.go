package domain

import (
	"fmt"
	"strings"
)

// ContainerType classifies cargo as dry or reefer.
type ContainerType string

const (
	ContainerDry    ContainerType = "dry"
	ContainerReefer ContainerType = "reefer"
)

// TypeForID derives the container type from a card id: reefer iff id mod 5 == 0.
func TypeForID(id int) ContainerType {
	if id%5 == 0 {
		return ContainerReefer
	}
	return ContainerDry
}

// Title returns the capitalized form used in price keys ("Dry", "Reefer").
func (t ContainerType) Title() string {
	switch t {
	case ContainerReefer:
		return "Reefer"
	default:
		return "Dry"
	}
}

// ParseContainerType accepts "dry"/"reefer" in any case.
func ParseContainerType(raw string) (ContainerType, error) {
	switch ContainerType(strings.ToLower(strings.TrimSpace(raw))) {
	case ContainerDry:
		return ContainerDry, nil
	case ContainerReefer:
		return ContainerReefer, nil
	}
	return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown container type %q", raw)}
}

// Priority classifies a card as committed or non-committed demand.
type Priority string

const (
	PriorityCommitted    Priority = "committed"
	PriorityNonCommitted Priority = "non-committed"
)

// ParsePriority accepts the hyphenated and underscored spellings.
func ParsePriority(raw string) (Priority, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	switch Priority(normalized) {
	case PriorityCommitted:
		return PriorityCommitted, nil
	case PriorityNonCommitted:
		return PriorityNonCommitted, nil
	}
	return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", raw)}
}

// Committed reports whether the priority is committed.
func (p Priority) Committed() bool {
	return p == PriorityCommitted
}

// Decision is a player's action on a card.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision validates a card action.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", &ValidationError{Field: "card_action", Message: fmt.Sprintf("must be accept or reject, got %q", raw)}
}
