package domain

import (
	"fmt"
	"strings"
)

// PortCode is a 3-letter port identifier from the enumerated roster.
type PortCode string

const (
	PortSBY PortCode = "SBY"
	PortMKS PortCode = "MKS"
	PortMDN PortCode = "MDN"
	PortJYP PortCode = "JYP"
	PortBPN PortCode = "BPN"
	PortBKS PortCode = "BKS"
	PortBGR PortCode = "BGR"
	PortBTH PortCode = "BTH"
	PortAMQ PortCode = "AMQ"
	PortSMR PortCode = "SMR"
)

// Roster size bounds for a generation run
const (
	MinRosterSize = 2
	MaxRosterSize = 10
)

// allPorts is the enumerated port set in roster order.
var allPorts = []PortCode{
	PortSBY, PortMKS, PortMDN, PortJYP, PortBPN,
	PortBKS, PortBGR, PortBTH, PortAMQ, PortSMR,
}

// AllPorts returns a copy of the enumerated port set in roster order.
func AllPorts() []PortCode {
	out := make([]PortCode, len(allPorts))
	copy(out, allPorts)
	return out
}

// Roster returns the fixed roster for a port count in [MinRosterSize, MaxRosterSize].
func Roster(n int) ([]PortCode, error) {
	if n < MinRosterSize || n > MaxRosterSize {
		return nil, &ValidationError{
			Field:   "ports",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinRosterSize, MaxRosterSize, n),
		}
	}
	out := make([]PortCode, n)
	copy(out, allPorts[:n])
	return out, nil
}

// Valid reports whether p is a member of the enumerated port set.
func (p PortCode) Valid() bool {
	for _, known := range allPorts {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePort validates a raw port code. Input is trimmed and upper-cased.
func ParsePort(raw string) (PortCode, error) {
	p := PortCode(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", &ValidationError{Field: "port", Message: fmt.Sprintf("unknown port code %q", raw)}
	}
	return p, nil
}
