// Package utils holds small helpers shared across modules.
package utils

import "strings"

// ParseCSV splits a comma-separated list into trimmed values, dropping blanks and
// repeats while keeping first-seen order. Blank input yields nil.
func ParseCSV(s string) []string {
	var result []string
	seen := make(map[string]struct{})

	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' }) {
		value := strings.TrimSpace(field)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
