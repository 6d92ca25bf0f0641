package utils

import "strconv"

// ParseIntDefault parses a query parameter, falling back on empty or
// malformed input.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
