package server

import "strconv"

// -----------------------------------------------------------------------------

// parseLimit parses a query-string limit, falling back to max when absent
// or unusable.
func parseLimit(raw string, max int) int {
	if raw == "" {
		return max
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > max {
		return max
	}
	return n
}
