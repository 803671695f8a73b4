// Package utils provides small helpers shared by the HTTP layer for reading
// numeric query parameters.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as a base-10 int, returning def when s is blank or
// not a number. Surrounding whitespace is ignored.
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	switch {
	case n < lo:
		return lo
	case n > hi:
		return hi
	}
	return n
}

// IntParam reads a numeric query value with a default and bounds, e.g. the
// result cap of a search.
func IntParam(raw string, def, lo, hi int) int {
	return Clamp(AtoiDefault(raw, def), lo, hi)
}
