package handlers

import (
	"strconv"
	"strings"
)

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseNonNegativeInt(value string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v >= 0 {
		return v
	}
	return 0
}

// parseSeed returns nil for an empty or malformed seed.
func parseSeed(value string) *int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	seed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &seed
}
