package util

import (
	"strconv"
)

// ParseBoolDefault parses a query flag such as "true", "1" or "false",
// falling back to def when s is empty or malformed.
func ParseBoolDefault(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
