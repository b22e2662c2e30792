package util

import (
	"math"
	"unicode/utf8"
)

// Round2 rounds a score for storage and display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds a percentage for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SafeDiv returns 0 for an empty denominator.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent is num/den*100 rounded to one decimal, 0 when den is 0.
func Percent(num, den int) float64 {
	return Round1(SafeDiv(float64(num), float64(den)) * 100)
}

// Mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Truncate cuts s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}
