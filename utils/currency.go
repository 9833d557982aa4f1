package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency renders an amount the way the tickets print it:
// thousands separated by spaces, no decimals, FCFA suffix.
// Example: 11000 -> "11 000 FCFA"
func FormatCurrency(amount float64) string {
	rounded := int64(math.Round(amount))
	neg := rounded < 0
	if neg {
		rounded = -rounded
	}

	digits := fmt.Sprintf("%d", rounded)
	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{digits[start:i]}, groups...)
	}

	out := strings.Join(groups, " ") + " FCFA"
	if neg {
		return "-" + out
	}
	return out
}
