package exporter

import (
	"strconv"
)

// formatFloat formats a float64 with the fewest digits that parse back to the same value
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptionalInt formats a nullable integer, empty when absent
func formatOptionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
