package exporter

import (
	"strconv"
	"time"
)

// formatMoney formats a monetary amount with 2 decimal places
func formatMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// formatCount formats a count with no decimal places
func formatCount(count float64) string {
	return strconv.FormatFloat(count, 'f', 0, 64)
}

// formatInt formats an integer value
func formatInt(value int) string {
	return strconv.Itoa(value)
}

// formatRate formats a rate or ratio with its minimal representation,
// preserving whatever precision the cleaning stage produced
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

// formatDate formats a date as YYYY-MM-DD; zero dates become empty cells
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatMonth formats a month as its long name plus year, e.g. "January 2026"
func formatMonth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2006")
}

// formatOptional formats an optional numeric value; nil becomes an empty cell
func formatOptional(value *float64) string {
	if value == nil {
		return ""
	}
	return formatCount(*value)
}
