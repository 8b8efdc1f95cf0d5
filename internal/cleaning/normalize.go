package cleaning

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// missingSentinels are cell values treated as absent before any parsing.
var missingSentinels = map[string]bool{
	"":     true,
	"n/a":  true,
	"na":   true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// IsMissing reports whether a raw cell value represents a missing value.
func IsMissing(cell string) bool {
	return missingSentinels[strings.ToLower(strings.TrimSpace(cell))]
}

// NormalizeRate converts a raw rate cell to a decimal fraction. Percent
// signs are stripped; any numeric value greater than 1 is assumed to be a
// whole percentage and divided by 100, values in [0,1] pass through
// unchanged. The heuristic cannot distinguish "150%" from a rate that is
// legitimately above 1. Normalizing already-normalized data is a no-op.
func NormalizeRate(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}

	trimmed := strings.TrimSpace(strings.ReplaceAll(cell, "%", ""))
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}

	if value > 1 {
		return value / 100, true
	}
	return value, true
}

// NormalizeCurrency converts a raw money cell to a float. Euro signs,
// thousands separators and stray spaces are stripped.
func NormalizeCurrency(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}

	trimmed := strings.ReplaceAll(cell, "€", "")
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	trimmed = strings.TrimSpace(trimmed)

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseNumber converts a raw numeric cell to a float, tolerating
// thousands separators.
func ParseNumber(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}

	trimmed := strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// dateFormats are tried in order when parsing date cells. Workbook cells
// arrive as formatted strings whose layout depends on the cell style.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-06",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// excelEpoch is day zero of the 1900 date system used by xlsx serials.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate converts a raw date cell to a UTC date. Unparseable values
// coerce to a missing result rather than an error.
func ParseDate(cell string) (time.Time, bool) {
	if IsMissing(cell) {
		return time.Time{}, false
	}

	trimmed := strings.TrimSpace(cell)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, trimmed); err == nil {
			return t.UTC(), true
		}
	}

	// Unstyled date cells surface as raw Excel day serials
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial > 0 && serial < 100000 {
		return excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour))), true
	}

	return time.Time{}, false
}

// ParseMonth converts a "January 2026" style month cell to the first day
// of that month. Anything else coerces to missing.
func ParseMonth(cell string) (time.Time, bool) {
	if IsMissing(cell) {
		return time.Time{}, false
	}

	t, err := time.Parse("January 2006", strings.TrimSpace(cell))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Slugify lowercases a label and replaces spaces with underscores, the
// canonical form for traffic sources and post types.
func Slugify(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "_")
}

// TitleCase capitalizes the first letter of each space-separated word and
// lowercases the rest, matching the canonical form for campaign names,
// lead sources and ticket types.
func TitleCase(value string) string {
	words := strings.Fields(strings.TrimSpace(value))
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// SanitizeASCII strips non-ASCII characters from a message so the
// cleaning log stays plain text regardless of what labels the workbook
// carried.
func SanitizeASCII(message string) string {
	var b strings.Builder
	b.Grow(len(message))
	for _, r := range message {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
