package services

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// missingTokens are the cell values treated as an absent reading.
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
}

// isMissing reports whether a raw cell denotes a missing value.
func isMissing(raw string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// parseReading converts a raw cell to a float. Missing cells become NaN with
// ok=true; ok is false only when the cell holds something that is not a number.
func parseReading(raw string) (v float64, ok bool) {
	if isMissing(raw) {
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseField parses one of the integer date/time fields.
func parseField(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// normaliseHeader trims a header cell and drops a UTF-8 byte order mark.
func normaliseHeader(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
