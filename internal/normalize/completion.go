package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// completionRegex matches a quarter/year label like "Q3 2026" (case-insensitive,
// single space) after trimming.
var completionRegex = regexp.MustCompile(`^[Qq]([1-4]) (\d{4})$`)

// ParseCompletion converts a completion-date label into a sortable integer key,
// year*10+quarter, so later years and later quarters order higher. Quarter is
// always below 10, so the key is unique per (year, quarter) pair. The second
// return is false for anything outside the grammar.
func ParseCompletion(s string) (int, bool) {
	m := completionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	quarter, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	return year*10 + quarter, true
}
