package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// priceRegex accepts a numeric literal followed by a single magnitude suffix
// and nothing else. Partial matches are rejected on purpose: a malformed
// entry must parse to "absent", not to a wrong number.
var priceRegex = regexp.MustCompile(`^\s*([0-9.]+)\s*([MmKk])\s*$`)

// ParsePrice converts a free-form magnitude-suffixed price string ("7.32 M",
// "715K") into an integer currency amount. The second return is false when
// the string does not match the grammar.
func ParsePrice(s string) (int64, bool) {
	m := priceRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	// The character class admits multiple dots ("7.3.2"); ParseFloat rejects
	// those, which keeps the grammar strict.
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToUpper(m[2]) {
	case "M":
		value *= 1_000_000
	case "K":
		value *= 1_000
	}

	// A scaled value beyond int64 range cannot be a real price, and the
	// float-to-int conversion would be undefined; treat it as absent like
	// any other malformed entry.
	if value >= math.MaxInt64 {
		return 0, false
	}

	return int64(math.Round(value)), true
}
