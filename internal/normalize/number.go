package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// CleanupNumber normalises a numeric house number or postcode.
// Integers pass through; floats are truncated to an integer keeping their
// leading zeros ("012.0" becomes "012"); anything else is returned trimmed.
func CleanupNumber(num string, stripCommas bool) string {
	num = strings.TrimSpace(num)
	if stripCommas {
		num = strings.ReplaceAll(num, ",", "")
	}
	if _, err := strconv.Atoi(num); err == nil {
		return num
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e18 {
		return num
	}

	leadingZeros := len(num) - len(strings.TrimLeft(num, "0"))
	out := strconv.FormatInt(int64(f), 10)
	if leadingZeros > 0 {
		out = strings.Repeat("0", leadingZeros) + out
	}
	return out
}

var (
	reHouseWithDom = regexp.MustCompile(`.*д[ом]?.?\s?\d+\s?[А-я]?`)
	reHouseLeading = regexp.MustCompile(`^\d+\s?[А-я]?`)
)

// DefaultMaxHouseNumberLen is the length above which a house number is cut down
const DefaultMaxHouseNumberLen = 30

// TrimHouseNumber cuts an overlong house-number value down to its house
// designator. Values of at most maxLen characters are returned unchanged.
// Longer values keep the text up to "д./дом N[буква]", else a leading
// "N[буква]", else become empty.
func TrimHouseNumber(value string, maxLen int) string {
	if utf8.RuneCountInString(value) <= maxLen {
		return value
	}
	if found := reHouseWithDom.FindString(value); found != "" {
		return found
	}
	if found := reHouseLeading.FindString(value); found != "" {
		return found
	}
	return ""
}
