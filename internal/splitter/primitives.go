package splitter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ru-addr/internal/address"
)

// Separator delimits the segments of a composite field
const Separator = ","

// SplitOnFirstSeparator splits value at its first comma. head is the text
// before it, tail the trimmed remainder. Without a comma, head is value and
// ok is false.
func SplitOnFirstSeparator(value string) (head, tail string, ok bool) {
	idx := strings.Index(value, Separator)
	if idx == -1 {
		return value, "", false
	}
	return value[:idx], strings.TrimSpace(value[idx+len(Separator):]), true
}

// Decompose splits a "primary, secondary" pair such as "street, house number"
// on the first comma. secondary is "" (and ok false) when there is no comma.
func Decompose(composite string) (primary, secondary string, ok bool) {
	head, tail, ok := SplitOnFirstSeparator(composite)
	if !ok {
		return composite, "", false
	}
	return strings.TrimSpace(head), tail, true
}

// Match identifies the token that fired in a token lookup
type Match struct {
	Token    string
	Priority int // index of Token in its list
}

// FindFirstToken returns the first token, in list order, that occurs as a
// case-sensitive substring of segment. List order decides, not text position.
func FindFirstToken(segment string, tokens []string) (Match, bool) {
	for i, tok := range tokens {
		if tok != "" && strings.Contains(segment, tok) {
			return Match{Token: tok, Priority: i}, true
		}
	}
	return Match{}, false
}

// Outcome describes what ReclassifyLeadingSegment did
type Outcome int

const (
	// Absent: the source key is missing or empty
	Absent Outcome = iota
	// NoSeparator: the source value has no comma
	NoSeparator
	// NoMatch: a comma is present but no token occurs in the leading segment
	NoMatch
	// Relabeled: the leading segment moved to the target key
	Relabeled
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case NoSeparator:
		return "no_separator"
	case NoMatch:
		return "no_match"
	case Relabeled:
		return "relabeled"
	}
	return "unknown"
}

// ReclassifyLeadingSegment moves the segment before the first comma of
// components[source] to components[target] when that segment contains one of
// tokens; the trimmed remainder stays under source. The first token in list
// order wins. At most one relabel happens per call. In every other case the
// set is left untouched. components is modified in place.
func ReclassifyLeadingSegment(components *address.ComponentSet, source, target address.ComponentKey, tokens []string) (Outcome, Match) {
	value, ok := components.Get(source)
	if !ok || value == "" {
		return Absent, Match{}
	}

	head, tail, ok := SplitOnFirstSeparator(value)
	if !ok {
		return NoSeparator, Match{}
	}

	m, found := FindFirstToken(head, tokens)
	if !found {
		return NoMatch, Match{}
	}

	components.Set(target, strings.TrimSpace(head))
	components.Set(source, tail)
	return Relabeled, m
}

// ExtractHouseNumberSuffix splits a composite house number such as
// "12, пом. 3" into the house number and the unit description. The split is
// made at the last comma that comes strictly before the earliest occurrence
// of any unit token in the lowercased value. Without a token occurrence, or
// without a comma before it, value is returned unchanged and ok is false.
func ExtractHouseNumberSuffix(value string, unitTokens []string) (houseNumber, unit string, ok bool) {
	lower := lowerRunes(value)

	minTokenPos := -1
	for _, tok := range unitTokens {
		if tok == "" {
			continue
		}
		idx := strings.Index(lower, lowerRunes(tok))
		if idx == -1 {
			continue
		}
		pos := utf8.RuneCountInString(lower[:idx])
		if minTokenPos == -1 || pos < minTokenPos {
			minTokenPos = pos
		}
	}
	if minTokenPos == -1 {
		return value, "", false
	}

	splitAt := -1
	runeIdx := 0
	for byteIdx, r := range value {
		if runeIdx >= minTokenPos {
			break
		}
		if r == ',' {
			splitAt = byteIdx
		}
		runeIdx++
	}
	if splitAt == -1 {
		return value, "", false
	}

	return strings.TrimSpace(value[:splitAt]), strings.TrimSpace(value[splitAt+1:]), true
}

// lowerRunes lowercases rune by rune so rune positions line up with the input
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}
