package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/debug"
)

// Placeholder values that mean "no data" in government dumps
var (
	reNotApplicable = regexp.MustCompile(`(?i)^\s*n\.?\s*/?\s*a\.?\s*$`)
	reNull          = regexp.MustCompile(`(?i)^\s*(null|none|nil|-+)\s*$`)
	reUnknown       = regexp.MustCompile(`(?i)^\s*(unknown|нет данных|неизвестно)\s*$`)
)

var reSpaces = regexp.MustCompile(`\s+`)

// IsPlaceholder reports whether v is a "no data" marker
func IsPlaceholder(v string) bool {
	return reNotApplicable.MatchString(v) || reNull.MatchString(v) || reUnknown.MatchString(v)
}

// CleanValue trims a raw field, drops placeholders and strips
// commas, spaces and dashes from both ends. "" means the field is absent.
func CleanValue(v string) string {
	if IsPlaceholder(v) {
		return ""
	}
	return TrimValue(v)
}

// TrimValue trims whitespace, then commas, spaces and dashes, from both ends
func TrimValue(v string) string {
	return strings.Trim(strings.TrimSpace(v), ", -")
}

// CleanedName collapses inner whitespace and trims a component name
func CleanedName(name string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(name, " "))
}

// StreetNameIsValid requires at least one letter: bare numbers and
// punctuation are not street names
func StreetNameIsValid(street string) bool {
	for _, r := range street {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

var rePostcode = regexp.MustCompile(`^\d{6}$`)

// ValidPostcode accepts six-digit Russian postcodes other than all zeros
func ValidPostcode(v string) bool {
	v = strings.TrimSpace(v)
	return rePostcode.MatchString(v) && strings.Trim(v, "0") != ""
}

// ValidHouseNumber rejects empty and zero house numbers
func ValidHouseNumber(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return strings.Trim(v, "0 ") != ""
}

// ValidStreet rejects street values with no letters
func ValidStreet(v string) bool {
	return StreetNameIsValid(v)
}

// Validators is the per-component validator table used by the trainers
var Validators = map[address.ComponentKey]func(string) bool{
	address.HouseNumber: ValidHouseNumber,
	address.Road:        ValidStreet,
	address.Postcode:    ValidPostcode,
}

// CleanComponent applies CleanValue and the validator for key, if any
func CleanComponent(localDebug bool, key address.ComponentKey, v string) string {
	v = CleanValue(v)
	if v == "" {
		return ""
	}
	if validate, ok := Validators[key]; ok && !validate(v) {
		debug.DebugOutput(localDebug, "Dropping invalid %s: %q", key, v)
		return ""
	}
	return v
}
