// Package postal wraps libpostal through gopostal. It needs libpostal and
// its data files installed; everything else in the module works without it.
package postal

import (
	"strings"

	"github.com/openvenues/gopostal/expand"
	"github.com/openvenues/gopostal/parser"

	"github.com/ru-addr/internal/address"
)

// Parse runs the libpostal parser with Russian hints. Labels libpostal
// repeats are joined with a space; unknown labels are dropped.
func Parse(addr string) *address.ComponentSet {
	parsed := parser.ParseAddressOptions(addr, parser.ParserOptions{
		Language: address.LanguageRussian,
		Country:  address.CountryRussia,
	})
	return fromParsed(parsed)
}

func fromParsed(parsed []parser.ParsedComponent) *address.ComponentSet {
	cs := address.NewComponentSet()
	for _, c := range parsed {
		key, ok := address.ParseKey(c.Label)
		if !ok {
			continue
		}
		v := strings.TrimSpace(c.Value)
		if prev := cs.Value(key); prev != "" {
			v = prev + " " + v
		}
		cs.Set(key, v)
	}
	return cs
}

// ExpandStreet returns libpostal's normalised expansions of a street name.
// With no languages given Russian is assumed.
func ExpandStreet(value string, languages ...string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if len(languages) == 0 {
		languages = []string{address.LanguageRussian}
	}
	opts := expand.GetDefaultExpansionOptions()
	opts.Languages = languages
	return expand.ExpandAddressOptions(value, opts)
}
