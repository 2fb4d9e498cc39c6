package format

import (
	"strings"

	"github.com/ru-addr/internal/address"
)

// Formatter renders a component set as one training-data address string
type Formatter interface {
	FormatAddress(components *address.ComponentSet, country, language string, tagComponents, minimalOnly bool) string
}

// LineSeparator joins address lines in tagged output
const LineSeparator = " | "

// Template is an ordered list of address lines, each a list of components
// printed together on that line
type Template [][]address.ComponentKey

// RussianTemplate is the postal order used for Russian addresses
var RussianTemplate = Template{
	{address.House},
	{address.Road, address.HouseNumber, address.Building, address.Entrance, address.Staircase, address.Level, address.Unit},
	{address.Suburb, address.CityDistrict},
	{address.City},
	{address.Island},
	{address.StateDistrict},
	{address.State},
	{address.CountryRegion, address.Country},
	{address.Postcode},
}

// TemplateFormatter picks a template per country code
type TemplateFormatter struct {
	templates map[string]Template
	fallback  Template
}

// NewTemplateFormatter returns a formatter knowing the Russian template,
// which is also used for any other country
func NewTemplateFormatter() *TemplateFormatter {
	return &TemplateFormatter{
		templates: map[string]Template{address.CountryRussia: RussianTemplate},
		fallback:  RussianTemplate,
	}
}

// Register adds or replaces the template for a country code
func (f *TemplateFormatter) Register(country string, t Template) {
	f.templates[strings.ToLower(country)] = t
}

// FormatAddress renders components. Tagged output labels every token as
// token/label with lines separated by " | "; untagged output joins values
// with ", ". With minimalOnly set, sets lacking both a road and a house
// render as "".
func (f *TemplateFormatter) FormatAddress(components *address.ComponentSet, country, language string, tagComponents, minimalOnly bool) string {
	if components == nil || components.Len() == 0 {
		return ""
	}
	if minimalOnly && !components.Has(address.Road) && !components.Has(address.House) {
		return ""
	}

	tmpl, ok := f.templates[strings.ToLower(country)]
	if !ok {
		tmpl = f.fallback
	}

	var lines []string
	for _, line := range tmpl {
		var parts []string
		for _, key := range line {
			v, ok := components.Get(key)
			if !ok {
				continue
			}
			if tagComponents {
				if tagged := tagTokens(v, key); tagged != "" {
					parts = append(parts, tagged)
				}
			} else {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if tagComponents {
			lines = append(lines, strings.Join(parts, " "))
		} else {
			lines = append(lines, strings.Join(parts, ", "))
		}
	}

	if tagComponents {
		return strings.Join(lines, LineSeparator)
	}
	return strings.Join(lines, ", ")
}

// tagTokens labels each whitespace token of v; separator commas are dropped
func tagTokens(v string, key address.ComponentKey) string {
	var out []string
	for _, tok := range strings.Fields(v) {
		tok = strings.Trim(tok, ",")
		if tok == "" {
			continue
		}
		out = append(out, tok+"/"+string(key))
	}
	return strings.Join(out, " ")
}
