package address

import (
	"fmt"
	"strings"
)

// Record is one raw row from a record source: field name to raw text
type Record map[string]string

// FieldMapping binds an input field name to a component key
type FieldMapping struct {
	Name string       `yaml:"name" json:"name"`
	Key  ComponentKey `yaml:"key" json:"key"`
}

// FieldMap is an ordered list of field mappings. Its order is the output column order.
type FieldMap []FieldMapping

// LicenseFieldMap is the column layout of the separated licence address export
var LicenseFieldMap = FieldMap{
	{Name: "index", Key: Postcode},
	{Name: "region", Key: State},
	{Name: "district", Key: StateDistrict},
	{Name: "city", Key: City},
	{Name: "suburb", Key: CityDistrict},
	{Name: "street", Key: Road},
	{Name: "house_number", Key: HouseNumber},
	{Name: "unit", Key: Unit},
}

// TrainingFieldMap is the header layout accepted by the TSV trainer
var TrainingFieldMap = FieldMap{
	{Name: "index", Key: Postcode},
	{Name: "region", Key: State},
	{Name: "district", Key: StateDistrict},
	{Name: "city", Key: City},
	{Name: "suburb", Key: CityDistrict},
	{Name: "street", Key: Road},
	{Name: "house_number", Key: HouseNumber},
	{Name: "level", Key: Level},
	{Name: "unit", Key: Unit},
}

// Names returns the input field names in order
func (fm FieldMap) Names() []string {
	names := make([]string, len(fm))
	for i, m := range fm {
		names[i] = m.Name
	}
	return names
}

// Keys returns the component keys in order
func (fm FieldMap) Keys() []ComponentKey {
	keys := make([]ComponentKey, len(fm))
	for i, m := range fm {
		keys[i] = m.Key
	}
	return keys
}

// Lookup returns the key bound to a field name
func (fm FieldMap) Lookup(name string) (ComponentKey, bool) {
	for _, m := range fm {
		if m.Name == name {
			return m.Key, true
		}
	}
	return "", false
}

// Validate checks that every key is known and every field name is unique
func (fm FieldMap) Validate() error {
	seen := make(map[string]bool, len(fm))
	for _, m := range fm {
		if _, ok := ParseKey(string(m.Key)); !ok {
			return fmt.Errorf("field %q: unknown component key %q", m.Name, m.Key)
		}
		if seen[m.Name] {
			return fmt.Errorf("field %q mapped twice", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// Components builds a ComponentSet from the record, in field map order.
// clean is applied to every value; fields that end up empty are skipped.
func (r Record) Components(fm FieldMap, clean func(ComponentKey, string) string) *ComponentSet {
	cs := NewComponentSet()
	for _, m := range fm {
		v, ok := r[m.Name]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if clean != nil {
			v = clean(m.Key, v)
		}
		cs.Set(m.Key, v)
	}
	return cs
}

// IsEmpty reports whether every field is blank
func (r Record) IsEmpty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Russian country names used when a country component is added
var RussiaNames = []string{
	"РФ",
	"Россия",
	"Российская Федерация",
}

const (
	CountryRussia   = "ru"
	LanguageRussian = "ru"
)
