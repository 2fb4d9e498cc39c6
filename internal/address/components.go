package address

import "strings"

// ComponentKey is an address component label, spelled the way libpostal tags it
type ComponentKey string

const (
	Category      ComponentKey = "category"
	Near          ComponentKey = "near"
	House         ComponentKey = "house"
	HouseNumber   ComponentKey = "house_number"
	PoBox         ComponentKey = "po_box"
	Road          ComponentKey = "road"
	Building      ComponentKey = "building"
	Entrance      ComponentKey = "entrance"
	Staircase     ComponentKey = "staircase"
	Level         ComponentKey = "level"
	Unit          ComponentKey = "unit"
	Suburb        ComponentKey = "suburb"
	CityDistrict  ComponentKey = "city_district"
	City          ComponentKey = "city"
	Island        ComponentKey = "island"
	StateDistrict ComponentKey = "state_district"
	State         ComponentKey = "state"
	Postcode      ComponentKey = "postcode"
	CountryRegion ComponentKey = "country_region"
	Country       ComponentKey = "country"
	WorldRegion   ComponentKey = "world_region"
)

// AllKeys lists every known component key, most specific first
var AllKeys = []ComponentKey{
	Category, Near, House, HouseNumber, PoBox, Road, Building, Entrance, Staircase,
	Level, Unit, Suburb, CityDistrict, City, Island, StateDistrict, State, Postcode,
	CountryRegion, Country, WorldRegion,
}

// BoundaryKeys are the administrative components above the street level
var BoundaryKeys = []ComponentKey{
	Suburb, CityDistrict, City, Island, StateDistrict, State, CountryRegion, Country, WorldRegion,
}

// AddressLevelKeys are the components below the place level (street and building)
var AddressLevelKeys = []ComponentKey{
	House, HouseNumber, PoBox, Road, Building, Entrance, Staircase, Level, Unit,
}

// ParseKey resolves a label to a known ComponentKey
func ParseKey(label string) (ComponentKey, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, k := range AllKeys {
		if string(k) == label {
			return k, true
		}
	}
	return "", false
}

// IsBoundary reports whether k is an administrative (place) component
func IsBoundary(k ComponentKey) bool {
	for _, b := range BoundaryKeys {
		if b == k {
			return true
		}
	}
	return false
}

// ComponentSet is an ordered mapping of component key to value.
// Insertion order is preserved and an empty value is never stored:
// setting "" removes the key.
type ComponentSet struct {
	keys   []ComponentKey
	values map[ComponentKey]string
}

// NewComponentSet creates an empty set
func NewComponentSet() *ComponentSet {
	return &ComponentSet{values: make(map[ComponentKey]string)}
}

// FromMap builds a set from a plain map, ordering keys by AllKeys
func FromMap(m map[string]string) *ComponentSet {
	cs := NewComponentSet()
	for _, k := range AllKeys {
		if v, ok := m[string(k)]; ok {
			cs.Set(k, v)
		}
	}
	return cs
}

// Get returns the value for k and whether it is present
func (cs *ComponentSet) Get(k ComponentKey) (string, bool) {
	v, ok := cs.values[k]
	return v, ok
}

// Value returns the value for k or ""
func (cs *ComponentSet) Value(k ComponentKey) string {
	return cs.values[k]
}

// Has reports whether k is present
func (cs *ComponentSet) Has(k ComponentKey) bool {
	_, ok := cs.values[k]
	return ok
}

// Set stores v under k. An existing key keeps its position; an empty v deletes k.
func (cs *ComponentSet) Set(k ComponentKey, v string) {
	if v == "" {
		cs.Delete(k)
		return
	}
	if _, ok := cs.values[k]; !ok {
		cs.keys = append(cs.keys, k)
	}
	cs.values[k] = v
}

// Delete removes k if present
func (cs *ComponentSet) Delete(k ComponentKey) {
	if _, ok := cs.values[k]; !ok {
		return
	}
	delete(cs.values, k)
	for i, key := range cs.keys {
		if key == k {
			cs.keys = append(cs.keys[:i], cs.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (cs *ComponentSet) Keys() []ComponentKey {
	out := make([]ComponentKey, len(cs.keys))
	copy(out, cs.keys)
	return out
}

// Len returns the number of components
func (cs *ComponentSet) Len() int {
	return len(cs.keys)
}

// Clone returns an independent copy
func (cs *ComponentSet) Clone() *ComponentSet {
	out := &ComponentSet{
		keys:   make([]ComponentKey, len(cs.keys)),
		values: make(map[ComponentKey]string, len(cs.values)),
	}
	copy(out.keys, cs.keys)
	for k, v := range cs.values {
		out.values[k] = v
	}
	return out
}

// Equal compares keys, order and values
func (cs *ComponentSet) Equal(other *ComponentSet) bool {
	if other == nil || len(cs.keys) != len(other.keys) {
		return false
	}
	for i, k := range cs.keys {
		if other.keys[i] != k || other.values[k] != cs.values[k] {
			return false
		}
	}
	return true
}

// Row renders the values in the given column order, "" for absent keys
func (cs *ComponentSet) Row(order []ComponentKey) []string {
	row := make([]string, len(order))
	for i, k := range order {
		row[i] = cs.values[k]
	}
	return row
}

// Map returns a plain label → value map
func (cs *ComponentSet) Map() map[string]string {
	m := make(map[string]string, len(cs.values))
	for k, v := range cs.values {
		m[string(k)] = v
	}
	return m
}

// Apply replaces every value with fn(key, value), dropping keys that become empty
func (cs *ComponentSet) Apply(fn func(ComponentKey, string) string) {
	for _, k := range cs.Keys() {
		cs.Set(k, fn(k, cs.values[k]))
	}
}

// Without returns a copy with the given keys removed
func (cs *ComponentSet) Without(keys ...ComponentKey) *ComponentSet {
	out := cs.Clone()
	for _, k := range keys {
		out.Delete(k)
	}
	return out
}

// String renders "key=value" pairs in order, for logs
func (cs *ComponentSet) String() string {
	parts := make([]string, 0, len(cs.keys))
	for _, k := range cs.keys {
		parts = append(parts, string(k)+"="+cs.values[k])
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Difference is one component on which two sets disagree
type Difference struct {
	Key   ComponentKey
	Left  string
	Right string
}

// Diff lists the components whose values differ between a and b, in
// AllKeys order. A component missing on one side has "" there.
func Diff(a, b *ComponentSet) []Difference {
	var out []Difference
	for _, k := range AllKeys {
		l, r := a.Value(k), b.Value(k)
		if l != r {
			out = append(out, Difference{Key: k, Left: l, Right: r})
		}
	}
	return out
}
