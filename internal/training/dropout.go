package training

import (
	"math/rand"

	"github.com/ru-addr/internal/address"
)

// DropAddress returns a copy without street and building level components
func DropAddress(cs *address.ComponentSet) *address.ComponentSet {
	return cs.Without(address.AddressLevelKeys...)
}

// DropPlaces returns a copy without administrative components
func DropPlaces(cs *address.ComponentSet) *address.ComponentSet {
	return cs.Without(address.BoundaryKeys...)
}

// DropPostcode returns a copy without the postcode
func DropPostcode(cs *address.ComponentSet) *address.ComponentSet {
	return cs.Without(address.Postcode)
}

// AddressLevelDropoutOrder returns the place components and postcode present
// in cs in a random order. Removing them one by one from a full address
// yields progressively shorter variants that still keep the street.
func AddressLevelDropoutOrder(cs *address.ComponentSet, rng *rand.Rand) []address.ComponentKey {
	var order []address.ComponentKey
	for _, k := range cs.Keys() {
		if address.IsBoundary(k) || k == address.Postcode {
			order = append(order, k)
		}
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// Dedup removes repeated strings, keeping first occurrences in order
func Dedup(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
