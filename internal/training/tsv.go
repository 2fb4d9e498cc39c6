package training

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/debug"
	"github.com/ru-addr/internal/format"
	"github.com/ru-addr/internal/normalize"
	"github.com/ru-addr/internal/source"
)

// CLDRCountryName is the Russian CLDR name of Russia
const CLDRCountryName = "Россия"

// Probabilities controls how often the extra variants are produced
type Probabilities struct {
	AddressOnly float64 // street-only variant
	DropAddress float64 // places-only variant
	// DropPostcode is checked against the same draw as DropAddress, so it
	// only has an effect when smaller
	DropPostcode float64
}

// DefaultProbabilities are the variant probabilities for licence data
var DefaultProbabilities = Probabilities{
	AddressOnly:  0.4,
	DropAddress:  0.6,
	DropPostcode: 0.1,
}

// TSVTrainer turns separated address rows into formatted training examples
type TSVTrainer struct {
	formatter  format.Formatter
	fieldMap   address.FieldMap
	rng        *rand.Rand
	tagged     bool
	localDebug bool

	Probabilities Probabilities
}

// NewTSVTrainer creates a trainer reading columns named by fm
func NewTSVTrainer(f format.Formatter, fm address.FieldMap, rng *rand.Rand, tagged, localDebug bool) *TSVTrainer {
	return &TSVTrainer{
		formatter:     f,
		fieldMap:      fm,
		rng:           rng,
		tagged:        tagged,
		localDebug:    localDebug,
		Probabilities: DefaultProbabilities,
	}
}

// Examples returns the training variants for one row: the full address,
// sometimes the street part alone, and sometimes the places alone. Rows
// with no usable street are kept as places only when they have a postcode.
func (t *TSVTrainer) Examples(rec address.Record) []Example {
	cs := rec.Components(t.fieldMap, func(k address.ComponentKey, v string) string {
		return normalize.CleanComponent(t.localDebug, k, v)
	})
	if cs.Len() == 0 {
		return nil
	}
	cs.Apply(func(_ address.ComponentKey, v string) string {
		return normalize.FixEncoding(v)
	})

	street := cs.Value(address.Road)
	if street != "" {
		street = normalize.CleanedName(street)
		if normalize.StreetNameIsValid(street) {
			cs.Set(address.Road, street)
		} else {
			cs.Delete(address.Road)
			street = ""
		}
	}

	houseNumber := cs.Value(address.HouseNumber)
	if houseNumber != "" {
		houseNumber = normalize.CleanupNumber(houseNumber, true)
		cs.Set(address.HouseNumber, houseNumber)
	}

	if street == "" || (houseNumber != "" && strings.EqualFold(street, houseNumber)) {
		if !cs.Has(address.Postcode) {
			debug.DebugOutput(t.localDebug, "Skipping row without street or postcode: %s", cs)
			return nil
		}
		cs = DropAddress(cs)
		street, houseNumber = "", ""
	}

	cs.Set(address.Country, CLDRCountryName)

	examples := []Example{t.example(cs)}

	if street != "" && t.rng.Float64() < t.Probabilities.AddressOnly {
		examples = append(examples, t.example(DropPostcode(DropPlaces(cs))))
	}

	r := t.rng.Float64()
	if street != "" && houseNumber != "" && r < t.Probabilities.DropAddress {
		places := DropAddress(cs)
		if r < t.Probabilities.DropPostcode {
			places = DropPostcode(places)
		}
		if places.Len() > 1 {
			examples = append(examples, t.example(places))
		}
	}

	return examples
}

func (t *TSVTrainer) example(cs *address.ComponentSet) Example {
	return Example{
		Language:  address.LanguageRussian,
		Country:   address.CountryRussia,
		Formatted: t.formatter.FormatAddress(cs, address.CountryRussia, address.LanguageRussian, t.tagged, false),
	}
}

// Run writes the examples of every record in src to w
func (t *TSVTrainer) Run(src source.Source, w *Writer) error {
	debug.DebugHeader(t.localDebug, "tsv training")
	defer debug.DebugFooter(t.localDebug, "tsv training")

	err := source.ForEach(src, func(rec address.Record) error {
		for _, ex := range t.Examples(rec) {
			if err := w.Write(ex); err != nil {
				return fmt.Errorf("failed to write example: %w", err)
			}
		}
		return nil
	}, func(err error) error {
		debug.DebugOutput(t.localDebug, "Skipping bad row: %v", err)
		return nil
	})
	if err != nil {
		return err
	}

	debug.DebugOutput(t.localDebug, "Wrote %d formatted addresses", w.Count())
	return nil
}
