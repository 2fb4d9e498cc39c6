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

// TagAlias maps an OSM tag to the component it fills
type TagAlias struct {
	Tag string
	Key address.ComponentKey
}

// OSMAliases lists tag aliases by priority: when several tags map to the
// same component, the earliest one wins
var OSMAliases = []TagAlias{
	{"name", address.House},
	{"addr:housename", address.House},
	{"addr:housenumber", address.HouseNumber},
	{"addr:house_number", address.HouseNumber},
	{"addr:street", address.Road},
	{"addr:suburb", address.Suburb},
	{"is_in:suburb", address.Suburb},
	{"addr:neighbourhood", address.Suburb},
	{"is_in:neighbourhood", address.Suburb},
	{"addr:neighborhood", address.Suburb},
	{"is_in:neighborhood", address.Suburb},
	{"addr:barangay", address.Suburb},
	{"addr:locality", address.City},
	{"suburb", address.Suburb},
	{"addr:city", address.City},
	{"is_in:city", address.City},
	{"is_in:locality", address.City},
	{"addr:municipality", address.City},
	{"is_in:municipality", address.City},
	{"addr:hamlet", address.City},
	{"is_in:hamlet", address.City},
	{"addr:quarter", address.CityDistrict},
	{"addr:county", address.StateDistrict},
	{"addr:district", address.StateDistrict},
	{"is_in:district", address.StateDistrict},
	{"addr:state", address.State},
	{"is_in:state", address.State},
	{"addr:province", address.State},
	{"is_in:province", address.State},
	{"addr:region", address.State},
	{"is_in:region", address.State},
	{"addr:governorate", address.State},
	{"addr:postcode", address.Postcode},
	{"addr:postal_code", address.Postcode},
	{"addr:zipcode", address.Postcode},
	{"postal_code", address.Postcode},
	{"addr:country", address.Country},
	{"addr:country_code", address.Country},
	{"country_code", address.Country},
	{"is_in:country_code", address.Country},
	{"is_in:country", address.Country},
	{"addr:place", address.Suburb},
}

// StateAltNames are alternative spellings of some federal subjects
var StateAltNames = map[string][]string{
	"Адыгея":              {"Республика Адыгея"},
	"Башкортостан":        {"Башкирия", "Республика Башкортостан"},
	"Республика Бурятия":  {"Бурятия"},
	"Дагестан":            {"Республика Дагестан"},
	"Ингушетия":           {"Республика Ингушетия"},
	"Мордовия":            {"Республика Мордовия"},
	"Кабардино-Балкария":  {"Кабардино-Балкарская Республика"},
	"Калмыкия":            {"Республика Калмыкия"},
	"Камчатский край":     {"Камчатка"},
	"Карачаево-Черкесия":  {"Карачаево-Черкесская Республика"},
	"Республика Карелия":  {"Карелия"},
	"Кемеровская область": {"Кемеровская область - Кузбасс", "Кузбасс"},
	"Республика Коми":     {"Коми"},
	"Марий Эл":            {"Республика Марий Эл"},
	"Республика Алтай":    {"Горный Алтай"},
	"Татарстан":           {"Татария", "Татарская республика"},
	"Республика Тыва":     {"Тува"},
	"Республика Саха (Якутия)":                 {"Якутия"},
	"Северная Осетия — Алания":                 {"Северная Осетия - Алания", "Северная Осетия"},
	"Ханты-Мансийский автономный округ — Югра": {"Ханты-Мансийский автономный округ - Югра", "ХМАО - Югра"},
	"Чечня":                      {"Чеченская республика"},
	"Чувашия":                    {"Чувашская Республика"},
	"Чукотский автономный округ": {"Чукотка"},
	"Республика Хакасия":         {"Хакасия"},
	"Удмуртия":                   {"Удмуртская Республика"},
}

// CityOfficialStatusTag holds the settlement type, e.g. "ru:город"
const CityOfficialStatusTag = "addr:city_official_status"

// OSMProbabilities controls the random perturbations applied to OSM data
type OSMProbabilities struct {
	AddCountry         float64
	StateAltName       float64
	ExpandStreet       float64
	PlacesDropPostcode float64
}

// DefaultOSMProbabilities are the perturbation rates for OSM extracts
var DefaultOSMProbabilities = OSMProbabilities{
	AddCountry:         0.001,
	StateAltName:       0.3,
	ExpandStreet:       0.3,
	PlacesDropPostcode: 0.1,
}

// Expander returns alternative spellings of a street name
type Expander func(street string) []string

// OSMTrainer turns tagged OSM elements into formatted training examples
type OSMTrainer struct {
	formatter  format.Formatter
	rng        *rand.Rand
	expand     Expander
	tagged     bool
	localDebug bool

	Probabilities OSMProbabilities
}

// NewOSMTrainer creates a trainer; expand may be nil
func NewOSMTrainer(f format.Formatter, rng *rand.Rand, expand Expander, tagged, localDebug bool) *OSMTrainer {
	return &OSMTrainer{
		formatter:     f,
		rng:           rng,
		expand:        expand,
		tagged:        tagged,
		localDebug:    localDebug,
		Probabilities: DefaultOSMProbabilities,
	}
}

// NormalizeTags maps OSM tags to components through OSMAliases
func NormalizeTags(tags address.Record) *address.ComponentSet {
	cs := address.NewComponentSet()
	for _, a := range OSMAliases {
		if cs.Has(a.Key) {
			continue
		}
		if v := strings.TrimSpace(tags[a.Tag]); v != "" {
			cs.Set(a.Key, v)
		}
	}
	return cs
}

// NormalizedStreetName handles streets tagged as "name, N" where N repeats
// the house number, returning the bare name
func NormalizedStreetName(street, houseNumber string) (string, bool) {
	if !strings.Contains(street, ",") {
		return "", false
	}
	parts := strings.Split(street, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 1 && strings.EqualFold(parts[len(parts)-1], houseNumber) {
		return parts[0], true
	}
	return "", false
}

// CityWithStatus prefixes the city with its official status when the
// status is given for Russian ("ru:город" gives "город Тула")
func CityWithStatus(city string, tags address.Record) string {
	status := tags[CityOfficialStatusTag]
	if strings.HasPrefix(status, "ru:") {
		return strings.TrimPrefix(status, "ru:") + " " + city
	}
	return city
}

// Components builds the perturbed component set for one element
func (t *OSMTrainer) Components(tags address.Record) *address.ComponentSet {
	cs := NormalizeTags(tags)
	cs.Apply(func(k address.ComponentKey, v string) string {
		v = normalize.FixEncoding(v)
		if validate, ok := normalize.Validators[k]; ok && !validate(v) {
			return ""
		}
		return v
	})

	if t.rng.Float64() < t.Probabilities.AddCountry {
		cs.Set(address.Country, address.RussiaNames[t.rng.Intn(len(address.RussiaNames))])
	}

	if state := cs.Value(address.State); state != "" {
		if alts := StateAltNames[state]; len(alts) > 0 && t.rng.Float64() < t.Probabilities.StateAltName {
			cs.Set(address.State, alts[t.rng.Intn(len(alts))])
		}
	}

	if hn := cs.Value(address.HouseNumber); hn != "" {
		cs.Set(address.HouseNumber, normalize.CleanupNumber(hn, false))
	}

	if street := cs.Value(address.Road); street != "" {
		if name, ok := NormalizedStreetName(street, cs.Value(address.HouseNumber)); ok {
			street = name
		}
		if t.expand != nil && t.rng.Float64() < t.Probabilities.ExpandStreet {
			if alts := t.expand(street); len(alts) > 0 {
				street = alts[t.rng.Intn(len(alts))]
			}
		}
		cs.Set(address.Road, street)
	}

	if city := cs.Value(address.City); city != "" {
		cs.Set(address.City, CityWithStatus(city, tags))
	}

	// venue names are not emitted
	cs.Delete(address.House)
	return cs
}

// Examples returns the deduplicated variants for one element: the full
// address, its places, and (when tagged) the address with place components
// dropped one at a time in random order.
func (t *OSMTrainer) Examples(tags address.Record) []Example {
	cs := t.Components(tags)
	if cs.Len() == 0 {
		return nil
	}

	formatted := []string{t.format(cs, !t.tagged)}

	places := DropAddress(cs)
	formatted = append(formatted, t.format(places, false))
	if cs.Has(address.Postcode) && t.rng.Float64() < t.Probabilities.PlacesDropPostcode {
		formatted = append(formatted, t.format(DropPostcode(places), false))
	}

	if t.tagged {
		dropped := cs.Clone()
		for _, k := range AddressLevelDropoutOrder(dropped, t.rng) {
			dropped.Delete(k)
			formatted = append(formatted, t.format(dropped, false))
		}
	}

	var examples []Example
	for _, f := range Dedup(formatted) {
		if strings.TrimSpace(f) == "" {
			continue
		}
		examples = append(examples, Example{
			Language:  address.LanguageRussian,
			Country:   address.CountryRussia,
			Formatted: f,
		})
	}
	return examples
}

func (t *OSMTrainer) format(cs *address.ComponentSet, minimalOnly bool) string {
	return t.formatter.FormatAddress(cs, address.CountryRussia, address.LanguageRussian, t.tagged, minimalOnly)
}

// Run writes the examples of every element in src to w
func (t *OSMTrainer) Run(src source.Source, w *Writer) error {
	debug.DebugHeader(t.localDebug, "osm training")
	defer debug.DebugFooter(t.localDebug, "osm training")

	elements := 0
	err := source.ForEach(src, func(tags address.Record) error {
		for _, ex := range t.Examples(tags) {
			if err := w.Write(ex); err != nil {
				return fmt.Errorf("failed to write example: %w", err)
			}
		}
		elements++
		debug.Progress(elements, FlushEvery, "OSM elements")
		return nil
	}, func(err error) error {
		debug.DebugOutput(t.localDebug, "Skipping bad element: %v", err)
		return nil
	})
	if err != nil {
		return err
	}

	debug.DebugOutput(t.localDebug, "Wrote %d formatted addresses from %d elements", w.Count(), elements)
	return nil
}
