package training

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/format"
	"github.com/ru-addr/internal/sink"
	"github.com/ru-addr/internal/source"
)

func formattedOf(examples []Example) []string {
	var out []string
	for _, ex := range examples {
		out = append(out, ex.Formatted)
	}
	return out
}

func newTSVTrainer(p Probabilities) *TSVTrainer {
	tr := NewTSVTrainer(format.NewTemplateFormatter(), address.TrainingFieldMap, rand.New(rand.NewSource(1)), false, false)
	tr.Probabilities = p
	return tr
}

func TestTSVTrainerExamples(t *testing.T) {
	tests := []struct {
		name string
		rec  address.Record
		want []string
	}{
		{
			name: "full row produces all variants",
			rec: address.Record{
				"index":        "301000",
				"region":       "Тульская обл.",
				"city":         "г. Тула",
				"street":       "ул.  Мира",
				"house_number": "12",
			},
			want: []string{
				"ул. Мира, 12, г. Тула, Тульская обл., Россия, 301000",
				"ул. Мира, 12",
				"г. Тула, Тульская обл., Россия, 301000",
			},
		},
		{
			name: "no street and no postcode is skipped",
			rec:  address.Record{"city": "г. Тула", "house_number": "12"},
			want: nil,
		},
		{
			name: "no street keeps places when a postcode exists",
			rec:  address.Record{"index": "301000", "city": "г. Тула", "house_number": "12"},
			want: []string{"г. Тула, Россия, 301000"},
		},
		{
			name: "street without letters is dropped",
			rec:  address.Record{"index": "301000", "city": "г. Тула", "street": "123"},
			want: []string{"г. Тула, Россия, 301000"},
		},
		{
			name: "street equal to house number is not an address",
			rec:  address.Record{"index": "301000", "street": "Мира", "house_number": "мира"},
			want: []string{"Россия, 301000"},
		},
		{
			name: "placeholders and invalid postcodes are ignored",
			rec:  address.Record{"index": "000000", "city": "нет данных", "street": "ул. Мира", "house_number": "0"},
			want: []string{"ул. Мира, Россия", "ул. Мира"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTSVTrainer(Probabilities{AddressOnly: 1, DropAddress: 1, DropPostcode: 0})
			got := formattedOf(tr.Examples(tt.rec))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Examples() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTSVTrainerDropPostcode(t *testing.T) {
	tr := newTSVTrainer(Probabilities{AddressOnly: 0, DropAddress: 1, DropPostcode: 1})
	rec := address.Record{"index": "301000", "city": "г. Тула", "street": "ул. Мира", "house_number": "3"}

	got := formattedOf(tr.Examples(rec))
	want := []string{"ул. Мира, 3, г. Тула, Россия, 301000", "г. Тула, Россия"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Examples() = %q, want %q", got, want)
	}
}

func TestTSVTrainerRun(t *testing.T) {
	input := "index\tcity\tstreet\thouse_number\n" +
		"301000\tг. Тула\tул. Мира\t3\n" +
		"\tг. Тула\t\t\n" +
		"1\t2\t3\t4\t5\n"
	src, err := source.NewDelimited(strings.NewReader(input), '\t')
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w := NewWriter(sink.NewTSV(&buf), true)
	tr := NewTSVTrainer(format.NewTemplateFormatter(), address.TrainingFieldMap, rand.New(rand.NewSource(1)), true, false)
	tr.Probabilities = Probabilities{}

	if err := tr.Run(src, w); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	want := "ru\tru\tул./road Мира/road 3/house_number | г./city Тула/city | Россия/country | 301000/postcode\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if w.Count() != 1 {
		t.Errorf("Count() = %d, want 1", w.Count())
	}
}

func TestWriterUntaggedSkipsBlank(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(sink.NewTSV(&buf), false)

	for _, f := range []string{"Тула\r\nул. Мира", "  ", ""} {
		if err := w.Write(Example{Language: "ru", Country: "ru", Formatted: f}); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	if buf.String() != "Тула, ул. Мира\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNormalizeTags(t *testing.T) {
	tags := address.Record{
		"addr:city":      "Москва",
		"is_in:city":     "Подмосковье",
		"addr:street":    "Тверская улица",
		"addr:postcode":  "125009",
		"addr:place":     "Китай-город",
		"building":       "yes",
		source.OSMIDKey:  "1",
		"addr:locality":  "Химки",
		"addr:housename": "Дом",
	}

	cs := NormalizeTags(tags)
	want := map[string]string{
		"house":    "Дом",
		"road":     "Тверская улица",
		"suburb":   "Китай-город",
		"city":     "Химки",
		"postcode": "125009",
	}
	if !reflect.DeepEqual(cs.Map(), want) {
		t.Errorf("NormalizeTags() = %v, want %v", cs.Map(), want)
	}
}

func TestNormalizedStreetName(t *testing.T) {
	tests := []struct {
		street, houseNumber string
		want                string
		wantOK              bool
	}{
		{"Тверская улица, 7", "7", "Тверская улица", true},
		{"Тверская улица, 7А", "7а", "Тверская улица", true},
		{"Тверская улица, 7", "9", "", false},
		{"Тверская улица", "7", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizedStreetName(tt.street, tt.houseNumber)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizedStreetName(%q, %q) = %q, %v, want %q, %v", tt.street, tt.houseNumber, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCityWithStatus(t *testing.T) {
	if got := CityWithStatus("Тула", address.Record{CityOfficialStatusTag: "ru:город"}); got != "город Тула" {
		t.Errorf("CityWithStatus() = %q", got)
	}
	if got := CityWithStatus("Тула", address.Record{CityOfficialStatusTag: "city"}); got != "Тула" {
		t.Errorf("CityWithStatus() = %q", got)
	}
}

var osmTags = address.Record{
	"name":                "Кафе",
	"addr:street":         "Тверская улица, 7",
	"addr:housenumber":    "7",
	"addr:city":           "Москва",
	CityOfficialStatusTag: "ru:город",
	"addr:postcode":       "125009",
}

func TestOSMTrainerUntagged(t *testing.T) {
	tr := NewOSMTrainer(format.NewTemplateFormatter(), rand.New(rand.NewSource(1)), nil, false, false)
	tr.Probabilities = OSMProbabilities{}

	got := formattedOf(tr.Examples(osmTags))
	want := []string{"Тверская улица, 7, город Москва, 125009", "город Москва, 125009"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Examples() = %q, want %q", got, want)
	}
}

func TestOSMTrainerTaggedDropout(t *testing.T) {
	tr := NewOSMTrainer(format.NewTemplateFormatter(), rand.New(rand.NewSource(3)), nil, true, false)
	tr.Probabilities = OSMProbabilities{}

	got := formattedOf(tr.Examples(osmTags))
	if len(got) != 4 {
		t.Fatalf("Examples() returned %d variants, want 4: %q", len(got), got)
	}
	if want := "Тверская/road улица/road 7/house_number | город/city Москва/city | 125009/postcode"; got[0] != want {
		t.Errorf("full = %q, want %q", got[0], want)
	}
	if want := "город/city Москва/city | 125009/postcode"; got[1] != want {
		t.Errorf("places = %q, want %q", got[1], want)
	}
	if want := "Тверская/road улица/road 7/house_number"; got[3] != want {
		t.Errorf("last dropout = %q, want %q", got[3], want)
	}
}

type sourceStep struct {
	rec address.Record
	err error
}

// scriptedSource replays a fixed sequence of records and errors
type scriptedSource struct {
	steps []sourceStep
}

func (s *scriptedSource) Next() (address.Record, error) {
	if len(s.steps) == 0 {
		return nil, io.EOF
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.rec, step.err
}

func (s *scriptedSource) Close() error { return nil }

func TestOSMTrainerRunSkipsBadElements(t *testing.T) {
	tags := make(address.Record, len(osmTags))
	for k, v := range osmTags {
		tags[k] = v
	}
	src := &scriptedSource{steps: []sourceStep{
		{err: &source.RecordError{Line: 3, Err: errors.New("bad tag")}},
		{rec: tags},
	}}

	var buf bytes.Buffer
	w := NewWriter(sink.NewTSV(&buf), false)
	tr := NewOSMTrainer(format.NewTemplateFormatter(), rand.New(rand.NewSource(1)), nil, false, false)
	tr.Probabilities = OSMProbabilities{}

	if err := tr.Run(src, w); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	want := "Тверская улица, 7, город Москва, 125009\n" +
		"город Москва, 125009\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestOSMTrainerPerturbations(t *testing.T) {
	expand := func(street string) []string { return []string{strings.ToLower(street)} }
	tr := NewOSMTrainer(format.NewTemplateFormatter(), rand.New(rand.NewSource(1)), expand, false, false)
	tr.Probabilities = OSMProbabilities{AddCountry: 1, StateAltName: 1, ExpandStreet: 1}

	cs := tr.Components(address.Record{
		"addr:street": "Ленина улица",
		"addr:region": "Республика Коми",
	})

	if got := cs.Value(address.Road); got != "ленина улица" {
		t.Errorf("road = %q, want expanded", got)
	}
	if got := cs.Value(address.State); got != "Коми" {
		t.Errorf("state = %q, want alt name", got)
	}
	country := cs.Value(address.Country)
	found := false
	for _, n := range address.RussiaNames {
		found = found || n == country
	}
	if !found {
		t.Errorf("country = %q, want one of %v", country, address.RussiaNames)
	}
}

func TestAddressLevelDropoutOrder(t *testing.T) {
	cs := address.FromMap(map[string]string{
		"road": "ул. Мира", "house_number": "3", "city": "Тула", "state": "Тульская обл.", "postcode": "301000",
	})

	order := AddressLevelDropoutOrder(cs, rand.New(rand.NewSource(42)))
	var got []string
	for _, k := range order {
		got = append(got, string(k))
	}
	sort.Strings(got)
	if want := []string{"city", "postcode", "state"}; !reflect.DeepEqual(got, want) {
		t.Errorf("AddressLevelDropoutOrder() = %v, want %v in any order", got, want)
	}
}

func TestDropHelpers(t *testing.T) {
	cs := address.FromMap(map[string]string{
		"road": "ул. Мира", "unit": "кв. 1", "city": "Тула", "country": "Россия", "postcode": "301000",
	})

	if got := DropAddress(cs).Map(); !reflect.DeepEqual(got, map[string]string{"city": "Тула", "country": "Россия", "postcode": "301000"}) {
		t.Errorf("DropAddress() = %v", got)
	}
	if got := DropPlaces(cs).Map(); !reflect.DeepEqual(got, map[string]string{"road": "ул. Мира", "unit": "кв. 1", "postcode": "301000"}) {
		t.Errorf("DropPlaces() = %v", got)
	}
	if DropPostcode(cs).Has(address.Postcode) || !cs.Has(address.Postcode) {
		t.Errorf("DropPostcode() should copy without the postcode")
	}
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{"a", "b", "a", "", "b", "c"})
	if want := []string{"a", "b", "", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup() = %v, want %v", got, want)
	}
}
