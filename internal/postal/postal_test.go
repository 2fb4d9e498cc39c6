package postal

import (
	"os"
	"testing"

	"github.com/openvenues/gopostal/parser"
)

func TestFromParsed(t *testing.T) {
	parsed := []parser.ParsedComponent{
		{Label: "road", Value: "улица мира"},
		{Label: "house_number", Value: "3"},
		{Label: "city", Value: "тула"},
		{Label: "road", Value: "корп"},
		{Label: "something", Value: "x"},
	}

	cs := fromParsed(parsed)
	want := map[string]string{"road": "улица мира корп", "house_number": "3", "city": "тула"}
	got := cs.Map()
	if len(got) != len(want) {
		t.Fatalf("fromParsed() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("fromParsed()[%s] = %q, want %q", k, got[k], v)
		}
	}
}

// Exercising libpostal itself needs its data files, which take a while to load
func TestParseWithLibpostal(t *testing.T) {
	if os.Getenv("RU_ADDR_LIBPOSTAL") == "" {
		t.Skip("set RU_ADDR_LIBPOSTAL=1 to run against libpostal")
	}

	cs := Parse("301000, Тульская обл., г. Тула, ул. Мира, д. 3")
	if !cs.Has("postcode") || !cs.Has("road") {
		t.Errorf("Parse() = %v, want postcode and road", cs)
	}
	if len(ExpandStreet("ул. Мира")) == 0 {
		t.Errorf("ExpandStreet() returned no expansions")
	}
}
