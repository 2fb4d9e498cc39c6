package normalize

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/text/encoding/charmap"
)

func TestTSVString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "ул. Ленина", want: "ул. Ленина"},
		{name: "trimmed", input: "  д. 5 \n", want: "д. 5"},
		{name: "crlf", input: "ул. Ленина\r\nд. 5", want: "ул. Ленина, д. 5"},
		{name: "lone cr", input: "a\rb", want: "a, b"},
		{name: "lf", input: "a\nb", want: "a, b"},
		{name: "each break replaced", input: "a\n\nb", want: "a, , b"},
		{name: "tab", input: "a\tb", want: "a b"},
		{name: "mixed", input: "\ta\tb\r\nc\t", want: "a b, c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TSVString(tt.input); got != tt.want {
				t.Errorf("TSVString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTSVRowKeepsColumnCount(t *testing.T) {
	faker := gofakeit.New(42)
	for i := 0; i < 200; i++ {
		fields := make([]string, 1+faker.Number(0, 8))
		for j := range fields {
			fields[j] = faker.Sentence(4) + strings.Repeat("\t", faker.Number(0, 2)) +
				strings.Repeat("\r\n", faker.Number(0, 2)) + faker.Word() + strings.Repeat("\r", faker.Number(0, 1))
		}

		line := strings.Join(TSVRow(fields), "\t")
		if strings.ContainsAny(line, "\r\n") {
			t.Fatalf("sanitised row contains a line break: %q", line)
		}
		if got := len(strings.Split(line, "\t")); got != len(fields) {
			t.Fatalf("row split into %d columns, want %d: %q", got, len(fields), line)
		}
	}
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  г. Москва, ", "г. Москва"},
		{"- ул. Мира -", "ул. Мира"},
		{"N/A", ""},
		{"null", ""},
		{"Unknown", ""},
		{"---", ""},
		{"   ", ""},
		{"5-7", "5-7"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanValue(tt.input); got != tt.want {
				t.Errorf("CleanValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	if !ValidPostcode("101000") || ValidPostcode("000000") || ValidPostcode("1010") {
		t.Errorf("ValidPostcode gave wrong answers")
	}
	if !ValidHouseNumber("12а") || ValidHouseNumber("0") || ValidHouseNumber("") {
		t.Errorf("ValidHouseNumber gave wrong answers")
	}
	if !ValidStreet("ул. Ленина") || ValidStreet("12, 14") {
		t.Errorf("ValidStreet gave wrong answers")
	}
}

func TestCleanupNumber(t *testing.T) {
	tests := []struct {
		input       string
		stripCommas bool
		want        string
	}{
		{"12", false, "12"},
		{" 12 ", false, "12"},
		{"12.0", false, "12"},
		{"012.0", false, "012"},
		{"1,234", true, "1234"},
		{"1,234", false, "1,234"},
		{"12а", false, "12а"},
		{"NaN", false, "NaN"},
		{"1e30", false, "1e30"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanupNumber(tt.input, tt.stripCommas); got != tt.want {
				t.Errorf("CleanupNumber(%q, %v) = %q, want %q", tt.input, tt.stripCommas, got, tt.want)
			}
		})
	}
}

func TestTrimHouseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "short value untouched",
			input: "д. 5, корп. 2",
			want:  "д. 5, корп. 2",
		},
		{
			name:  "cut after dom number",
			input: "д. 1. Здание лечебно-диагностического корпуса. Этаж № 1.",
			want:  "д. 1",
		},
		{
			name:  "leading number with letter",
			input: "49А по паспорту БТИ, нежилые помещения первого этажа",
			want:  "49А",
		},
		{
			name:  "nothing recognisable",
			input: "нежилые помещения первого и второго этажей здания",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimHouseNumber(tt.input, DefaultMaxHouseNumberLen); got != tt.want {
				t.Errorf("TrimHouseNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFixEncoding(t *testing.T) {
	want := "Москва, ул. Тверская"

	cp1251Mojibake, err := charmap.Windows1251.NewDecoder().String(want)
	if err != nil {
		t.Fatal(err)
	}
	cp866Mojibake, err := charmap.CodePage866.NewDecoder().String(want)
	if err != nil {
		t.Fatal(err)
	}
	rawCP1251, err := charmap.Windows1251.NewEncoder().String(want)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "clean text", input: want},
		{name: "utf-8 read as cp1251", input: cp1251Mojibake},
		{name: "utf-8 read as cp866", input: cp866Mojibake},
		{name: "raw cp1251 bytes", input: rawCP1251},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixEncoding(tt.input); got != want {
				t.Errorf("FixEncoding(%q) = %q, want %q", tt.input, got, want)
			}
		})
	}

	clean := []string{"ASCII only 12", "сад", "сад 5", "род", "ЖЁ", "ООО «Р»", "г. Тула, ул. Мира, д. 3, пом. 2"}
	for _, in := range clean {
		if got := FixEncoding(in); got != in {
			t.Errorf("FixEncoding(%q) = %q, want unchanged", in, got)
		}
	}
}
