package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// mojibakeCharsets are the code pages UTF-8 Cyrillic is most often
// misread as, in the order they are tried
var mojibakeCharsets = []*charmap.Charmap{
	charmap.Windows1251,
	charmap.CodePage866,
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// maxRepairRounds bounds repeated repair of text that was mis-decoded twice
const maxRepairRounds = 2

// FixEncoding repairs text whose bytes went through the wrong code page.
// Invalid UTF-8 is decoded as Windows-1251. Valid UTF-8 is only touched
// when it carries the byte-pair signature of UTF-8 Cyrillic read through
// one of the common code pages and re-encoding it gives mostly Russian
// letters. The result is NFC-normalised. It never fails.
func FixEncoding(s string) string {
	if s == "" {
		return s
	}

	if !utf8.ValidString(s) {
		if decoded, err := charmap.Windows1251.NewDecoder().String(s); err == nil {
			s = decoded
		} else {
			s = strings.ToValidUTF8(s, string(utf8.RuneError))
		}
	}

	for round := 0; round < maxRepairRounds; round++ {
		fixed, ok := repairMojibake(s)
		if !ok {
			break
		}
		s = fixed
	}

	return norm.NFC.String(s)
}

// repairMojibake tries each code page whose mojibake signature the input
// carries and returns the first repair that yields mostly Russian letters
func repairMojibake(s string) (string, bool) {
	if isASCII(s) {
		return s, false
	}
	for _, cm := range mojibakeCharsets {
		if !hasMojibakeSignature(s, cm) {
			continue
		}
		raw, err := cm.NewEncoder().String(s)
		if err != nil || raw == s || !utf8.ValidString(raw) {
			continue
		}
		if russianRatio(raw) < minRussianRatio {
			continue
		}
		return raw, true
	}
	return s, false
}

// minRussianRatio is the share of Russian letters a repair must reach
const minRussianRatio = 0.5

// hasMojibakeSignature reports whether at least half of the non-ASCII runes
// of s form the pairs UTF-8 Cyrillic turns into when read through cm: the
// lead byte 0xD0 or 0xD1 followed by a continuation byte 0x80-0xBF
func hasMojibakeSignature(s string, cm *charmap.Charmap) bool {
	runes := []rune(s)
	pairs, nonASCII := 0, 0
	for i := 0; i < len(runes); i++ {
		if runes[i] < utf8.RuneSelf {
			continue
		}
		nonASCII++
		lead, ok := cm.EncodeRune(runes[i])
		if !ok || (lead != 0xD0 && lead != 0xD1) || i+1 >= len(runes) {
			continue
		}
		cont, ok := cm.EncodeRune(runes[i+1])
		if !ok || cont < 0x80 || cont > 0xBF {
			continue
		}
		pairs++
		nonASCII++
		i++
	}
	return pairs > 0 && 4*pairs >= nonASCII
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// russianRatio is the share of Russian alphabet letters among all letters
func russianRatio(s string) float64 {
	letters, russian := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if isRussianLetter(r) {
			russian++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(russian) / float64(letters)
}

func isRussianLetter(r rune) bool {
	return (r >= 'А' && r <= 'я') || r == 'Ё' || r == 'ё'
}

// FixRecordEncodings repairs every value in place
func FixRecordEncodings(values map[string]string) {
	for k, v := range values {
		values[k] = FixEncoding(v)
	}
}
