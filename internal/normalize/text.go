package normalize

import (
	"regexp"
	"strings"
)

var reNewline = regexp.MustCompile("\r\n|\r|\n")

// TSVString makes s safe for an unquoted TSV field: surrounding
// whitespace is trimmed, each line break becomes ", " and each tab a space.
func TSVString(s string) string {
	s = reNewline.ReplaceAllString(strings.TrimSpace(s), ", ")
	return strings.ReplaceAll(s, "\t", " ")
}

// StripQuotes removes double quotes, which the export drops before writing
func StripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// TSVRow sanitises every field of a row
func TSVRow(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = TSVString(f)
	}
	return out
}
